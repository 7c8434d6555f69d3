//
// Copyright (c) 2026 BCN3D Technologies
//

// Package retract keeps retracting filament over chained travel moves
package retract

import (
	"github.com/bcn3d/gcodepp"
)

const (
	ScriptName = "retract"
)

func Register(reg *gcodepp.Registry) {
	newScript := func(env *gcodepp.Env) gcodepp.Script { return NewRetractScript(env) }

	reg.RegisterScript(ScriptName, "Extend retraction proportionally over travel moves", newScript)
}
