//
// Copyright (c) 2026 BCN3D Technologies
//

// Package displayprogress annotates G-code with remaining time and
// completion percentage for the printer display
package displayprogress

import (
	"github.com/bcn3d/gcodepp"
)

const (
	ScriptName = "progress"
)

func Register(reg *gcodepp.Registry) {
	newScript := func(env *gcodepp.Env) gcodepp.Script { return NewProgressScript(env) }

	reg.RegisterScript(ScriptName, "Display remaining time and percentage on the printer", newScript)
}
