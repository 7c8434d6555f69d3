//
// Copyright (c) 2026 BCN3D Technologies
//

// Package pause inserts a pause into G-code at a height or layer
package pause

import (
	"github.com/bcn3d/gcodepp"
)

const (
	ScriptName = "pause"
)

func Register(reg *gcodepp.Registry) {
	newScript := func(env *gcodepp.Env) gcodepp.Script { return NewPauseScript(env) }

	reg.RegisterScript(ScriptName, "Pause the print at a height or layer", newScript)
}
