//
// Copyright (c) 2026 BCN3D Technologies
//

// Package toolchange cleans up the moves and waits around tool changes
// on dual extruder machines
package toolchange

import (
	"github.com/bcn3d/gcodepp"
)

const (
	ScriptName = "toolchange"
)

func Register(reg *gcodepp.Registry) {
	newScript := func(env *gcodepp.Env) gcodepp.Script { return NewToolchangeScript(env) }

	reg.RegisterScript(ScriptName, "Remove redundant travel and waits after tool changes", newScript)
}
