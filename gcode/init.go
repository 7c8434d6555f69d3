//
// Copyright (c) 2026 BCN3D Technologies
//

// Package gcode handles input and output of plain text G-code
package gcode

import (
	"github.com/bcn3d/gcodepp"
)

func Register(reg *gcodepp.Registry) {
	newFormatter := func(suffix string) gcodepp.Formatter { return NewGcodeFormatter(suffix) }

	reg.RegisterFormatter(".gcode", newFormatter)
}
