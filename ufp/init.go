//
// Copyright (c) 2026 BCN3D Technologies
//

// Package ufp handles input and output of Ultimaker Format Packages
package ufp

import (
	"github.com/bcn3d/gcodepp"
)

func Register(reg *gcodepp.Registry) {
	newFormatter := func(suffix string) gcodepp.Formatter { return NewUFPFormatter(suffix) }

	reg.RegisterFormatter(".ufp", newFormatter)
}
