//
// Copyright (c) 2026 BCN3D Technologies
//

package main

import (
	"fmt"
	"io"
)

// consoleProgress draws a percentage on a terminal line
type consoleProgress struct {
	output io.Writer
	last   int
}

func newConsoleProgress(output io.Writer) (cp *consoleProgress) {
	cp = &consoleProgress{
		output: output,
		last:   -1,
	}

	return
}

func (cp *consoleProgress) Show(percent float32) {
	value := int(percent)
	if value == cp.last {
		return
	}
	cp.last = value

	fmt.Fprintf(cp.output, "\r%3d%%", value)
}

func (cp *consoleProgress) Stop() {
	if cp.last >= 0 {
		fmt.Fprintln(cp.output)
	}
	cp.last = -1
}
