//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

type Progressor interface {
	Show(percent float32)
	Stop()
}

type nilProgress struct{}

func (np *nilProgress) Show(float32) {}
func (np *nilProgress) Stop()        {}

// NilProgress discards all progress
var NilProgress = Progressor(&nilProgress{})

// Progress counts completed steps out of a known total
type Progress struct {
	Progressor
	total     int
	completed int
}

func NewProgress(prog Progressor, total int) (progress *Progress) {
	if prog == nil {
		prog = NilProgress
	}

	progress = &Progress{
		Progressor: prog,
		total:      total,
	}

	progress.Show(0.0)

	return
}

// Indicate marks one more step as completed
func (progress *Progress) Indicate() {
	if progress.completed < progress.total {
		progress.completed++
	}

	progress.Show(float32(progress.completed) * 100.0 / float32(progress.total))
}

// Close finishes the progress display
func (progress *Progress) Close() {
	progress.Show(100.0)
	progress.Stop()
}
