//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"fmt"
	"time"
)

// Step is a named script in a pipeline
type Step struct {
	Name   string
	Script Script
}

// Pipeline runs scripts in order, handing each the output of the last
type Pipeline struct {
	*Env
	Steps    []Step
	Progress Progressor
}

// NewPipeline creates an empty pipeline
func NewPipeline(env *Env) (pipe *Pipeline) {
	pipe = &Pipeline{
		Env:      env,
		Progress: NilProgress,
	}

	return
}

// Add appends a script
func (pipe *Pipeline) Add(name string, script Script) {
	pipe.Steps = append(pipe.Steps, Step{Name: name, Script: script})
}

// Run processes the document through every step. The input document
// is not modified.
func (pipe *Pipeline) Run(input *Document) (output *Document, err error) {
	if input == nil || len(input.Layers) == 0 {
		err = ErrEmptyDocument
		return
	}

	progress := NewProgress(pipe.Progress, len(pipe.Steps))
	defer progress.Close()

	doc := input
	for n, step := range pipe.Steps {
		start := time.Now()
		before := doc.Lines()

		var next *Document
		next, err = step.Script.Filter(doc)
		if err != nil {
			err = fmt.Errorf("step %d (%s): %w", n+1, step.Name, err)
			return
		}

		pipe.Log.Debug().
			Str("script", step.Name).
			Int("lines_before", before).
			Int("lines_after", next.Lines()).
			Dur("took", time.Since(start)).
			Msg("step complete")

		doc = next
		progress.Indicate()
	}

	output = doc

	return
}
