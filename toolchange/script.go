//
// Copyright (c) 2026 BCN3D Technologies
//

package toolchange

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

type ToolchangeScript struct {
	*pflag.FlagSet
	env *gcodepp.Env

	RemoveTravel      bool
	SkipRedundantWait bool
	Window            int // Lines after a tool select
}

func NewToolchangeScript(env *gcodepp.Env) (script *ToolchangeScript) {
	script = &ToolchangeScript{
		FlagSet: pflag.NewFlagSet(ScriptName, pflag.ContinueOnError),
		env:     env,
	}

	script.BoolVarP(&script.RemoveTravel, "remove-travel", "t", true, "Remove G0 moves without X or Y after a tool change")
	script.BoolVarP(&script.SkipRedundantWait, "skip-redundant-wait", "w", true, "Remove M109 waits for a temperature already reached")
	script.IntVarP(&script.Window, "window", "n", 4, "Lines after a tool change to inspect")

	script.SetInterspersed(false)

	return
}

// Parse the options
func (script *ToolchangeScript) Parse(args []string) (err error) {
	err = script.FlagSet.Parse(args)
	if err != nil {
		return
	}

	if script.Window < 0 {
		err = fmt.Errorf("invalid --window=%v", script.Window)
		return
	}

	return
}

// heater tracks the targets of each tool
type heater struct {
	tool   int
	target map[int]float64
	waited map[int]float64
}

func (h *heater) toolOf(line *gcodepp.Line) int {
	if t, ok := line.Value('T'); ok {
		return int(t)
	}

	return h.tool
}

// set records a new target, forgetting any wait for an older one
func (h *heater) set(tool int, target float64) {
	old, ok := h.target[tool]
	if !ok || old != target {
		delete(h.waited, tool)
	}
	h.target[tool] = target
}

// redundant is true when the tool already waited for this target
func (h *heater) redundant(tool int, target float64) bool {
	waited, ok := h.waited[tool]
	return ok && waited == target && h.target[tool] == target
}

func waitTarget(line *gcodepp.Line) (target float64, ok bool) {
	target, ok = line.Value('S')
	if !ok {
		target, ok = line.Value('R')
	}

	return
}

// Filter applies the tool change fixes
func (script *ToolchangeScript) Filter(input *gcodepp.Document) (output *gcodepp.Document, err error) {
	if input == nil || len(input.Layers) == 0 {
		err = gcodepp.ErrEmptyDocument
		return
	}

	output = input.Clone()

	h := &heater{
		target: map[int]float64{},
		waited: map[int]float64{},
	}

	window := 0
	travels := 0
	waits := 0

	for n, layer := range output.Layers {
		lb := gcodepp.NewLayerBuilder(layer)

		for index, raw := range layer.Lines {
			line := gcodepp.ParseLine(raw)

			inWindow := window > 0
			if window > 0 {
				window--
			}

			switch {
			case line.Letter == 'T' && line.HasCode:
				h.tool = int(line.Code)
				window = script.Window
			case line.Is('M', 104):
				if target, ok := waitTarget(&line); ok {
					h.set(h.toolOf(&line), target)
				}
			case line.Is('M', 109):
				target, ok := waitTarget(&line)
				if !ok {
					break
				}
				tool := h.toolOf(&line)
				if script.SkipRedundantWait && inWindow && h.redundant(tool, target) {
					lb.Delete(index)
					waits++
					break
				}
				h.set(tool, target)
				h.waited[tool] = target
			case line.Is('G', 0):
				if script.RemoveTravel && inWindow && !line.Has('X') && !line.Has('Y') {
					lb.Delete(index)
					travels++
				}
			}
		}

		if lb.Edits() > 0 {
			output.Layers[n] = lb.Build()
		}
	}

	script.env.Log.Debug().
		Int("travels", travels).
		Int("waits", waits).
		Msg("tool changes cleaned")

	return
}
