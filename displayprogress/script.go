//
// Copyright (c) 2026 BCN3D Technologies
//

package displayprogress

import (
	"fmt"
	"math"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

// Method selects how remaining time is shown
type Method int

const (
	MethodGenericStatus = Method(iota) // M117 display message
	MethodVendorETA                    // M73 R<minutes>
	MethodNotification                 // M118 host action notification
)

var methodMap = map[string]Method{
	"generic_status": MethodGenericStatus,
	"m117":           MethodGenericStatus,
	"vendor_eta":     MethodVendorETA,
	"m73":            MethodVendorETA,
	"notification":   MethodNotification,
	"m118":           MethodNotification,
}

// Frequencies are the supported update intervals, in seconds.
// Zero updates once per elapsed time marker.
var Frequencies = []int{0, 15, 30, 60}

// Status renders the remaining time line
func (method Method) Status(remaining float64) string {
	if remaining < 0 {
		remaining = 0
	}

	secs := int(remaining)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60

	switch method {
	case MethodVendorETA:
		return fmt.Sprintf("M73 R%d", int(math.Floor(remaining/60.0+0.5)))
	case MethodNotification:
		return fmt.Sprintf("M118 A1 P0 action:notification Time Left %dh%02dm%02ds", h, m, s)
	default:
		return fmt.Sprintf("M117 Time Left %dh%02dm%02ds", h, m, s)
	}
}

// Percent renders a completion percentage line
func Percent(percent int) string {
	return fmt.Sprintf("M73 P%d", percent)
}

type ProgressScript struct {
	*pflag.FlagSet
	env *gcodepp.Env

	TimeRemaining bool
	MethodName    string
	Method        Method
	Frequency     int
	Percentage    bool
}

func NewProgressScript(env *gcodepp.Env) (script *ProgressScript) {
	script = &ProgressScript{
		FlagSet: pflag.NewFlagSet(ScriptName, pflag.ContinueOnError),
		env:     env,
	}

	script.BoolVarP(&script.TimeRemaining, "time-remaining", "t", false, "Show remaining time")
	script.StringVarP(&script.MethodName, "method", "m", "generic_status", "Remaining time method - 'generic_status' (M117), 'vendor_eta' (M73) or 'notification' (M118)")
	script.IntVarP(&script.Frequency, "frequency", "f", 0, "Seconds between updates - 0 (every layer), 15, 30 or 60")
	script.BoolVarP(&script.Percentage, "percentage", "p", false, "Show completion percentage (M73)")

	script.SetInterspersed(false)

	return
}

// Parse the options
func (script *ProgressScript) Parse(args []string) (err error) {
	err = script.FlagSet.Parse(args)
	if err != nil {
		return
	}

	method, ok := methodMap[script.MethodName]
	if !ok {
		err = fmt.Errorf("invalid --method=%v", script.MethodName)
		return
	}
	script.Method = method

	for _, frequency := range Frequencies {
		if script.Frequency == frequency {
			return
		}
	}

	err = fmt.Errorf("invalid --frequency=%v", script.Frequency)

	return
}

// annotator carries the per-pass state
type annotator struct {
	*ProgressScript

	tracker *gcodepp.Tracker
	seen    map[string]bool

	previousEndTime    int
	previousEndPercent int
}

func (an *annotator) totalTime(lb *gcodepp.LayerBuilder, index int) {
	if an.TimeRemaining {
		an.insertTime(lb, index, an.tracker.TotalTime)
	}

	if an.Percentage {
		// Tells the firmware its own estimate is overridden
		lb.InsertAfter(index, Percent(0))
	}
}

func (an *annotator) insertTime(lb *gcodepp.LayerBuilder, index int, remaining float64) {
	lb.InsertAfter(index, an.Method.Status(math.Max(remaining, 0)))
}

func (an *annotator) elapsedTime(lb *gcodepp.LayerBuilder, index int) {
	total := an.tracker.TotalTime
	current := an.tracker.Elapsed

	if an.TimeRemaining {
		if an.Frequency == 0 {
			an.insertTime(lb, index, total-current)
		} else {
			delta := int(current - float64(an.previousEndTime))
			if delta > 0 {
				// Spread the updates over the layer, assuming lines
				// take equal time.
				step := float64(index) / float64(delta)
				for seconds := 1; seconds <= delta; seconds++ {
					lineTime := an.previousEndTime + seconds
					if lineTime%an.Frequency == 0 || lineTime == int(total) {
						an.insertTime(lb, int(float64(seconds)*step), total-float64(lineTime))
					}
				}
			}
			an.previousEndTime = int(current)
		}
	}

	if an.Percentage {
		endPercent := 100
		if total > 0 {
			endPercent = int(math.Floor(current * 100.0 / total))
		}
		if endPercent > 100 {
			endPercent = 100
		}

		// Keep the layer marker as the first line of the layer
		first := 0
		if lb.Len() > 0 && gcodepp.IsLayerMarker(lb.Line(0)) {
			first = 1
		}

		delta := endPercent - an.previousEndPercent
		if delta > 0 {
			step := float64(index) / float64(delta)
			for percent := 1; percent <= delta; percent++ {
				output := an.previousEndPercent + percent
				if output > 100 {
					output = 100
				}
				at := int(float64(percent) * step)
				if at < first {
					at = first
				}
				lb.InsertBefore(at, Percent(output))
			}
			an.previousEndPercent = endPercent
		}
	}
}

// Filter annotates every elapsed time marker after the total time marker
func (script *ProgressScript) Filter(input *gcodepp.Document) (output *gcodepp.Document, err error) {
	if input == nil || len(input.Layers) == 0 {
		err = gcodepp.ErrEmptyDocument
		return
	}

	output = input.Clone()

	if !script.TimeRemaining && !script.Percentage {
		return
	}

	an := &annotator{
		ProgressScript: script,
		tracker:        gcodepp.NewTracker(),
		seen:           map[string]bool{},
	}

	log := script.env.Log

	for n, layer := range output.Layers {
		lb := gcodepp.NewLayerBuilder(layer)

		for index, raw := range layer.Lines {
			_, event := an.tracker.ObserveRaw(raw)

			switch event {
			case gcodepp.EventTotalTime:
				an.totalTime(lb, index)
			case gcodepp.EventElapsed:
				if an.seen[raw] {
					log.Debug().Int("layer", n).Str("marker", raw).Msg("duplicate elapsed marker skipped")
					continue
				}
				an.seen[raw] = true

				if !an.tracker.HasTotalTime {
					continue
				}

				an.elapsedTime(lb, index)
			}
		}

		if lb.Edits() > 0 {
			output.Layers[n] = lb.Build()
		}
	}

	if !an.tracker.HasTotalTime {
		log.Info().Msg("no total time marker, nothing annotated")
	}

	return
}
