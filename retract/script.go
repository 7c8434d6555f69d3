//
// Copyright (c) 2026 BCN3D Technologies
//

package retract

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

const (
	// Epsilon is the smallest E change treated as a retraction
	Epsilon = 1e-5
)

type RetractScript struct {
	*pflag.FlagSet
	env *gcodepp.Env

	Ratio float64 // mm of filament per mm of travel
}

func NewRetractScript(env *gcodepp.Env) (script *RetractScript) {
	script = &RetractScript{
		FlagSet: pflag.NewFlagSet(ScriptName, pflag.ContinueOnError),
		env:     env,
	}

	script.Float64VarP(&script.Ratio, "ratio", "r", 0.05, "Extra retraction in mm of filament per mm of travel")

	script.SetInterspersed(false)

	return
}

// Parse the options
func (script *RetractScript) Parse(args []string) (err error) {
	err = script.FlagSet.Parse(args)
	if err != nil {
		return
	}

	if script.Ratio < 0 {
		err = fmt.Errorf("invalid --ratio=%v", script.Ratio)
		return
	}

	return
}

// travelMove renders a retracting travel move
func travelMove(line *gcodepp.Line, state *gcodepp.MachineState, e float64) string {
	words := []string{"G1"}

	if f, ok := line.Value('F'); ok {
		words = append(words, "F"+gcodepp.FormatFloat(f))
	}

	if state.RelativePositioning {
		for _, letter := range []byte{'X', 'Y', 'Z'} {
			if value, ok := line.Value(letter); ok {
				words = append(words, string(letter)+gcodepp.FormatFloat(value))
			}
		}
	} else {
		words = append(words, "X"+gcodepp.FormatFloat(state.X()), "Y"+gcodepp.FormatFloat(state.Y()))
		if state.HaveZ {
			words = append(words, "Z"+gcodepp.FormatFloat(state.Z()))
		}
	}

	words = append(words, "E"+gcodepp.FormatFloat(e))

	return strings.Join(words, " ")
}

// withE renders a line with its E value replaced
func withE(line *gcodepp.Line, e float64) string {
	code := strings.TrimSpace(line.Raw)
	if n := strings.IndexByte(code, gcodepp.CommentMarker); n >= 0 {
		code = strings.TrimSpace(code[:n])
	}

	words := strings.Fields(code)
	for n, word := range words {
		if n > 0 && (word[0] == 'E' || word[0] == 'e') {
			words[n] = "E" + gcodepp.FormatFloat(e)
		}
	}

	text := strings.Join(words, " ")
	if len(line.Comment) > 0 {
		text += " ;" + line.Comment
	}

	return text
}

// extender carries the per-pass state. A retracted travel group stays
// open across layer markers until extrusion resumes.
type extender struct {
	*RetractScript

	tracker *gcodepp.Tracker

	retracted bool
	origin    mgl64.Vec3 // End of the last move in the group
	extra     float64    // Extra retraction of the open group

	// Extra filament to restore on the next extrusion, relative mode only
	pending float64
	groups  int
	moves   int
}

// open starts or continues a group at the current position
func (ex *extender) open() {
	ex.retracted = true
	ex.origin = ex.tracker.Position
}

// close ends the open group
func (ex *extender) close() {
	if ex.extra > 0 {
		ex.groups++
		if ex.tracker.RelativeExtrusion {
			ex.pending += ex.extra
		}
	}

	ex.retracted = false
	ex.extra = 0
}

// travel extends the retraction over one non-extruding move
func (ex *extender) travel(lb *gcodepp.LayerBuilder, index int, line *gcodepp.Line) {
	tracker := ex.tracker

	amount := Distance(ex.origin, tracker.Position) * ex.Ratio
	ex.origin = tracker.Position
	if amount <= 0 {
		return
	}

	tracker.E -= amount

	e := tracker.E
	if tracker.RelativeExtrusion {
		e = -amount
	}

	lb.Replace(index, travelMove(line, &tracker.MachineState, e))
	ex.extra += amount
	ex.moves++
}

func (ex *extender) layer(layer gcodepp.Layer) (out gcodepp.Layer) {
	tracker := ex.tracker
	lb := gcodepp.NewLayerBuilder(layer)

	for index := 0; index < lb.Len(); index++ {
		line := gcodepp.ParseLine(lb.Line(index))
		lastE := tracker.E

		event := tracker.Observe(&line)
		if event != gcodepp.EventMotion {
			continue
		}

		if line.Is('G', 92) {
			ex.close()
			continue
		}

		delta := tracker.E - lastE

		switch {
		case line.Has('E') && delta > Epsilon:
			ex.close()
			if tracker.RelativeExtrusion && ex.pending > 0 {
				e, _ := line.Value('E')
				lb.Replace(index, withE(&line, e+ex.pending))
				tracker.E += ex.pending
				ex.pending = 0
			}
		case line.Has('E') && delta < -Epsilon:
			ex.open()
		case !ex.retracted:
		case line.Is('G', 0) || line.Is('G', 1):
			ex.travel(lb, index, &line)
		default:
			// Arcs are not rewritten, but the group follows them
			ex.origin = tracker.Position
		}
	}

	out = lb.Build()

	return
}

// Filter extends every retraction over the travel moves that follow it
func (script *RetractScript) Filter(input *gcodepp.Document) (output *gcodepp.Document, err error) {
	if input == nil || len(input.Layers) == 0 {
		err = gcodepp.ErrEmptyDocument
		return
	}

	output = input.Clone()

	ex := &extender{
		RetractScript: script,
		tracker:       gcodepp.NewTracker(),
	}

	for n, layer := range output.Layers {
		output.Layers[n] = ex.layer(layer)
	}
	ex.close()

	script.env.Log.Debug().
		Int("groups", ex.groups).
		Int("moves", ex.moves).
		Msg("retraction extended")

	return
}

// Distance is the 3D length of a move
func Distance(from, to mgl64.Vec3) float64 {
	return to.Sub(from).Len()
}
