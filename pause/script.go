//
// Copyright (c) 2026 BCN3D Technologies
//

package pause

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

const (
	AtHeight = "height"
	AtLayer  = "layer"
)

type PauseScript struct {
	*pflag.FlagSet
	env *gcodepp.Env

	At                 string  // 'height' or 'layer'
	Height             float64 // mm above the object base
	Layer              int     // Layer number, rafts excluded
	InitialLayerHeight float64 // mm
	Before             string  // Custom G-code before the pause
	After              string  // Custom G-code after resuming
	MethodName         string  // Empty selects by flavor
	Display            string  // M117 message
}

func NewPauseScript(env *gcodepp.Env) (script *PauseScript) {
	script = &PauseScript{
		FlagSet: pflag.NewFlagSet(ScriptName, pflag.ContinueOnError),
		env:     env,
	}

	script.StringVarP(&script.At, "at", "a", AtHeight, "Pause at 'height' or 'layer'")
	script.Float64VarP(&script.Height, "height", "h", 5.0, "Pause height in mm, from the base of the object")
	script.IntVarP(&script.Layer, "layer", "l", 1, "Pause layer, rafts excluded")
	script.Float64Var(&script.InitialLayerHeight, "initial-layer-height", 0.2, "Height of the first layer in mm")
	script.StringVarP(&script.Before, "before", "b", "", "G-code before the pause, commands separated by ','")
	script.StringVarP(&script.After, "after", "A", "", "G-code after resuming, commands separated by ','")
	script.StringVarP(&script.MethodName, "method", "m", "", "Pause method [see 'Known pause methods' in help], defaults by flavor")
	script.StringVarP(&script.Display, "display", "d", "", "Message to display while paused")

	script.SetInterspersed(false)

	return
}

// Parse the options
func (script *PauseScript) Parse(args []string) (err error) {
	err = script.FlagSet.Parse(args)
	if err != nil {
		return
	}

	if script.At != AtHeight && script.At != AtLayer {
		err = fmt.Errorf("invalid --at=%v", script.At)
		return
	}

	if len(script.MethodName) > 0 {
		_, ok := MethodMap[script.MethodName]
		if !ok {
			err = fmt.Errorf("unknown pause method \"%v\"", script.MethodName)
			return
		}
	}

	return
}

// SplitCommands splits custom G-code on commas and newlines
func SplitCommands(text string) (commands []string) {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' })

	for _, field := range fields {
		field = strings.TrimSpace(field)
		if len(field) > 0 {
			commands = append(commands, field)
		}
	}

	return
}

// lookback finds the last extruder position and the last X/Y of a layer
func lookback(layer gcodepp.Layer) (e float64, haveE bool, x, y float64, haveXY bool) {
	for n := len(layer.Lines) - 1; n >= 0 && !(haveE && haveXY); n-- {
		line := gcodepp.ParseLine(layer.Lines[n])

		if !haveE {
			value, ok := line.Value('E')
			if ok && value >= 0 {
				e = value
				haveE = true
			}
		}

		if !haveXY && line.IsMotion() && line.Has('X') && line.Has('Y') {
			x, _ = line.Value('X')
			y, _ = line.Value('Y')
			haveXY = true
		}
	}

	return
}

func (script *PauseScript) method(doc *gcodepp.Document) (method Method) {
	name := script.MethodName
	if len(name) == 0 {
		name = MethodForFlavor(doc.Properties().Flavor)
	}

	method, ok := MethodMap[name]
	if !ok {
		method = MethodMap[defaultMethod]
	}

	return
}

// block renders the pause sequence for the layer at index
func (script *PauseScript) block(doc *gcodepp.Document, index int, state *gcodepp.MachineState, height float64) (lines []string) {
	lines = append(lines,
		";TYPE:CUSTOM",
		";added code by post processing",
		";script: PauseAtHeight",
		";current z: "+gcodepp.FormatFloat(state.Z()),
	)

	switch script.At {
	case AtHeight:
		lines = append(lines, ";current height: "+gcodepp.FormatFloat(height))
	case AtLayer:
		lines = append(lines, fmt.Sprintf(";current layer: %d", state.UserLayer()))
	}

	if index > 0 {
		e, haveE, x, y, haveXY := lookback(doc.Layers[index-1])
		if haveE {
			lines = append(lines, ";last extrusion: E"+gcodepp.FormatFloat(e))
		}
		if haveXY {
			lines = append(lines, fmt.Sprintf(";last position: X%s Y%s", gcodepp.FormatFloat(x), gcodepp.FormatFloat(y)))
		}
	}

	if before := SplitCommands(script.Before); len(before) > 0 {
		lines = append(lines, ";custom gcode before pause")
		lines = append(lines, before...)
	}

	if len(script.Display) > 0 {
		lines = append(lines, "M117 "+script.Display)
	}

	lines = append(lines, ";pause", script.method(doc).Command)

	if after := SplitCommands(script.After); len(after) > 0 {
		lines = append(lines, ";custom gcode after resume")
		lines = append(lines, after...)
	}

	return
}

// Filter prepends a pause to the first layer reaching the target.
// At most one pause is inserted.
func (script *PauseScript) Filter(input *gcodepp.Document) (output *gcodepp.Document, err error) {
	if input == nil || len(input.Layers) == 0 {
		err = gcodepp.ErrEmptyDocument
		return
	}

	output = input.Clone()

	log := script.env.Log
	tracker := gcodepp.NewTracker()

	haveBase := false
	base := 0.0

	// Only the first Z move of a layer gives its print height
	judged := false

	for n, layer := range output.Layers {
		for _, raw := range layer.Lines {
			line, event := tracker.ObserveRaw(raw)
			if !tracker.Tracking() {
				continue
			}

			fire := false
			height := 0.0

			switch script.At {
			case AtHeight:
				if event == gcodepp.EventLayer || event == gcodepp.EventArmed {
					judged = false
					continue
				}
				if event != gcodepp.EventMotion || judged || !(line.Is('G', 0) || line.Is('G', 1)) || !line.Has('Z') {
					continue
				}
				judged = true
				if !haveBase {
					// Heights are measured from the base of the object
					base = tracker.Z() - script.InitialLayerHeight
					haveBase = true
				}
				height = tracker.Z() - base
				fire = height >= script.Height
			case AtLayer:
				if event != gcodepp.EventLayer && event != gcodepp.EventArmed {
					continue
				}
				fire = tracker.UserLayer() >= script.Layer
			}

			if !fire {
				continue
			}

			lb := gcodepp.NewLayerBuilder(layer)
			lb.Prepend(script.block(output, n, &tracker.MachineState, height)...)
			output.Layers[n] = lb.Build()

			tracker.Done()

			log.Info().
				Int("layer", tracker.UserLayer()).
				Float64("z", tracker.Z()).
				Msg("pause inserted")
			return
		}
	}

	log.Info().Str("at", script.At).Msg("pause target never reached")

	return
}
