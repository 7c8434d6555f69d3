//
// Copyright (c) 2026 BCN3D Technologies
//

package retract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/bcn3d/gcodepp"
)

func newTestScript(t *testing.T, args ...string) (script *RetractScript) {
	script = NewRetractScript(gcodepp.NewEnv(zerolog.Nop()))

	err := script.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func filter(t *testing.T, script *RetractScript, doc *gcodepp.Document) (output *gcodepp.Document) {
	output, err := script.Filter(doc)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestRetract(t *testing.T) {
	table := []struct {
		name     string
		prologue string
		layers   [][]string
		expected [][]string
	}{
		{
			name:     "single",
			prologue: ";FLAVOR:Marlin\nM82",
			layers: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 F2400 E4",
				"G0 F9000 X15 Y0",
				"G1 F2400 E5", "G1 X20 Y0 E6",
			}},
			expected: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 F2400 E4",
				"G1 F9000 X15 Y0 Z0.2 E3.5",
				"G1 F2400 E5", "G1 X20 Y0 E6",
			}},
		},
		{
			name:     "chained",
			prologue: ";FLAVOR:Marlin\nM82",
			layers: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 E4",
				"G0 X15 Y0",
				";travel",
				"G0 X15 Y20",
				"G1 E5",
			}},
			expected: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 E4",
				"G1 X15 Y0 Z0.2 E3.5",
				";travel",
				"G1 X15 Y20 Z0.2 E2.5",
				"G1 E5",
			}},
		},
		{
			name:     "z hop",
			prologue: ";FLAVOR:Marlin\nM82",
			layers: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 F2400 E4",
				"G1 F300 Z0.5",
				"G0 F9000 X15 Y0",
				"G1 Z0.2",
				"G1 F2400 E5",
			}},
			expected: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 F2400 E4",
				"G1 F300 X5 Y0 Z0.5 E3.985",
				"G1 F9000 X15 Y0 Z0.5 E3.485",
				"G1 X15 Y0 Z0.2 E3.47",
				"G1 F2400 E5",
			}},
		},
		{
			name:     "layer change",
			prologue: ";FLAVOR:Marlin\nM82",
			layers: [][]string{
				{";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 F2400 E4", ";TIME_ELAPSED:10"},
				{";LAYER:1", "G0 F9000 X15 Y0 Z0.2", "G1 F2400 E5"},
			},
			expected: [][]string{
				{";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 F2400 E4", ";TIME_ELAPSED:10"},
				{";LAYER:1", "G1 F9000 X15 Y0 Z0.2 E3.5", "G1 F2400 E5"},
			},
		},
		{
			name:     "relative extrusion",
			prologue: ";FLAVOR:Marlin\nM83",
			layers: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E1", "G1 E-1",
				"G0 X15 Y0",
				"G1 E1 ;unretract",
				"G1 X20 Y0 E0.3",
			}},
			expected: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E1", "G1 E-1",
				"G1 X15 Y0 Z0.2 E-0.5",
				"G1 E1.5 ;unretract",
				"G1 X20 Y0 E0.3",
			}},
		},
		{
			name:     "relative extrusion layer change",
			prologue: ";FLAVOR:Marlin\nM83",
			layers: [][]string{
				{";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E1", "G1 E-1"},
				{";LAYER:1", "G0 X15 Y0 Z0.4", "G1 E1"},
			},
			expected: [][]string{
				{";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E1", "G1 E-1"},
				{";LAYER:1", "G1 X15 Y0 Z0.4 E-0.5001", "G1 E1.5001"},
			},
		},
		{
			name:     "relative positioning",
			prologue: ";FLAVOR:Marlin\nM82",
			layers: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 E4",
				"G91", "G0 X10", "G90",
				"G1 E5",
			}},
			expected: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 E4",
				"G91", "G1 X10 E3.5", "G90",
				"G1 E5",
			}},
		},
		{
			name:     "no travel",
			prologue: ";FLAVOR:Marlin\nM82",
			layers: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 E4", "G0 F9000", "G1 E5",
			}},
			expected: [][]string{{
				";LAYER:0", "G0 X0 Y0 Z0.2", "G1 X5 Y0 E5", "G1 E4", "G0 F9000", "G1 E5",
			}},
		},
	}

	for _, item := range table {
		t.Run(item.name, func(t *testing.T) {
			doc := &gcodepp.Document{
				Layers: []gcodepp.Layer{gcodepp.NewLayer(item.prologue)},
			}
			for _, lines := range item.layers {
				doc.Layers = append(doc.Layers, gcodepp.Layer{Lines: lines})
			}

			output := filter(t, newTestScript(t), doc)
			for n, expected := range item.expected {
				if diff := cmp.Diff(expected, output.Layers[n+1].Lines); diff != "" {
					t.Errorf("layer %v mismatch (-want +got):\n%s", n, diff)
				}
			}

			// A second pass must not compound the extra retraction
			again := filter(t, newTestScript(t), output)
			if diff := cmp.Diff(output.Layers, again.Layers); diff != "" {
				t.Errorf("second pass changed the document (-want +got):\n%s", diff)
			}

			for n, lines := range item.layers {
				if diff := cmp.Diff(lines, doc.Layers[n+1].Lines); diff != "" {
					t.Errorf("input layer %v modified (-want +got):\n%s", n, diff)
				}
			}
		})
	}
}

func TestRetractBeforeFirstLayer(t *testing.T) {
	doc := gcodepp.NewDocument(
		"M82\nG0 X0 Y0 Z5\nG1 X5 Y0 E5\nG1 E4\nG0 X15 Y0\nG1 E5",
		";LAYER:0\nG0 X0 Y0 Z0.2\nG1 X5 Y0 E6",
	)

	output := filter(t, newTestScript(t), doc)
	if diff := cmp.Diff(doc.Layers, output.Layers); diff != "" {
		t.Errorf("document changed (-want +got):\n%s", diff)
	}
}

func TestRetractRatio(t *testing.T) {
	doc := gcodepp.NewDocument(
		"M82",
		";LAYER:0\nG0 X0 Y0 Z0.2\nG1 X0 Y0 E5\nG1 E4\nG0 X30 Y40 Z0.2\nG1 E5",
	)

	output := filter(t, newTestScript(t, "--ratio", "0.1"), doc)
	if got := output.Layers[1].Lines[4]; got != "G1 X30 Y40 Z0.2 E-1" {
		t.Errorf("expected 5mm of extra retraction, got %q", got)
	}

	output = filter(t, newTestScript(t, "--ratio", "0"), doc)
	if diff := cmp.Diff(doc.Layers, output.Layers); diff != "" {
		t.Errorf("zero ratio changed the document (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	script := NewRetractScript(gcodepp.NewEnv(zerolog.Nop()))
	if script.Parse([]string{"--ratio", "-1"}) == nil {
		t.Errorf("expected an error for a negative ratio")
	}
}

func TestEmptyDocument(t *testing.T) {
	_, err := newTestScript(t).Filter(nil)
	if err != gcodepp.ErrEmptyDocument {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}
