//
// Copyright (c) 2026 BCN3D Technologies
//

package pause

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/bcn3d/gcodepp"
)

var (
	testPrologue = ";FLAVOR:Marlin\n;TIME:100\nM82"
	testLayer0   = ";LAYER:0\nG0 X10 Y10 Z0.2\nG1 X20 Y10 E1.5\nG1 E-0.5"
	testLayer1   = ";LAYER:1\nG0 X10 Y10 Z0.4\nG1 X20 Y20 E3"
	testLayer2   = ";LAYER:2\nG0 X10 Y10 Z0.6\nG1 X30 Y20 E4.5"
)

func newTestScript(t *testing.T, args ...string) (script *PauseScript) {
	script = NewPauseScript(gcodepp.NewEnv(zerolog.Nop()))

	err := script.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func countLines(doc *gcodepp.Document, match string) (count int) {
	for _, layer := range doc.Layers {
		for _, line := range layer.Lines {
			if line == match {
				count++
			}
		}
	}

	return
}

func TestPauseAtHeight(t *testing.T) {
	input := gcodepp.NewDocument(testPrologue, testLayer0, testLayer1, testLayer2)

	output, err := newTestScript(t, "--height", "0.3").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{
		";TYPE:CUSTOM",
		";added code by post processing",
		";script: PauseAtHeight",
		";current z: 0.4",
		";current height: 0.4",
		";last extrusion: E1.5",
		";last position: X20 Y10",
		";pause",
		"M0",
		";LAYER:1",
		"G0 X10 Y10 Z0.4",
		"G1 X20 Y20 E3",
	}
	if diff := cmp.Diff(expected, output.Layers[2].Lines); diff != "" {
		t.Errorf("layer 1 mismatch (-want +got):\n%s", diff)
	}

	if count := countLines(output, "M0"); count != 1 {
		t.Errorf("expected a single pause, got %v", count)
	}

	for _, n := range []int{0, 1, 3} {
		if diff := cmp.Diff(input.Layers[n], output.Layers[n]); diff != "" {
			t.Errorf("layer %v changed (-want +got):\n%s", n, diff)
		}
	}
}

func TestPauseAtHeightIgnoresZHop(t *testing.T) {
	input := gcodepp.NewDocument(
		testPrologue,
		";LAYER:0\nG0 X10 Y10 Z0.2\nG1 X20 Y10 E1",
		";LAYER:1\nG0 X10 Y10 Z0.4\nG1 X20 Y10 E2\nG1 E1\nG1 Z1.4\nG0 X30 Y30\nG1 Z0.4\nG1 E2",
		";LAYER:2\nG0 X10 Y10 Z0.6\nG1 X20 Y10 E3",
		";LAYER:3\nG0 X10 Y10 Z0.8\nG1 X20 Y10 E4",
	)

	output, err := newTestScript(t, "--height", "0.7").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	for n := range input.Layers {
		first := output.Layers[n].Lines[0]
		if n == 4 {
			if first != ";TYPE:CUSTOM" {
				t.Errorf("expected pause before ;LAYER:3, got %v", output.Layers[n].Lines)
			}
			continue
		}
		if diff := cmp.Diff(input.Layers[n], output.Layers[n]); diff != "" {
			t.Errorf("layer %v changed (-want +got):\n%s", n, diff)
		}
	}

	if count := countLines(output, ";current z: 0.8"); count != 1 {
		t.Errorf("expected the pause at z 0.8, got %v", count)
	}
}

func TestPauseIgnoresRaft(t *testing.T) {
	raft := ";LAYER:-1\nG0 X10 Y10 Z5\nG1 X20 Y10 E1"
	layer0 := ";LAYER:0\nG0 X10 Y10 Z5.2\nG1 X20 Y10 E2"
	layer1 := ";LAYER:1\nG0 X10 Y10 Z5.4\nG1 X20 Y10 E3"
	input := gcodepp.NewDocument(testPrologue, raft, layer0, layer1)

	output, err := newTestScript(t, "--height", "0.3").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	if output.Layers[3].Lines[0] != ";TYPE:CUSTOM" {
		t.Errorf("expected pause on layer 1, got %v", output.Layers[3].Lines)
	}
	if output.Layers[1].Lines[0] != ";LAYER:-1" || output.Layers[2].Lines[0] != ";LAYER:0" {
		t.Errorf("pause inserted in the wrong layer")
	}
}

func TestPauseAtLayer(t *testing.T) {
	input := gcodepp.NewDocument(
		testPrologue,
		";LAYER:-2\nG0 Z0.3\nG1 X1 Y1 E1",
		";LAYER:-1\nG0 Z0.6\nG1 X2 Y2 E2",
		";LAYER:0\nG0 Z0.9\nG1 X3 Y3 E3",
		";LAYER:1\nG0 Z1.1\nG1 X4 Y4 E4",
		";LAYER:2\nG0 Z1.3\nG1 X5 Y5 E5",
	)

	output, err := newTestScript(t, "--at", "layer", "--layer", "1").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	lines := output.Layers[4].Lines
	if lines[0] != ";TYPE:CUSTOM" {
		t.Fatalf("expected pause before ;LAYER:1, got %v", lines)
	}

	found := false
	for _, line := range lines {
		if line == ";current layer: 1" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing layer annotation in %v", lines)
	}

	if lines[len(lines)-3] != ";LAYER:1" {
		t.Errorf("expected the layer marker after the pause block, got %v", lines)
	}

	if count := countLines(output, "M0"); count != 1 {
		t.Errorf("expected a single pause, got %v", count)
	}
}

func TestPauseCustomCode(t *testing.T) {
	input := gcodepp.NewDocument(testPrologue, testLayer0, testLayer1)

	output, err := newTestScript(t,
		"--at", "layer",
		"--layer", "1",
		"--method", "reprap",
		"--before", "G91, G1 Z5,G90",
		"--after", "G91\nG1 Z-5\n\nG90",
		"--display", "Change filament",
	).Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{
		";custom gcode before pause",
		"G91",
		"G1 Z5",
		"G90",
		"M117 Change filament",
		";pause",
		"M226",
		";custom gcode after resume",
		"G91",
		"G1 Z-5",
		"G90",
		";LAYER:1",
	}

	lines := output.Layers[2].Lines
	start := -1
	for n, line := range lines {
		if line == ";custom gcode before pause" {
			start = n
			break
		}
	}
	if start < 0 || start+len(expected) > len(lines) {
		t.Fatalf("custom code missing from %v", lines)
	}

	if diff := cmp.Diff(expected, lines[start:start+len(expected)]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPauseMethodFromFlavor(t *testing.T) {
	prologue := strings.Replace(testPrologue, ";FLAVOR:Marlin", ";FLAVOR:RepRap (RepRap)", 1)
	input := gcodepp.NewDocument(prologue, testLayer0, testLayer1)

	output, err := newTestScript(t, "--at", "layer", "--layer", "1").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	if countLines(output, "M226") != 1 || countLines(output, "M0") != 0 {
		t.Errorf("expected the RepRap pause command")
	}
}

func TestPauseNotReached(t *testing.T) {
	input := gcodepp.NewDocument(testPrologue, testLayer0, testLayer1)

	output, err := newTestScript(t, "--height", "50").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(input.Layers, output.Layers); diff != "" {
		t.Errorf("document changed (-want +got):\n%s", diff)
	}
}

func TestPauseFirstLayerNoLookback(t *testing.T) {
	input := gcodepp.NewDocument(testLayer0, testLayer1)

	output, err := newTestScript(t, "--at", "layer", "--layer", "0").Filter(input)
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range output.Layers[0].Lines {
		if strings.HasPrefix(line, ";last ") {
			t.Errorf("unexpected lookback %q", line)
		}
	}

	if output.Layers[0].Lines[0] != ";TYPE:CUSTOM" {
		t.Errorf("expected pause at the first layer, got %v", output.Layers[0].Lines)
	}
}

func TestSplitCommands(t *testing.T) {
	table := map[string][]string{
		"":                  nil,
		"M104 S0":           {"M104 S0"},
		" G91 ,G1 Z1,,":     {"G91", "G1 Z1"},
		"G91\nG1 Z1\r\nG90": {"G91", "G1 Z1", "G90"},
	}

	for text, expected := range table {
		if diff := cmp.Diff(expected, SplitCommands(text)); diff != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", text, diff)
		}
	}
}

func TestMethodForFlavor(t *testing.T) {
	table := map[string]string{
		"Marlin":                   "marlin",
		"RepRap (Marlin/Sprinter)": "marlin",
		"RepRap (RepRap)":          "reprap",
		"Griffin":                  "griffin",
		"Repetier":                 "repetier",
		"":                         "marlin",
	}

	for flavor, expected := range table {
		if got := MethodForFlavor(flavor); got != expected {
			t.Errorf("%q: expected %v, got %v", flavor, expected, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--at", "time"},
		{"--method", "bell"},
	} {
		script := NewPauseScript(gcodepp.NewEnv(zerolog.Nop()))
		if script.Parse(args) == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	_, err := newTestScript(t).Filter(&gcodepp.Document{})
	if err != gcodepp.ErrEmptyDocument {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}
