//
// Copyright (c) 2026 BCN3D Technologies
//

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommandExpand(t *testing.T) {
	table := map[string]struct {
		In    string
		Out   []string
		Error bool
	}{
		"hello":  {`hello world`, []string{"hello", "world"}, false},
		"setenv": {`hello ${MONKEY}`, []string{"hello", "monkey"}, false},
		"oct":    {`\101`, []string{"A"}, false},
		"escape": {`hello\ you\e[7m\z\e[m\r\n\101`, []string{"hello you\033[7mz\033[m\r\nA"}, false},
		"quotes": {`"hello world" 'and you "too"'`, []string{"hello world", "and you \"too\""}, false},
		"quoted": {`"hello 'nice' world" "you \'too"`, []string{"hello 'nice' world", "you 'too"}, false},
		"open":   {`"hello world`, nil, true},
		"multi": {`benchy.gcode
pause --at layer --layer 12 --before "G91,G1 Z5,G90"
retract --ratio 0.05
benchy.ufp
`, []string{"benchy.gcode", "pause", "--at", "layer", "--layer", "12", "--before", "G91,G1 Z5,G90", "retract", "--ratio", "0.05", "benchy.ufp"}, false},
	}

	os.Setenv("MONKEY", "monkey")

	for key, item := range table {
		args, err := CommandExpand(bytes.NewReader([]byte(item.In)))
		if (err != nil) != item.Error {
			t.Errorf("%v: expected error %v, got %v", key, item.Error, err)
			continue
		}

		if err != nil {
			continue
		}

		if diff := cmp.Diff(item.Out, args); diff != "" {
			t.Errorf("%v: mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "steps.args")

	err := os.WriteFile(name, []byte("progress --time-remaining\n--frequency 30\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	args, err := ExpandArgs([]string{"in.gcode", "@" + name, "out.gcode", "@"})
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"in.gcode", "progress", "--time-remaining", "--frequency", "30", "out.gcode", "@"}
	if diff := cmp.Diff(expected, args); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	_, err = ExpandArgs([]string{"@" + filepath.Join(dir, "missing")})
	if err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
