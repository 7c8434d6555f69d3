//
// Copyright (c) 2026 BCN3D Technologies
//

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

type InfoCommand struct {
	*pflag.FlagSet

	output io.Writer

	HeaderSummary bool
	LayerDetail   bool
	MetadataList  bool
}

func NewInfoCommand(env *gcodepp.Env) (info *InfoCommand) {
	flagSet := pflag.NewFlagSet("info", pflag.ContinueOnError)

	info = &InfoCommand{
		FlagSet: flagSet,
		output:  os.Stdout,
	}

	info.SetInterspersed(false)
	info.BoolVarP(&info.HeaderSummary, "header", "s", true, "Show summary of the slicer header")
	info.BoolVarP(&info.MetadataList, "metadata", "m", false, "List the document metadata")
	info.BoolVarP(&info.LayerDetail, "layer", "l", false, "Show layer detail")

	return
}

func (info *InfoCommand) Filter(input *gcodepp.Document) (output *gcodepp.Document, err error) {
	if input == nil || len(input.Layers) == 0 {
		err = gcodepp.ErrEmptyDocument
		return
	}

	prop := input.Properties()
	out := info.output

	if info.HeaderSummary {
		fmt.Fprintf(out, "Generator: %v\n", prop.Generator)
		fmt.Fprintf(out, "Flavor: %v\n", prop.Flavor)
		if prop.HasTotalTime {
			fmt.Fprintf(out, "Print time: %v\n", time.Duration(prop.TotalTime*float64(time.Second)))
		}
		if prop.LayerHeight > 0 {
			fmt.Fprintf(out, "Layer height: %v mm\n", gcodepp.FormatFloat(prop.LayerHeight))
		}
		fmt.Fprintf(out, "Layers: %v (%v raft), %v declared\n", prop.Layers, prop.RaftLayers, prop.LayerCount)
		fmt.Fprintf(out, "Lines: %v\n", prop.Lines)
	}

	if info.MetadataList {
		keys := []string{}
		for k := range input.Metadata {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(out, "%v: %T\n", k, input.Metadata[k])
		}
	}

	if info.LayerDetail {
		tracker := gcodepp.NewTracker()
		for n, layer := range input.Layers {
			for _, raw := range layer.Lines {
				tracker.ObserveRaw(raw)
			}
			fmt.Fprintf(out, "%d: %d lines, layer %d, @%v mm, %vs elapsed\n",
				n, len(layer.Lines), tracker.LayerNumber,
				gcodepp.FormatFloat(tracker.Z()), gcodepp.FormatFloat(tracker.Elapsed))
		}
	}

	output = input

	return
}
