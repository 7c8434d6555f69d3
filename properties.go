//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"strings"
)

const (
	generatedWithPrefix = "Generated with "
	layerHeightPrefix   = "Layer height:"
)

// Properties are the header facts declared by the slicing engine
type Properties struct {
	Flavor       string  // Firmware flavor, ie 'Marlin' or 'Griffin'
	Generator    string  // Slicing engine name and version
	TotalTime    float64 // Seconds
	HasTotalTime bool
	LayerCount   int
	LayerHeight  float64 // mm

	Layers     int // Layer markers present
	RaftLayers int // Negative layer markers present
	Lines      int
}

// Properties scans the document for its header declarations
// and layer markers
func (doc *Document) Properties() (prop Properties) {
	tracker := NewTracker()

	for n, layer := range doc.Layers {
		for _, raw := range layer.Lines {
			line, event := tracker.ObserveRaw(raw)

			switch event {
			case EventLayer, EventArmed:
				prop.Layers++
				continue
			case EventTotalTime:
				prop.TotalTime = tracker.TotalTime
				prop.HasTotalTime = true
				continue
			}

			// Header declarations only live in the prologue
			if n != 0 || !line.IsComment() {
				continue
			}

			switch line.Marker {
			case MarkerFlavor:
				prop.Flavor = line.MarkerValue
			case MarkerLayerCount:
				count, ok := line.MarkerInt()
				if ok {
					prop.LayerCount = count
				}
			}

			switch {
			case strings.HasPrefix(line.Comment, generatedWithPrefix):
				prop.Generator = strings.TrimPrefix(line.Comment, generatedWithPrefix)
			case strings.HasPrefix(line.Comment, layerHeightPrefix):
				height, ok := parseNumber(strings.TrimSpace(strings.TrimPrefix(line.Comment, layerHeightPrefix)))
				if ok {
					prop.LayerHeight = height
				}
			}
		}
	}

	prop.RaftLayers = tracker.RaftLayers
	prop.Lines = doc.Lines()

	return
}
