//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	// Marker names emitted by the slicing engine
	MarkerLayer       = "LAYER"
	MarkerElapsed     = "TIME_ELAPSED"
	MarkerTotalTime   = "TIME"
	MarkerPrintTime   = "PRINT.TIME"
	MarkerLayerCount  = "LAYER_COUNT"
	MarkerFlavor      = "FLAVOR"
	MarkerType        = "TYPE"
	maxLineBufferSize = 1024 * 1024
)

// ErrEmptyDocument is returned when a script is handed a document
// without any layers
var ErrEmptyDocument = errors.New("document has no layers")

// Layer is the instructions for a single slice of the print.
// The first layer of a document is the prologue before the
// first layer marker.
type Layer struct {
	Lines []string
}

// Document is an entire print job
type Document struct {
	Layers   []Layer
	Metadata map[string](interface{}) `json:",omitempty"`
}

// NewDocument creates a document from layer texts
func NewDocument(layers ...string) (doc *Document) {
	doc = &Document{}

	for _, text := range layers {
		doc.Layers = append(doc.Layers, NewLayer(text))
	}

	return
}

// NewLayer creates a layer from newline separated text
func NewLayer(text string) (layer Layer) {
	text = strings.TrimSuffix(text, "\n")
	if len(text) == 0 {
		return
	}

	layer.Lines = strings.Split(text, "\n")

	return
}

// String joins the layer lines
func (layer Layer) String() string {
	return strings.Join(layer.Lines, "\n")
}

// Clone deep-copies the layer
func (layer Layer) Clone() (clone Layer) {
	if layer.Lines != nil {
		clone.Lines = append([]string{}, layer.Lines...)
	}

	return
}

// Clone deep-copies the document layers. Metadata values are shared.
func (doc *Document) Clone() (clone *Document) {
	clone = &Document{
		Layers: make([]Layer, len(doc.Layers)),
	}

	for n, layer := range doc.Layers {
		clone.Layers[n] = layer.Clone()
	}

	if doc.Metadata != nil {
		clone.Metadata = make(map[string](interface{}), len(doc.Metadata))
		for key, value := range doc.Metadata {
			clone.Metadata[key] = value
		}
	}

	return
}

// Lines counts all lines in the document
func (doc *Document) Lines() (count int) {
	for _, layer := range doc.Layers {
		count += len(layer.Lines)
	}

	return
}

// Get metadata
func (doc *Document) GetMetadata(key string) (data interface{}, ok bool) {
	data, ok = doc.Metadata[key]
	return
}

// Set metadata
func (doc *Document) SetMetadata(key string, data interface{}) {
	if doc.Metadata == nil {
		doc.Metadata = make(map[string](interface{}))
	}

	doc.Metadata[key] = data
}

// IsLayerMarker checks for a layer boundary line
func IsLayerMarker(raw string) bool {
	return strings.HasPrefix(raw, ";"+MarkerLayer+":")
}

// ReadDocument splits G-code text into layers at each layer marker
func ReadDocument(reader io.Reader) (doc *Document, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBufferSize)

	layers := []Layer{{}}
	for scanner.Scan() {
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if IsLayerMarker(text) {
			layers = append(layers, Layer{})
		}
		last := &layers[len(layers)-1]
		last.Lines = append(last.Lines, text)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Drop the prologue if the text starts with a layer marker
	if len(layers) > 1 && len(layers[0].Lines) == 0 {
		layers = layers[1:]
	}

	doc = &Document{
		Layers: layers,
	}

	return
}

// WriteDocument writes all layers, one line per instruction
func WriteDocument(writer io.Writer, doc *Document) (err error) {
	buffered := bufio.NewWriter(writer)

	for _, layer := range doc.Layers {
		for _, line := range layer.Lines {
			_, err = buffered.WriteString(line)
			if err != nil {
				return
			}
			err = buffered.WriteByte('\n')
			if err != nil {
				return
			}
		}
	}

	err = buffered.Flush()

	return
}
