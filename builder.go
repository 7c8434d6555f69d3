//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

// LayerBuilder collects edits to a layer, addressed by the line
// indices of the original layer, and renders a fresh layer.
// Edits never shift the indices of later edits.
type LayerBuilder struct {
	original []string
	before   map[int][]string
	after    map[int][]string
	replace  map[int]string
	deleted  map[int]bool
	edits    int
}

// NewLayerBuilder starts a set of edits on a layer
func NewLayerBuilder(layer Layer) (lb *LayerBuilder) {
	lb = &LayerBuilder{
		original: layer.Lines,
		before:   map[int][]string{},
		after:    map[int][]string{},
		replace:  map[int]string{},
		deleted:  map[int]bool{},
	}

	return
}

// Len is the number of lines in the original layer
func (lb *LayerBuilder) Len() int {
	return len(lb.original)
}

// Line returns an original line
func (lb *LayerBuilder) Line(index int) string {
	return lb.original[index]
}

// Edits counts the edits recorded so far
func (lb *LayerBuilder) Edits() int {
	return lb.edits
}

func (lb *LayerBuilder) clamp(index int) int {
	if index < 0 {
		return 0
	}
	if index > len(lb.original) {
		return len(lb.original)
	}
	return index
}

// InsertBefore queues lines before the original line at index.
// An index of Len() appends to the end of the layer.
func (lb *LayerBuilder) InsertBefore(index int, lines ...string) {
	index = lb.clamp(index)
	lb.before[index] = append(lb.before[index], lines...)
	lb.edits += len(lines)
}

// InsertAfter queues lines after the original line at index
func (lb *LayerBuilder) InsertAfter(index int, lines ...string) {
	if index >= len(lb.original)-1 {
		lb.InsertBefore(len(lb.original), lines...)
		return
	}

	if index < 0 {
		lb.InsertBefore(0, lines...)
		return
	}

	lb.after[index] = append(lb.after[index], lines...)
	lb.edits += len(lines)
}

// Prepend queues lines at the very start of the layer
func (lb *LayerBuilder) Prepend(lines ...string) {
	index := 0
	// Lines queued at 0 render in call order, so prepend in front of them
	lb.before[index] = append(append([]string{}, lines...), lb.before[index]...)
	lb.edits += len(lines)
}

// Replace substitutes an original line
func (lb *LayerBuilder) Replace(index int, line string) {
	if index < 0 || index >= len(lb.original) {
		return
	}

	lb.replace[index] = line
	delete(lb.deleted, index)
	lb.edits++
}

// Delete drops an original line
func (lb *LayerBuilder) Delete(index int) {
	if index < 0 || index >= len(lb.original) {
		return
	}

	lb.deleted[index] = true
	delete(lb.replace, index)
	lb.edits++
}

// Build renders the edited layer
func (lb *LayerBuilder) Build() (layer Layer) {
	if lb.edits == 0 {
		layer.Lines = append([]string(nil), lb.original...)
		return
	}

	lines := make([]string, 0, len(lb.original)+lb.edits)

	for n, text := range lb.original {
		lines = append(lines, lb.before[n]...)

		if !lb.deleted[n] {
			replacement, ok := lb.replace[n]
			if ok {
				text = replacement
			}
			lines = append(lines, text)
		}

		lines = append(lines, lb.after[n]...)
	}

	lines = append(lines, lb.before[len(lb.original)]...)

	layer.Lines = lines

	return
}
