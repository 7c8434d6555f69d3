//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Phase of a tracked pass
type Phase int

const (
	PhaseBeforeFirstLayer = Phase(iota) // Header, start code and raft
	PhaseTracking                       // Real layers
	PhaseDone                           // Transform finished; terminal
)

func (phase Phase) String() string {
	switch phase {
	case PhaseBeforeFirstLayer:
		return "before-first-layer"
	case PhaseTracking:
		return "tracking"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event describes what a line changed in the tracked state
type Event int

const (
	EventNone      = Event(iota)
	EventLayer     // Layer marker seen (including the arming one)
	EventArmed     // First real layer marker seen
	EventElapsed   // Elapsed time marker
	EventTotalTime // Total time marker, first occurrence
	EventMotion    // Position or extrusion updated
)

// MachineState is the running state derived from the lines seen so far
type MachineState struct {
	Phase Phase

	Position mgl64.Vec3 // Last known X, Y, Z
	HaveZ    bool       // Z has been set since tracking started
	E        float64    // Last known extruder position

	RelativePositioning bool // G91
	RelativeExtrusion   bool // M83

	Elapsed      float64 // Seconds, from the last elapsed marker
	TotalTime    float64 // Seconds, from the first total time marker
	HasTotalTime bool

	LayerIndex  int // Ordinal of the last layer marker, -1 before any
	LayerNumber int // Number printed in the last layer marker
	RaftLayers  int // Negative layers seen before the first real layer
}

// X position
func (ms *MachineState) X() float64 { return ms.Position.X() }

// Y position
func (ms *MachineState) Y() float64 { return ms.Position.Y() }

// Z position
func (ms *MachineState) Z() float64 { return ms.Position.Z() }

// UserLayer is the layer index as shown to a user, with rafts removed
func (ms *MachineState) UserLayer() int {
	return ms.LayerIndex - ms.RaftLayers
}

// Tracker updates a MachineState line by line
type Tracker struct {
	MachineState
}

// NewTracker creates a tracker in the before-first-layer phase
func NewTracker() (tracker *Tracker) {
	tracker = &Tracker{}
	tracker.LayerIndex = -1

	return
}

// Done moves the tracker into the terminal phase
func (tracker *Tracker) Done() {
	tracker.Phase = PhaseDone
}

// Tracking is true while real layers are being scanned
func (tracker *Tracker) Tracking() bool {
	return tracker.Phase == PhaseTracking
}

func (tracker *Tracker) observeMarker(line *Line) (event Event) {
	switch line.Marker {
	case MarkerLayer:
		number, ok := line.MarkerInt()
		if !ok {
			return
		}
		tracker.LayerIndex++
		tracker.LayerNumber = number
		event = EventLayer
		if tracker.Phase == PhaseBeforeFirstLayer {
			if number < 0 {
				tracker.RaftLayers++
			} else {
				tracker.Phase = PhaseTracking
				event = EventArmed
			}
		}
	case MarkerElapsed:
		elapsed, ok := line.MarkerFloat()
		if !ok {
			return
		}
		tracker.Elapsed = elapsed
		event = EventElapsed
	case MarkerTotalTime, MarkerPrintTime:
		if tracker.HasTotalTime {
			return
		}
		total, ok := line.MarkerFloat()
		if !ok {
			return
		}
		tracker.TotalTime = total
		tracker.HasTotalTime = true
		event = EventTotalTime
	}

	return
}

// Observe consumes the next line, returning what changed
func (tracker *Tracker) Observe(line *Line) (event Event) {
	if tracker.Phase == PhaseDone {
		return
	}

	if line.IsComment() {
		return tracker.observeMarker(line)
	}

	switch {
	case line.Is('G', 90):
		tracker.RelativePositioning = false
		return
	case line.Is('G', 91):
		tracker.RelativePositioning = true
		return
	case line.Is('M', 82):
		tracker.RelativeExtrusion = false
		return
	case line.Is('M', 83):
		tracker.RelativeExtrusion = true
		return
	}

	if tracker.Phase != PhaseTracking {
		return
	}

	switch {
	case line.IsMotion():
		pos := &tracker.Position
		for axis, letter := range []byte{'X', 'Y', 'Z'} {
			value, ok := line.Value(letter)
			if !ok {
				continue
			}
			if tracker.RelativePositioning {
				pos[axis] += value
			} else {
				pos[axis] = value
			}
			if letter == 'Z' {
				tracker.HaveZ = true
			}
		}
		if e, ok := line.Value('E'); ok {
			if tracker.RelativeExtrusion {
				tracker.E += e
			} else {
				tracker.E = e
			}
		}
		event = EventMotion
	case line.Is('G', 92):
		pos := &tracker.Position
		for axis, letter := range []byte{'X', 'Y', 'Z'} {
			value, ok := line.Value(letter)
			if ok {
				pos[axis] = value
			}
		}
		if e, ok := line.Value('E'); ok {
			tracker.E = e
		}
		event = EventMotion
	}

	return
}

// ObserveRaw tokenizes and consumes a raw line
func (tracker *Tracker) ObserveRaw(raw string) (line Line, event Event) {
	line = ParseLine(raw)
	event = tracker.Observe(&line)
	return
}
