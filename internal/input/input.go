// Package input turns per-frame hand samples into press, drag and release events.
package input

import (
	"fmt"

	"github.com/Faultbox/terrasketch/pkg/math"
)

// Hands tracked per frame.
const (
	Primary   = 0
	Secondary = 1
	NumHands  = 2
)

// EventType identifies a hand transition.
type EventType int

const (
	EventNone EventType = iota
	EventPress
	EventDrag
	EventRelease
)

func (t EventType) String() string {
	switch t {
	case EventPress:
		return "press"
	case EventDrag:
		return "drag"
	case EventRelease:
		return "release"
	default:
		return "none"
	}
}

// HandSample is one hand's tracked state for a frame.
type HandSample struct {
	Position math.Vec3 `yaml:"position"`
	Active   bool      `yaml:"active"` // Pinching or trigger held
}

// Frame is the input collaborator's sample for one frame.
type Frame struct {
	Hands [NumHands]HandSample `yaml:"hands"`
}

// Event represents a processed hand transition.
type Event struct {
	Type     EventType
	Hand     int
	Position math.Vec3
}

func (e Event) String() string {
	return fmt.Sprintf("%s hand=%d pos=(%.2f, %.2f, %.2f)", e.Type, e.Hand, e.Position.X, e.Position.Y, e.Position.Z)
}

// Input tracks hand state across frames.
type Input struct {
	active [NumHands]bool
	last   [NumHands]math.Vec3
	events []Event
}

// New creates a new input tracker.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 4),
	}
}

// Update consumes one frame and converts it to events. A hand that becomes
// active yields a press, stays active a drag, and goes inactive a release at
// its last active position. Returns true if any event was produced.
func (i *Input) Update(f Frame) bool {
	i.events = i.events[:0] // Clear previous events

	for h, s := range f.Hands {
		switch {
		case s.Active && !i.active[h]:
			i.events = append(i.events, Event{Type: EventPress, Hand: h, Position: s.Position})
		case s.Active && i.active[h]:
			i.events = append(i.events, Event{Type: EventDrag, Hand: h, Position: s.Position})
		case !s.Active && i.active[h]:
			i.events = append(i.events, Event{Type: EventRelease, Hand: h, Position: i.last[h]})
		}
		i.active[h] = s.Active
		if s.Active {
			i.last[h] = s.Position
		}
	}

	return len(i.events) > 0
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsActive reports whether a hand is currently active.
func (i *Input) IsActive(hand int) bool {
	return hand >= 0 && hand < NumHands && i.active[hand]
}

// AnyActive reports whether either hand is active.
func (i *Input) AnyActive() bool {
	for _, a := range i.active {
		if a {
			return true
		}
	}
	return false
}

// Position returns a hand's last active position.
func (i *Input) Position(hand int) math.Vec3 {
	return i.last[hand]
}
