package input

import (
	"testing"

	"github.com/Faultbox/terrasketch/pkg/math"
)

func frame(p0 math.Vec3, a0 bool, p1 math.Vec3, a1 bool) Frame {
	return Frame{Hands: [NumHands]HandSample{{Position: p0, Active: a0}, {Position: p1, Active: a1}}}
}

func TestUpdateTransitions(t *testing.T) {
	in := New()
	a := math.Vec3{X: 1}
	b := math.Vec3{X: 2}
	c := math.Vec3{X: 3}

	tests := []struct {
		name  string
		frame Frame
		want  []Event
	}{
		{"idle", frame(a, false, a, false), nil},
		{"press primary", frame(a, true, a, false), []Event{{Type: EventPress, Hand: Primary, Position: a}}},
		{"drag primary", frame(b, true, a, false), []Event{{Type: EventDrag, Hand: Primary, Position: b}}},
		{"press secondary while dragging", frame(c, true, a, true), []Event{
			{Type: EventDrag, Hand: Primary, Position: c},
			{Type: EventPress, Hand: Secondary, Position: a},
		}},
		{"release primary at last position", frame(math.Vec3{X: 99}, false, b, true), []Event{
			{Type: EventRelease, Hand: Primary, Position: c},
			{Type: EventDrag, Hand: Secondary, Position: b},
		}},
	}

	for _, tt := range tests {
		got := in.Update(tt.frame)
		if got != (len(tt.want) > 0) {
			t.Errorf("%s: Update = %v", tt.name, got)
		}
		events := in.Events()
		if len(events) != len(tt.want) {
			t.Fatalf("%s: got %d events %v, want %d", tt.name, len(events), events, len(tt.want))
		}
		for i := range events {
			if events[i] != tt.want[i] {
				t.Errorf("%s: event %d = %v, want %v", tt.name, i, events[i], tt.want[i])
			}
		}
	}

	if in.IsActive(Primary) || !in.IsActive(Secondary) {
		t.Error("unexpected hand state after sequence")
	}
	if !in.AnyActive() {
		t.Error("AnyActive = false with secondary held")
	}
	if in.IsActive(5) {
		t.Error("IsActive out of range returned true")
	}
}

func TestEventString(t *testing.T) {
	e := Event{Type: EventPress, Hand: 1, Position: math.Vec3{X: 1, Y: 2, Z: 3}}
	if got, want := e.String(), "press hand=1 pos=(1.00, 2.00, 3.00)"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}
