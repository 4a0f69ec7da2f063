package brush

import (
	"testing"

	"github.com/Faultbox/terrasketch/pkg/math"
)

func near(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

func TestSide(t *testing.T) {
	s := Shape{Direction: math.Vec2{Y: 1}}

	tests := []struct {
		name   string
		dx, dy float32
		want   float32
	}{
		{"left", -1, 0, 0},
		{"right", 1, 0, 1},
		{"ahead", 0, 1, 0.5},
		{"behind", 0, -1, 0.5},
		{"front left diagonal", -1, 1, 0.25},
		{"back right diagonal", 1, -1, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Side(tt.dx, tt.dy); !near(got, tt.want) {
				t.Errorf("Side(%v, %v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestSideZeroDirectionFallsBack(t *testing.T) {
	s := Shape{}
	if got := s.Side(-1, 0); !near(got, 0) {
		t.Errorf("Side with zero direction = %v, want 0", got)
	}
}

func TestWeight(t *testing.T) {
	s := Shape{
		Direction:  math.Vec2{Y: 1},
		HalfWidth:  4,
		Left:       1,
		Right:      2,
		LeftCurve:  1,
		RightCurve: 1,
		Bound:      1,
	}

	tests := []struct {
		name   string
		dx, dy float32
		want   float32
	}{
		{"centre", 0, 0, 1},
		{"left half", -2, 0, 0.5},
		{"right quarter", 2, 0, 0.75},
		{"left edge", -4, 0, 0},
		{"beyond left", -9, 0, 0},
		{"right edge", 8, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Weight(tt.dx, tt.dy); !near(got, tt.want) {
				t.Errorf("Weight(%v, %v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestWeightCurve(t *testing.T) {
	s := Shape{
		Direction:  math.Vec2{Y: 1},
		HalfWidth:  4,
		Left:       1,
		Right:      1,
		LeftCurve:  2,
		RightCurve: 0.5,
	}
	if got := s.Weight(-2, 0); !near(got, 0.25) {
		t.Errorf("left weight = %v, want 0.25", got)
	}
	if got := s.Weight(2, 0); !near(got, 0.7071) {
		t.Errorf("right weight = %v, want 0.7071", got)
	}
	// Straight ahead the curves blend to linear
	if got := s.Weight(0, 2); !near(got, 0.5) {
		t.Errorf("front weight = %v, want 0.5", got)
	}
}

func TestWeightZeroRadius(t *testing.T) {
	s := Shape{Direction: math.Vec2{Y: 1}, HalfWidth: 0, Left: 1, Right: 1}
	if got := s.Weight(0, 0); got != 1 {
		t.Errorf("centre weight = %v, want 1", got)
	}
	if got := s.Weight(1, 0); got != 0 {
		t.Errorf("off-centre weight = %v, want 0", got)
	}
}

func TestAnchorsFactor(t *testing.T) {
	an := Anchors{
		Start:      math.Vec3{X: 3, Y: 4},
		End:        math.Vec3{X: -30, Y: 4},
		LeftSlope:  math.Vec3{Z: 30, Y: 4},
		RightSlope: math.Vec3{Z: -30, Y: 4},
	}

	f, ok := an.factor(math.Vec3{}, 1)
	if !ok || !near(f, 0.75) {
		t.Errorf("factor = (%v, %v), want (0.75, true)", f, ok)
	}

	if _, ok := an.factor(math.Vec3{}, 0.5); ok {
		t.Error("factor larger than brush size must not bound it")
	}

	level := Anchors{Start: math.Vec3{X: 1}, End: math.Vec3{X: -1}, LeftSlope: math.Vec3{Z: 1}, RightSlope: math.Vec3{Z: -1}}
	if _, ok := level.factor(math.Vec3{}, 1); ok {
		t.Error("anchors level with the target must be skipped")
	}
}
