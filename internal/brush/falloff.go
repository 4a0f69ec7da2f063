package brush

import (
	"github.com/Faultbox/terrasketch/pkg/math"
)

// Shape is the anisotropic falloff of one brush application in grid space.
type Shape struct {
	Direction   math.Vec2 // Horizontal travel direction (grid X, grid Y)
	HalfWidth   float32   // Half the base brush width, cells
	Left, Right float32   // Size multipliers either side of Direction
	LeftCurve   float32
	RightCurve  float32
	Bound       float32 // Stroke-proximity factor; zero or one leaves the radius unchanged
}

// Side maps a cell offset to the side parameter a in [0,1]: 0 on the left of
// the travel direction, 1 on the right, 0.5 straight ahead or behind.
func (s Shape) Side(dx, dy float32) float32 {
	dir := s.Direction
	if dir.Length() == 0 {
		dir = math.Vec2{Y: 1}
	}
	angle := dir.SignedAngle(math.Vec2{X: dx, Y: dy}) / 180

	switch {
	case angle < -0.5:
		return 1 - (-angle - 0.5)
	case angle < 0.5:
		return 1 - (angle + 0.5)
	default:
		return angle - 0.5
	}
}

// Radius returns the brush radius in cells along side a.
func (s Shape) Radius(a float32) float32 {
	r := math.Lerp(s.Left*s.HalfWidth, s.Right*s.HalfWidth, a)
	if s.Bound > 0 {
		r *= s.Bound
	}
	return r
}

// Exponent returns the falloff exponent along side a. Each side's curve
// fades to linear toward front and back.
func (s Shape) Exponent(a float32) float32 {
	if a < 0.5 {
		return math.Lerp(s.LeftCurve, 1, a/0.5)
	}
	return math.Lerp(1, s.RightCurve, (a-0.5)/0.5)
}

// Weight returns the falloff weight in [0,1] for a cell offset (dx, dy) from
// the brush centre.
func (s Shape) Weight(dx, dy float32) float32 {
	dist := math.Vec2{X: dx, Y: dy}.Length()
	if dist == 0 {
		return 1
	}

	a := s.Side(dx, dy)
	r := s.Radius(a)
	if r <= 0 {
		return 0
	}

	w := 1 - math.Clamp(dist/r, 0, 1)
	if w == 0 {
		return 0
	}
	return pow(w, s.Exponent(a))
}

// Anchors bounds a brush near steep stroke sections: the ends of the ridge
// run and the neighbouring points on either side.
type Anchors struct {
	Start, End            math.Vec3
	LeftSlope, RightSlope math.Vec3
}

// factor returns the shrink factor for a brush centred at target: the
// smallest horizontal-over-vertical ratio of the directions from the anchors.
// ok is false when it would not shrink a brush of size maxSize.
func (an Anchors) factor(target math.Vec3, maxSize float32) (float32, bool) {
	f := maxSize
	for _, p := range [4]math.Vec3{an.Start, an.End, an.LeftSlope, an.RightSlope} {
		d := target.Sub(p).Normalize()
		if d.Y == 0 {
			continue
		}
		f = min(f, d.Horizontal().Length()/math.Abs(d.Y))
	}
	if f >= maxSize {
		return 1, false
	}
	return f, true
}
