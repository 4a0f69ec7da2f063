package stroke

import (
	gomath "math"

	"github.com/Faultbox/terrasketch/pkg/math"
)

// Cue is the visual-cue geometry drawn at the edit anchor: two wings
// perpendicular to the horizontal tangent, reaching the ground at a distance
// of height×size, and a falloff preview point halfway along each wing.
type Cue struct {
	Anchor     math.Vec3
	LeftWing   math.Vec3
	RightWing  math.Vec3
	LeftCurve  math.Vec3
	RightCurve math.Vec3
}

// Cue returns the visual-cue geometry for the current anchor. ok is false
// outside editing.
func (s *Stroke) Cue() (Cue, bool) {
	if s.state != Editing || s.anchor < 0 || s.anchor >= len(s.points) {
		return Cue{}, false
	}

	a := s.points[s.anchor]
	height := a.Y - s.opts.GroundY
	leftDir, rightDir := s.wingDirections(s.anchor)

	wing := func(dir math.Vec3, size, curve float32) (end, preview math.Vec3) {
		reach := dir.Scale(height * size)
		end = a.Add(reach)
		end.Y = s.opts.GroundY
		preview = a.Add(reach.Scale(0.5))
		preview.Y = s.opts.GroundY + height*float32(gomath.Pow(0.5, float64(curve)))
		return end, preview
	}

	c := Cue{Anchor: a}
	c.LeftWing, c.LeftCurve = wing(leftDir, s.leftSize, s.leftCurve)
	c.RightWing, c.RightCurve = wing(rightDir, s.rightSize, s.rightCurve)
	return c, true
}

// wingDirections returns the horizontal unit directions to the left and right
// of the stroke at point i. A vertical or degenerate tangent falls back to +Z.
func (s *Stroke) wingDirections(i int) (left, right math.Vec3) {
	n := len(s.points)
	var d math.Vec3
	switch {
	case n < 2:
	case i == 0:
		d = s.points[1].Sub(s.points[0])
	case i == n-1:
		d = s.points[i].Sub(s.points[i-1])
	default:
		d = s.points[i+1].Sub(s.points[i-1])
	}
	d = d.Horizontal().Normalize()
	if d == (math.Vec3{}) {
		d = math.Vec3{Z: 1}
	}

	left = math.QuatFromAxisAngle(math.Up, -gomath.Pi/2).Rotate(d)
	right = math.QuatFromAxisAngle(math.Up, gomath.Pi/2).Rotate(d)
	return left, right
}

// LocateEditTarget resolves what a hand at p grabs. While editing the cue
// handles take priority; otherwise the nearest point within tolerance.
func (s *Stroke) LocateEditTarget(p math.Vec3) EditTarget {
	if c, ok := s.Cue(); ok {
		handles := []struct {
			pos    math.Vec3
			target EditTarget
		}{
			{c.LeftWing, LeftSizeHandle()},
			{c.RightWing, RightSizeHandle()},
			{c.LeftCurve, LeftCurveHandle()},
			{c.RightCurve, RightCurveHandle()},
		}
		best, bestDist := None, s.opts.InteriorTolerance
		for _, h := range handles {
			if d := p.Distance(h.pos); d < bestDist {
				best, bestDist = h.target, d
			}
		}
		if best != None {
			return best
		}
	}

	if i, ok := s.LocateEditIndex(p); ok {
		return Point(i)
	}
	return None
}
