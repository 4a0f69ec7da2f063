package stroke

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/terrasketch/pkg/math"
)

// heightEpsilon is the smallest anchor height handle edits divide by.
const heightEpsilon = 1e-3

// BeginEdit enters editing with point index as the visual-cue anchor.
func (s *Stroke) BeginEdit(index int) error {
	if s.state == Destroyed {
		return ErrDestroyed
	}
	if s.state != Finished {
		return fmt.Errorf("begin edit in %s: %w", s.state, ErrInvalidState)
	}
	if index < 0 || index >= len(s.points) {
		return fmt.Errorf("begin edit: index %d out of range [0,%d)", index, len(s.points))
	}
	s.anchor = index
	s.state = Editing
	return nil
}

// EndEdit leaves editing and recomputes tangents, ridge runs and bounds
// from the reshaped points.
func (s *Stroke) EndEdit() error {
	if s.state != Editing {
		return fmt.Errorf("end edit in %s: %w", s.state, ErrInvalidState)
	}
	s.derive()
	s.anchor = -1
	s.state = Finished
	return nil
}

// Anchor returns the point index the visual cue is attached to, or -1.
func (s *Stroke) Anchor() int { return s.anchor }

// Edit applies one frame of an edit gesture. leftPos and rightPos are the
// current hand positions; left and right say what each hand holds.
//
// Handle targets retune the brush profile; a point held by the other hand
// is still dragged. One point target drags that point and bends the rest of
// the stroke toward it. Two point targets rotate and scale the range between
// them so its chord follows both hands.
func (s *Stroke) Edit(leftPos, rightPos math.Vec3, left, right EditTarget) error {
	if s.state == Destroyed {
		return ErrDestroyed
	}
	if s.state != Editing {
		return fmt.Errorf("edit in %s: %w", s.state, ErrInvalidState)
	}

	if left.IsHandle() {
		s.editHandle(left, leftPos)
	}
	if right.IsHandle() {
		s.editHandle(right, rightPos)
	}

	lp, rp := s.validPoint(left), s.validPoint(right)
	switch {
	case lp && rp && left.Index != right.Index:
		s.editRange(leftPos, rightPos, left.Index, right.Index)
	case lp:
		s.editOne(leftPos, left.Index)
	case rp:
		s.editOne(rightPos, right.Index)
	}
	return nil
}

func (s *Stroke) validPoint(t EditTarget) bool {
	return t.IsPoint() && t.Index >= 0 && t.Index < len(s.points)
}

// editOne moves point idx to pos. Points toward the end follow with a weight
// that fades linearly to zero past the last point; points toward the start
// fade linearly to zero at point 0.
func (s *Stroke) editOne(pos math.Vec3, idx int) {
	n := len(s.points)
	d := pos.Sub(s.points[idx])

	for i := idx; i < n; i++ {
		w := 1 - float32(i-idx)/float32(n-idx)
		s.points[i] = s.points[i].Add(d.Scale(w))
	}

	if start := idx - 1; start > 0 {
		for i := start; i >= 0; i-- {
			s.points[i] = s.points[i].Add(d.Scale(float32(i) / float32(start)))
		}
	}
}

// editRange maps the range between two grabbed points with a similarity
// transform and drags the outer tails with the same fading as editOne.
func (s *Stroke) editRange(leftPos, rightPos math.Vec3, li, ri int) {
	n := len(s.points)
	start, end := min(li, ri), max(li, ri)
	newStart, newEnd := leftPos, rightPos
	if li > ri {
		newStart, newEnd = rightPos, leftPos
	}

	anchorStart, anchorEnd := s.points[start], s.points[end]
	d1 := newStart.Sub(anchorStart)
	d2 := newEnd.Sub(anchorEnd)

	if start-1 > 0 {
		for i := start - 1; i >= 0; i-- {
			s.points[i] = s.points[i].Add(d1.Scale(float32(i) / float32(start)))
		}
	}
	for i := end + 1; i < n; i++ {
		w := 1 - float32(i-end)/float32(n-end)
		s.points[i] = s.points[i].Add(d2.Scale(w))
	}

	oldDist := anchorStart.Distance(anchorEnd)
	if oldDist < heightEpsilon {
		for i := start; i <= end; i++ {
			s.points[i] = s.points[i].Add(d1)
		}
		return
	}

	rot := math.QuatFromTo(anchorStart.Sub(anchorEnd), newStart.Sub(newEnd))
	scale := newStart.Distance(newEnd) / oldDist
	m := math.Similarity(anchorStart, newStart, rot, scale)
	for i := start; i <= end; i++ {
		s.points[i] = m.TransformVec3(s.points[i])
	}
}

// editHandle retunes a size or curve parameter from a handle dragged to pos.
// Sizes are the horizontal drag distance from the anchor relative to the
// anchor's height; curves come from the drag height relative to the anchor's.
func (s *Stroke) editHandle(t EditTarget, pos math.Vec3) {
	if s.anchor < 0 || s.anchor >= len(s.points) {
		return
	}
	a := s.points[s.anchor]
	height := a.Y - s.opts.GroundY
	if height <= heightEpsilon {
		return
	}

	switch t.Kind {
	case TargetLeftSize, TargetRightSize:
		size := s.clampSize(pos.Sub(a).Horizontal().Length() / height)
		if t.Kind == TargetLeftSize {
			s.leftSize = size
		} else {
			s.rightSize = size
		}
	case TargetLeftCurve, TargetRightCurve:
		f := math.Clamp((pos.Y-s.opts.GroundY)/height, 0.01, 0.99)
		curve := s.clampCurve(float32(gomath.Log(float64(f)) / gomath.Log(0.5)))
		if t.Kind == TargetLeftCurve {
			s.leftCurve = curve
		} else {
			s.rightCurve = curve
		}
	}
}
