// Package stroke captures freehand 3D polylines, classifies their shape and
// reshapes them under one- and two-handed edits.
package stroke

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/pkg/math"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the current lifecycle state.
	ErrInvalidState = errors.New("stroke: invalid state")
	// ErrTooFewPoints is returned by Finish for strokes with fewer than two points.
	ErrTooFewPoints = errors.New("stroke: fewer than two points")
	// ErrDestroyed is returned for any mutation after Destroy.
	ErrDestroyed = errors.New("stroke: destroyed")
)

// State is the stroke lifecycle state.
type State int

const (
	Empty State = iota
	Capturing
	Finished
	Editing
	Destroyed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Capturing:
		return "capturing"
	case Finished:
		return "finished"
	case Editing:
		return "editing"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Class is the geometric classification of a stroke point.
type Class int

const (
	Flat Class = iota
	Ridge
)

func (c Class) String() string {
	if c == Ridge {
		return "ridge"
	}
	return "flat"
}

// Options tunes capture, classification and handle editing.
type Options struct {
	GroundY           float32 // World height of the terrain base plane
	MinSpacing        float32
	EndpointTolerance float32
	InteriorTolerance float32
	RidgeThreshold    float32
	SizeMin, SizeMax  float32
	CurveMin          float32
	CurveMax          float32
}

// OptionsFromConfig builds stroke options for a terrain whose base plane sits at groundY.
func OptionsFromConfig(cfg config.StrokeConfig, groundY float32) Options {
	return Options{
		GroundY:           groundY,
		MinSpacing:        cfg.MinSpacing,
		EndpointTolerance: cfg.EndpointTolerance,
		InteriorTolerance: cfg.InteriorTolerance,
		RidgeThreshold:    cfg.RidgeThreshold,
		SizeMin:           cfg.SizeMin,
		SizeMax:           cfg.SizeMax,
		CurveMin:          cfg.CurveMin,
		CurveMax:          cfg.CurveMax,
	}
}

// Stroke is an ordered polyline of captured world-space points.
type Stroke struct {
	opts Options

	points   []math.Vec3
	tangents []math.Vec3
	runs     [][2]int // maximal runs of ridge points, inclusive

	leftSize, rightSize   float32
	leftCurve, rightCurve float32
	filled                bool

	min, max math.Vec3

	state  State
	hidden bool
	anchor int // cue anchor while editing

	placements []Placement // set on first application to the terrain
}

// Placement records how a point was first applied to the terrain, so that
// re-applying the stroke after an edit carves and raises the same places.
type Placement struct {
	Lower  bool
	Ground float32 // terrain height under the point, above the base plane
}

// New creates an empty stroke.
func New(opts Options) *Stroke {
	return &Stroke{opts: opts, leftCurve: 1, rightCurve: 1, anchor: -1}
}

// Begin starts capture at point with the given brush sizes.
func (s *Stroke) Begin(point math.Vec3, leftSize, rightSize float32, filled bool) error {
	if s.state != Empty {
		return fmt.Errorf("begin in %s: %w", s.state, ErrInvalidState)
	}
	s.points = append(s.points[:0], point)
	s.leftSize = s.clampSize(leftSize)
	s.rightSize = s.clampSize(rightSize)
	s.filled = filled
	s.min, s.max = point, point
	s.state = Capturing
	return nil
}

// Extend appends point if it is farther than the minimum spacing from the
// last accepted point. It reports whether the point was accepted.
func (s *Stroke) Extend(point math.Vec3) bool {
	if s.state != Capturing {
		return false
	}
	if point.Distance(s.points[len(s.points)-1]) <= s.opts.MinSpacing {
		return false
	}
	s.points = append(s.points, point)
	s.grow(point)
	return true
}

// Finish freezes the stroke, computing tangents and ridge runs.
func (s *Stroke) Finish() error {
	if s.state != Capturing {
		return fmt.Errorf("finish in %s: %w", s.state, ErrInvalidState)
	}
	if len(s.points) < 2 {
		return ErrTooFewPoints
	}
	s.derive()
	s.state = Finished
	return nil
}

// derive recomputes tangents, ridge runs and the bounding box from the points.
func (s *Stroke) derive() {
	n := len(s.points)
	s.tangents = s.tangents[:0]
	for i := 0; i < n; i++ {
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
		s.tangents = append(s.tangents, d.Normalize())
	}

	s.runs = s.runs[:0]
	start := -1
	for i := 0; i < n; i++ {
		if s.Classify(i) == Ridge {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			s.runs = append(s.runs, [2]int{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		s.runs = append(s.runs, [2]int{start, n - 1})
	}

	s.min, s.max = s.points[0], s.points[0]
	for _, p := range s.points[1:] {
		s.grow(p)
	}
}

func (s *Stroke) grow(p math.Vec3) {
	s.min = math.Vec3{X: min(s.min.X, p.X), Y: min(s.min.Y, p.Y), Z: min(s.min.Z, p.Z)}
	s.max = math.Vec3{X: max(s.max.X, p.X), Y: max(s.max.Y, p.Y), Z: max(s.max.Z, p.Z)}
}

// Classify reports whether point i is ridge-like: a steep tangent whose
// neighbours' vertical components have opposite signs. Endpoints are Flat.
func (s *Stroke) Classify(i int) Class {
	if i <= 0 || i >= len(s.tangents)-1 {
		return Flat
	}
	if math.Abs(s.tangents[i].Y) < s.opts.RidgeThreshold {
		return Flat
	}
	if s.tangents[i-1].Y*s.tangents[i+1].Y < 0 {
		return Ridge
	}
	return Flat
}

// Interval returns the bounds of the ridge run containing point i: the
// points just before and after the run, clamped to the stroke ends. ok is
// false when i is not part of a run.
func (s *Stroke) Interval(i int) (start, end int, ok bool) {
	for _, r := range s.runs {
		if i >= r[0] && i <= r[1] {
			return max(r[0]-1, 0), min(r[1]+1, len(s.points)-1), true
		}
	}
	return -1, -1, false
}

// LocateEditIndex returns the index of the point nearest to p within the
// edit tolerance. Endpoints are checked first with the larger tolerance.
// Hidden and unfinished strokes never match.
func (s *Stroke) LocateEditIndex(p math.Vec3) (int, bool) {
	if s.hidden || (s.state != Finished && s.state != Editing) || len(s.points) == 0 {
		return -1, false
	}

	last := len(s.points) - 1
	if p.Distance(s.points[0]) < s.opts.EndpointTolerance {
		return 0, true
	}
	if p.Distance(s.points[last]) < s.opts.EndpointTolerance {
		return last, true
	}

	best, bestDist := -1, s.opts.InteriorTolerance
	for i, q := range s.points {
		if d := p.Distance(q); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// Volume returns the bounding-box volume of the captured points.
func (s *Stroke) Volume() float32 {
	if len(s.points) == 0 {
		return 0
	}
	d := s.max.Sub(s.min)
	return d.X * d.Y * d.Z
}

// Hide marks the stroke inactive: it is skipped by edit lookups and stroke
// re-application but keeps its geometry.
func (s *Stroke) Hide() { s.hidden = true }

// Destroy releases the stroke. Every later mutation fails.
func (s *Stroke) Destroy() {
	s.state = Destroyed
	s.hidden = true
	s.points = nil
	s.tangents = nil
	s.runs = nil
	s.placements = nil
}

// State returns the lifecycle state.
func (s *Stroke) State() State { return s.state }

// Hidden reports whether the stroke was hidden or destroyed.
func (s *Stroke) Hidden() bool { return s.hidden }

// Len returns the number of points.
func (s *Stroke) Len() int { return len(s.points) }

// Point returns point i.
func (s *Stroke) Point(i int) math.Vec3 { return s.points[i] }

// Tangent returns the unit tangent at point i. Valid after Finish.
func (s *Stroke) Tangent(i int) math.Vec3 { return s.tangents[i] }

// Points returns a copy of the point list for rendering.
func (s *Stroke) Points() []math.Vec3 { return append([]math.Vec3(nil), s.points...) }

// Filled reports whether the stroke floods its enclosed region.
func (s *Stroke) Filled() bool { return s.filled }

// Sizes returns the left and right brush size multipliers.
func (s *Stroke) Sizes() (left, right float32) { return s.leftSize, s.rightSize }

// Curves returns the left and right falloff exponents.
func (s *Stroke) Curves() (left, right float32) { return s.leftCurve, s.rightCurve }

// Bounds returns the bounding box of the points.
func (s *Stroke) Bounds() (lo, hi math.Vec3) { return s.min, s.max }

// Placements returns the recorded placement of every point, or nil if the
// stroke has not been applied yet.
func (s *Stroke) Placements() []Placement {
	if len(s.placements) != len(s.points) {
		return nil
	}
	return s.placements
}

// Place records the placement of every point. The slice must have one entry
// per point.
func (s *Stroke) Place(p []Placement) error {
	if len(p) != len(s.points) {
		return fmt.Errorf("place: %d placements for %d points", len(p), len(s.points))
	}
	s.placements = append(s.placements[:0], p...)
	return nil
}

// GroundY returns the base plane height the stroke's handles are measured from.
func (s *Stroke) GroundY() float32 { return s.opts.GroundY }

func (s *Stroke) clampSize(v float32) float32 {
	return math.Clamp(v, s.opts.SizeMin, s.opts.SizeMax)
}

func (s *Stroke) clampCurve(v float32) float32 {
	return math.Clamp(v, s.opts.CurveMin, s.opts.CurveMax)
}
