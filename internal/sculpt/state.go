// Package sculpt owns the terrain layers of a sculpting session: it applies
// finished strokes to the virtual layers, keeps the saved history, and
// commits the merged result through the refinement pass.
package sculpt

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terrasketch/internal/brush"
	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/internal/grid"
	"github.com/Faultbox/terrasketch/internal/logger"
	"github.com/Faultbox/terrasketch/internal/refine"
	"github.com/Faultbox/terrasketch/internal/stroke"
	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

var (
	// ErrBusy is returned while a commit is in flight.
	ErrBusy = errors.New("sculpt: commit in progress")
	// ErrResolutionMismatch is returned when the refiner changes the layer resolution.
	ErrResolutionMismatch = errors.New("sculpt: refined layer resolution mismatch")
	// ErrRefineFailed wraps errors returned by the refiner.
	ErrRefineFailed = errors.New("sculpt: refinement failed")
)

// Commit describes a finished commit, passed to repaint callbacks.
type Commit struct {
	Seq     int
	Surface *terrain.Field // Effective normalized heights
	Paint   *terrain.Field
}

// State is the terrain state of one sculpting session. It is not safe for
// concurrent use; all calls come from the interactive loop.
type State struct {
	mapper  *grid.Mapper
	brush   *brush.Engine
	refiner refine.Refiner

	offset      float32 // Reference offset, world units above the terrain origin
	offsetN     float32
	lowerMargin float32
	rowsPerTick int

	virtual  *terrain.Layers
	saved    *terrain.Layers
	hasSaved bool

	surface *terrain.Field
	paint   *terrain.Field
	seq     int

	task      *CommitTask
	callbacks []func(Commit)
}

// New creates a flat terrain state. The refiner is the pass run on commit.
func New(cfg *config.Config, refiner refine.Refiner) *State {
	m := grid.FromConfig(cfg.Terrain)
	return NewWithMapper(m, cfg, refiner)
}

// NewWithMapper creates a terrain state on an existing grid mapper.
func NewWithMapper(m *grid.Mapper, cfg *config.Config, refiner refine.Refiner) *State {
	res := m.Resolution()
	offN := m.HeightToNormalized(cfg.Terrain.Offset)
	if refiner == nil {
		refiner = refine.Passthrough{}
	}
	return &State{
		mapper:      m,
		brush:       brush.New(m, cfg.Brush, cfg.Terrain.Offset),
		refiner:     refiner,
		offset:      cfg.Terrain.Offset,
		offsetN:     offN,
		lowerMargin: cfg.Brush.LowerMargin,
		rowsPerTick: max(cfg.Commit.RowsPerTick, 1),
		virtual:     terrain.NewLayers(res, offN),
		saved:       terrain.NewLayers(res, offN),
		surface:     terrain.NewField(res, offN),
		paint:       terrain.NewField(res, 0),
	}
}

// Mapper returns the grid mapper shared with strokes and brushes.
func (s *State) Mapper() *grid.Mapper { return s.mapper }

// Virtual returns the layers strokes are applied to. Callers must not
// retain them across commits.
func (s *State) Virtual() *terrain.Layers { return s.virtual }

// Surface returns the last committed effective height field.
func (s *State) Surface() *terrain.Field { return s.surface }

// Paint returns the last committed paint field.
func (s *State) Paint() *terrain.Field { return s.paint }

// Busy reports whether a commit is in flight.
func (s *State) Busy() bool { return s.task != nil }

// Task returns the in-flight commit, if any.
func (s *State) Task() *CommitTask { return s.task }

// OnCommit registers a callback fired after every successful commit.
func (s *State) OnCommit(fn func(Commit)) {
	s.callbacks = append(s.callbacks, fn)
}

// SurfaceHeight returns the committed world height under p.
func (s *State) SurfaceHeight(p math.Vec3) float32 {
	return terrain.HeightAt(s.surface, s.mapper, p)
}

// ApplyStroke walks a finished stroke and applies its brush dabs to the
// virtual layers: a fill pass for filled strokes, a raise or lower pass,
// then a paint pass.
func (s *State) ApplyStroke(st *stroke.Stroke) error {
	if s.task != nil {
		return ErrBusy
	}
	if st.State() != stroke.Finished {
		return fmt.Errorf("apply stroke in %s: %w", st.State(), stroke.ErrInvalidState)
	}

	originY := s.mapper.Origin().Y
	n := st.Len()
	left, right := st.Sizes()
	leftCurve, rightCurve := st.Curves()
	l := s.virtual
	placed := s.placements(st)

	if st.Filled() {
		seed := st.Point(0)
		for i := 1; i < n; i++ {
			p := st.Point(i)
			s.brush.Fill(l, p, seed, math.Abs(p.Y-originY))
		}
	}

	lowers := 0
	for i := 0; i < n; i++ {
		p := st.Point(i)
		h := p.Y - originY
		dab := brush.Params{
			Target:     p,
			Height:     h,
			BaseSize:   math.Abs(h-s.offset) * 2,
			Left:       left,
			Right:      right,
			LeftCurve:  leftCurve,
			RightCurve: rightCurve,
			Tangent:    st.Tangent(i),
		}

		if st.Filled() {
			size := max(left, right) / 2
			dab.Height = math.Abs(h) / 2
			dab.BaseSize /= 2
			dab.Left, dab.Right = size, size
			s.brush.Raise(l, dab)
			continue
		}

		if pl := placed[i]; pl.Lower {
			dab.Origin = pl.Ground
			dab.BaseSize = (pl.Ground - h) * 2
			s.brush.Lower(l, dab)
			lowers++
			continue
		}

		if st.Classify(i) == stroke.Ridge {
			if start, end, ok := st.Interval(i); ok && i > 0 && i < n-1 {
				dab.Anchors = &brush.Anchors{
					Start:      st.Point(start),
					End:        st.Point(end),
					LeftSlope:  st.Point(i - 1),
					RightSlope: st.Point(i + 1),
				}
			}
		}
		s.brush.Raise(l, dab)
	}

	cfg := s.brush.Config()
	for i := 0; i < n; i++ {
		p := st.Point(i)
		if st.Filled() {
			s.brush.Paint(l, p, cfg.PaintFill, cfg.PaintFillWidth)
			continue
		}
		if v, ok := s.brush.PaintValue(st.Tangent(i)); ok {
			s.brush.Paint(l, p, v, cfg.PaintWidth)
		}
	}

	log().Debug("stroke applied",
		zap.Int("points", n),
		zap.Bool("filled", st.Filled()),
		zap.Int("lowers", lowers))
	return nil
}

// placements returns the raise or lower decision for every point of st.
// The first application decides against the committed surface and records
// the result on the stroke; later applications reuse it.
func (s *State) placements(st *stroke.Stroke) []stroke.Placement {
	if p := st.Placements(); p != nil {
		return p
	}
	originY := s.mapper.Origin().Y
	p := make([]stroke.Placement, st.Len())
	for i := range p {
		pt := st.Point(i)
		ground := s.SurfaceHeight(pt) - originY
		p[i] = stroke.Placement{
			Lower:  pt.Y-originY < ground-s.lowerMargin,
			Ground: ground,
		}
	}
	_ = st.Place(p)
	return p
}

// Save folds the virtual layers into the saved history: ground keeps the
// highest value, base the lowest, paint the strongest.
func (s *State) Save() error {
	if s.task != nil {
		return ErrBusy
	}
	res := s.mapper.Resolution()
	s.saved.Ground.MaxRows(s.virtual.Ground, 0, res)
	s.saved.Base.MinRows(s.virtual.Base, 0, res)
	s.saved.Paint.MaxRows(s.virtual.Paint, 0, res)
	s.hasSaved = true
	log().Debug("layers saved")
	return nil
}

// Clear resets the virtual layers to the reference offset and clears paint.
// With eraseHistory the saved layers are reset as well.
func (s *State) Clear(eraseHistory bool) error {
	if s.task != nil {
		return ErrBusy
	}
	s.virtual.Reset(s.offsetN)
	if eraseHistory {
		s.saved.Reset(s.offsetN)
		s.hasSaved = false
	}
	log().Debug("layers cleared", zap.Bool("erase_history", eraseHistory))
	return nil
}

// HasSaved reports whether any layers were saved since the last full reset.
func (s *State) HasSaved() bool { return s.hasSaved }

func log() *zap.Logger { return logger.Named("sculpt") }
