package sculpt

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrasketch/internal/refine"
	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

type phase int

const (
	phaseMerge phase = iota
	phaseRefine
	phaseWrite
	phaseDone
)

// CommitTask is a cooperative commit. Each Step processes a bounded batch
// of rows so the interactive loop is never blocked for long. A task cannot
// be cancelled, only stepped to completion.
type CommitTask struct {
	s     *State
	phase phase
	row   int

	snapshot *terrain.Layers // virtual layers at commit start
	merged   *terrain.Layers
	next     *terrain.Field

	groundLo, groundHi float32
	baseLo, baseHi     float32
	hasGround, hasBase bool
	refined            refine.Result

	started time.Time
	done    chan struct{}
	err     error
}

// Commit starts a commit of the virtual layers merged with the saved
// history. The returned task must be stepped until Done.
func (s *State) Commit() (*CommitTask, error) {
	if s.task != nil {
		return nil, ErrBusy
	}
	res := s.mapper.Resolution()
	t := &CommitTask{
		s:        s,
		snapshot: s.virtual.Clone(),
		merged:   s.virtual.Clone(),
		next:     terrain.NewField(res, 0),
		groundLo: 1, groundHi: 0,
		baseLo: 1, baseHi: 0,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	s.task = t
	log().Debug("commit started", zap.Int("resolution", res), zap.Bool("saved", s.hasSaved))
	return t, nil
}

// Done is closed when the task finishes, successfully or not.
func (t *CommitTask) Done() <-chan struct{} { return t.done }

// Err returns the failure of a finished task.
func (t *CommitTask) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Finished reports whether the task has completed.
func (t *CommitTask) Finished() bool { return t.phase == phaseDone }

// Step runs one batch of work. It reports true once the task is finished.
// The refinement pass runs within a single step.
func (t *CommitTask) Step(ctx context.Context) bool {
	switch t.phase {
	case phaseMerge:
		t.merge()
	case phaseRefine:
		if err := t.refine(ctx); err != nil {
			t.fail(err)
		}
	case phaseWrite:
		t.write()
	}
	return t.phase == phaseDone
}

// Run steps the task to completion and returns its error.
func (t *CommitTask) Run(ctx context.Context) error {
	for !t.Step(ctx) {
	}
	return t.err
}

func (t *CommitTask) merge() {
	s := t.s
	size := t.merged.Ground.Size
	end := min(t.row+s.rowsPerTick, size)

	if s.hasSaved {
		t.merged.Ground.MaxRows(s.saved.Ground, t.row, end)
		t.merged.Base.MinRows(s.saved.Base, t.row, end)
		t.merged.Paint.MaxRows(s.saved.Paint, t.row, end)
	}

	g, b := t.merged.Ground.Data, t.merged.Base.Data
	for i := t.row * size; i < end*size; i++ {
		t.groundLo, t.groundHi = min(t.groundLo, g[i]), max(t.groundHi, g[i])
		t.baseLo, t.baseHi = min(t.baseLo, b[i]), max(t.baseHi, b[i])
		if g[i] > s.offsetN {
			t.hasGround = true
		}
		if b[i] < s.offsetN {
			t.hasBase = true
		}
	}

	t.row = end
	if t.row >= size {
		t.row = 0
		t.phase = phaseRefine
	}
}

func (t *CommitTask) refine(ctx context.Context) error {
	req := refine.Request{
		Ground:     normalized(t.merged.Ground, t.groundLo, t.groundHi),
		Base:       normalized(t.merged.Base, t.baseLo, t.baseHi),
		Paint:      t.merged.Paint,
		HasGround:  t.hasGround,
		HasBase:    t.hasBase,
		GroundSpan: t.groundHi - t.groundLo,
		BaseSpan:   t.baseHi - t.baseLo,
	}

	if !t.hasGround && !t.hasBase {
		t.refined = refine.Result{Ground: req.Ground, Base: req.Base}
		t.phase = phaseWrite
		return nil
	}

	res, err := t.s.refiner.Refine(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefineFailed, err)
	}
	size := t.merged.Ground.Size
	for _, f := range []*terrain.Field{res.Ground, res.Base} {
		if f == nil || f.Size != size || len(f.Data) != size*size {
			return ErrResolutionMismatch
		}
	}

	t.refined = res
	t.phase = phaseWrite
	return nil
}

func (t *CommitTask) write() {
	s := t.s
	size := t.next.Size
	end := min(t.row+s.rowsPerTick, size)

	for i := t.row * size; i < end*size; i++ {
		g := t.merged.Ground.Data[i]
		if t.hasGround {
			g = t.refined.Ground.Data[i]*(t.groundHi-t.groundLo) + t.groundLo
		}
		b := t.merged.Base.Data[i]
		if t.hasBase {
			b = t.refined.Base.Data[i]*(t.baseHi-t.baseLo) + t.baseLo
		}
		t.next.Data[i] = math.Clamp(g+b-s.offsetN, 0, 1)
	}

	t.row = end
	if t.row >= size {
		t.finish()
	}
}

func (t *CommitTask) finish() {
	s := t.s
	s.surface = t.next
	s.paint = t.merged.Paint
	s.seq++
	s.task = nil
	t.phase = phaseDone
	close(t.done)

	log().Info("commit finished",
		zap.Int("seq", s.seq),
		zap.Bool("ground", t.hasGround),
		zap.Bool("base", t.hasBase),
		zap.Duration("elapsed", time.Since(t.started)))

	c := Commit{Seq: s.seq, Surface: s.surface, Paint: s.paint}
	for _, fn := range s.callbacks {
		fn(c)
	}
}

// fail abandons the commit, restoring the virtual layers captured at start
// and leaving the committed surface untouched.
func (t *CommitTask) fail(err error) {
	s := t.s
	if cerr := s.virtual.CopyFrom(t.snapshot); cerr != nil {
		err = fmt.Errorf("%w (restore: %v)", err, cerr)
	}
	s.task = nil
	t.err = err
	t.phase = phaseDone
	close(t.done)
	log().Warn("commit rolled back", zap.Error(err))
}

// normalized maps f from [lo,hi] onto [0,1]. A zero span maps to 0.
func normalized(f *terrain.Field, lo, hi float32) *terrain.Field {
	out := terrain.NewField(f.Size, 0)
	span := hi - lo
	if span <= 0 {
		return out
	}
	for i, v := range f.Data {
		out.Data[i] = (v - lo) / span
	}
	return out
}
