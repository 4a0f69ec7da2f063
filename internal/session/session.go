// Package session implements the interactive sculpting loop: it routes hand
// events to stroke drawing and editing, applies finished strokes to the
// terrain state and schedules commits.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/internal/input"
	"github.com/Faultbox/terrasketch/internal/logger"
	"github.com/Faultbox/terrasketch/internal/sculpt"
	"github.com/Faultbox/terrasketch/internal/stroke"
	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// Journal receives every interaction and committed surface.
// *record.Journal implements it.
type Journal interface {
	AppendEvent(kind string, hand int, pos math.Vec3) error
	AppendFrame(seq int, surface *terrain.Field) error
}

// Mode is what the session is doing with the active stroke.
type Mode int

const (
	Idle Mode = iota
	Drawing
	Editing
)

func (m Mode) String() string {
	switch m {
	case Drawing:
		return "drawing"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// Session is one user's sculpting session. It is driven from a single
// loop and is not safe for concurrent use.
type Session struct {
	state   *sculpt.State
	input   *input.Input
	journal Journal
	opts    stroke.Options

	discardVolume float32

	strokes []*stroke.Stroke // accepted strokes, oldest first
	active  *stroke.Stroke
	mode    Mode
	targets [input.NumHands]stroke.EditTarget

	leftSize, rightSize float32
	filled              bool
}

// New creates a session over a terrain state. journal may be nil.
func New(cfg *config.Config, state *sculpt.State, journal Journal) *Session {
	s := &Session{
		state:         state,
		input:         input.New(),
		journal:       journal,
		opts:          stroke.OptionsFromConfig(cfg.Stroke, state.Mapper().Origin().Y),
		discardVolume: cfg.Stroke.DiscardVolume,
		leftSize:      1,
		rightSize:     1,
	}
	if journal != nil {
		state.OnCommit(func(c sculpt.Commit) {
			if err := journal.AppendFrame(c.Seq, c.Surface); err != nil {
				log().Warn("journal frame failed", zap.Int("seq", c.Seq), zap.Error(err))
			}
		})
	}
	return s
}

// State returns the terrain state.
func (s *Session) State() *sculpt.State { return s.state }

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// Active returns the stroke being drawn or edited, or nil.
func (s *Session) Active() *stroke.Stroke { return s.active }

// Strokes returns the accepted strokes, oldest first.
func (s *Session) Strokes() []*stroke.Stroke {
	return append([]*stroke.Stroke(nil), s.strokes...)
}

// Filled reports whether new strokes are drawn as filled.
func (s *Session) Filled() bool { return s.filled }

// SetFilled sets the fill mode for new strokes.
func (s *Session) SetFilled(filled bool) { s.filled = filled }

// BrushSizes returns the left/right sizes given to new strokes.
func (s *Session) BrushSizes() (left, right float32) { return s.leftSize, s.rightSize }

// SetBrushSizes sets the left/right sizes given to new strokes.
func (s *Session) SetBrushSizes(left, right float32) {
	s.leftSize = math.Clamp(left, s.opts.SizeMin, s.opts.SizeMax)
	s.rightSize = math.Clamp(right, s.opts.SizeMin, s.opts.SizeMax)
}

// Update consumes one input frame. An in-flight commit advances by one
// step first.
func (s *Session) Update(ctx context.Context, f input.Frame) error {
	if t := s.state.Task(); t != nil {
		t.Step(ctx)
	}

	s.input.Update(f)
	for _, ev := range s.input.Events() {
		s.record(ev.Type.String(), ev.Hand, ev.Position)

		switch ev.Type {
		case input.EventPress:
			if err := s.press(ev.Hand, ev.Position); err != nil {
				return err
			}
		case input.EventRelease:
			if err := s.release(ctx, ev.Hand); err != nil {
				return err
			}
		}
	}

	return s.drag()
}

// Flush runs any in-flight commit to completion and returns its error.
func (s *Session) Flush(ctx context.Context) error {
	t := s.state.Task()
	if t == nil {
		return nil
	}
	return t.Run(ctx)
}

// HideAll folds the current layers into the saved history and hides every
// stroke. The sculpted shape survives later clears.
func (s *Session) HideAll(ctx context.Context) error {
	s.settle(ctx)
	if err := s.state.Save(); err != nil {
		return fmt.Errorf("hide all: %w", err)
	}
	for _, st := range s.strokes {
		st.Hide()
	}
	s.record("hide", -1, math.Vec3{})
	log().Info("strokes hidden", zap.Int("strokes", len(s.strokes)))
	return nil
}

// Reset destroys every stroke, erases the saved history and commits the
// flat terrain.
func (s *Session) Reset(ctx context.Context) error {
	s.settle(ctx)
	s.abandon()
	for _, st := range s.strokes {
		st.Destroy()
	}
	s.strokes = nil
	if err := s.state.Clear(true); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.record("reset", -1, math.Vec3{})
	log().Info("session reset")
	return s.commit()
}

// press starts an interaction for hand at p.
func (s *Session) press(hand int, p math.Vec3) error {
	switch s.mode {
	case Editing:
		s.targets[hand] = s.active.LocateEditTarget(p)
		return nil
	case Drawing:
		// The other hand is already drawing.
		return nil
	}

	for _, st := range s.strokes {
		if st.Hidden() {
			continue
		}
		i, ok := st.LocateEditIndex(p)
		if !ok {
			continue
		}
		if err := st.BeginEdit(i); err != nil {
			return fmt.Errorf("begin edit: %w", err)
		}
		s.active = st
		s.mode = Editing
		s.targets = [input.NumHands]stroke.EditTarget{}
		s.targets[hand] = stroke.Point(i)
		log().Debug("edit started", zap.Int("hand", hand), zap.Int("index", i))
		return nil
	}

	st := stroke.New(s.opts)
	if err := st.Begin(p, s.leftSize, s.rightSize, s.filled); err != nil {
		return fmt.Errorf("begin stroke: %w", err)
	}
	s.active = st
	s.mode = Drawing
	return nil
}

// drag applies the current hand positions to the active stroke.
func (s *Session) drag() error {
	primary := s.input.IsActive(input.Primary)
	secondary := s.input.IsActive(input.Secondary)

	switch s.mode {
	case Drawing:
		if primary != secondary {
			s.active.Extend(s.input.Position(activeHand(primary)))
		}
	case Editing:
		var left, right stroke.EditTarget
		if primary {
			left = s.targets[input.Primary]
		}
		if secondary {
			right = s.targets[input.Secondary]
		}
		if left == stroke.None && right == stroke.None {
			return nil
		}
		err := s.active.Edit(
			s.input.Position(input.Primary),
			s.input.Position(input.Secondary),
			left, right)
		if err != nil {
			return fmt.Errorf("edit stroke: %w", err)
		}
	}
	return nil
}

// release ends the interaction once both hands are up.
func (s *Session) release(ctx context.Context, hand int) error {
	s.targets[hand] = stroke.None
	if s.input.AnyActive() {
		return nil
	}

	switch s.mode {
	case Editing:
		return s.finishEdit(ctx)
	case Drawing:
		return s.finishDrawing(ctx, hand)
	}
	return nil
}

// finishEdit rebuilds the virtual layers from every visible stroke, keeping
// the saved history, and commits.
func (s *Session) finishEdit(ctx context.Context) error {
	st := s.active
	s.active, s.mode = nil, Idle
	if err := st.EndEdit(); err != nil {
		return fmt.Errorf("end edit: %w", err)
	}

	s.settle(ctx)
	if err := s.state.Clear(false); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	for _, v := range s.strokes {
		if v.Hidden() {
			continue
		}
		if err := s.state.ApplyStroke(v); err != nil {
			return fmt.Errorf("reapply stroke: %w", err)
		}
	}
	log().Debug("edit finished", zap.Int("strokes", len(s.strokes)))
	return s.commit()
}

// finishDrawing accepts or discards the drawn stroke. A discarded tap with
// the secondary hand toggles filled mode.
func (s *Session) finishDrawing(ctx context.Context, hand int) error {
	st := s.active
	s.active, s.mode = nil, Idle

	if err := st.Finish(); err != nil || st.Volume() < s.discardVolume {
		if hand == input.Secondary {
			s.filled = !s.filled
			s.record("filled", hand, math.Vec3{})
		}
		log().Debug("stroke discarded",
			zap.Int("points", st.Len()),
			zap.Float32("volume", st.Volume()),
			zap.Bool("filled", s.filled))
		st.Destroy()
		return nil
	}

	s.settle(ctx)
	if err := s.state.ApplyStroke(st); err != nil {
		st.Destroy()
		return fmt.Errorf("apply stroke: %w", err)
	}
	s.strokes = append(s.strokes, st)
	log().Info("stroke finished",
		zap.Int("points", st.Len()),
		zap.Float32("volume", st.Volume()),
		zap.Bool("filled", st.Filled()))
	return s.commit()
}

// abandon drops an unfinished interaction.
func (s *Session) abandon() {
	switch s.mode {
	case Drawing:
		s.active.Destroy()
	case Editing:
		_ = s.active.EndEdit()
	}
	s.active, s.mode = nil, Idle
	s.targets = [input.NumHands]stroke.EditTarget{}
}

// settle waits for an in-flight commit. Its failure was already logged and
// rolled back by the task.
func (s *Session) settle(ctx context.Context) {
	if t := s.state.Task(); t != nil {
		_ = t.Run(ctx)
	}
}

func (s *Session) commit() error {
	if _, err := s.state.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.record("commit", -1, math.Vec3{})
	return nil
}

func (s *Session) record(kind string, hand int, pos math.Vec3) {
	if s.journal == nil {
		return
	}
	if err := s.journal.AppendEvent(kind, hand, pos); err != nil {
		log().Warn("journal event failed", zap.String("kind", kind), zap.Error(err))
	}
}

func activeHand(primary bool) int {
	if primary {
		return input.Primary
	}
	return input.Secondary
}

func log() *zap.Logger { return logger.Named("session") }
