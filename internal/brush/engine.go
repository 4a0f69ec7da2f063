// Package brush applies anisotropic brush dabs to terrain layers.
package brush

import (
	gomath "math"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/internal/grid"
	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// minBound keeps a bounded brush from collapsing to its centre cell when an
// anchor sits straight above the target.
const minBound = 0.01

// Params describes one brush dab.
type Params struct {
	Target     math.Vec3 // World point; X and Z place the window
	Height     float32   // Target height above the terrain origin, world units
	Origin     float32   // Surface height above the terrain origin where the dab lands (Lower only)
	BaseSize   float32   // Brush diameter before left/right scaling, world units
	Left       float32
	Right      float32
	LeftCurve  float32
	RightCurve float32
	Tangent    math.Vec3
	Anchors    *Anchors // Optional stroke-proximity bound
}

// Engine applies brush operations. It holds no field state of its own.
type Engine struct {
	mapper *grid.Mapper
	cfg    config.BrushConfig
	offset float32 // Reference offset, world units
}

// New creates an engine for the given grid and reference offset.
func New(mapper *grid.Mapper, cfg config.BrushConfig, offset float32) *Engine {
	return &Engine{mapper: mapper, cfg: cfg, offset: offset}
}

// Config returns the brush constants.
func (e *Engine) Config() config.BrushConfig { return e.cfg }

// dab resolves the window and falloff shape for p. ok is false for
// degenerate brushes that touch no cells.
func (e *Engine) dab(p Params) (grid.Window, math.Vec2, Shape, bool) {
	baseCells := e.mapper.WorldToCells(p.BaseSize)
	maxSize := max(p.Left, p.Right)
	width := int(gomath.Ceil(float64(baseCells * maxSize)))
	if baseCells <= 0 || width <= 0 {
		return grid.Window{}, math.Vec2{}, Shape{}, false
	}

	win := e.mapper.Window(p.Target, width, width)
	if win.Empty() {
		return grid.Window{}, math.Vec2{}, Shape{}, false
	}

	shape := Shape{
		Direction:  p.Tangent.XZ(),
		HalfWidth:  baseCells / 2,
		Left:       p.Left,
		Right:      p.Right,
		LeftCurve:  p.LeftCurve,
		RightCurve: p.RightCurve,
		Bound:      1,
	}
	if p.Anchors != nil {
		ground := p.Target
		ground.Y = e.mapper.Origin().Y
		if f, ok := p.Anchors.factor(ground, maxSize); ok {
			shape.Bound = max(f, minBound)
		}
	}

	return win, e.mapper.WorldToGrid(p.Target), shape, true
}

// Raise deposits material toward p.Height on the ground layer. Cells only
// ever gain height.
func (e *Engine) Raise(l *terrain.Layers, p Params) {
	win, c, shape, ok := e.dab(p)
	if !ok {
		return
	}
	off := e.offset
	for y := win.Y; y < win.Y+win.Height; y++ {
		for x := win.X; x < win.X+win.Width; x++ {
			w := shape.Weight(float32(x)-c.X, float32(y)-c.Y)
			if w <= 0 {
				continue
			}
			l.Ground.Raise(x, y, e.mapper.HeightToNormalized(w*(p.Height-off)+off))
		}
	}
}

// Lower carves from p.Origin down toward p.Height. Results above the
// reference offset go to the ground layer; deeper results go to the base
// layer and flatten the ground there to the offset.
func (e *Engine) Lower(l *terrain.Layers, p Params) {
	win, c, shape, ok := e.dab(p)
	if !ok {
		return
	}
	originN := e.mapper.HeightToNormalized(p.Origin)
	brushN := e.mapper.HeightToNormalized(p.Height)
	offN := e.mapper.HeightToNormalized(e.offset)

	for y := win.Y; y < win.Y+win.Height; y++ {
		for x := win.X; x < win.X+win.Width; x++ {
			w := shape.Weight(float32(x)-c.X, float32(y)-c.Y)
			if w <= 0 {
				continue
			}
			desired := math.Lerp(originN, brushN, w)
			if desired >= offN {
				l.Ground.Lower(x, y, desired)
				continue
			}
			l.Base.Lower(x, y, desired)
			l.Ground.Lower(x, y, offN)
		}
	}
}

// Fill floods the strip between target and seed at height (world units
// above the terrain origin), stamping a square patch at every step along
// the major horizontal axis.
func (e *Engine) Fill(l *terrain.Layers, target, seed math.Vec3, height float32) {
	to := e.mapper.WorldToGrid(target)
	from := e.mapper.WorldToGrid(seed)
	v := e.mapper.HeightToNormalized(height)

	x0, y0 := int(from.X), int(from.Y)
	x1, y1 := int(to.X), int(to.Y)
	dx, dy := x1-x0, y1-y0

	if abs(dx) >= abs(dy) {
		if dx == 0 {
			e.stamp(l, x0, y0, v)
			return
		}
		lo, hi := min(x0, x1), max(x0, x1)
		for x := lo; x <= hi; x++ {
			y := y0 + int(float32(x-x0)/float32(dx)*float32(dy))
			e.stamp(l, x, y, v)
		}
		return
	}

	lo, hi := min(y0, y1), max(y0, y1)
	for y := lo; y <= hi; y++ {
		x := x0 + int(float32(y-y0)/float32(dy)*float32(dx))
		e.stamp(l, x, y, v)
	}
}

func (e *Engine) stamp(l *terrain.Layers, cx, cy int, v float32) {
	size := e.cfg.FillPatch
	win := e.mapper.CellWindow(cx-size/2, cy-size/2, size, size)
	for y := win.Y; y < win.Y+win.Height; y++ {
		for x := win.X; x < win.X+win.Width; x++ {
			l.Ground.Raise(x, y, v)
			l.Paint.Raise(x, y, e.cfg.FillPaint)
		}
	}
}

// Paint writes value into the paint field in a (2·width+1)² window around
// the cell under target. Higher existing weights are kept.
func (e *Engine) Paint(l *terrain.Layers, target math.Vec3, value float32, width int) {
	if width < 0 {
		return
	}
	cx, cy := e.mapper.Cell(target)
	win := e.mapper.CellWindow(cx-width, cy-width, 2*width+1, 2*width+1)
	for y := win.Y; y < win.Y+win.Height; y++ {
		for x := win.X; x < win.X+win.Width; x++ {
			l.Paint.Raise(x, y, value)
		}
	}
}

// PaintValue classifies a tangent for painting: near-horizontal tangents get
// the ridge weight, near-vertical ones the wall weight. ok is false in between.
func (e *Engine) PaintValue(tangent math.Vec3) (float32, bool) {
	y := math.Abs(tangent.Normalize().Y)
	switch {
	case y < e.cfg.HorizontalTangent:
		return e.cfg.PaintRidge, true
	case y > e.cfg.VerticalTangent:
		return e.cfg.PaintWall, true
	default:
		return 0, false
	}
}

func pow(b, e float32) float32 {
	if e == 1 {
		return b
	}
	return float32(gomath.Pow(float64(b), float64(e)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
