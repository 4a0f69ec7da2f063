// Package grid maps world-space positions onto height field cells and keeps
// brush windows inside the grid.
package grid

import (
	gomath "math"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// Mapper converts between world space and grid space for a square height field.
// It is immutable and safe to share.
type Mapper struct {
	origin     math.Vec3
	size       math.Vec3
	resolution int
}

// Window is a clamped brush window: the top-left cell and the extent in cells.
type Window struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the window covers no cells.
func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

// NewMapper creates a mapper for a terrain placed at origin with the given world size.
func NewMapper(origin, size math.Vec3, resolution int) *Mapper {
	return &Mapper{origin: origin, size: size, resolution: resolution}
}

// FromConfig builds a mapper from the terrain section of the configuration.
func FromConfig(cfg config.TerrainConfig) *Mapper {
	return NewMapper(cfg.Origin, cfg.Size, cfg.Resolution)
}

// Resolution returns the number of cells per side.
func (m *Mapper) Resolution() int { return m.resolution }

// Origin returns the world position of cell (0,0).
func (m *Mapper) Origin() math.Vec3 { return m.origin }

// Size returns the world extent of the terrain.
func (m *Mapper) Size() math.Vec3 { return m.size }

// WorldToGrid converts a world position to fractional grid coordinates.
// X maps to the grid column, Z to the grid row; Y is discarded.
func (m *Mapper) WorldToGrid(p math.Vec3) math.Vec2 {
	rel := p.Sub(m.origin)
	res := float32(m.resolution)
	return math.Vec2{
		X: rel.X / m.size.X * res,
		Y: rel.Z / m.size.Z * res,
	}
}

// GridToWorld is the inverse of WorldToGrid for the horizontal axes. The
// returned point carries the supplied world height.
func (m *Mapper) GridToWorld(g math.Vec2, y float32) math.Vec3 {
	res := float32(m.resolution)
	return math.Vec3{
		X: g.X/res*m.size.X + m.origin.X,
		Y: y,
		Z: g.Y/res*m.size.Z + m.origin.Z,
	}
}

// WorldToCells converts a horizontal world length to a length in cells.
func (m *Mapper) WorldToCells(length float32) float32 {
	return length * float32(m.resolution) / m.size.X
}

// HeightToNormalized converts a height above the terrain origin to the [0,1]
// height field convention.
func (m *Mapper) HeightToNormalized(h float32) float32 {
	return h / m.size.Y
}

// NormalizedToHeight converts a normalized height back to world units above the origin.
func (m *Mapper) NormalizedToHeight(v float32) float32 {
	return v * m.size.Y
}

// BrushOrigin returns the top-left cell of a width×height window centred on
// the projection of p, each axis clamped to [0, resolution].
func (m *Mapper) BrushOrigin(p math.Vec3, width, height int) (int, int) {
	g := m.WorldToGrid(p)
	res := float32(m.resolution)
	x := math.Clamp(g.X-float32(width)/2, 0, res)
	y := math.Clamp(g.Y-float32(height)/2, 0, res)
	return int(x), int(y)
}

// ClampBrushExtent shrinks width and height until a window at (x, y) fits in
// [0, resolution). It never grows the window.
func (m *Mapper) ClampBrushExtent(x, y, width, height int) (int, int) {
	return clampExtent(x, width, m.resolution), clampExtent(y, height, m.resolution)
}

// Window computes the clamped brush window for a width×height brush centred on p.
func (m *Mapper) Window(p math.Vec3, width, height int) Window {
	x, y := m.BrushOrigin(p, width, height)
	w, h := m.ClampBrushExtent(x, y, width, height)
	return Window{X: x, Y: y, Width: w, Height: h}
}

// CellWindow clamps a window given directly in cell coordinates. Negative
// origins are trimmed from the leading edge.
func (m *Mapper) CellWindow(x, y, width, height int) Window {
	if x < 0 {
		width += x
		x = 0
	}
	if y < 0 {
		height += y
		y = 0
	}
	x = min(x, m.resolution)
	y = min(y, m.resolution)
	w, h := m.ClampBrushExtent(x, y, width, height)
	return Window{X: x, Y: y, Width: w, Height: h}
}

// Cell returns the grid cell containing p, clamped to the grid.
func (m *Mapper) Cell(p math.Vec3) (int, int) {
	g := m.WorldToGrid(p)
	last := m.resolution - 1
	x := int(gomath.Floor(float64(g.X)))
	y := int(gomath.Floor(float64(g.Y)))
	return min(max(x, 0), last), min(max(y, 0), last)
}

func clampExtent(start, extent, resolution int) int {
	if start < 0 || start >= resolution {
		return 0
	}
	if start+extent > resolution {
		extent = resolution - start
	}
	return max(extent, 0)
}
