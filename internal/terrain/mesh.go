package terrain

import (
	gomath "math"

	"github.com/Faultbox/terrasketch/internal/grid"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// BuildMesh triangulates a committed surface for rendering. Each cell corner
// becomes one vertex carrying the paint weight sampled at that cell.
// paint may be nil.
func BuildMesh(surface, paint *Field, m *grid.Mapper) *Mesh {
	size := surface.Size
	if size < 2 {
		return &Mesh{}
	}

	vertices := make([]Vertex, 0, size*size)
	indices := make([]uint32, 0, (size-1)*(size-1)*6)

	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}

	originY := m.Origin().Y
	inv := 1 / float32(size-1)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			h := originY + m.NormalizedToHeight(surface.At(x, y))
			p := m.GridToWorld(math.Vec2{X: float32(x), Y: float32(y)}, h)
			pos := [3]float32{p.X, p.Y, p.Z}
			updateBounds(&bounds, pos)

			v := Vertex{
				Position: pos,
				TexCoord: [2]float32{float32(x) * inv, float32(y) * inv},
			}
			if paint != nil && paint.Size == size {
				v.Paint = paint.At(x, y)
			}
			vertices = append(vertices, v)
		}
	}

	for y := 0; y < size - 1; y++ {
		for x := 0; x < size - 1; x++ {
			i0 := uint32(y*size + x) // (x, y)
			i1 := i0 + 1             // (x+1, y)
			i2 := i0 + uint32(size)  // (x, y+1)
			i3 := i2 + 1             // (x+1, y+1)

			// Counter-clockwise seen from +Y
			indices = append(indices,
				i0, i2, i1,
				i1, i2, i3,
			)
		}
	}

	accumulateNormals(vertices, indices)

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
}

// accumulateNormals sums face normals into each shared vertex and normalizes.
func accumulateNormals(vertices []Vertex, indices []uint32) {
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		pa, pb, pc := vertices[a].Position, vertices[b].Position, vertices[c].Position
		edge1 := [3]float32{pb[0] - pa[0], pb[1] - pa[1], pb[2] - pa[2]}
		edge2 := [3]float32{pc[0] - pa[0], pc[1] - pa[1], pc[2] - pa[2]}
		n := cross(edge1, edge2)
		for _, idx := range [3]uint32{a, b, c} {
			vertices[idx].Normal[0] += n[0]
			vertices[idx].Normal[1] += n[1]
			vertices[idx].Normal[2] += n[2]
		}
	}
	for i := range vertices {
		vertices[i].Normal = normalize(vertices[i].Normal)
	}
}

// HeightAt samples the world height of a surface field under p.
func HeightAt(surface *Field, m *grid.Mapper, p math.Vec3) float32 {
	g := m.WorldToGrid(p)
	return m.Origin().Y + m.NormalizedToHeight(surface.Bilinear(g.X, g.Y))
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	l := float32(gomath.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
