// Package terrain holds the height and paint fields edited by the brushes and
// the mesh snapshot handed to the renderer.
package terrain

// Field is a square grid of float32 samples stored row-major: Data[y*Size+x].
// Height layers and the paint field share this representation.
type Field struct {
	Size int
	Data []float32
}

// Layers groups the fields one sculpting pass mutates together.
type Layers struct {
	Ground *Field // material above the reference offset
	Base   *Field // material below the reference offset (undercuts)
	Paint  *Field // material blend weights
}

// Vertex represents a terrain mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Paint    float32
}

// Mesh holds a triangulated snapshot of the committed surface.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}
