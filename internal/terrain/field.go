package terrain

import (
	"fmt"

	"github.com/Faultbox/terrasketch/pkg/math"
)

// NewField allocates a size×size field filled with value.
func NewField(size int, value float32) *Field {
	f := &Field{Size: size, Data: make([]float32, size*size)}
	f.Fill(value)
	return f
}

// At returns the sample at column x, row y.
func (f *Field) At(x, y int) float32 {
	return f.Data[y*f.Size+x]
}

// Set stores v at column x, row y, clamped to [0,1].
func (f *Field) Set(x, y int, v float32) {
	f.Data[y*f.Size+x] = math.Clamp(v, 0, 1)
}

// Raise stores v if it is higher than the current sample ("highest wins").
func (f *Field) Raise(x, y int, v float32) {
	i := y*f.Size + x
	if v = math.Clamp(v, 0, 1); v > f.Data[i] {
		f.Data[i] = v
	}
}

// Lower stores v if it is lower than the current sample ("lowest wins").
func (f *Field) Lower(x, y int, v float32) {
	i := y*f.Size + x
	if v = math.Clamp(v, 0, 1); v < f.Data[i] {
		f.Data[i] = v
	}
}

// Fill sets every sample to v.
func (f *Field) Fill(v float32) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return &Field{Size: f.Size, Data: append([]float32(nil), f.Data...)}
}

// CopyFrom overwrites f with src.
func (f *Field) CopyFrom(src *Field) error {
	if src.Size != f.Size {
		return fmt.Errorf("field size mismatch: %d vs %d", src.Size, f.Size)
	}
	copy(f.Data, src.Data)
	return nil
}

// MaxRows folds src into f with max over rows [from, to).
func (f *Field) MaxRows(src *Field, from, to int) {
	for i := from * f.Size; i < to*f.Size; i++ {
		if src.Data[i] > f.Data[i] {
			f.Data[i] = src.Data[i]
		}
	}
}

// MinRows folds src into f with min over rows [from, to).
func (f *Field) MinRows(src *Field, from, to int) {
	for i := from * f.Size; i < to*f.Size; i++ {
		if src.Data[i] < f.Data[i] {
			f.Data[i] = src.Data[i]
		}
	}
}

// MinMax returns the smallest and largest sample.
func (f *Field) MinMax() (lo, hi float32) {
	if len(f.Data) == 0 {
		return 0, 0
	}
	lo, hi = f.Data[0], f.Data[0]
	for _, v := range f.Data[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Bilinear samples the field at fractional cell coordinates, clamped to the grid.
func (f *Field) Bilinear(fx, fy float32) float32 {
	last := f.Size - 1
	if last < 1 {
		if len(f.Data) == 0 {
			return 0
		}
		return f.Data[0]
	}

	fx = math.Clamp(fx, 0, float32(last))
	fy = math.Clamp(fy, 0, float32(last))

	x := min(int(fx), last-1)
	y := min(int(fy), last-1)
	tx := fx - float32(x)
	ty := fy - float32(y)

	// Lerp along the lower row, then the upper row, then between them
	south := math.Lerp(f.At(x, y), f.At(x+1, y), tx)
	north := math.Lerp(f.At(x, y+1), f.At(x+1, y+1), tx)
	return math.Lerp(south, north, ty)
}

// NewLayers allocates ground and base at the reference offset and an empty paint field.
func NewLayers(size int, offset float32) *Layers {
	return &Layers{
		Ground: NewField(size, offset),
		Base:   NewField(size, offset),
		Paint:  NewField(size, 0),
	}
}

// Reset puts ground and base back at the reference offset and clears paint.
func (l *Layers) Reset(offset float32) {
	l.Ground.Fill(offset)
	l.Base.Fill(offset)
	l.Paint.Fill(0)
}

// Clone returns a deep copy of all three fields.
func (l *Layers) Clone() *Layers {
	return &Layers{Ground: l.Ground.Clone(), Base: l.Base.Clone(), Paint: l.Paint.Clone()}
}

// CopyFrom overwrites every field with the matching field of src.
func (l *Layers) CopyFrom(src *Layers) error {
	if err := l.Ground.CopyFrom(src.Ground); err != nil {
		return err
	}
	if err := l.Base.CopyFrom(src.Base); err != nil {
		return err
	}
	return l.Paint.CopyFrom(src.Paint)
}

// Effective returns the combined normalized height of a cell: ground material
// above the offset minus base material carved below it.
func (l *Layers) Effective(x, y int, offset float32) float32 {
	return math.Clamp(l.Ground.At(x, y)+l.Base.At(x, y)-offset, 0, 1)
}
