package refine

import (
	"context"
	"encoding/binary"
	"image"
	gomath "math"

	xdraw "golang.org/x/image/draw"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/internal/terrain"
)

// Terrace stylizes layers into noisy terraces: each layer is resampled to a
// working resolution, its heights perturbed by value noise weighted by the
// paint field, quantized into steps and resampled back.
type Terrace struct {
	Resolution  int
	NoiseScale  float32 // Noise period in working-resolution pixels
	NoiseWeight float32
	Step        float32 // Terrace step in normalized height units
	Seed        int64
}

// NewTerrace creates a terrace refiner from configuration.
func NewTerrace(cfg config.RefineConfig) *Terrace {
	return &Terrace{
		Resolution:  cfg.Resolution,
		NoiseScale:  cfg.NoiseScale,
		NoiseWeight: cfg.NoiseWeight,
		Step:        cfg.TerraceStep,
		Seed:        cfg.Seed,
	}
}

// Refine terraces every layer present in req.
func (t *Terrace) Refine(ctx context.Context, req Request) (Result, error) {
	res := Result{Ground: req.Ground.Clone(), Base: req.Base.Clone()}

	var paint *terrain.Field
	if req.Paint != nil {
		paint = resample(req.Paint, t.Resolution)
	}

	if req.HasGround {
		out, err := t.layer(ctx, req.Ground, paint, req.GroundSpan, false)
		if err != nil {
			return Result{}, err
		}
		res.Ground = out
	}
	if req.HasBase {
		out, err := t.layer(ctx, req.Base, paint, req.BaseSpan, true)
		if err != nil {
			return Result{}, err
		}
		res.Base = out
	}
	return res, nil
}

// layer terraces one normalized field. Ground terraces where paint is low;
// base terraces where it is high.
func (t *Terrace) layer(ctx context.Context, f, paint *terrain.Field, span float32, base bool) (*terrain.Field, error) {
	work := resample(f, t.Resolution)
	size := work.Size

	level := float32(0)
	if t.Step > 0 {
		level = span / t.Step
	}
	scale := float64(t.NoiseScale)
	if scale <= 0 {
		scale = 1
	}

	var peak float32
	for y := 0; y < size; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < size; x++ {
			i := y*size + x
			r := work.Data[i]

			var a float32
			if paint != nil {
				a = paint.Data[i]
			}
			if !base {
				a = 1 - a
			}
			a *= 1 - 2*float32(gomath.Abs(float64(0.5-r)))

			n := float32(valueNoise(float64(x)/scale, float64(y)/scale, t.Seed))
			r *= n*a*t.NoiseWeight + 1

			if level > 0 {
				r = float32(gomath.Floor(float64(r*level))) / level
			}
			work.Data[i] = r
			peak = max(peak, r)
		}
	}

	// Noise can push samples past 1; rescale so the top terrace stays at 1
	if peak > 0 {
		for i := range work.Data {
			work.Data[i] /= peak
		}
	}

	return resample(work, f.Size), nil
}

// resample scales a field to size×size with bilinear filtering.
func resample(f *terrain.Field, size int) *terrain.Field {
	if size <= 0 || size == f.Size {
		return f.Clone()
	}
	src := toGray16(f)
	dst := image.NewGray16(image.Rect(0, 0, size, size))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return fromGray16(dst)
}

func toGray16(f *terrain.Field) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Size, f.Size))
	for y := 0; y < f.Size; y++ {
		for x := 0; x < f.Size; x++ {
			v := min(max(f.At(x, y), 0), 1)
			off := img.PixOffset(x, y)
			binary.BigEndian.PutUint16(img.Pix[off:], uint16(v*0xFFFF+0.5))
		}
	}
	return img
}

func fromGray16(img *image.Gray16) *terrain.Field {
	b := img.Bounds()
	f := terrain.NewField(b.Dx(), 0)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			f.Data[y*f.Size+x] = float32(binary.BigEndian.Uint16(img.Pix[off:])) / 0xFFFF
		}
	}
	return f
}
