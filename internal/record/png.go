package record

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// SurfaceImage converts a normalized field to a 16-bit grey image, row y of
// the field becoming image row y.
func SurfaceImage(f *terrain.Field) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Size, f.Size))
	for y := 0; y < f.Size; y++ {
		for x := 0; x < f.Size; x++ {
			v := math.Clamp(f.At(x, y), 0, 1)
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*65535 + 0.5)})
		}
	}
	return img
}

// WritePNG writes a field as a 16-bit greyscale PNG.
func WritePNG(path string, f *terrain.Field) error {
	if f == nil || f.Size == 0 {
		return fmt.Errorf("record: empty field")
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("record: create png: %w", err)
	}
	if err := png.Encode(out, SurfaceImage(f)); err != nil {
		out.Close()
		return fmt.Errorf("record: encode png: %w", err)
	}
	return out.Close()
}
