// Package refine defines the heightfield refinement pass run on commit and
// the implementations shipped with the sculptor.
package refine

import (
	"context"
	"fmt"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/internal/terrain"
)

// Request carries the layers to refine. Ground and Base are each normalized
// to their own [min,max] range; the spans record that range in normalized
// height units.
type Request struct {
	Ground, Base *terrain.Field
	Paint        *terrain.Field

	HasGround, HasBase bool
	GroundSpan         float32
	BaseSpan           float32
}

// Result holds refined layers in the same normalization as the request.
// A layer absent from the request is passed back unchanged.
type Result struct {
	Ground, Base *terrain.Field
}

// Refiner transforms sculpted layers into refined ones of the same
// resolution. Implementations must tolerate being fed their own output.
type Refiner interface {
	Refine(ctx context.Context, req Request) (Result, error)
}

// Func adapts a function to the Refiner interface.
type Func func(ctx context.Context, req Request) (Result, error)

// Refine calls f.
func (f Func) Refine(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Passthrough returns the layers unchanged.
type Passthrough struct{}

// Refine returns copies of the request layers.
func (Passthrough) Refine(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Ground: req.Ground.Clone(), Base: req.Base.Clone()}, nil
}

// New builds the refiner selected by the configuration.
func New(cfg config.RefineConfig) (Refiner, error) {
	switch cfg.Mode {
	case "", "terrace":
		return NewTerrace(cfg), nil
	case "passthrough", "none":
		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown refine mode %q", cfg.Mode)
	}
}
