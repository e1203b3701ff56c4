package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
)

const (
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
	DefaultG           = 1.0
	DefaultRestitution = 0.9
	DefaultMassMin     = 5.0
	DefaultMassMax     = 15.0
	DefaultMaxSpeed    = 2.0
)

// Params fixes the arena, the force law and the sampling ranges used by
// (re)initialization. Workers > 1 enables the parallel force pass.
type Params struct {
	Width       float64
	Height      float64
	G           float64
	Restitution float64
	MassMin     float64
	MassMax     float64
	MaxSpeed    float64
	Workers     int
	Seed        uint64
}

func DefaultParams() Params {
	return Params{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		G:           DefaultG,
		Restitution: DefaultRestitution,
		MassMin:     DefaultMassMin,
		MassMax:     DefaultMassMax,
		MaxSpeed:    DefaultMaxSpeed,
		Seed:        1,
	}
}

// Arena returns the rectangle bodies live in.
func (p Params) Arena() r2.Box {
	return r2.Box{Max: r2.Vec{X: p.Width, Y: p.Height}}
}

// Validate rejects parameters that would let a step divide by zero or leave
// the clamp interval [r, limit-r] empty.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return dynamo.Invalidf("arena must be positive, got %gx%g", p.Width, p.Height)
	}
	if p.G < 0 {
		return dynamo.Invalidf("gravitational constant must be non-negative, got %g", p.G)
	}
	if p.Restitution < 0 || p.Restitution > 1 {
		return dynamo.Invalidf("restitution must be in [0, 1], got %g", p.Restitution)
	}
	if p.MassMin <= 0 {
		return dynamo.Invalidf("minimum mass must be positive, got %g", p.MassMin)
	}
	if p.MassMax < p.MassMin {
		return dynamo.Invalidf("mass range [%g, %g) is empty", p.MassMin, p.MassMax)
	}
	if p.MaxSpeed < 0 {
		return dynamo.Invalidf("max speed must be non-negative, got %g", p.MaxSpeed)
	}
	// radius = mass/2, so the largest body has diameter MassMax.
	if p.Width < p.MassMax || p.Height < p.MassMax {
		return dynamo.Invalidf("arena %gx%g cannot hold a body of mass %g", p.Width, p.Height, p.MassMax)
	}
	return nil
}
