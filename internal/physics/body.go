package physics

import "gonum.org/v1/gonum/spatial/r2"

// Body is a point mass moving in the arena. The collision radius is derived
// from the mass (mass / 2) and only changes through SetMass.
type Body struct {
	ID  int
	Pos r2.Vec
	Vel r2.Vec

	mass   float64
	radius float64
}

// NewBody returns a body with its radius derived from mass.
func NewBody(id int, pos, vel r2.Vec, mass float64) Body {
	b := Body{ID: id, Pos: pos, Vel: vel}
	b.SetMass(mass)
	return b
}

// SetMass updates the mass and keeps the radius in sync.
func (b *Body) SetMass(m float64) {
	b.mass = m
	b.radius = m / 2
}

func (b Body) Mass() float64   { return b.mass }
func (b Body) Radius() float64 { return b.radius }

// Contains reports whether p lies inside or on the body's circle.
func (b Body) Contains(p r2.Vec) bool {
	return r2.Norm2(r2.Sub(p, b.Pos)) <= b.radius*b.radius
}
