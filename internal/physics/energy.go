package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// KineticEnergy is sum(m v^2 / 2) over all bodies.
func (w *World) KineticEnergy() float64 {
	var ke float64
	for _, b := range w.bodies {
		ke += 0.5 * b.mass * r2.Norm2(b.Vel)
	}
	return ke
}

// PotentialEnergy is the pairwise -G mi mj / eff sum, using the same
// softened distance as the force law.
func (w *World) PotentialEnergy() float64 {
	var pe float64
	g := w.params.G
	for i := range w.bodies {
		a := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			eff := EffectiveDistance(r2.Norm(r2.Sub(b.Pos, a.Pos)), a.radius, b.radius)
			pe -= g * a.mass * b.mass / eff
		}
	}
	return pe
}

func (w *World) Energy() float64 {
	return w.KineticEnergy() + w.PotentialEnergy()
}

// Momentum is the total linear momentum. Wall bounces do not conserve it.
func (w *World) Momentum() r2.Vec {
	var p r2.Vec
	for _, b := range w.bodies {
		p = r2.Add(p, r2.Scale(b.mass, b.Vel))
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position.
func (w *World) CenterOfMass() r2.Vec {
	var c r2.Vec
	var total float64
	for _, b := range w.bodies {
		c = r2.Add(c, r2.Scale(b.mass, b.Pos))
		total += b.mass
	}
	if total == 0 {
		return r2.Vec{X: math.NaN(), Y: math.NaN()}
	}
	return r2.Scale(1/total, c)
}
