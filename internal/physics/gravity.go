package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EffectiveDistance floors a true separation at twice the larger radius so
// the force stays bounded once two bodies touch or overlap.
func EffectiveDistance(d, ri, rj float64) float64 {
	return math.Max(d, 2*math.Max(ri, rj))
}

// PairAcceleration returns the acceleration contributions of the attraction
// between a and b together with their true separation. The contributions
// satisfy a.Mass()*accA == -b.Mass()*accB.
//
// The direction vector b.Pos-a.Pos is divided by the effective distance, not
// the true one, which keeps the result finite when the bodies coincide.
func PairAcceleration(a, b Body, g float64) (accA, accB r2.Vec, dist float64) {
	delta := r2.Sub(b.Pos, a.Pos)
	dist = r2.Norm(delta)
	eff := EffectiveDistance(dist, a.radius, b.radius)

	force := g * a.mass * b.mass / (eff * eff)
	pull := r2.Scale(force/eff, delta)

	accA = r2.Scale(1/a.mass, pull)
	accB = r2.Scale(-1/b.mass, pull)
	return accA, accB, dist
}

// ForceMagnitude is G*mi*mj/eff^2 for the pair, using the effective distance.
func ForceMagnitude(a, b Body, g float64) float64 {
	eff := EffectiveDistance(r2.Norm(r2.Sub(b.Pos, a.Pos)), a.radius, b.radius)
	return g * a.mass * b.mass / (eff * eff)
}
