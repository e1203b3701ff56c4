// Package physics implements the gravitational world: a fixed set of
// bodies attracting each other pairwise inside a walled arena.
//
// A [World] is advanced with [World.Step], which in one pass over the
// pre-step positions
//
//   - accumulates the softened Newtonian acceleration of every pair,
//   - records the exact closest pair,
//
// then integrates with semi-implicit Euler (unit time step) and bounces
// bodies off the walls with a damped reflection.
//
// The softening floors the separation at twice the larger radius (see
// [EffectiveDistance]) so touching or overlapping bodies never produce an
// unbounded force.
//
//	w, err := physics.New(15, physics.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	w.Step()
//	pair, _ := w.ClosestPair()
//
// The world never consults a spatial index. Closest-pair tracking is the
// exhaustive pass that also computes the forces.
package physics
