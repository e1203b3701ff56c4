package physics

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
)

// parallelMinBodies is the body count below which the force pass always
// runs serially; goroutine start-up dominates for smaller worlds.
const parallelMinBodies = 64

// Pair is an unordered pair of body ids, stored with I < J.
type Pair struct {
	I, J int
}

// closest tracks the running minimum separation of a force pass. Only a
// strictly smaller distance replaces the current pair, so the first pair
// found at a given minimum wins.
type closest struct {
	dist float64
	pair Pair
	ok   bool
}

func newClosest() closest { return closest{dist: math.Inf(1)} }

func (c *closest) observe(d float64, i, j int) {
	if d < c.dist {
		c.dist = d
		c.pair = Pair{I: i, J: j}
		c.ok = true
	}
}

type partial struct {
	acc  []r2.Vec
	best closest
}

// World owns every body of one simulation. It is not safe for concurrent
// use; a step runs to completion before any accessor should be called.
type World struct {
	params Params
	bodies []Body
	acc    []r2.Vec
	rnd    *rand.Rand

	best     closest
	steps    int
	bounces  int
	partials []partial
}

// New creates a world of n randomly sampled bodies. n <= 0 and invalid
// params are rejected with dynamo.ErrInvalidConfiguration.
func New(n int, p Params) (*World, error) {
	if n <= 0 {
		return nil, dynamo.Invalidf("body count must be positive, got %d", n)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		params: p,
		bodies: make([]Body, n),
		acc:    make([]r2.Vec, n),
		rnd:    rand.New(rand.NewSource(p.Seed)),
	}
	w.Reinitialize()
	return w, nil
}

// NewFromBodies creates a world from explicit bodies. Ids are reassigned to
// the slice index so they stay stable for the life of the world.
func NewFromBodies(bodies []Body, p Params) (*World, error) {
	if len(bodies) == 0 {
		return nil, dynamo.Invalidf("body count must be positive, got 0")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		params: p,
		bodies: make([]Body, len(bodies)),
		acc:    make([]r2.Vec, len(bodies)),
		rnd:    rand.New(rand.NewSource(p.Seed)),
		best:   newClosest(),
	}
	for i, b := range bodies {
		if !(b.mass > 0) {
			return nil, dynamo.Invalidf("body %d has non-positive mass %g", i, b.mass)
		}
		b.ID = i
		w.bodies[i] = b
	}
	return w, nil
}

// Reinitialize resamples every body in place: positions uniform over the
// arena, velocity components uniform in [-MaxSpeed, MaxSpeed), masses
// uniform in [MassMin, MassMax). The closest pair becomes undefined until
// the next Step.
func (w *World) Reinitialize() {
	p := w.params
	for i := range w.bodies {
		pos := r2.Vec{X: w.rnd.Float64() * p.Width, Y: w.rnd.Float64() * p.Height}
		vel := r2.Vec{
			X: (w.rnd.Float64()*2 - 1) * p.MaxSpeed,
			Y: (w.rnd.Float64()*2 - 1) * p.MaxSpeed,
		}
		mass := p.MassMin + w.rnd.Float64()*(p.MassMax-p.MassMin)
		w.bodies[i] = NewBody(i, pos, vel, mass)
	}
	w.best = newClosest()
	w.steps = 0
	w.bounces = 0
}

// Step advances the system by one unit of time: pairwise gravity and
// closest-pair tracking over the pre-step positions, semi-implicit Euler
// integration, then wall collision.
func (w *World) Step() {
	w.best = newClosest()
	for i := range w.acc {
		w.acc[i] = r2.Vec{}
	}

	if workers := w.params.Workers; workers > 1 && len(w.bodies) >= parallelMinBodies {
		w.accumulateParallel(workers)
	} else {
		w.accumulate(0, len(w.bodies), w.acc, &w.best)
	}

	for i := range w.bodies {
		b := &w.bodies[i]
		b.Vel = r2.Add(b.Vel, w.acc[i])
		b.Pos = r2.Add(b.Pos, b.Vel)
	}

	w.bounces += w.collide()
	w.steps++
}

// accumulate runs the pair loop for rows [start, end) into acc.
func (w *World) accumulate(start, end int, acc []r2.Vec, best *closest) {
	g := w.params.G
	n := len(w.bodies)
	for i := start; i < end; i++ {
		for j := i + 1; j < n; j++ {
			ai, aj, d := PairAcceleration(w.bodies[i], w.bodies[j], g)
			best.observe(d, i, j)
			acc[i] = r2.Add(acc[i], ai)
			acc[j] = r2.Add(acc[j], aj)
		}
	}
}

// accumulateParallel splits rows across workers, each with its own
// accumulator, and merges them in worker order. Worker w owns rows that come
// strictly after worker w-1's, so merging with a strict comparison keeps the
// serial (i, j) tie-break.
func (w *World) accumulateParallel(workers int) {
	n := len(w.bodies)
	if len(w.partials) < workers {
		w.partials = make([]partial, workers)
	}
	for k := range w.partials {
		if len(w.partials[k].acc) != n {
			w.partials[k].acc = make([]r2.Vec, n)
		}
	}

	used := dynamo.ParallelFor(n, workers, parallelMinBodies/4, func(worker, start, end int) {
		part := &w.partials[worker]
		for i := range part.acc {
			part.acc[i] = r2.Vec{}
		}
		part.best = newClosest()
		w.accumulate(start, end, part.acc, &part.best)
	})

	for k := 0; k < used; k++ {
		part := &w.partials[k]
		for i, a := range part.acc {
			w.acc[i] = r2.Add(w.acc[i], a)
		}
		if part.best.ok {
			w.best.observe(part.best.dist, part.best.pair.I, part.best.pair.J)
		}
	}
}

func (w *World) Len() int { return len(w.bodies) }

func (w *World) Params() Params { return w.params }

// Steps counts steps since creation or the last Reinitialize.
func (w *World) Steps() int { return w.steps }

// Bounces counts wall contacts since creation or the last Reinitialize.
func (w *World) Bounces() int { return w.bounces }

func (w *World) Arena() r2.Box { return w.params.Arena() }

// Bodies returns a copy of every body ordered by id.
func (w *World) Bodies() []Body {
	out := make([]Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Body returns a copy of one body.
func (w *World) Body(id int) (Body, error) {
	if id < 0 || id >= len(w.bodies) {
		return Body{}, dynamo.ErrUnknownBody
	}
	return w.bodies[id], nil
}

// Positions returns body positions ordered by id.
func (w *World) Positions() []r2.Vec {
	out := make([]r2.Vec, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b.Pos
	}
	return out
}

// Radii returns body radii ordered by id.
func (w *World) Radii() []float64 {
	out := make([]float64, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b.radius
	}
	return out
}

// ClosestPair returns the pair found by the last Step. It is empty before
// the first step, after Reinitialize, and for worlds of fewer than two
// bodies.
func (w *World) ClosestPair() (Pair, bool) {
	return w.best.pair, w.best.ok
}

// MinDistance returns the separation of ClosestPair, measured on the
// positions the last Step started from.
func (w *World) MinDistance() (float64, bool) {
	if !w.best.ok {
		return math.Inf(1), false
	}
	return w.best.dist, true
}

// SetMass changes a body's mass (and so its radius).
func (w *World) SetMass(id int, mass float64) error {
	if id < 0 || id >= len(w.bodies) {
		return dynamo.ErrUnknownBody
	}
	if !(mass > 0) {
		return dynamo.Invalidf("mass must be positive, got %g", mass)
	}
	if mass > math.Min(w.params.Width, w.params.Height) {
		return dynamo.Invalidf("arena cannot hold a body of mass %g", mass)
	}
	w.bodies[id].SetMass(mass)
	return nil
}

// Pick returns the first body, by id, whose circle contains p.
func (w *World) Pick(p r2.Vec) (int, bool) {
	return pick(w.bodies, p)
}

// Valid reports whether every position and velocity is finite.
func (w *World) Valid() bool {
	for _, b := range w.bodies {
		for _, v := range [4]float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
