package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	bad := DefaultParams()
	bad.Restitution = 1.5

	tiny := DefaultParams()
	tiny.Width = 10

	tests := []struct {
		name   string
		n      int
		params Params
	}{
		{"zero bodies", 0, DefaultParams()},
		{"negative bodies", -3, DefaultParams()},
		{"restitution above one", 5, bad},
		{"arena smaller than a body", 5, tiny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.n, tt.params)
			if !errors.Is(err, dynamo.ErrInvalidConfiguration) {
				t.Fatalf("New(%d) error = %v, want ErrInvalidConfiguration", tt.n, err)
			}
			if w != nil {
				t.Error("expected nil world on error")
			}
		})
	}
}

func TestNewSamplesWithinRanges(t *testing.T) {
	p := DefaultParams()
	w, err := New(200, p)
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range w.Bodies() {
		if b.Pos.X < 0 || b.Pos.X >= p.Width || b.Pos.Y < 0 || b.Pos.Y >= p.Height {
			t.Errorf("body %d position %v outside arena", b.ID, b.Pos)
		}
		if math.Abs(b.Vel.X) > p.MaxSpeed || math.Abs(b.Vel.Y) > p.MaxSpeed {
			t.Errorf("body %d velocity %v exceeds max speed", b.ID, b.Vel)
		}
		if b.Mass() < p.MassMin || b.Mass() >= p.MassMax {
			t.Errorf("body %d mass %g outside [%g, %g)", b.ID, b.Mass(), p.MassMin, p.MassMax)
		}
		if b.Radius() != b.Mass()/2 {
			t.Errorf("body %d radius %g, want %g", b.ID, b.Radius(), b.Mass()/2)
		}
	}
}

func TestSameSeedIsReproducible(t *testing.T) {
	a, _ := New(20, DefaultParams())
	b, _ := New(20, DefaultParams())
	for i := 0; i < 50; i++ {
		a.Step()
		b.Step()
	}

	pa, pb := a.Positions(), b.Positions()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("body %d diverged: %v vs %v", i, pa[i], pb[i])
		}
	}
}

func TestTwoBodyAttraction(t *testing.T) {
	a := NewBody(0, r2.Vec{}, r2.Vec{}, 10)
	b := NewBody(1, r2.Vec{X: 10}, r2.Vec{}, 10)

	if f := ForceMagnitude(a, b, 1); f != 1 {
		t.Errorf("ForceMagnitude = %g, want 1", f)
	}

	accA, accB, d := PairAcceleration(a, b, 1)
	if d != 10 {
		t.Errorf("distance = %g, want 10", d)
	}
	if accA.X <= 0 || accA.Y != 0 {
		t.Errorf("acceleration of body 0 = %v, want +x", accA)
	}
	if accB.X >= 0 || accB.Y != 0 {
		t.Errorf("acceleration of body 1 = %v, want -x", accB)
	}
	if accA.X != -accB.X {
		t.Errorf("magnitudes differ: %g vs %g", accA.X, -accB.X)
	}
	if !near(accA.X, 0.1, 1e-15) {
		t.Errorf("acceleration = %g, want 0.1", accA.X)
	}
}

func TestPairAccelerationThirdLaw(t *testing.T) {
	w, _ := New(30, DefaultParams())
	bodies := w.Bodies()

	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			accA, accB, _ := PairAcceleration(a, b, 1)
			fa := r2.Scale(a.Mass(), accA)
			fb := r2.Scale(b.Mass(), accB)
			tol := 1e-12 * math.Max(1, r2.Norm(fa))
			if !near(fa.X, -fb.X, tol) || !near(fa.Y, -fb.Y, tol) {
				t.Errorf("pair (%d,%d): m_i a_i = %v, m_j a_j = %v", i, j, fa, fb)
			}
		}
	}
}

func TestCoincidentBodiesStayFinite(t *testing.T) {
	a := NewBody(0, r2.Vec{X: 50, Y: 50}, r2.Vec{}, 10)
	b := NewBody(1, r2.Vec{X: 50, Y: 50}, r2.Vec{}, 12)

	accA, accB, d := PairAcceleration(a, b, 1)
	if d != 0 {
		t.Errorf("distance = %g, want 0", d)
	}
	if accA != (r2.Vec{}) || accB != (r2.Vec{}) {
		t.Errorf("coincident bodies got acceleration %v, %v, want zero", accA, accB)
	}

	if got := EffectiveDistance(3, 5, 2); got != 10 {
		t.Errorf("EffectiveDistance(3, 5, 2) = %g, want 10", got)
	}
	if got := EffectiveDistance(30, 5, 2); got != 30 {
		t.Errorf("EffectiveDistance(30, 5, 2) = %g, want 30", got)
	}
}

func TestWallBounce(t *testing.T) {
	tests := []struct {
		name    string
		pos     r2.Vec
		vel     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{"left wall", r2.Vec{X: 4, Y: 300}, r2.Vec{X: -2}, r2.Vec{X: 5, Y: 300}, r2.Vec{X: 1.8}},
		{"right wall", r2.Vec{X: 796, Y: 300}, r2.Vec{X: 2}, r2.Vec{X: 795, Y: 300}, r2.Vec{X: -1.8}},
		{"floor", r2.Vec{X: 400, Y: 596}, r2.Vec{Y: 2}, r2.Vec{X: 400, Y: 595}, r2.Vec{Y: -1.8}},
		{"free flight", r2.Vec{X: 400, Y: 300}, r2.Vec{X: 1, Y: -1}, r2.Vec{X: 401, Y: 299}, r2.Vec{X: 1, Y: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewFromBodies([]Body{NewBody(0, tt.pos, tt.vel, 10)}, DefaultParams())
			if err != nil {
				t.Fatal(err)
			}
			w.Step()

			b, _ := w.Body(0)
			if !near(b.Pos.X, tt.wantPos.X, 1e-12) || !near(b.Pos.Y, tt.wantPos.Y, 1e-12) {
				t.Errorf("position = %v, want %v", b.Pos, tt.wantPos)
			}
			if !near(b.Vel.X, tt.wantVel.X, 1e-12) || !near(b.Vel.Y, tt.wantVel.Y, 1e-12) {
				t.Errorf("velocity = %v, want %v", b.Vel, tt.wantVel)
			}
		})
	}
}

func TestBodiesStayInsideArena(t *testing.T) {
	p := DefaultParams()
	p.G = 50
	w, _ := New(40, p)

	for step := 0; step < 500; step++ {
		w.Step()
		for _, b := range w.Bodies() {
			r := b.Radius()
			if b.Pos.X < r || b.Pos.X > p.Width-r || b.Pos.Y < r || b.Pos.Y > p.Height-r {
				t.Fatalf("step %d: body %d at %v escaped [r, limit-r] with r=%g", step, b.ID, b.Pos, r)
			}
		}
	}
	if !w.Valid() {
		t.Error("world contains non-finite values")
	}
}

func bruteClosest(pos []r2.Vec) (Pair, float64) {
	best := math.Inf(1)
	var pair Pair
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			if d := r2.Norm(r2.Sub(pos[j], pos[i])); d < best {
				best = d
				pair = Pair{I: i, J: j}
			}
		}
	}
	return pair, best
}

func TestMinDistanceMatchesPreStepBruteForce(t *testing.T) {
	w, _ := New(25, DefaultParams())

	for step := 0; step < 100; step++ {
		before := w.Positions()
		w.Step()

		wantPair, wantDist := bruteClosest(before)
		pair, ok := w.ClosestPair()
		if !ok {
			t.Fatalf("step %d: no closest pair", step)
		}
		d, _ := w.MinDistance()
		if pair != wantPair || d != wantDist {
			t.Fatalf("step %d: got %v at %g, want %v at %g", step, pair, d, wantPair, wantDist)
		}
	}
}

func TestClosestPairTieBreak(t *testing.T) {
	// Every pair of the three collinear bodies at spacing 100 ties between
	// (0,1) and (1,2); the first in enumeration order wins.
	bodies := []Body{
		NewBody(0, r2.Vec{X: 100, Y: 300}, r2.Vec{}, 6),
		NewBody(1, r2.Vec{X: 200, Y: 300}, r2.Vec{}, 6),
		NewBody(2, r2.Vec{X: 300, Y: 300}, r2.Vec{}, 6),
	}
	w, _ := NewFromBodies(bodies, DefaultParams())
	w.Step()

	pair, _ := w.ClosestPair()
	if pair != (Pair{I: 0, J: 1}) {
		t.Errorf("ClosestPair = %v, want {0 1}", pair)
	}
}

func TestMinDistanceUndefined(t *testing.T) {
	w, _ := New(10, DefaultParams())
	if _, ok := w.MinDistance(); ok {
		t.Error("MinDistance defined before the first step")
	}

	w.Step()
	if _, ok := w.ClosestPair(); !ok {
		t.Fatal("ClosestPair undefined after a step")
	}

	w.Reinitialize()
	if d, ok := w.MinDistance(); ok || !math.IsInf(d, 1) {
		t.Errorf("MinDistance after Reinitialize = %g, %v; want +Inf, false", d, ok)
	}
	if _, ok := w.ClosestPair(); ok {
		t.Error("ClosestPair defined after Reinitialize")
	}
	if w.Steps() != 0 {
		t.Errorf("Steps = %d after Reinitialize, want 0", w.Steps())
	}

	single, _ := New(1, DefaultParams())
	single.Step()
	if _, ok := single.ClosestPair(); ok {
		t.Error("single body world reported a closest pair")
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	serialParams := DefaultParams()
	serialParams.Seed = 7
	parallelParams := serialParams
	parallelParams.Workers = 4

	serial, _ := New(150, serialParams)
	parallel, _ := New(150, parallelParams)

	for step := 0; step < 20; step++ {
		serial.Step()
		parallel.Step()

		sp, _ := serial.ClosestPair()
		pp, _ := parallel.ClosestPair()
		if sp != pp {
			t.Fatalf("step %d: parallel pair %v, serial pair %v", step, pp, sp)
		}
		for i, p := range parallel.Positions() {
			q := serial.Positions()[i]
			if !near(p.X, q.X, 1e-6) || !near(p.Y, q.Y, 1e-6) {
				t.Fatalf("step %d: body %d at %v, serial %v", step, i, p, q)
			}
		}
	}
}

func TestPick(t *testing.T) {
	bodies := []Body{
		NewBody(0, r2.Vec{X: 100, Y: 100}, r2.Vec{}, 10),
		NewBody(1, r2.Vec{X: 104, Y: 100}, r2.Vec{}, 10),
		NewBody(2, r2.Vec{X: 400, Y: 400}, r2.Vec{}, 10),
	}
	w, _ := NewFromBodies(bodies, DefaultParams())

	tests := []struct {
		name   string
		p      r2.Vec
		wantID int
		wantOK bool
	}{
		{"overlap picks lowest id", r2.Vec{X: 102, Y: 100}, 0, true},
		{"on the rim", r2.Vec{X: 405, Y: 400}, 2, true},
		{"only second body", r2.Vec{X: 108, Y: 100}, 1, true},
		{"empty space", r2.Vec{X: 700, Y: 50}, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := w.Pick(tt.p)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("Pick(%v) = %d, %v; want %d, %v", tt.p, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestSetMass(t *testing.T) {
	w, _ := New(3, DefaultParams())

	if err := w.SetMass(1, 20); err != nil {
		t.Fatal(err)
	}
	b, _ := w.Body(1)
	if b.Mass() != 20 || b.Radius() != 10 {
		t.Errorf("mass %g radius %g, want 20 and 10", b.Mass(), b.Radius())
	}

	if err := w.SetMass(9, 10); !errors.Is(err, dynamo.ErrUnknownBody) {
		t.Errorf("SetMass(9) error = %v, want ErrUnknownBody", err)
	}
	if err := w.SetMass(0, -1); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("SetMass(-1) error = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := w.Body(-1); !errors.Is(err, dynamo.ErrUnknownBody) {
		t.Errorf("Body(-1) error = %v, want ErrUnknownBody", err)
	}
}

func TestEnergyAccounting(t *testing.T) {
	bodies := []Body{
		NewBody(0, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 1}, 10),
		NewBody(1, r2.Vec{X: 110, Y: 100}, r2.Vec{Y: -2}, 10),
	}
	w, _ := NewFromBodies(bodies, DefaultParams())

	if ke := w.KineticEnergy(); ke != 25 {
		t.Errorf("KineticEnergy = %g, want 25", ke)
	}
	if pe := w.PotentialEnergy(); pe != -10 {
		t.Errorf("PotentialEnergy = %g, want -10", pe)
	}
	if e := w.Energy(); e != 15 {
		t.Errorf("Energy = %g, want 15", e)
	}
	if p := w.Momentum(); p != (r2.Vec{X: 10, Y: -20}) {
		t.Errorf("Momentum = %v, want {10 -20}", p)
	}
	if c := w.CenterOfMass(); c != (r2.Vec{X: 105, Y: 100}) {
		t.Errorf("CenterOfMass = %v, want {105 100}", c)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	w, _ := New(5, DefaultParams())
	w.Step()
	snap := w.Snapshot()

	if snap.Step != 1 || len(snap.Bodies) != 5 || !snap.HasPair {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if d, _ := w.MinDistance(); snap.MinDistance != d {
		t.Errorf("snapshot min distance %g, world %g", snap.MinDistance, d)
	}
	if snap.Arena() != w.Arena() {
		t.Errorf("snapshot arena %v, world %v", snap.Arena(), w.Arena())
	}

	before := snap.Positions()
	w.Step()
	for i, p := range snap.Positions() {
		if p != before[i] {
			t.Fatalf("snapshot body %d moved with the world", i)
		}
	}

	b := snap.Bodies[2]
	if id, ok := snap.Pick(b.Pos); !ok || !snap.Bodies[id].Contains(b.Pos) {
		t.Errorf("Pick at body 2 centre = %d, %v", id, ok)
	}
}
