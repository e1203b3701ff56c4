package physics

import "gonum.org/v1/gonum/spatial/r2"

// Snapshot is an immutable copy of a world's observable state. It is safe
// to share between goroutines once built.
type Snapshot struct {
	Step          int
	Width         float64
	Height        float64
	Bodies        []Body
	Pair          Pair
	HasPair       bool
	MinDistance   float64
	KineticEnergy float64
	Energy        float64
}

// Snapshot copies the current state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Step:          w.steps,
		Width:         w.params.Width,
		Height:        w.params.Height,
		Bodies:        w.Bodies(),
		KineticEnergy: w.KineticEnergy(),
		Energy:        w.Energy(),
	}
	s.Pair, s.HasPair = w.ClosestPair()
	s.MinDistance, _ = w.MinDistance()
	return s
}

func (s Snapshot) Arena() r2.Box {
	return r2.Box{Max: r2.Vec{X: s.Width, Y: s.Height}}
}

func (s Snapshot) Positions() []r2.Vec {
	out := make([]r2.Vec, len(s.Bodies))
	for i, b := range s.Bodies {
		out[i] = b.Pos
	}
	return out
}

// Pick is World.Pick against the snapshot.
func (s Snapshot) Pick(p r2.Vec) (int, bool) {
	return pick(s.Bodies, p)
}

func pick(bodies []Body, p r2.Vec) (int, bool) {
	for i, b := range bodies {
		if b.Contains(p) {
			return i, true
		}
	}
	return -1, false
}
