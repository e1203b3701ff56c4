package sim

import (
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/spatial"
)

// Frame summarizes one completed step. MinDistance and Pair describe the
// positions the step started from.
type Frame struct {
	Step          int          `json:"step"`
	MinDistance   float64      `json:"min_distance"`
	Pair          physics.Pair `json:"pair"`
	HasPair       bool         `json:"has_pair"`
	KineticEnergy float64      `json:"kinetic_energy"`
	Bounces       int          `json:"bounces"`

	// Set when the spatial index was built for this step.
	IndexChecked bool `json:"index_checked,omitempty"`
	IndexAgrees  bool `json:"index_agrees,omitempty"`
}

type Metric interface {
	Name() string
	Observe(w *physics.World, f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *physics.World, f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(w *physics.World, f Frame)

func (fn ObserverFunc) OnStep(w *physics.World, f Frame) { fn(w, f) }

// Config controls a run. IndexEvery > 0 builds a spatial index from the
// pre-step positions every IndexEvery steps and checks its closest pair
// against the exhaustive one.
type Config struct {
	Steps         int
	IndexEvery    int
	IndexOptions  spatial.Options
	ValidateState bool
}

type Result struct {
	Frames          []Frame
	StepsTaken      int
	InitialEnergy   float64
	FinalEnergy     float64
	EnergyDrift     float64
	IndexChecks     int
	IndexMismatches int
	Metrics         map[string]float64
	Errors          []error
}
