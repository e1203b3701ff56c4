package metrics

import (
	"math"

	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/sim"
)

// MinSeparation is the smallest closest-pair distance seen over a run.
type MinSeparation struct {
	min float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return "min_separation" }

func (m *MinSeparation) Observe(w *physics.World, f sim.Frame) {
	if f.HasPair && f.MinDistance < m.min {
		m.min = f.MinDistance
	}
}

func (m *MinSeparation) Value() float64 { return m.min }
func (m *MinSeparation) Reset()         { m.min = math.Inf(1) }

type MeanMinDistance struct {
	sum     float64
	samples int
}

func NewMeanMinDistance() *MeanMinDistance { return &MeanMinDistance{} }

func (m *MeanMinDistance) Name() string { return "mean_min_distance" }

func (m *MeanMinDistance) Observe(w *physics.World, f sim.Frame) {
	if !f.HasPair {
		return
	}
	m.sum += f.MinDistance
	m.samples++
}

func (m *MeanMinDistance) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanMinDistance) Reset() {
	m.sum = 0
	m.samples = 0
}

// PairChanges counts steps whose closest pair differs from the previous
// step's.
type PairChanges struct {
	last    physics.Pair
	hasLast bool
	changes int
}

func NewPairChanges() *PairChanges { return &PairChanges{} }

func (p *PairChanges) Name() string { return "pair_changes" }

func (p *PairChanges) Observe(w *physics.World, f sim.Frame) {
	if !f.HasPair {
		return
	}
	if p.hasLast && f.Pair != p.last {
		p.changes++
	}
	p.last, p.hasLast = f.Pair, true
}

func (p *PairChanges) Value() float64 { return float64(p.changes) }

func (p *PairChanges) Reset() {
	p.last = physics.Pair{}
	p.hasLast = false
	p.changes = 0
}

// Standard returns a fresh instance of every metric in this package.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMinSeparation(),
		NewMeanMinDistance(),
		NewPairChanges(),
		NewContainment(),
	}
}
