package sim

import (
	"context"
	"sync"

	"github.com/san-kum/gravquad/internal/physics"
)

// Ensemble runs independent worlds with consecutive seeds, one goroutine
// per world. Each world is still stepped by a single goroutine.
type Ensemble struct {
	bodies     int
	params     physics.Params
	numRuns    int
	seedStart  uint64
	newMetrics func() []Metric
}

func NewEnsemble(bodies int, params physics.Params, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{bodies: bodies, params: params, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a factory so every run gets its own metric instances.
func (e *Ensemble) WithMetrics(factory func() []Metric) *Ensemble {
	e.newMetrics = factory
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			params := e.params
			params.Seed = e.seedStart + uint64(idx)

			world, err := physics.New(e.bodies, params)
			if err != nil {
				errs[idx] = err
				return
			}

			sim := New(world)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
