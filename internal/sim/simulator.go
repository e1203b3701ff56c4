package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/gravquad/internal/dynamo"
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/spatial"
)

// Simulator drives a single world. Like the world itself it must only be
// used from one goroutine.
type Simulator struct {
	world     *physics.World
	metrics   []Metric
	observers []Observer
	index     *spatial.Index
}

func New(world *physics.World) *Simulator {
	return &Simulator{
		world:     world,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) World() *physics.World { return s.world }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Steps <= 0 {
		return nil, dynamo.Invalidf("steps must be positive, got %d", cfg.Steps)
	}

	result := &Result{
		Frames:  make([]Frame, 0, cfg.Steps),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.InitialEnergy = s.world.Energy()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w after %d steps: %w", dynamo.ErrContextCanceled, i, ctx.Err())
		default:
		}

		f, err := s.step(cfg)
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
		if f.IndexChecked {
			result.IndexChecks++
			if !f.IndexAgrees {
				result.IndexMismatches++
			}
		}
		result.Frames = append(result.Frames, f)
		result.StepsTaken++

		if cfg.ValidateState && !s.world.Valid() {
			result.Errors = append(result.Errors, dynamo.SimError{
				Step:    f.Step,
				Message: "invalid state (NaN/Inf)",
				Wrapped: dynamo.ErrInvalidState,
			})
			break
		}
	}

	result.FinalEnergy = s.world.Energy()
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) / math.Abs(result.InitialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps until cfg.Steps is reached, the callback returns
// false, or ctx is done. Steps <= 0 means no step limit. The callback runs
// on the stepping goroutine between steps, so it may touch the world.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; cfg.Steps <= 0 || i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f, err := s.step(cfg)
		if err != nil {
			return err
		}

		if cfg.ValidateState && !s.world.Valid() {
			return dynamo.SimError{Step: f.Step, Message: "invalid state (NaN/Inf)", Wrapped: dynamo.ErrInvalidState}
		}

		if !callback(f) {
			return nil
		}
	}

	return nil
}

// step advances the world once and builds its frame. An index failure is
// returned alongside a valid frame; the step itself always happens.
func (s *Simulator) step(cfg Config) (Frame, error) {
	var (
		indexed   spatial.Pair
		indexedOK bool
		indexErr  error
	)
	check := cfg.IndexEvery > 0 && s.world.Steps()%cfg.IndexEvery == 0
	if check {
		indexed, indexedOK, indexErr = s.closestViaIndex(cfg.IndexOptions)
	}

	bouncesBefore := s.world.Bounces()
	s.world.Step()

	f := Frame{
		Step:          s.world.Steps(),
		KineticEnergy: s.world.KineticEnergy(),
		Bounces:       s.world.Bounces() - bouncesBefore,
	}
	f.Pair, f.HasPair = s.world.ClosestPair()
	f.MinDistance, _ = s.world.MinDistance()

	if check && indexErr == nil {
		f.IndexChecked = true
		f.IndexAgrees = indexedOK == f.HasPair && (!f.HasPair || indexed.Distance == f.MinDistance)
	}

	for _, m := range s.metrics {
		m.Observe(s.world, f)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.world, f)
	}

	if indexErr != nil {
		return f, fmt.Errorf("step %d: index: %w", f.Step, indexErr)
	}
	return f, nil
}

func (s *Simulator) closestViaIndex(opts spatial.Options) (spatial.Pair, bool, error) {
	if s.index == nil {
		ix, err := spatial.Build(s.world, opts)
		if err != nil {
			return spatial.Pair{}, false, err
		}
		s.index = ix
	} else if err := s.index.Rebuild(s.world); err != nil {
		return spatial.Pair{}, false, err
	}
	p, ok := s.index.ClosestPair()
	return p, ok, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.IndexEvery < 0 {
		return dynamo.Invalidf("index_every must be non-negative, got %d", cfg.IndexEvery)
	}
	if cfg.IndexEvery > 0 {
		if err := cfg.IndexOptions.Validate(); err != nil {
			return err
		}
	}
	return nil
}
