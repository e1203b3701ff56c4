package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/sim"
	"github.com/san-kum/gravquad/internal/spatial"
)

// Snapshot is what readers see of the running world. Published snapshots
// are never modified.
type Snapshot struct {
	physics.Snapshot
	Tick     int64
	Resets   int64
	Paused   bool
	StepTime time.Duration
}

type Options struct {
	FPS           int
	Index         spatial.Options
	ValidateState bool
}

// Engine steps one world on its own goroutine at a fixed rate. Every other
// goroutine talks to it through published snapshots and request channels;
// nothing outside the loop touches the world.
type Engine struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error

	sim      *sim.Simulator
	opts     Options
	snapshot atomic.Pointer[Snapshot]
	resets   chan struct{}
	pause    chan bool

	tick       int64
	resetCount int64
	paused     bool

	// OnTick runs on the engine goroutine after every publish.
	OnTick func(s *Snapshot)
	// OnReset runs on the engine goroutine after the world is resampled.
	OnReset func()
}

func New(world *physics.World, opts Options) (*Engine, error) {
	if world == nil {
		return nil, dynamo.Invalidf("engine needs a world")
	}
	if opts.FPS <= 0 {
		return nil, dynamo.Invalidf("fps must be positive, got %d", opts.FPS)
	}
	if err := opts.Index.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		sim:    sim.New(world),
		opts:   opts,
		resets: make(chan struct{}, 1),
		pause:  make(chan bool, 1),
	}
	e.publish(0)
	return e, nil
}

// Start launches the loop. It returns immediately; calling it on a running
// engine does nothing.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(ctx, e.done)
	log.Printf("engine started: %d bodies at %d fps", e.sim.World().Len(), e.opts.FPS)
}

// Stop ends the loop and waits for it to exit. It is safe to call more
// than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	cancel()
	<-done
	log.Println("engine stopped")
}

// Done is closed when the loop exits, whether stopped or failed. It is nil
// before Start.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Err reports why the loop exited early, if it did.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(e.opts.FPS))
	defer ticker.Stop()

	world := e.sim.World()
	last := time.Now()

	err := e.sim.RunWithCallback(ctx, sim.Config{ValidateState: e.opts.ValidateState}, func(f sim.Frame) bool {
		e.publish(time.Since(last))

		for {
			select {
			case <-ctx.Done():
				return false
			case <-e.resets:
				world.Reinitialize()
				e.resetCount++
				e.publish(0)
				if e.OnReset != nil {
					e.OnReset()
				}
			case p := <-e.pause:
				e.paused = p
				e.publish(0)
			case <-ticker.C:
				if !e.paused {
					last = time.Now()
					return true
				}
			}
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Printf("engine loop failed: %v", err)
		e.mu.Lock()
		e.err = err
		e.running = false
		e.cancel()
		e.mu.Unlock()
	}
}

func (e *Engine) publish(stepTime time.Duration) {
	s := &Snapshot{
		Snapshot: e.sim.World().Snapshot(),
		Tick:     e.tick,
		Resets:   e.resetCount,
		Paused:   e.paused,
		StepTime: stepTime,
	}
	e.tick++
	e.snapshot.Store(s)
	if e.OnTick != nil {
		e.OnTick(s)
	}
}

// Snapshot returns the latest published state.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Reset asks the loop to resample every body. It reports false when a reset
// is already pending.
func (e *Engine) Reset() bool {
	select {
	case e.resets <- struct{}{}:
		return true
	default:
		return false
	}
}

// SetPaused stops or resumes stepping. A paused engine still handles
// resets. The newest request wins if two arrive before the loop runs.
func (e *Engine) SetPaused(paused bool) {
	for {
		select {
		case e.pause <- paused:
			return
		default:
		}
		select {
		case <-e.pause:
		default:
		}
	}
}

// Nearest answers a nearest-neighbour query against the latest snapshot.
// The index is built on the caller's goroutine.
func (e *Engine) Nearest(id int) (spatial.Neighbor, error) {
	ix, err := e.index()
	if err != nil {
		return spatial.Neighbor{}, err
	}
	return ix.Lookup(id)
}

// NearestTo finds the body closest to an arbitrary arena point.
func (e *Engine) NearestTo(p r2.Vec) (spatial.Neighbor, bool, error) {
	ix, err := e.index()
	if err != nil {
		return spatial.Neighbor{}, false, err
	}
	nb, ok := ix.NearestTo(p)
	return nb, ok, nil
}

// ClosestViaIndex computes the closest pair of snap's positions through
// the quadtree; a nil snap means the latest one. A snapshot's own Pair
// describes the positions before its step, so the two agree only when
// compared on the same positions.
func (e *Engine) ClosestViaIndex(snap *Snapshot) (spatial.Pair, bool, error) {
	if snap == nil {
		snap = e.Snapshot()
	}
	ix, err := e.indexOf(snap)
	if err != nil {
		return spatial.Pair{}, false, err
	}
	p, ok := ix.ClosestPair()
	return p, ok, nil
}

// Pick runs the hit test against the latest snapshot.
func (e *Engine) Pick(p r2.Vec) (int, bool) {
	return e.Snapshot().Pick(p)
}

func (e *Engine) index() (*spatial.Index, error) {
	return e.indexOf(e.Snapshot())
}

func (e *Engine) indexOf(snap *Snapshot) (*spatial.Index, error) {
	ix, err := spatial.Build(snap.Snapshot, e.opts.Index)
	if err != nil {
		return nil, fmt.Errorf("index tick %d: %w", snap.Tick, err)
	}
	return ix, nil
}
