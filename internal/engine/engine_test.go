package engine_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
	"github.com/san-kum/gravquad/internal/engine"
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/spatial"
)

// releaseTracker records when a context derived from it is released.
// context.WithCancel calls the stop function returned by AfterFunc once the
// child is canceled.
type releaseTracker struct {
	context.Context
	released atomic.Bool
}

func (r *releaseTracker) AfterFunc(f func()) func() bool {
	stop := context.AfterFunc(r.Context, f)
	return func() bool {
		r.released.Store(true)
		return stop()
	}
}

func options() engine.Options {
	return engine.Options{FPS: 200, Index: spatial.DefaultOptions(), ValidateState: true}
}

var _ = Describe("Engine", func() {
	var (
		world *physics.World
		eng   *engine.Engine
	)

	BeforeEach(func() {
		var err error
		world, err = physics.New(20, physics.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		eng, err = engine.New(world, options())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		eng.Stop()
	})

	It("rejects invalid options", func() {
		_, err := engine.New(world, engine.Options{FPS: 0, Index: spatial.DefaultOptions()})
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())

		_, err = engine.New(world, engine.Options{FPS: 30, Index: spatial.Options{Capacity: 0}})
		Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())

		_, err = engine.New(nil, options())
		Expect(err).To(HaveOccurred())
	})

	It("publishes an initial snapshot before starting", func() {
		snap := eng.Snapshot()
		Expect(snap).NotTo(BeNil())
		Expect(snap.Step).To(Equal(0))
		Expect(snap.HasPair).To(BeFalse())
		Expect(snap.Bodies).To(HaveLen(20))
	})

	It("steps the world and publishes snapshots", func() {
		var ticks atomic.Int64
		eng.OnTick = func(*engine.Snapshot) { ticks.Add(1) }

		eng.Start(context.Background())
		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">=", 5))
		Expect(ticks.Load()).To(BeNumerically(">=", 5))

		snap := eng.Snapshot()
		Expect(snap.HasPair).To(BeTrue())
		Expect(snap.MinDistance).To(BeNumerically(">", 0))
	})

	It("keeps published snapshots immutable", func() {
		eng.Start(context.Background())
		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">=", 1))

		snap := eng.Snapshot()
		before := snap.Positions()
		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">", snap.Step))
		Expect(snap.Positions()).To(Equal(before))
	})

	It("resamples the world on reset", func() {
		var resets atomic.Int32
		eng.OnReset = func() { resets.Add(1) }
		eng.Start(context.Background())

		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">=", 3))
		Expect(eng.Reset()).To(BeTrue())

		Eventually(func() int64 { return eng.Snapshot().Resets }).Should(Equal(int64(1)))
		Expect(resets.Load()).To(Equal(int32(1)))
	})

	It("stops stepping while paused", func() {
		eng.Start(context.Background())
		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">=", 2))

		eng.SetPaused(true)
		Eventually(func() bool { return eng.Snapshot().Paused }).Should(BeTrue())
		step := eng.Snapshot().Step
		Consistently(func() int { return eng.Snapshot().Step }, 100*time.Millisecond).Should(Equal(step))

		eng.SetPaused(false)
		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">", step))
	})

	It("answers nearest-neighbour queries from the latest snapshot", func() {
		eng.Start(context.Background())
		Eventually(func() int { return eng.Snapshot().Step }).Should(BeNumerically(">=", 2))

		nb, err := eng.Nearest(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(nb.ID).NotTo(Equal(4))
		Expect(nb.Distance).To(BeNumerically(">", 0))

		_, err = eng.Nearest(99)
		Expect(errors.Is(err, dynamo.ErrUnknownBody)).To(BeTrue())

		pair, ok, err := eng.ClosestViaIndex(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(pair.I).To(BeNumerically("<", pair.J))

		snap := eng.Snapshot()
		items := make([]spatial.Item, len(snap.Bodies))
		for i, p := range snap.Positions() {
			items[i] = spatial.Item{ID: i, Pos: p}
		}
		want, _ := spatial.BruteForceClosestPair(items)
		got, _, err := eng.ClosestViaIndex(snap)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Distance).To(Equal(want.Distance))
	})

	It("finds bodies under a point", func() {
		snap := eng.Snapshot()
		b := snap.Bodies[7]
		id, ok := eng.Pick(b.Pos)
		Expect(ok).To(BeTrue())
		Expect(snap.Bodies[id].Contains(b.Pos)).To(BeTrue())

		nb, ok, err := eng.NearestTo(b.Pos)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(nb.Distance).To(BeNumerically("<=", r2.Norm(r2.Sub(snap.Bodies[id].Pos, b.Pos))))
	})

	It("stops cleanly and tolerates a second stop", func() {
		eng.Start(context.Background())
		done := eng.Done()
		eng.Stop()
		Eventually(done).Should(BeClosed())
		eng.Stop()
		Expect(eng.Err()).NotTo(HaveOccurred())
	})

	It("exits when its context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		eng.Start(ctx)
		cancel()
		Eventually(eng.Done()).Should(BeClosed())
	})

	It("fails when the world becomes invalid", func() {
		bad := physics.NewBody(0, r2.Vec{X: 50, Y: 50}, r2.Vec{X: math.NaN()}, 10)
		w, err := physics.NewFromBodies([]physics.Body{bad}, physics.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		failing, err := engine.New(w, options())
		Expect(err).NotTo(HaveOccurred())

		parent := &releaseTracker{Context: context.Background()}
		failing.Start(parent)
		Eventually(failing.Done()).Should(BeClosed())
		Expect(errors.Is(failing.Err(), dynamo.ErrInvalidState)).To(BeTrue())
		Eventually(parent.released.Load).Should(BeTrue())
		failing.Stop()
	})
})
