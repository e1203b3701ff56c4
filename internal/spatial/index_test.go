package spatial_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/spatial"
)

type points struct {
	pos   []r2.Vec
	arena r2.Box
}

func (p points) Positions() []r2.Vec { return p.pos }
func (p points) Arena() r2.Box       { return p.arena }

func randomPoints(seed uint64, n int) points {
	rnd := rand.New(rand.NewSource(seed))
	p := points{arena: r2.Box{Max: r2.Vec{X: 800, Y: 600}}}
	for i := 0; i < n; i++ {
		p.pos = append(p.pos, r2.Vec{X: rnd.Float64() * 800, Y: rnd.Float64() * 600})
	}
	return p
}

var _ = Describe("Index", func() {
	Describe("nearest neighbour", func() {
		DescribeTable("matches a brute-force scan",
			func(seed uint64, n int, opts spatial.Options) {
				src := randomPoints(seed, n)
				ix, err := spatial.Build(src, opts)
				Expect(err).NotTo(HaveOccurred())
				Expect(ix.Len()).To(Equal(n))
				Expect(ix.Tree().Len()).To(Equal(n))

				items := ix.Items()
				for id := range items {
					got, ok := ix.NearestNeighbor(id)
					want, wantOK := spatial.BruteForceNearest(items, id)
					Expect(ok).To(Equal(wantOK))
					Expect(got.Distance).To(Equal(want.Distance), "body %d", id)
					Expect(got.ID).To(Equal(want.ID), "body %d", id)
				}
			},
			Entry("two bodies", uint64(1), 2, spatial.DefaultOptions()),
			Entry("default options", uint64(2), 15, spatial.DefaultOptions()),
			Entry("capacity one", uint64(3), 60, spatial.Options{Capacity: 1, MaxDepth: 12}),
			Entry("a few hundred bodies", uint64(4), 300, spatial.DefaultOptions()),
			Entry("flat tree", uint64(5), 40, spatial.Options{Capacity: 4, MaxDepth: 0}),
		)

		It("reports no neighbour for a lone body or an unknown id", func() {
			ix, err := spatial.Build(randomPoints(9, 1), spatial.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())

			_, ok := ix.NearestNeighbor(0)
			Expect(ok).To(BeFalse())
			_, ok = ix.NearestNeighbor(5)
			Expect(ok).To(BeFalse())

			_, err = ix.Lookup(5)
			Expect(errors.Is(err, dynamo.ErrUnknownBody)).To(BeTrue())
			_, err = ix.Lookup(0)
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})

		It("finds the body nearest to an arbitrary point", func() {
			src := points{
				arena: r2.Box{Max: r2.Vec{X: 100, Y: 100}},
				pos:   []r2.Vec{{X: 10, Y: 10}, {X: 90, Y: 90}, {X: 55, Y: 45}},
			}
			ix, err := spatial.Build(src, spatial.Options{Capacity: 1, MaxDepth: 4})
			Expect(err).NotTo(HaveOccurred())

			nb, ok := ix.NearestTo(r2.Vec{X: 50, Y: 50})
			Expect(ok).To(BeTrue())
			Expect(nb.ID).To(Equal(2))
		})
	})

	Describe("building", func() {
		It("rejects positions outside the arena", func() {
			src := points{
				arena: r2.Box{Max: r2.Vec{X: 100, Y: 100}},
				pos:   []r2.Vec{{X: 10, Y: 10}, {X: 100, Y: 10}},
			}
			_, err := spatial.Build(src, spatial.DefaultOptions())
			Expect(errors.Is(err, dynamo.ErrOutOfBounds)).To(BeTrue())
		})

		It("rejects invalid options", func() {
			_, err := spatial.Build(randomPoints(1, 3), spatial.Options{Capacity: 0})
			Expect(errors.Is(err, dynamo.ErrInvalidConfiguration)).To(BeTrue())
		})

		It("rebuilds in place", func() {
			ix, err := spatial.Build(randomPoints(1, 50), spatial.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())

			next := randomPoints(2, 30)
			Expect(ix.Rebuild(next)).To(Succeed())
			Expect(ix.Len()).To(Equal(30))
			Expect(ix.Tree().Len()).To(Equal(30))

			want, _ := spatial.BruteForceClosestPair(ix.Items())
			got, ok := ix.ClosestPair()
			Expect(ok).To(BeTrue())
			Expect(got.Distance).To(Equal(want.Distance))
		})
	})

	Describe("alongside the physics step", func() {
		var world *physics.World

		BeforeEach(func() {
			params := physics.DefaultParams()
			params.Seed = 42
			var err error
			world, err = physics.New(40, params)
			Expect(err).NotTo(HaveOccurred())
		})

		It("agrees with the exhaustive closest pair computed during the step", func() {
			for step := 0; step < 200; step++ {
				ix, err := spatial.Build(world, spatial.DefaultOptions())
				Expect(err).NotTo(HaveOccurred())
				indexed, ok := ix.ClosestPair()
				Expect(ok).To(BeTrue())

				world.Step()

				exhaustive, ok := world.ClosestPair()
				Expect(ok).To(BeTrue())
				d, _ := world.MinDistance()
				Expect(indexed.Distance).To(Equal(d), "step %d", step)
				Expect([]int{indexed.I, indexed.J}).To(ConsistOf(exhaustive.I, exhaustive.J), "step %d", step)
			}
		})

		It("never feeds back into the world", func() {
			before := world.Bodies()
			_, err := spatial.Build(world, spatial.Options{Capacity: 1, MaxDepth: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(world.Bodies()).To(Equal(before))
		})
	})
})
