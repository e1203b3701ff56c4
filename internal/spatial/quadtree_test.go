package spatial

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
)

func box(x0, y0, x1, y1 float64) r2.Box {
	return r2.Box{Min: r2.Vec{X: x0, Y: y0}, Max: r2.Vec{X: x1, Y: y1}}
}

func TestContainsIsHalfOpen(t *testing.T) {
	b := box(0, 0, 100, 100)
	tests := []struct {
		p    r2.Vec
		want bool
	}{
		{r2.Vec{X: 0, Y: 0}, true},
		{r2.Vec{X: 99.999, Y: 50}, true},
		{r2.Vec{X: 100, Y: 50}, false},
		{r2.Vec{X: 50, Y: 100}, false},
		{r2.Vec{X: -0.001, Y: 50}, false},
	}
	for _, tt := range tests {
		if got := Contains(b, tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestMinDistance(t *testing.T) {
	b := box(10, 10, 20, 20)
	tests := []struct {
		name string
		p    r2.Vec
		want float64
	}{
		{"inside", r2.Vec{X: 15, Y: 15}, 0},
		{"left", r2.Vec{X: 5, Y: 15}, 5},
		{"below", r2.Vec{X: 15, Y: 26}, 6},
		{"corner", r2.Vec{X: 23, Y: 24}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinDistance(b, tt.p); got != tt.want {
				t.Errorf("MinDistance(%v) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestQuadrantLayout(t *testing.T) {
	b := box(0, 0, 100, 100)
	tests := []struct {
		p    r2.Vec
		q    int
		want r2.Box
	}{
		{r2.Vec{X: 10, Y: 10}, 0, box(0, 0, 50, 50)},
		{r2.Vec{X: 60, Y: 10}, 1, box(50, 0, 100, 50)},
		{r2.Vec{X: 10, Y: 60}, 2, box(0, 50, 50, 100)},
		{r2.Vec{X: 60, Y: 60}, 3, box(50, 50, 100, 100)},
		{r2.Vec{X: 50, Y: 50}, 3, box(50, 50, 100, 100)},
	}
	for _, tt := range tests {
		q := quadrant(b, tt.p)
		if q != tt.q {
			t.Errorf("quadrant(%v) = %d, want %d", tt.p, q, tt.q)
		}
		if got := quadrantBox(b, q); got != tt.want {
			t.Errorf("quadrantBox(%d) = %v, want %v", q, got, tt.want)
		}
		if !Contains(quadrantBox(b, q), tt.p) {
			t.Errorf("point %v not inside its own quadrant", tt.p)
		}
	}
}

func TestThreeBodiesSubdivideOnce(t *testing.T) {
	tree, err := NewTree(box(0, 0, 100, 100), Options{Capacity: 1, MaxDepth: DefaultMaxDepth})
	if err != nil {
		t.Fatal(err)
	}
	items := []Item{
		{ID: 0, Pos: r2.Vec{X: 10, Y: 10}},
		{ID: 1, Pos: r2.Vec{X: 60, Y: 10}},
		{ID: 2, Pos: r2.Vec{X: 10, Y: 60}},
	}
	for _, it := range items {
		if err := tree.Insert(it); err != nil {
			t.Fatal(err)
		}
	}

	if tree.Subdivisions() != 1 {
		t.Errorf("Subdivisions = %d, want 1", tree.Subdivisions())
	}
	if tree.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", tree.Depth())
	}

	leaves := tree.Leaves()
	if len(leaves) != 4 {
		t.Fatalf("got %d leaves, want 4", len(leaves))
	}
	wantBounds := []r2.Box{box(0, 0, 50, 50), box(50, 0, 100, 50), box(0, 50, 50, 100), box(50, 50, 100, 100)}
	wantIDs := [][]int{{0}, {1}, {2}, nil}
	seen := map[int]int{}
	for i, leaf := range leaves {
		if leaf.Bounds != wantBounds[i] {
			t.Errorf("leaf %d bounds = %v, want %v", i, leaf.Bounds, wantBounds[i])
		}
		if len(leaf.Items) != len(wantIDs[i]) {
			t.Errorf("leaf %d holds %d items, want %d", i, len(leaf.Items), len(wantIDs[i]))
			continue
		}
		for k, it := range leaf.Items {
			seen[it.ID]++
			if it.ID != wantIDs[i][k] {
				t.Errorf("leaf %d item %d = %d, want %d", i, k, it.ID, wantIDs[i][k])
			}
		}
	}
	for _, it := range items {
		if seen[it.ID] != 1 {
			t.Errorf("body %d appears in %d leaves", it.ID, seen[it.ID])
		}
	}

	for _, it := range items {
		got, ok := tree.NearestNeighbor(it)
		want, _ := BruteForceNearest(items, it.ID)
		if !ok || got.ID != want.ID || got.Distance != want.Distance {
			t.Errorf("NearestNeighbor(%d) = %+v, want %+v", it.ID, got, want)
		}
	}
}

func TestInsertOutOfBounds(t *testing.T) {
	tree, _ := NewTree(box(0, 0, 100, 100), DefaultOptions())
	for _, p := range []r2.Vec{{X: 100, Y: 10}, {X: -1, Y: 10}, {X: 10, Y: 100}} {
		if err := tree.Insert(Item{ID: 0, Pos: p}); !errors.Is(err, dynamo.ErrOutOfBounds) {
			t.Errorf("Insert(%v) error = %v, want ErrOutOfBounds", p, err)
		}
	}
	if tree.Len() != 0 {
		t.Errorf("Len = %d after rejected inserts, want 0", tree.Len())
	}
}

func TestCoincidentPointsStopAtMaxDepth(t *testing.T) {
	tree, _ := NewTree(box(0, 0, 100, 100), Options{Capacity: 1, MaxDepth: 5})
	for i := 0; i < 20; i++ {
		if err := tree.Insert(Item{ID: i, Pos: r2.Vec{X: 33, Y: 33}}); err != nil {
			t.Fatal(err)
		}
	}
	if tree.Depth() != 5 {
		t.Errorf("Depth = %d, want 5", tree.Depth())
	}
	if tree.Len() != 20 {
		t.Errorf("Len = %d, want 20", tree.Len())
	}

	nb, ok := tree.NearestNeighbor(Item{ID: 4, Pos: r2.Vec{X: 33, Y: 33}})
	if !ok || nb.Distance != 0 || nb.ID == 4 {
		t.Errorf("NearestNeighbor = %+v, %v; want another coincident item at distance 0", nb, ok)
	}
}

func TestNearestNeighborWithoutCandidates(t *testing.T) {
	tree, _ := NewTree(box(0, 0, 100, 100), DefaultOptions())
	if _, ok := tree.NearestTo(r2.Vec{X: 5, Y: 5}, -1); ok {
		t.Error("empty tree returned a neighbour")
	}

	only := Item{ID: 7, Pos: r2.Vec{X: 5, Y: 5}}
	_ = tree.Insert(only)
	if _, ok := tree.NearestNeighbor(only); ok {
		t.Error("single item found a neighbour other than itself")
	}
	nb, ok := tree.NearestTo(r2.Vec{X: 8, Y: 9}, -1)
	if !ok || nb.ID != 7 || nb.Distance != 5 {
		t.Errorf("NearestTo = %+v, %v; want id 7 at 5", nb, ok)
	}
}

func TestResetReusesArena(t *testing.T) {
	tree, _ := NewTree(box(0, 0, 100, 100), Options{Capacity: 2, MaxDepth: 8})
	for i := 0; i < 50; i++ {
		_ = tree.Insert(Item{ID: i, Pos: r2.Vec{X: float64(i*2) + 0.5, Y: float64(i) + 0.5}})
	}
	nodes := cap(tree.nodes)

	tree.Reset(box(0, 0, 200, 200))
	if tree.Len() != 0 || tree.Subdivisions() != 0 || tree.Depth() != 0 {
		t.Errorf("Reset left Len=%d Subdivisions=%d Depth=%d", tree.Len(), tree.Subdivisions(), tree.Depth())
	}
	if tree.Bounds() != box(0, 0, 200, 200) {
		t.Errorf("Bounds = %v after Reset", tree.Bounds())
	}
	if len(tree.Leaves()) != 1 || len(tree.Leaves()[0].Items) != 0 {
		t.Error("Reset tree is not a single empty leaf")
	}

	tree.Reset(box(0, 0, 100, 100))
	for i := 0; i < 50; i++ {
		_ = tree.Insert(Item{ID: i, Pos: r2.Vec{X: float64(i*2) + 0.5, Y: float64(i) + 0.5}})
	}
	if cap(tree.nodes) != nodes {
		t.Errorf("arena grew from %d to %d on an identical rebuild", nodes, cap(tree.nodes))
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"defaults", DefaultOptions(), true},
		{"zero capacity", Options{Capacity: 0, MaxDepth: 4}, false},
		{"negative depth", Options{Capacity: 4, MaxDepth: -1}, false},
		{"flat tree", Options{Capacity: 1, MaxDepth: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}

	if _, err := NewTree(box(0, 0, 0, 10), DefaultOptions()); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("NewTree with empty bounds error = %v", err)
	}
}

func TestBruteForceClosestPair(t *testing.T) {
	items := []Item{
		{ID: 0, Pos: r2.Vec{X: 0, Y: 0}},
		{ID: 1, Pos: r2.Vec{X: 3, Y: 4}},
		{ID: 2, Pos: r2.Vec{X: 6, Y: 8}},
	}
	p, ok := BruteForceClosestPair(items)
	if !ok || p.I != 0 || p.J != 1 || p.Distance != 5 {
		t.Errorf("BruteForceClosestPair = %+v, want {0 1 5}", p)
	}
	if _, ok := BruteForceClosestPair(items[:1]); ok {
		t.Error("one item produced a pair")
	}
	if _, ok := BruteForceNearest(items, 9); ok {
		t.Error("unknown id produced a neighbour")
	}
	if d := MinDistance(box(0, 0, 1, 1), r2.Vec{X: 4, Y: 5}); math.Abs(d-5) > 1e-12 {
		t.Errorf("MinDistance = %g, want 5", d)
	}
}

type gridSource []r2.Vec

func (g gridSource) Positions() []r2.Vec { return g }
func (g gridSource) Arena() r2.Box       { return box(0, 0, 200, 200) }

// latticeTies lays 30 points on a 6x5 lattice of spacing 20, so every
// point has two to four neighbours at the same distance. Ids are scattered
// over the lattice so tree order and id order differ.
func latticeTies() gridSource {
	g := make(gridSource, 30)
	for id := range g {
		cell := id * 7 % 30
		g[id] = r2.Vec{X: float64(10 + 20*(cell%6)), Y: float64(10 + 20*(cell/6))}
	}
	return g
}

func TestEqualDistancesPreferLowestID(t *testing.T) {
	src := latticeTies()
	tests := []Options{
		{Capacity: 1, MaxDepth: 5},
		{Capacity: 2, MaxDepth: 3},
		{Capacity: 3, MaxDepth: 0},
		DefaultOptions(),
	}

	for _, opts := range tests {
		ix, err := Build(src, opts)
		if err != nil {
			t.Fatalf("Build(%+v): %v", opts, err)
		}
		items := ix.Items()

		for id := range items {
			got, _ := ix.NearestNeighbor(id)
			want, _ := BruteForceNearest(items, id)
			if got.ID != want.ID || got.Distance != want.Distance {
				t.Errorf("%+v: NearestNeighbor(%d) = %d at %g, want %d at %g",
					opts, id, got.ID, got.Distance, want.ID, want.Distance)
			}
		}

		got, _ := ix.ClosestPair()
		want, _ := BruteForceClosestPair(items)
		if got != want {
			t.Errorf("%+v: ClosestPair = %+v, want %+v", opts, got, want)
		}
	}
}
