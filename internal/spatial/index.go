package spatial

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
)

// Source is anything that can expose body positions, ordered by id, and
// the arena they live in. *physics.World and engine snapshots satisfy it.
type Source interface {
	Positions() []r2.Vec
	Arena() r2.Box
}

// Pair is a closest pair found through the index, with I < J.
type Pair struct {
	I, J     int
	Distance float64
}

// Index is a quadtree built from one set of positions. It is read-only
// after Build and safe for concurrent queries.
type Index struct {
	tree  *Tree
	items []Item
}

// Build inserts every position of src, in id order, into a fresh tree.
func Build(src Source, opts Options) (*Index, error) {
	tree, err := NewTree(src.Arena(), opts)
	if err != nil {
		return nil, err
	}
	ix := &Index{tree: tree}
	if err := ix.fill(src.Positions()); err != nil {
		return nil, err
	}
	return ix, nil
}

// Rebuild refills the index from src, reusing the tree's storage. It must
// not run concurrently with queries.
func (ix *Index) Rebuild(src Source) error {
	ix.tree.Reset(src.Arena())
	return ix.fill(src.Positions())
}

func (ix *Index) fill(positions []r2.Vec) error {
	ix.items = ix.items[:0]
	for id, p := range positions {
		it := Item{ID: id, Pos: p}
		if err := ix.tree.Insert(it); err != nil {
			return fmt.Errorf("body %d at (%.2f, %.2f): %w", id, p.X, p.Y, err)
		}
		ix.items = append(ix.items, it)
	}
	return nil
}

func (ix *Index) Tree() *Tree { return ix.tree }

func (ix *Index) Len() int { return len(ix.items) }

// Items returns the indexed points ordered by id.
func (ix *Index) Items() []Item {
	out := make([]Item, len(ix.items))
	copy(out, ix.items)
	return out
}

// NearestNeighbor returns the body closest to body id. It reports false
// for an unknown id and when id is the only body.
func (ix *Index) NearestNeighbor(id int) (Neighbor, bool) {
	if id < 0 || id >= len(ix.items) {
		return Neighbor{}, false
	}
	return ix.tree.NearestNeighbor(ix.items[id])
}

// NearestTo returns the body closest to an arbitrary point.
func (ix *Index) NearestTo(p r2.Vec) (Neighbor, bool) {
	return ix.tree.NearestTo(p, -1)
}

// Lookup is NearestNeighbor with an error for unknown ids.
func (ix *Index) Lookup(id int) (Neighbor, error) {
	if id < 0 || id >= len(ix.items) {
		return Neighbor{}, fmt.Errorf("%w: %d", dynamo.ErrUnknownBody, id)
	}
	nb, ok := ix.tree.NearestNeighbor(ix.items[id])
	if !ok {
		return Neighbor{}, fmt.Errorf("%w: body %d has no neighbour", dynamo.ErrInvalidState, id)
	}
	return nb, nil
}

// ClosestPair runs one nearest-neighbour query per body in id order and
// keeps the strictly smallest answer. Since each query prefers the lowest
// id on ties, the result is the first pair in (i, j) order, the same pair
// BruteForceClosestPair reports.
func (ix *Index) ClosestPair() (Pair, bool) {
	best := Pair{I: -1, J: -1, Distance: math.Inf(1)}
	for _, it := range ix.items {
		nb, ok := ix.tree.NearestNeighbor(it)
		if !ok || !(nb.Distance < best.Distance) {
			continue
		}
		i, j := it.ID, nb.ID
		if j < i {
			i, j = j, i
		}
		best = Pair{I: i, J: j, Distance: nb.Distance}
	}
	return best, best.I >= 0
}
