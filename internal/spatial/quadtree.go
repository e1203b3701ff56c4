package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/dynamo"
)

const (
	DefaultCapacity = 4
	DefaultMaxDepth = 12
)

// Options controls leaf splitting. A leaf splits once it holds more than
// Capacity items, unless it already sits at MaxDepth, in which case it keeps
// every item it is given.
type Options struct {
	Capacity int
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{Capacity: DefaultCapacity, MaxDepth: DefaultMaxDepth}
}

func (o Options) Validate() error {
	if o.Capacity < 1 {
		return dynamo.Invalidf("leaf capacity must be at least 1, got %d", o.Capacity)
	}
	if o.MaxDepth < 0 {
		return dynamo.Invalidf("max depth must be non-negative, got %d", o.MaxDepth)
	}
	return nil
}

// Item is a point stored in the tree, identified by the id of the body it
// stands for.
type Item struct {
	ID  int
	Pos r2.Vec
}

// Neighbor is the answer to a nearest-neighbour query.
type Neighbor struct {
	ID       int
	Pos      r2.Vec
	Distance float64
}

// node is either a leaf holding items or an internal node whose four
// children live at nodes[kids:kids+4]. The root is node 0, so kids == 0
// marks a leaf.
type node struct {
	bounds r2.Box
	depth  int
	kids   int
	items  []Item
}

func (n *node) leaf() bool { return n.kids == 0 }

// Tree is a region quadtree stored as a flat node arena. Reset keeps the
// arena and the per-node item buffers, so rebuilding every frame does not
// allocate once the tree has reached its working size.
type Tree struct {
	opts   Options
	nodes  []node
	count  int
	splits int
	depth  int
}

// NewTree returns an empty tree covering bounds.
func NewTree(bounds r2.Box, opts Options) (*Tree, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !(bounds.Max.X > bounds.Min.X) || !(bounds.Max.Y > bounds.Min.Y) {
		return nil, dynamo.Invalidf("index bounds must have positive area, got %v", bounds)
	}
	t := &Tree{opts: opts}
	t.Reset(bounds)
	return t, nil
}

// Reset empties the tree and re-roots it at bounds.
func (t *Tree) Reset(bounds r2.Box) {
	t.nodes = t.nodes[:0]
	t.count = 0
	t.splits = 0
	t.depth = 0
	t.alloc(bounds, 0)
}

// alloc appends a node, reusing the item buffer left behind by a previous
// build when there is one.
func (t *Tree) alloc(bounds r2.Box, depth int) int {
	idx := len(t.nodes)
	if idx < cap(t.nodes) {
		t.nodes = t.nodes[:idx+1]
		n := &t.nodes[idx]
		n.bounds, n.depth, n.kids = bounds, depth, 0
		n.items = n.items[:0]
	} else {
		t.nodes = append(t.nodes, node{bounds: bounds, depth: depth})
	}
	if depth > t.depth {
		t.depth = depth
	}
	return idx
}

func (t *Tree) Bounds() r2.Box { return t.nodes[0].bounds }

// Len is the number of items inserted since the last Reset.
func (t *Tree) Len() int { return t.count }

// Subdivisions counts leaves that have split since the last Reset.
func (t *Tree) Subdivisions() int { return t.splits }

// Depth is the depth of the deepest node; a lone root has depth 0.
func (t *Tree) Depth() int { return t.depth }

// Insert adds it to the leaf containing its position.
func (t *Tree) Insert(it Item) error {
	if !Contains(t.nodes[0].bounds, it.Pos) {
		return dynamo.ErrOutOfBounds
	}

	idx := 0
	for !t.nodes[idx].leaf() {
		n := &t.nodes[idx]
		idx = n.kids + quadrant(n.bounds, it.Pos)
	}

	n := &t.nodes[idx]
	n.items = append(n.items, it)
	t.count++
	if len(n.items) > t.opts.Capacity && n.depth < t.opts.MaxDepth {
		t.subdivide(idx)
	}
	return nil
}

// subdivide turns leaf idx into an internal node and hands each of its items
// to the matching child. Children are not split further here even if one of
// them ends up over capacity; that happens on its next insertion.
func (t *Tree) subdivide(idx int) {
	bounds, depth := t.nodes[idx].bounds, t.nodes[idx].depth

	kids := len(t.nodes)
	for q := 0; q < 4; q++ {
		t.alloc(quadrantBox(bounds, q), depth+1)
	}

	// alloc may have moved the arena.
	n := &t.nodes[idx]
	n.kids = kids
	for _, it := range n.items {
		c := &t.nodes[kids+quadrant(bounds, it.Pos)]
		c.items = append(c.items, it)
	}
	n.items = n.items[:0]
	t.splits++
}

// NearestNeighbor returns the item closest to it, other than it itself.
// It reports false when the tree holds no other item.
func (t *Tree) NearestNeighbor(it Item) (Neighbor, bool) {
	return t.NearestTo(it.Pos, it.ID)
}

// NearestTo returns the item closest to p whose id is not exclude. Pass a
// negative exclude to consider every item. Among items at the same
// distance the lowest id wins.
func (t *Tree) NearestTo(p r2.Vec, exclude int) (Neighbor, bool) {
	best := Neighbor{ID: -1, Distance: math.Inf(1)}
	t.search(0, p, exclude, &best)
	return best, best.ID >= 0
}

// search visits the child containing p first, then the other children in
// slot order, skipping any child that cannot hold anything closer than, or
// as close as, the best distance found so far.
func (t *Tree) search(idx int, p r2.Vec, exclude int, best *Neighbor) {
	n := &t.nodes[idx]
	if n.leaf() {
		for _, it := range n.items {
			if it.ID == exclude {
				continue
			}
			d := r2.Norm(r2.Sub(it.Pos, p))
			if d < best.Distance || (d == best.Distance && it.ID < best.ID) {
				*best = Neighbor{ID: it.ID, Pos: it.Pos, Distance: d}
			}
		}
		return
	}

	kids := n.kids
	first := quadrant(n.bounds, p)
	t.search(kids+first, p, exclude, best)
	for q := 0; q < 4; q++ {
		if q == first {
			continue
		}
		if MinDistance(t.nodes[kids+q].bounds, p) <= best.Distance {
			t.search(kids+q, p, exclude, best)
		}
	}
}

// Leaf describes one leaf of the tree.
type Leaf struct {
	Bounds r2.Box
	Depth  int
	Items  []Item
}

// Leaves lists every leaf in depth-first slot order. Item slices are copies.
func (t *Tree) Leaves() []Leaf {
	var out []Leaf
	var walk func(idx int)
	walk = func(idx int) {
		n := &t.nodes[idx]
		if n.leaf() {
			items := make([]Item, len(n.items))
			copy(items, n.items)
			out = append(out, Leaf{Bounds: n.bounds, Depth: n.depth, Items: items})
			return
		}
		for q := 0; q < 4; q++ {
			walk(n.kids + q)
		}
	}
	walk(0)
	return out
}
