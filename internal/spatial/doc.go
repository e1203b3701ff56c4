// Package spatial provides a region quadtree over the arena for
// nearest-neighbour queries.
//
// A [Tree] splits a leaf into four equal quadrants once it holds more than
// [Options.Capacity] items. Boxes are half-open, so a point on a shared
// edge belongs to the quadrant on its right or below. Queries descend into
// the quadrant containing the query point first and prune any sibling whose
// box cannot contain anything closer than the best answer so far.
//
// [Index] builds a tree from any [Source], typically a *physics.World:
//
//	ix, err := spatial.Build(world, spatial.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	nb, ok := ix.NearestNeighbor(3)
//
// The index is an accelerated query path only. The physics step computes
// forces and the closest pair without it.
package spatial
