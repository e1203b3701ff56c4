package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// BruteForceNearest scans every item and returns the one closest to the
// item with the given id. Ties keep the earliest item.
func BruteForceNearest(items []Item, id int) (Neighbor, bool) {
	var query *Item
	for i := range items {
		if items[i].ID == id {
			query = &items[i]
			break
		}
	}
	if query == nil {
		return Neighbor{}, false
	}
	return bruteNearestTo(items, query.Pos, id)
}

func bruteNearestTo(items []Item, p r2.Vec, exclude int) (Neighbor, bool) {
	best := Neighbor{ID: -1, Distance: math.Inf(1)}
	for _, it := range items {
		if it.ID == exclude {
			continue
		}
		if d := r2.Norm(r2.Sub(it.Pos, p)); d < best.Distance {
			best = Neighbor{ID: it.ID, Pos: it.Pos, Distance: d}
		}
	}
	return best, best.ID >= 0
}

// BruteForceClosestPair is the exhaustive closest pair over items, first
// pair in (i, j) order on ties.
func BruteForceClosestPair(items []Item) (Pair, bool) {
	best := Pair{I: -1, J: -1, Distance: math.Inf(1)}
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if d := r2.Norm(r2.Sub(items[j].Pos, items[i].Pos)); d < best.Distance {
				best = Pair{I: items[i].ID, J: items[j].ID, Distance: d}
			}
		}
	}
	return best, best.I >= 0
}
