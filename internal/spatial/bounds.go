package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Contains reports whether p lies in the half-open box [Min, Max). Points on
// a shared edge belong to exactly one of two neighbouring boxes.
func Contains(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X < b.Max.X && p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// MinDistance is the smallest possible distance from p to any point of b,
// zero when p is inside.
func MinDistance(b r2.Box, p r2.Vec) float64 {
	dx := math.Max(math.Max(b.Min.X-p.X, 0), p.X-b.Max.X)
	dy := math.Max(math.Max(b.Min.Y-p.Y, 0), p.Y-b.Max.Y)
	return math.Hypot(dx, dy)
}

func center(b r2.Box) r2.Vec {
	return r2.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// quadrant returns the child slot of p inside b:
//
//	0 | 1
//	--+--
//	2 | 3
//
// with y growing downward, as in screen coordinates.
func quadrant(b r2.Box, p r2.Vec) int {
	m := center(b)
	q := 0
	if p.X >= m.X {
		q++
	}
	if p.Y >= m.Y {
		q += 2
	}
	return q
}

// quadrantBox returns the bounds of child slot q of b.
func quadrantBox(b r2.Box, q int) r2.Box {
	m := center(b)
	out := b
	if q&1 == 0 {
		out.Max.X = m.X
	} else {
		out.Min.X = m.X
	}
	if q&2 == 0 {
		out.Max.Y = m.Y
	} else {
		out.Min.Y = m.Y
	}
	return out
}
