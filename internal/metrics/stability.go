package metrics

import (
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/sim"
)

// Containment is the fraction of steps after which every body sat inside
// [r, limit-r] on both axes. Anything below 1 means the wall response let a
// body escape.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(w *physics.World, f sim.Frame) {
	c.samples++
	p := w.Params()
	for _, b := range w.Bodies() {
		r := b.Radius()
		if b.Pos.X < r || b.Pos.X > p.Width-r || b.Pos.Y < r || b.Pos.Y > p.Height-r {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
