package export

import (
	"fmt"
	"image/color"
)

// Options controls how a snapshot is drawn. Scale maps arena units to
// pixels. Highlight is a body id to outline, or -1.
type Options struct {
	Scale        float64
	ShowDistance bool
	Highlight    int
}

func DefaultOptions() Options {
	return Options{Scale: 1, ShowDistance: true, Highlight: -1}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

var (
	background = color.RGBA{10, 10, 10, 255}
	pairLine   = color.RGBA{0, 200, 0, 255}
	labelColor = color.RGBA{255, 255, 255, 255}
	highlight  = color.RGBA{255, 255, 0, 255}

	// Body colors cycle by id.
	palette = []color.RGBA{
		{230, 57, 70, 255},
		{69, 123, 157, 255},
		{241, 143, 1, 255},
		{131, 56, 236, 255},
		{42, 157, 143, 255},
		{255, 0, 110, 255},
	}
)

func bodyColor(id int) color.RGBA {
	return palette[id%len(palette)]
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
