package export

import (
	"fmt"
	"image"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/san-kum/gravquad/internal/physics"
)

// Render draws snap: every body as a filled circle labelled with its id,
// the closest pair joined by a line with the distance at its midpoint, and
// the minimum distance across the top.
func Render(snap physics.Snapshot, opts Options) image.Image {
	s := opts.scale()
	width := int(math.Ceil(snap.Width * s))
	height := int(math.Ceil(snap.Height * s))

	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	for _, b := range snap.Bodies {
		x, y, r := b.Pos.X*s, b.Pos.Y*s, b.Radius()*s
		dc.SetColor(bodyColor(b.ID))
		dc.DrawCircle(x, y, r)
		dc.Fill()

		if b.ID == opts.Highlight {
			dc.SetColor(highlight)
			dc.SetLineWidth(2)
			dc.DrawCircle(x, y, r+2)
			dc.Stroke()
		}

		dc.SetColor(labelColor)
		dc.DrawStringAnchored(strconv.Itoa(b.ID), x, y, 0.5, 0.5)
	}

	if opts.ShowDistance && snap.HasPair && snap.Pair.J < len(snap.Bodies) {
		a, b := snap.Bodies[snap.Pair.I].Pos, snap.Bodies[snap.Pair.J].Pos
		dc.SetColor(pairLine)
		dc.SetLineWidth(2)
		dc.DrawLine(a.X*s, a.Y*s, b.X*s, b.Y*s)
		dc.Stroke()

		mx, my := (a.X+b.X)/2*s, (a.Y+b.Y)/2*s
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", snap.MinDistance), mx, my-6, 0.5, 1)
	}

	dc.SetColor(labelColor)
	dc.DrawString(minDistanceLabel(snap), 10, 20)

	return dc.Image()
}

// WorldPNG encodes Render's output as PNG.
func WorldPNG(w io.Writer, snap physics.Snapshot, opts Options) error {
	dc := gg.NewContextForImage(Render(snap, opts))
	return dc.EncodePNG(w)
}

// SavePNG writes the PNG to path.
func SavePNG(path string, snap physics.Snapshot, opts Options) error {
	return gg.SavePNG(path, Render(snap, opts))
}

func minDistanceLabel(snap physics.Snapshot) string {
	if !snap.HasPair {
		return "min distance: -"
	}
	return fmt.Sprintf("min distance: %.2fpx", snap.MinDistance)
}
