package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gravquad/internal/physics"
)

// WorldSVG draws the same picture as Render as an SVG document.
func WorldSVG(snap physics.Snapshot, opts Options) string {
	s := opts.scale()
	width := snap.Width * s
	height := snap.Height * s

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, hex(background)))

	for _, b := range snap.Bodies {
		x, y, r := b.Pos.X*s, b.Pos.Y*s, b.Radius()*s
		sb.WriteString(fmt.Sprintf(`<circle id="body-%d" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, b.ID, x, y, r, hex(bodyColor(b.ID))))
		if b.ID == opts.Highlight {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>
`, x, y, r+2, hex(highlight)))
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11" text-anchor="middle" dominant-baseline="central">%d</text>
`, x, y, hex(labelColor), b.ID))
	}

	if opts.ShowDistance && snap.HasPair && snap.Pair.J < len(snap.Bodies) {
		a, b := snap.Bodies[snap.Pair.I].Pos, snap.Bodies[snap.Pair.J].Pos
		sb.WriteString(fmt.Sprintf(`<line id="closest-pair" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, a.X*s, a.Y*s, b.X*s, b.Y*s, hex(pairLine)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11" text-anchor="middle">%.2f</text>
`, (a.X+b.X)/2*s, (a.Y+b.Y)/2*s-6, hex(pairLine), snap.MinDistance))
	}

	sb.WriteString(fmt.Sprintf(`<text x="10" y="20" fill="%s" font-family="monospace" font-size="13">%s</text>
`, hex(labelColor), minDistanceLabel(snap)))

	sb.WriteString("</svg>")
	return sb.String()
}
