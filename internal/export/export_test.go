package export

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravquad/internal/physics"
)

func testSnapshot(t *testing.T) physics.Snapshot {
	t.Helper()
	w, err := physics.NewFromBodies([]physics.Body{
		physics.NewBody(0, r2.Vec{X: 100, Y: 100}, r2.Vec{}, 40),
		physics.NewBody(1, r2.Vec{X: 300, Y: 100}, r2.Vec{}, 40),
		physics.NewBody(2, r2.Vec{X: 600, Y: 500}, r2.Vec{}, 40),
	}, physics.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	w.Step()
	return w.Snapshot()
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRender(t *testing.T) {
	snap := testSnapshot(t)
	img := Render(snap, DefaultOptions())

	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("image size %v, want 800x600", b)
	}
	if got := rgba(img.At(790, 590)); got != background {
		t.Errorf("corner pixel %v, want background %v", got, background)
	}

	body := snap.Bodies[2]
	x, y := int(body.Pos.X+body.Radius()*0.6), int(body.Pos.Y)
	if got := rgba(img.At(x, y)); got != bodyColor(2) {
		t.Errorf("pixel inside body 2 = %v, want %v", got, bodyColor(2))
	}
}

func TestRenderScale(t *testing.T) {
	img := Render(testSnapshot(t), Options{Scale: 0.5, Highlight: -1})
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("image size %v, want 400x300", b)
	}
}

func TestWorldPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WorldPNG(&buf, testSnapshot(t), DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 800 {
		t.Errorf("decoded width %d, want 800", img.Bounds().Dx())
	}

	path := filepath.Join(t.TempDir(), "snap.png")
	if err := SavePNG(path, testSnapshot(t), DefaultOptions()); err != nil {
		t.Errorf("SavePNG: %v", err)
	}
}

func TestWorldSVG(t *testing.T) {
	snap := testSnapshot(t)
	opts := DefaultOptions()
	opts.Highlight = 1
	svg := WorldSVG(snap, opts)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if n := strings.Count(svg, `id="body-`); n != 3 {
		t.Errorf("found %d bodies, want 3", n)
	}
	if !strings.Contains(svg, `id="closest-pair"`) {
		t.Error("closest pair line missing")
	}
	if !strings.Contains(svg, "min distance: 200.00px") {
		t.Error("min distance label missing")
	}
	if !strings.Contains(svg, hex(highlight)) {
		t.Error("highlight missing")
	}

	opts.ShowDistance = false
	if strings.Contains(WorldSVG(snap, opts), "closest-pair") {
		t.Error("distance overlay drawn while disabled")
	}
}

func TestMinDistanceLabelWithoutPair(t *testing.T) {
	if got := minDistanceLabel(physics.Snapshot{}); got != "min distance: -" {
		t.Errorf("label = %q", got)
	}
}
