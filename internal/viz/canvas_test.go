package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0, LayerBody)
	c.Set(3, 7, LayerPair)
	c.Set(-1, 0, LayerBody)
	c.Set(8, 0, LayerBody)

	if !c.IsSet(0, 0) || !c.IsSet(3, 7) {
		t.Error("dots not set")
	}
	if c.IsSet(1, 0) {
		t.Error("neighbouring dot set")
	}
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[1][1] != 0x2880 {
		t.Errorf("cell = %U, want U+2880", c.Grid[1][1])
	}
	if c.Layers[1][1] != LayerPair {
		t.Errorf("layer = %d, want pair", c.Layers[1][1])
	}

	c.Clear()
	if c.IsSet(0, 0) || c.Layers[1][1] != LayerNone {
		t.Error("Clear left state behind")
	}
}

func TestCanvasLayerPriority(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(0, 0, LayerSelected)
	c.Set(1, 0, LayerBody)
	if c.Layers[0][0] != LayerSelected {
		t.Errorf("layer = %d, want selected", c.Layers[0][0])
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11, LayerPair)
	if !c.IsSet(0, 0) || !c.IsSet(19, 11) {
		t.Error("line endpoints missing")
	}

	c.Clear()
	c.DrawLine(2, 5, 12, 5, LayerPair)
	for x := 2; x <= 12; x++ {
		if !c.IsSet(x, 5) {
			t.Errorf("horizontal line misses x=%d", x)
		}
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 3, LayerBody)
	for _, p := range [][2]int{{13, 10}, {7, 10}, {10, 13}, {10, 7}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("circle misses %v", p)
		}
	}
	if c.IsSet(10, 10) {
		t.Error("outline filled the centre")
	}

	c.Clear()
	c.DrawCircle(4, 4, 0, LayerBody)
	if !c.IsSet(4, 4) {
		t.Error("zero radius should draw one dot")
	}

	c.Clear()
	c.FillCircle(10, 10, 2, LayerSelected)
	if !c.IsSet(10, 10) || !c.IsSet(12, 10) || c.IsSet(12, 12) {
		t.Error("disc shape wrong")
	}
}

func TestRenderWithoutStylesMatchesString(t *testing.T) {
	c := NewCanvas(6, 2)
	c.DrawLine(0, 0, 11, 7, LayerPair)
	c.DrawCircle(6, 4, 2, LayerBody)

	if got := c.Render(nil); got != c.String() {
		t.Errorf("Render(nil) = %q, want %q", got, c.String())
	}

	styled := c.Render(map[Layer]lipgloss.Style{LayerPair: lipgloss.NewStyle()})
	if strings.Count(styled, "\n") != 2 {
		t.Errorf("rendered %d rows, want 2", strings.Count(styled, "\n"))
	}
}
