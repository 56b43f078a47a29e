package draw

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderOnlyWritesChangedCells(t *testing.T) {
	c := NewCanvas(4, 2)
	c.SetFloat(0, 0)

	var buf bytes.Buffer
	c.Render(&buf)
	if got := strings.Count(buf.String(), "\033["); got != 8 {
		t.Fatalf("first render wrote %d cells, want 8", got)
	}
	if !strings.Contains(buf.String(), "\033[1;1H▀") {
		t.Errorf("upper half block missing from %q", buf.String())
	}

	buf.Reset()
	c.Render(&buf)
	if buf.Len() != 0 {
		t.Errorf("unchanged render wrote %q", buf.String())
	}

	c.SetFloat(0, 1)
	buf.Reset()
	c.Render(&buf)
	if got := buf.String(); got != "\033[1;1H█" {
		t.Errorf("render after change = %q", got)
	}

	c.MarkTextDirty(2, 2, 1)
	buf.Reset()
	c.Render(&buf)
	if got := buf.String(); got != "\033[2;2H " {
		t.Errorf("render after text = %q", got)
	}

	c.ForceRedraw()
	buf.Reset()
	c.Render(&buf)
	if got := strings.Count(buf.String(), "\033["); got != 8 {
		t.Errorf("forced render wrote %d cells, want 8", got)
	}
}

func TestRenderAppliesOffset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.SetOffset(3, 5)
	var buf bytes.Buffer
	c.Render(&buf)
	if !strings.HasPrefix(buf.String(), "\033[6;4H") {
		t.Errorf("render = %q, want first cell at row 6 col 4", buf.String())
	}
}

func TestTerminalToLogical(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.SetOffset(2, 1)

	x, y, ok := c.TerminalToLogical(3, 2)
	if !ok || x != 5 || y != 10 {
		t.Errorf("TerminalToLogical(3, 2) = %g, %g, %v, want 5, 10, true", x, y, ok)
	}
	x, y, ok = c.TerminalToLogical(12, 6)
	if !ok || x != 95 || y != 90 {
		t.Errorf("TerminalToLogical(12, 6) = %g, %g, %v, want 95, 90, true", x, y, ok)
	}
	for _, pos := range [][2]int{{2, 2}, {13, 2}, {3, 1}, {3, 7}} {
		if _, _, ok := c.TerminalToLogical(pos[0], pos[1]); ok {
			t.Errorf("TerminalToLogical(%d, %d) inside canvas", pos[0], pos[1])
		}
	}

	col, row := c.LogicalToTerminal(5, 10)
	if col != 2 || row != 1 {
		t.Errorf("LogicalToTerminal(5, 10) = %d, %d, want 2, 1", col, row)
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewScaledCanvas(40, 20, 40, 40)
	c.DrawCircle(20, 20, 10)
	for _, p := range [][2]int{{30, 20}, {10, 20}, {20, 10}, {20, 30}} {
		if !c.pixels[p[1]*40+p[0]] {
			t.Errorf("pixel %v not set", p)
		}
	}
	if c.pixels[20*40+20] {
		t.Error("outline filled the center")
	}

	c.Clear()
	c.FillCircle(20, 20, 5)
	if !c.pixels[20*40+20] {
		t.Error("FillCircle left the center empty")
	}

	c.Clear()
	c.DrawCircle(20, 20, 0)
	for i, set := range c.pixels {
		if set {
			t.Fatalf("zero radius set pixel %d", i)
		}
	}
}

func TestMeter(t *testing.T) {
	tests := []struct {
		width int
		ratio float64
		want  string
	}{
		{4, 1, "████"},
		{4, 2, "████"},
		{4, 0.5, "██  "},
		{4, 0.6, "██░ "},
		{4, -1, "    "},
		{0, 0.5, ""},
	}
	for _, tt := range tests {
		if got := Meter(tt.width, tt.ratio); got != tt.want {
			t.Errorf("Meter(%d, %g) = %q, want %q", tt.width, tt.ratio, got, tt.want)
		}
	}
}

func TestShadeLevel(t *testing.T) {
	if ShadeLevel(-1) != BlockEmpty || ShadeLevel(0.5) != BlockMedium || ShadeLevel(1) != BlockFull {
		t.Errorf("ShadeLevel = %q %q %q", ShadeLevel(-1), ShadeLevel(0.5), ShadeLevel(1))
	}
}
