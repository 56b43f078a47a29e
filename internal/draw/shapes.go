package draw

import (
	"math"
	"strings"
)

// CirclePoints fills buf with len(buf) points evenly spaced on the circle
// centered at (cx, cy) and returns it.
func CirclePoints(buf []Point, cx, cy, r float64) []Point {
	n := len(buf)
	for i := range buf {
		a := 2 * math.Pi * float64(i) / float64(n)
		buf[i] = Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r}
	}
	return buf
}

// Meter renders a horizontal gauge of the given cell width filled to ratio
// (0..1). The partially filled cell uses a shade character.
func Meter(width int, ratio float64) string {
	if width <= 0 {
		return ""
	}
	ratio = math.Max(0, math.Min(1, ratio))
	filled := ratio * float64(width)
	full := int(filled)

	var b strings.Builder
	b.Grow(width * 3)
	b.WriteString(strings.Repeat(string(BlockFull), full))
	if full < width {
		b.WriteRune(ShadeLevel(filled - float64(full)))
		b.WriteString(strings.Repeat(string(BlockEmpty), width-full-1))
	}
	return b.String()
}
