package object

import (
	"math"

	"github.com/tomz197/containment/internal/draw"
)

// Cursor marks the last pointer position with a small arrow.
type Cursor struct {
	X, Y    float64
	Size    float64
	Visible bool
}

// MoveTo places the cursor and makes it visible.
func (cur *Cursor) MoveTo(x, y float64) {
	cur.X, cur.Y = x, y
	cur.Visible = true
}

// Update is a no-op; the cursor follows pointer reports only.
func (cur *Cursor) Update(ctx UpdateContext) (bool, error) {
	return false, nil
}

// Draw renders the cursor as a triangle pointing up-left.
func (cur *Cursor) Draw(ctx DrawContext) error {
	if !cur.Visible {
		return nil
	}
	size := cur.Size
	if size <= 0 {
		size = 2
	}

	// Tip at the pointer, wings trailing down and right.
	const angle = -3 * math.Pi / 4
	leftAngle := angle + 2.7
	rightAngle := angle - 2.7
	triangle := ctx.Canvas.BorrowPoints(3)
	triangle[0] = draw.Point{X: cur.X, Y: cur.Y}
	triangle[1] = draw.Point{X: cur.X + math.Cos(leftAngle)*size, Y: cur.Y + math.Sin(leftAngle)*size}
	triangle[2] = draw.Point{X: cur.X + math.Cos(rightAngle)*size, Y: cur.Y + math.Sin(rightAngle)*size}
	ctx.Canvas.DrawPolygon(triangle, false)
	return nil
}
