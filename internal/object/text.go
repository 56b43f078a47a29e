package object

import (
	"fmt"
	"unicode/utf8"
)

// Text is a simple drawable text object.
// Coordinates are 1-based positions within the canvas area.
type Text struct {
	X     int
	Y     int
	Value string
}

// Draw writes the text at its position using ANSI cursor movement and marks
// the covered cells so the canvas repaints them next frame.
func (t Text) Draw(ctx DrawContext) error {
	if t.Value == "" {
		return nil
	}
	x := t.X
	y := t.Y
	if x < 1 {
		x = 1
	}
	if y < 1 {
		y = 1
	}
	col, row := x, y
	if ctx.Canvas != nil {
		col += ctx.Canvas.OffsetCol()
		row += ctx.Canvas.OffsetRow()
	}
	if _, err := fmt.Fprintf(ctx.Writer, "\033[%d;%dH%s", row, col, t.Value); err != nil {
		return err
	}
	if ctx.Canvas != nil {
		ctx.Canvas.MarkTextDirty(x, y, utf8.RuneCountInString(t.Value))
	}
	return nil
}

// Update is a no-op for static text.
func (t Text) Update(ctx UpdateContext) (bool, error) {
	return false, nil
}

// Notice is text that disappears after Lifetime seconds.
type Notice struct {
	Text
	Lifetime float64
}

// NewNotice creates a notice centered on column centerX.
func NewNotice(centerX, row int, value string, lifetime float64) *Notice {
	return &Notice{
		Text:     Text{X: centerX - utf8.RuneCountInString(value)/2, Y: row, Value: value},
		Lifetime: lifetime,
	}
}

// Update counts the notice down.
func (n *Notice) Update(ctx UpdateContext) (bool, error) {
	n.Lifetime -= ctx.Delta.Seconds()
	return n.Lifetime <= 0, nil
}
