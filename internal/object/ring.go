package object

import "github.com/tomz197/containment/internal/physics"

// Ring is an expanding shockwave drawn on level advance.
type Ring struct {
	X, Y     float64
	From, To float64 // Start and end radius
	Duration float64 // Seconds
	elapsed  float64
}

// NewRing creates a ring growing from radius from to radius to.
func NewRing(x, y, from, to, duration float64) *Ring {
	return &Ring{X: x, Y: y, From: from, To: to, Duration: duration}
}

// Radius returns the current radius.
func (r *Ring) Radius() float64 {
	if r.Duration <= 0 {
		return r.To
	}
	t := r.elapsed / r.Duration
	if t > 1 {
		t = 1
	}
	return physics.Lerp(r.From, r.To, physics.EaseOutQuad(t))
}

// Update grows the ring. It is removed once fully expanded.
func (r *Ring) Update(ctx UpdateContext) (bool, error) {
	r.elapsed += ctx.Delta.Seconds()
	return r.elapsed >= r.Duration, nil
}

// Draw renders the ring outline.
func (r *Ring) Draw(ctx DrawContext) error {
	ctx.Canvas.DrawCircle(r.X, r.Y, r.Radius())
	return nil
}
