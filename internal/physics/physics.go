// Package physics provides distance, direction and proximity utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// RadialDirection returns the unit vector from (cx, cy) through (x, y).
// A point exactly at the center points up (0, -1) in screen coordinates.
func RadialDirection(cx, cy, x, y float64) (nx, ny float64) {
	dx := x - cx
	dy := y - cy
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, -1
	}
	return dx / length, dy / length
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseOutQuad maps t in [0, 1] onto a decelerating curve.
func EaseOutQuad(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * (2 - t)
}
