package game

import "math"

// findBreach returns the first hazard, in slice order, that is not held and lies
// strictly outside the arena. Simultaneous breaches collapse into this one.
func findBreach(hazards []*Hazard, arena Arena) (*Hazard, bool) {
	for _, h := range hazards {
		if h.Held {
			continue
		}
		if arena.Distance(h.X, h.Y) > arena.Radius {
			return h, true
		}
	}
	return nil, false
}

// Clearance is the gap between the arena boundary and the outermost hazard
// that is not held. Negative values mean a hazard is already outside.
// It is advisory and never changes state.
func Clearance(hazards []*Hazard, arena Arena) float64 {
	maxDist := math.Inf(-1)
	for _, h := range hazards {
		if h.Held {
			continue
		}
		maxDist = math.Max(maxDist, arena.Distance(h.X, h.Y))
	}
	if math.IsInf(maxDist, -1) {
		return arena.Radius
	}
	return arena.Radius - maxDist
}
