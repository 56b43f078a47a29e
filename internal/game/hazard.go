package game

// Hazard is a draggable point pushed outward from the arena center.
// While Held is true the drag controller is its only writer.
type Hazard struct {
	ID        int
	X, Y      float64
	VX, VY    float64 // Heavy kind only
	BaseSpeed float64 // Arena units per second
	Kind      Kind
	Held      bool

	params KindParams

	settlePending  bool // Released; settle starts after the next boundary check
	settling       bool
	settleFromX    float64
	settleFromY    float64
	settleToX      float64
	settleToY      float64
	settleElapsed  float64
	settleDuration float64
}

// Settling reports whether the hazard is easing back after a release.
func (h *Hazard) Settling() bool {
	return h.settling
}

// Params returns the kind parameters the hazard was spawned with.
func (h *Hazard) Params() KindParams {
	return h.params
}

func (h *Hazard) clearMotionState() {
	h.VX, h.VY = 0, 0
	h.Held = false
	h.settlePending = false
	h.settling = false
	h.settleElapsed = 0
}
