package game

import (
	"math"

	"github.com/tomz197/containment/internal/physics"
)

const noHazard = -1

// dragController tracks the single hazard under direct manipulation.
type dragController struct {
	held int // Index into the session's hazards, noHazard when idle
}

func newDragController() dragController {
	return dragController{held: noHazard}
}

// grab holds hazards[idx]. A hazard already held is released first.
func (d *dragController) grab(hazards []*Hazard, idx int) {
	if d.held == idx {
		return
	}
	d.release(hazards)
	h := hazards[idx]
	h.Held = true
	h.settling = false
	h.settlePending = false
	h.VX, h.VY = 0, 0
	d.held = idx
}

// move sets the held hazard's position. Other indices are ignored.
func (d *dragController) move(hazards []*Hazard, idx int, x, y float64) bool {
	if d.held == noHazard || d.held != idx {
		return false
	}
	h := hazards[idx]
	h.X, h.Y = x, y
	return true
}

// release returns the held hazard to engine control at its current position.
func (d *dragController) release(hazards []*Hazard) {
	if d.held == noHazard {
		return
	}
	h := hazards[d.held]
	h.Held = false
	h.settlePending = true
	d.held = noHazard
}

// reset drops any hold without scheduling a settle.
func (d *dragController) reset(hazards []*Hazard) {
	if d.held != noHazard {
		hazards[d.held].Held = false
	}
	d.held = noHazard
}

// pick returns the index of the hazard nearest to (x, y) within radius.
func pick(hazards []*Hazard, grid *physics.SpatialGrid, x, y, radius float64) (int, bool) {
	grid.Clear()
	for i, h := range hazards {
		grid.Insert(h.X, h.Y, i)
	}

	best := noHazard
	bestDist := math.Inf(1)
	r2 := radius * radius
	grid.QueryAround(x, y, func(i int) bool {
		d := physics.DistanceSquared(x, y, hazards[i].X, hazards[i].Y)
		if d <= r2 && d < bestDist {
			best, bestDist = i, d
		}
		return false
	})
	return best, best != noHazard
}
