package game

import (
	"math"

	"github.com/tomz197/containment/internal/physics"
)

// LevelSpeedMultiplier looks up the outward speed multiplier for a 1-based level.
// Levels outside the table clamp to its first or last entry.
func LevelSpeedMultiplier(table []float64, level int) float64 {
	if len(table) == 0 {
		return 1
	}
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(table) {
		idx = len(table) - 1
	}
	return table[idx]
}

// advanceHazards moves every hazard that is not held by one frame.
func advanceHazards(hazards []*Hazard, arena Arena, table []float64, level int, dt float64) {
	if dt <= 0 {
		return
	}
	levelMul := LevelSpeedMultiplier(table, level)

	for _, h := range hazards {
		if h.Held {
			continue
		}
		if h.settling {
			advanceSettle(h, arena, levelMul, dt)
			continue
		}
		advanceRadial(h, arena, levelMul, dt)
	}
}

// advanceRadial applies the kind-specific outward push.
func advanceRadial(h *Hazard, arena Arena, levelMul, dt float64) {
	nx, ny := physics.RadialDirection(arena.CenterX, arena.CenterY, h.X, h.Y)
	speed := h.BaseSpeed * levelMul * h.params.Multiplier

	switch h.Kind {
	case KindHeavy:
		// Critically damped: blend velocity toward the radial target, then integrate.
		alpha := 1 - math.Pow(1-h.params.Smoothing, dt*60)
		h.VX += (nx*speed - h.VX) * alpha
		h.VY += (ny*speed - h.VY) * alpha
		h.X += h.VX * dt
		h.Y += h.VY * dt
	default:
		h.X += nx * speed * dt
		h.Y += ny * speed * dt
	}
}

// advanceSettle eases a released hazard toward its settle target.
// Once the ease completes the hazard resumes its outward motion.
func advanceSettle(h *Hazard, arena Arena, levelMul, dt float64) {
	h.settleElapsed += dt
	t := 1.0
	if h.settleDuration > 0 {
		t = h.settleElapsed / h.settleDuration
	}
	e := physics.EaseOutQuad(t)
	h.X = physics.Lerp(h.settleFromX, h.settleToX, e)
	h.Y = physics.Lerp(h.settleFromY, h.settleToY, e)

	if t >= 1 {
		h.settling = false
		h.VX, h.VY = 0, 0
		overflow := h.settleElapsed - h.settleDuration
		if overflow > 0 {
			advanceRadial(h, arena, levelMul, overflow)
		}
	}
}

// beginSettles starts the settle ease for hazards released before this frame.
func beginSettles(hazards []*Hazard, arena Arena, factor, duration float64) {
	for _, h := range hazards {
		if !h.settlePending {
			continue
		}
		h.settlePending = false
		if factor <= 0 || duration <= 0 {
			continue
		}
		h.settling = true
		h.settleElapsed = 0
		h.settleDuration = duration
		h.settleFromX, h.settleFromY = h.X, h.Y
		h.settleToX = physics.Lerp(h.X, arena.CenterX, factor)
		h.settleToY = physics.Lerp(h.Y, arena.CenterY, factor)
	}
}
