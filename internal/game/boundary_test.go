package game

import (
	"math"
	"testing"
)

func TestFindBreachIsStrict(t *testing.T) {
	onEdge := pulseHazard(testArena.CenterX+testArena.Radius, testArena.CenterY, 1)
	if _, ok := findBreach([]*Hazard{onEdge}, testArena); ok {
		t.Error("hazard exactly on the boundary counted as a breach")
	}

	outside := pulseHazard(testArena.CenterX+testArena.Radius+0.001, testArena.CenterY, 1)
	if h, ok := findBreach([]*Hazard{onEdge, outside}, testArena); !ok || h != outside {
		t.Errorf("findBreach = %v, %v, want the outside hazard", h, ok)
	}
}

func TestFindBreachSkipsHeldAndPicksFirst(t *testing.T) {
	a := pulseHazard(testArena.CenterX-testArena.Radius*2, testArena.CenterY, 1)
	a.ID = 0
	a.Held = true
	b := pulseHazard(testArena.CenterX, testArena.CenterY+testArena.Radius*1.5, 1)
	b.ID = 1
	c := pulseHazard(testArena.CenterX, testArena.CenterY-testArena.Radius*3, 1)
	c.ID = 2

	h, ok := findBreach([]*Hazard{a, b, c}, testArena)
	if !ok || h.ID != 1 {
		t.Fatalf("findBreach = %+v, %v, want hazard 1", h, ok)
	}
}

func TestClearance(t *testing.T) {
	near := pulseHazard(testArena.CenterX+4, testArena.CenterY, 1)
	far := pulseHazard(testArena.CenterX, testArena.CenterY+20, 1)
	if got, want := Clearance([]*Hazard{near, far}, testArena), testArena.Radius-20; got != want {
		t.Errorf("Clearance = %g, want %g", got, want)
	}

	far.Held = true
	if got, want := Clearance([]*Hazard{near, far}, testArena), testArena.Radius-4; got != want {
		t.Errorf("Clearance ignoring held = %g, want %g", got, want)
	}

	out := pulseHazard(testArena.CenterX+testArena.Radius+3, testArena.CenterY, 1)
	if got := Clearance([]*Hazard{out}, testArena); math.Abs(got+3) > 1e-9 {
		t.Errorf("Clearance outside = %g, want -3", got)
	}
	if got := Clearance(nil, testArena); got != testArena.Radius {
		t.Errorf("Clearance(nil) = %g, want radius", got)
	}
}

func TestArena(t *testing.T) {
	a := NewArena(Field{Width: 300, Height: 100}, 0.5)
	if a.CenterX != 150 || a.CenterY != 50 || a.Radius != 50 {
		t.Fatalf("NewArena = %+v", a)
	}
	if !a.Contains(200, 50) {
		t.Error("point on the boundary not contained")
	}
	if a.Contains(200.01, 50) {
		t.Error("point outside contained")
	}
}
