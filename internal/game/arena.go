package game

import (
	"math"

	"github.com/tomz197/containment/internal/physics"
)

// Field is the logical play area a session is laid out in.
type Field struct {
	Width  float64 `json:"w" msgpack:"w"`
	Height float64 `json:"h" msgpack:"h"`
}

// Arena is the circular containment boundary.
type Arena struct {
	CenterX float64 `json:"cx" msgpack:"cx"`
	CenterY float64 `json:"cy" msgpack:"cy"`
	Radius  float64 `json:"r" msgpack:"r"`
}

// NewArena centers an arena in the field with radius ratio × shorter side.
func NewArena(field Field, ratio float64) Arena {
	return Arena{
		CenterX: field.Width / 2,
		CenterY: field.Height / 2,
		Radius:  math.Min(field.Width, field.Height) * ratio,
	}
}

// Distance returns the distance of (x, y) from the arena center.
func (a Arena) Distance(x, y float64) float64 {
	return physics.Distance(a.CenterX, a.CenterY, x, y)
}

// Contains reports whether (x, y) is on or inside the boundary.
func (a Arena) Contains(x, y float64) bool {
	return physics.PointInCircle(x, y, a.CenterX, a.CenterY, a.Radius)
}
