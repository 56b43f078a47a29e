package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/containment/internal/draw"
	"github.com/tomz197/containment/internal/game"
)

// trailLength is the number of past positions a Trail hazard leaves behind.
const trailLength = 4

// hazardSprite is the per-hazard presentation state kept between frames.
type hazardSprite struct {
	vertices []float64 // Vertex distances as a fraction of size, for irregular shapes
	angle    float64
	spin     float64
	trail    [trailLength]draw.Point
	trailN   int
	age      float64
}

// HazardSprites draws hazards from snapshots. Hazards keep their id for the
// whole session, so sprite state is indexed by id.
type HazardSprites struct {
	sprites []*hazardSprite
	views   []game.HazardView
	size    float64
}

// NewHazardSprites creates an empty sprite set.
func NewHazardSprites() *HazardSprites {
	return &HazardSprites{}
}

func newHazardSprite(id int) *hazardSprite {
	// Seeded by id so a hazard keeps its outline across frames and reconnects.
	rng := rand.New(rand.NewSource(int64(id) + 1))
	numVerts := 7 + rng.Intn(4)
	vertices := make([]float64, numVerts)
	for i := range vertices {
		// Vary radius by ±25% for irregular shape
		vertices[i] = 0.75 + rng.Float64()*0.5
	}
	return &hazardSprite{
		vertices: vertices,
		angle:    rng.Float64() * 2 * math.Pi,
		spin:     (rng.Float64() - 0.5) * 2.0,
	}
}

// Sync takes the hazards of a new snapshot. size is the drawn radius.
func (hs *HazardSprites) Sync(views []game.HazardView, size float64, dt float64) {
	for len(hs.sprites) < len(views) {
		hs.sprites = append(hs.sprites, newHazardSprite(len(hs.sprites)))
	}
	hs.views = append(hs.views[:0], views...)
	hs.size = size

	for _, v := range views {
		if v.ID < 0 || v.ID >= len(hs.sprites) {
			continue
		}
		sp := hs.sprites[v.ID]
		sp.age += dt
		sp.angle += sp.spin * dt

		// Trail samples the previous position; teleports (reposition) reset it.
		p := draw.Point{X: v.X, Y: v.Y}
		if sp.trailN > 0 {
			last := sp.trail[0]
			if math.Hypot(last.X-p.X, last.Y-p.Y) > size*4 {
				sp.trailN = 0
			}
		}
		copy(sp.trail[1:], sp.trail[:trailLength-1])
		sp.trail[0] = p
		if sp.trailN < trailLength {
			sp.trailN++
		}
	}
}

// Draw renders every hazard in the last synced snapshot.
func (hs *HazardSprites) Draw(ctx DrawContext) error {
	for _, v := range hs.views {
		if v.ID < 0 || v.ID >= len(hs.sprites) {
			continue
		}
		hs.drawHazard(ctx, v, hs.sprites[v.ID])
	}
	return nil
}

func (hs *HazardSprites) drawHazard(ctx DrawContext, v game.HazardView, sp *hazardSprite) {
	size := hs.size
	c := ctx.Canvas

	if v.Held {
		c.DrawCircle(v.X, v.Y, size*1.8)
	}

	switch v.Kind {
	case game.KindPulse:
		pulse := 1 + 0.25*math.Sin(sp.age*2*math.Pi*1.5)
		c.FillCircle(v.X, v.Y, size*pulse)
	case game.KindBlink:
		if v.Held || BlinkOn(sp.age, 1.0, 0.8) {
			c.FillCircle(v.X, v.Y, size)
		} else {
			c.DrawCircle(v.X, v.Y, size)
		}
	case game.KindCold:
		points := c.BorrowPoints(4)
		for i := range points {
			a := sp.angle + float64(i)*math.Pi/2
			points[i] = draw.Point{X: v.X + math.Cos(a)*size*1.2, Y: v.Y + math.Sin(a)*size*1.2}
		}
		c.DrawPolygon(points, false)
	case game.KindTrail:
		for i := 1; i < sp.trailN; i++ {
			p := sp.trail[i]
			c.SetFloat(p.X, p.Y)
		}
		c.FillCircle(v.X, v.Y, size*0.8)
	case game.KindHeavy:
		hs.drawIrregular(c, v.X, v.Y, size*1.4, sp, true)
	default:
		hs.drawIrregular(c, v.X, v.Y, size, sp, false)
	}
}

// drawIrregular draws a rotating irregular polygon.
func (hs *HazardSprites) drawIrregular(c *draw.Canvas, x, y, size float64, sp *hazardSprite, filled bool) {
	numVerts := len(sp.vertices)

	// Use reusable buffer from canvas to avoid per-frame allocations.
	points := c.BorrowPoints(numVerts)
	for i, dist := range sp.vertices {
		vertAngle := sp.angle + float64(i)*2*math.Pi/float64(numVerts)
		points[i] = draw.Point{
			X: x + math.Cos(vertAngle)*dist*size,
			Y: y + math.Sin(vertAngle)*dist*size,
		}
	}
	c.DrawPolygon(points, filled)
}
