package object

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/tomz197/containment/internal/draw"
)

// Spawner allows objects to spawn new objects during update.
type Spawner interface {
	Spawn(obj Object)
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta   time.Duration
	Spawner Spawner
	Rand    *rand.Rand
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas // High-resolution canvas (2x vertical)
	Writer io.Writer    // Direct terminal output (for text)
	Now    time.Time    // Frame time, drives animations
}

// Object is a drawable and updatable presentation entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object. Use ctx.Canvas for high-res shapes, ctx.Writer for text.
	Draw(ctx DrawContext) error
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	// Release returns the object to its pool for reuse.
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// BlinkOn reports whether something blinking with the given period (seconds)
// is visible at elapsed. It is on for the first duty fraction of each period.
func BlinkOn(elapsed, period, duty float64) bool {
	if period <= 0 {
		return true
	}
	return math.Mod(elapsed, period) < period*duty
}

// Effects is a short-lived object list: breach bursts, level rings.
// Objects spawned during Update are added after the pass completes.
type Effects struct {
	objects []Object
	pending []Object
	rng     *rand.Rand
}

// NewEffects creates an empty effect list.
func NewEffects(rng *rand.Rand) *Effects {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Effects{rng: rng}
}

// Spawn queues an object (implements Spawner).
func (e *Effects) Spawn(obj Object) {
	e.pending = append(e.pending, obj)
}

// Rand returns the random source effects are spawned with.
func (e *Effects) Rand() *rand.Rand {
	return e.rng
}

// Len returns the number of live objects.
func (e *Effects) Len() int {
	return len(e.objects) + len(e.pending)
}

// Update advances every object and drops the finished ones.
func (e *Effects) Update(dt time.Duration) error {
	e.objects = append(e.objects, e.pending...)
	e.pending = e.pending[:0]

	ctx := UpdateContext{Delta: dt, Spawner: e, Rand: e.rng}
	kept := e.objects[:0]
	var firstErr error
	for _, obj := range e.objects {
		remove, err := obj.Update(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if remove {
			ReleaseObject(obj)
			continue
		}
		kept = append(kept, obj)
	}
	clear(e.objects[len(kept):])
	e.objects = kept
	return firstErr
}

// Draw renders every live object.
func (e *Effects) Draw(ctx DrawContext) error {
	for _, obj := range e.objects {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops every object.
func (e *Effects) Reset() {
	for _, obj := range e.objects {
		ReleaseObject(obj)
	}
	for _, obj := range e.pending {
		ReleaseObject(obj)
	}
	e.objects = e.objects[:0]
	e.pending = e.pending[:0]
}
