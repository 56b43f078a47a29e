package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tomz197/containment/internal/physics"
)

// ErrSessionActive is returned by Reconfigure while a run is in progress.
var ErrSessionActive = errors.New("session is active")

// Session owns all mutable state of one game: rules, arena, hazards,
// counters and the drag hold. It is not safe for concurrent use; callers
// serialize access on a single goroutine.
type Session struct {
	cfg     Config
	field   Field
	arena   Arena
	hazards []*Hazard
	state   LevelState
	drag    dragController
	grid    *physics.SpatialGrid
	rng     *rand.Rand

	transitionLeft float64
}

// Option configures a Session.
type Option func(*Session)

// WithSeed makes hazard placement deterministic.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewSession validates cfg and lays out a session in the given field.
// Hazards are placed immediately so the intro screen has something to show.
func NewSession(cfg Config, field Field, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateField(field); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:   cfg.Clone(),
		field: field,
		arena: NewArena(field, cfg.ArenaRadiusRatio),
		drag:  newDragController(),
		state: LevelState{
			Level:          1,
			TimeRemaining:  cfg.LevelTimeSec,
			LivesRemaining: cfg.LivesTotal,
			Phase:          PhaseNotStarted,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.buildHazards()
	s.reposition()
	return s, nil
}

func validateField(f Field) error {
	if !(f.Width > 0) || !(f.Height > 0) || math.IsInf(f.Width, 0) || math.IsInf(f.Height, 0) {
		return fmt.Errorf("%w: field %gx%g must be positive", ErrInvalidConfig, f.Width, f.Height)
	}
	return nil
}

func (s *Session) buildHazards() {
	s.hazards = make([]*Hazard, s.cfg.HazardCount)
	for i := range s.hazards {
		s.hazards[i] = &Hazard{ID: i}
	}
	s.drag = newDragController()
	s.grid = physics.NewSpatialGrid(s.field.Width, s.field.Height, s.grabRadius())
}

func (s *Session) grabRadius() float64 {
	return s.arena.Radius * s.cfg.GrabRadiusRatio
}

// reposition re-randomizes every hazard inside the spawn disc.
func (s *Session) reposition() {
	s.drag.reset(s.hazards)
	spawnR := s.arena.Radius * s.cfg.SpawnRadiusRatio
	for _, h := range s.hazards {
		params := s.cfg.Kinds[s.rng.Intn(len(s.cfg.Kinds))]
		angle := s.rng.Float64() * 2 * math.Pi
		r := s.rng.Float64() * spawnR

		h.clearMotionState()
		h.Kind = params.Kind
		h.params = params
		h.X = s.arena.CenterX + math.Cos(angle)*r
		h.Y = s.arena.CenterY + math.Sin(angle)*r
		h.BaseSpeed = (params.SpeedMin + s.rng.Float64()*(params.SpeedMax-params.SpeedMin)) * s.arena.Radius
	}
}

// Start begins a run from the intro state.
func (s *Session) Start() []Event {
	if s.state.Phase != PhaseNotStarted {
		return nil
	}
	return s.beginRun()
}

// Restart begins a fresh run after a win or a loss.
func (s *Session) Restart() []Event {
	if !s.state.Phase.Terminal() {
		return nil
	}
	return s.beginRun()
}

func (s *Session) beginRun() []Event {
	s.state.Level = 1
	s.state.LivesRemaining = s.cfg.LivesTotal
	s.state.Phase = PhasePlaying
	s.transitionLeft = 0
	s.state.TimeRemaining = s.cfg.LevelTimeSec
	s.reposition()
	return []Event{s.event(EventStarted)}
}

// startRound resets the timer and hazards for the current level.
func (s *Session) startRound() {
	s.state.TimeRemaining = s.cfg.LevelTimeSec
	s.reposition()
	if s.cfg.TransitionSec > 0 {
		s.state.Phase = PhaseTransitioning
		s.transitionLeft = s.cfg.TransitionSec
	} else {
		s.state.Phase = PhasePlaying
	}
}

// SecondTick advances the countdown by one second.
func (s *Session) SecondTick() []Event {
	if s.state.Phase != PhasePlaying {
		return nil
	}

	s.state.TimeRemaining--
	if s.state.TimeRemaining > 0 {
		return nil
	}
	s.state.TimeRemaining = 0

	if s.state.Level < s.cfg.LevelsTotal {
		s.state.Level++
		s.startRound()
		return []Event{s.event(EventLevelAdvanced)}
	}

	s.state.Phase = PhaseWon
	s.drag.reset(s.hazards)
	return []Event{s.event(EventWon)}
}

// FrameTick runs the movement engine and boundary monitor for dt seconds.
func (s *Session) FrameTick(dt float64) []Event {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil
	}

	switch s.state.Phase {
	case PhaseTransitioning:
		s.transitionLeft -= dt
		if s.transitionLeft <= 0 {
			s.transitionLeft = 0
			s.state.Phase = PhasePlaying
		}
		return nil
	case PhasePlaying:
	default:
		return nil
	}

	advanceHazards(s.hazards, s.arena, s.cfg.SpeedTable, s.state.Level, dt)

	if h, ok := findBreach(s.hazards, s.arena); ok {
		return s.breach(h)
	}
	beginSettles(s.hazards, s.arena, s.cfg.SettleFactor, s.cfg.SettleSec)
	return nil
}

// breach spends a life and either retries the level or ends the run.
func (s *Session) breach(h *Hazard) []Event {
	ev := s.event(EventBreach)
	ev.HazardID = h.ID
	ev.X, ev.Y = h.X, h.Y

	s.state.LivesRemaining--
	if s.state.LivesRemaining < 0 {
		s.state.LivesRemaining = 0
	}
	ev.Lives = s.state.LivesRemaining

	if s.state.LivesRemaining > 0 {
		s.startRound()
		return []Event{ev}
	}

	s.state.Phase = PhaseLost
	s.drag.reset(s.hazards)
	return []Event{ev, s.event(EventLost)}
}

func (s *Session) event(t EventType) Event {
	return Event{
		Type:     t,
		Level:    s.state.Level,
		Lives:    s.state.LivesRemaining,
		HazardID: noHazard,
	}
}

// DragStart holds a hazard. A previously held hazard is released first.
// Returns false when the id is unknown or the session is not playing.
func (s *Session) DragStart(id int) bool {
	if s.state.Phase != PhasePlaying || !s.validID(id) {
		return false
	}
	s.drag.grab(s.hazards, id)
	return true
}

// DragMove positions the held hazard. Moves for any other id are ignored.
func (s *Session) DragMove(id int, x, y float64) bool {
	if s.state.Phase != PhasePlaying || !s.validID(id) || !finite(x) || !finite(y) {
		return false
	}
	return s.drag.move(s.hazards, id, x, y)
}

// DragEnd releases the held hazard where it is. The next FrameTick moves and
// checks it like any other hazard.
func (s *Session) DragEnd(id int) bool {
	if s.state.Phase != PhasePlaying || !s.validID(id) || s.drag.held != id {
		return false
	}
	s.drag.release(s.hazards)
	return true
}

// HazardAt returns the id of the hazard nearest to (x, y) within grab range.
func (s *Session) HazardAt(x, y float64) (int, bool) {
	if !finite(x) || !finite(y) {
		return noHazard, false
	}
	return pick(s.hazards, s.grid, x, y, s.grabRadius())
}

// HeldID returns the id of the held hazard.
func (s *Session) HeldID() (int, bool) {
	return s.drag.held, s.drag.held != noHazard
}

func (s *Session) validID(id int) bool {
	return id >= 0 && id < len(s.hazards)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Resize relays the arena out in a new field, scaling hazards about the center.
func (s *Session) Resize(field Field) error {
	if err := validateField(field); err != nil {
		return err
	}
	old := s.arena
	s.field = field
	s.arena = NewArena(field, s.cfg.ArenaRadiusRatio)
	k := s.arena.Radius / old.Radius

	scaleX := func(x float64) float64 { return s.arena.CenterX + (x-old.CenterX)*k }
	scaleY := func(y float64) float64 { return s.arena.CenterY + (y-old.CenterY)*k }
	for _, h := range s.hazards {
		h.X, h.Y = scaleX(h.X), scaleY(h.Y)
		h.settleFromX, h.settleFromY = scaleX(h.settleFromX), scaleY(h.settleFromY)
		h.settleToX, h.settleToY = scaleX(h.settleToX), scaleY(h.settleToY)
		h.BaseSpeed *= k
		h.VX *= k
		h.VY *= k
	}
	s.grid = physics.NewSpatialGrid(field.Width, field.Height, s.grabRadius())
	return nil
}

// Reconfigure swaps the rules between runs. Hazards are rebuilt and the
// counters reset to the new rules' first level; a finished run keeps its
// Won or Lost phase so Restart still applies.
func (s *Session) Reconfigure(cfg Config) error {
	if s.state.Phase == PhasePlaying || s.state.Phase == PhaseTransitioning {
		return ErrSessionActive
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg.Clone()
	s.arena = NewArena(s.field, s.cfg.ArenaRadiusRatio)
	s.state.Level = 1
	s.state.TimeRemaining = s.cfg.LevelTimeSec
	s.state.LivesRemaining = s.cfg.LivesTotal
	s.buildHazards()
	s.reposition()
	return nil
}

// State returns the level/timer/lives counters.
func (s *Session) State() LevelState {
	return s.state
}

// Config returns a copy of the session rules.
func (s *Session) Config() Config {
	return s.cfg.Clone()
}

// Arena returns the containment boundary.
func (s *Session) Arena() Arena {
	return s.arena
}

// Hazard returns a copy of the hazard with the given id.
func (s *Session) Hazard(id int) (Hazard, bool) {
	if !s.validID(id) {
		return Hazard{}, false
	}
	return *s.hazards[id], true
}

// Snapshot copies the state presentation needs after an update.
func (s *Session) Snapshot() Snapshot {
	views := make([]HazardView, len(s.hazards))
	for i, h := range s.hazards {
		views[i] = HazardView{
			ID:       h.ID,
			X:        h.X,
			Y:        h.Y,
			Kind:     h.Kind,
			Held:     h.Held,
			Settling: h.settling,
			Distance: s.arena.Distance(h.X, h.Y),
		}
	}
	return Snapshot{
		State:     s.state,
		Arena:     s.arena,
		Field:     s.field,
		Hazards:   views,
		HeldID:    s.drag.held,
		Clearance: Clearance(s.hazards, s.arena),
		Levels:    s.cfg.LevelsTotal,
	}
}
