package game

import "fmt"

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhasePlaying
	PhaseTransitioning // Post-reposition grace; ticks and drags are inert
	PhaseWon
	PhaseLost
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhasePlaying:
		return "playing"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseWon:
		return "won"
	case PhaseLost:
		return "lost"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether the phase only leaves via Restart.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// LevelState is the level/timer/lives counter block.
type LevelState struct {
	Level          int   `json:"level" msgpack:"level"`
	TimeRemaining  int   `json:"time" msgpack:"time"` // Whole seconds, never negative
	LivesRemaining int   `json:"lives" msgpack:"lives"`
	Phase          Phase `json:"phase" msgpack:"phase"`
}

// EventType identifies a discrete state change.
type EventType int

const (
	EventStarted       EventType = iota + 1 // A new run entered Playing
	EventLevelAdvanced                      // Timer expired below the last level
	EventBreach                             // A hazard crossed the boundary
	EventWon
	EventLost
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventLevelAdvanced:
		return "level_advanced"
	case EventBreach:
		return "breach"
	case EventWon:
		return "won"
	case EventLost:
		return "lost"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event is emitted by session operations for presentation to react to.
type Event struct {
	Type     EventType `json:"type" msgpack:"type"`
	Level    int       `json:"level" msgpack:"level"`
	Lives    int       `json:"lives" msgpack:"lives"`
	HazardID int       `json:"hazard" msgpack:"hazard"` // -1 unless Type is EventBreach
	X        float64   `json:"x" msgpack:"x"`           // Breach position
	Y        float64   `json:"y" msgpack:"y"`
}

// HazardView is the read-only per-hazard part of a Snapshot.
type HazardView struct {
	ID       int     `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Kind     Kind    `json:"kind" msgpack:"kind"`
	Held     bool    `json:"held" msgpack:"held"`
	Settling bool    `json:"settling" msgpack:"settling"`
	Distance float64 `json:"dist" msgpack:"dist"`
}

// Snapshot is an immutable copy of everything presentation needs.
type Snapshot struct {
	State     LevelState   `json:"state" msgpack:"state"`
	Arena     Arena        `json:"arena" msgpack:"arena"`
	Field     Field        `json:"field" msgpack:"field"`
	Hazards   []HazardView `json:"hazards" msgpack:"hazards"`
	HeldID    int          `json:"held" msgpack:"held"`
	Clearance float64      `json:"clearance" msgpack:"clearance"`
	Levels    int          `json:"levels" msgpack:"levels"`
}
