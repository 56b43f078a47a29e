package game

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid game config")

// Config holds the tunable rules of a session.
// Zero-valued fields are not filled in automatically; start from DefaultConfig.
type Config struct {
	LevelsTotal  int `yaml:"levels_total"`
	HazardCount  int `yaml:"hazard_count"`
	LevelTimeSec int `yaml:"level_time_sec"`
	LivesTotal   int `yaml:"lives_total"`

	// SpeedTable is indexed by level (1-based, clamped to its bounds).
	SpeedTable []float64 `yaml:"speed_table"`

	ArenaRadiusRatio float64 `yaml:"arena_radius_ratio"` // Of the field's shorter side
	SpawnRadiusRatio float64 `yaml:"spawn_radius_ratio"` // Of the arena radius
	GrabRadiusRatio  float64 `yaml:"grab_radius_ratio"`  // Of the arena radius

	SettleFactor  float64 `yaml:"settle_factor"`  // Fraction of the way to center after release
	SettleSec     float64 `yaml:"settle_sec"`     // Duration of the settle ease
	TransitionSec float64 `yaml:"transition_sec"` // Grace after reposition, 0 disables

	Kinds []KindParams `yaml:"kinds"`
}

// DefaultConfig returns the stock five-level ruleset.
func DefaultConfig() Config {
	return Config{
		LevelsTotal:      5,
		HazardCount:      5,
		LevelTimeSec:     30,
		LivesTotal:       5,
		SpeedTable:       []float64{0.65, 1.0, 1.35, 1.75, 2.2},
		ArenaRadiusRatio: 0.40,
		SpawnRadiusRatio: 0.45,
		GrabRadiusRatio:  0.20,
		SettleFactor:     0.35,
		SettleSec:        0.22,
		TransitionSec:    0,
		Kinds:            DefaultKinds(),
	}
}

// Validate reports every problem with the config, joined into one error.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.LevelsTotal < 1 {
		bad("levels_total must be >= 1, got %d", c.LevelsTotal)
	}
	if c.HazardCount < 1 {
		bad("hazard_count must be >= 1, got %d", c.HazardCount)
	}
	if c.LevelTimeSec < 1 {
		bad("level_time_sec must be >= 1, got %d", c.LevelTimeSec)
	}
	if c.LivesTotal < 1 {
		bad("lives_total must be >= 1, got %d", c.LivesTotal)
	}

	if len(c.SpeedTable) == 0 {
		bad("speed_table is empty")
	}
	for i, v := range c.SpeedTable {
		if v <= 0 {
			bad("speed_table[%d] must be positive, got %g", i, v)
		}
		if i > 0 && v < c.SpeedTable[i-1] {
			bad("speed_table must not decrease (index %d)", i)
		}
	}

	ratio := func(name string, v float64) {
		if v <= 0 || v > 1 {
			bad("%s must be in (0, 1], got %g", name, v)
		}
	}
	ratio("arena_radius_ratio", c.ArenaRadiusRatio)
	ratio("spawn_radius_ratio", c.SpawnRadiusRatio)
	ratio("grab_radius_ratio", c.GrabRadiusRatio)

	if c.SettleFactor < 0 || c.SettleFactor > 1 {
		bad("settle_factor must be in [0, 1], got %g", c.SettleFactor)
	}
	if c.SettleSec < 0 {
		bad("settle_sec must not be negative, got %g", c.SettleSec)
	}
	if c.TransitionSec < 0 {
		bad("transition_sec must not be negative, got %g", c.TransitionSec)
	}

	if len(c.Kinds) == 0 {
		bad("kinds is empty")
	}
	for _, k := range c.Kinds {
		if err := k.validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy so callers can mutate slices safely.
func (c Config) Clone() Config {
	out := c
	out.SpeedTable = append([]float64(nil), c.SpeedTable...)
	out.Kinds = append([]KindParams(nil), c.Kinds...)
	return out
}
