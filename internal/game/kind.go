package game

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the behavioral category of a hazard.
type Kind int

const (
	KindPulse Kind = iota
	KindBlink
	KindCold
	KindTrail
	KindHeavy
)

var kindNames = [...]string{
	KindPulse: "pulse",
	KindBlink: "blink",
	KindCold:  "cold",
	KindTrail: "trail",
	KindHeavy: "heavy",
}

// String returns the lower-case name used in tuning files.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a tuning-file name into a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidConfig, s)
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: kind must be a scalar", ErrInvalidConfig)
	}
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KindParams are the numeric parameters of one hazard kind.
// Speeds are fractions of the arena radius per second.
type KindParams struct {
	Kind       Kind    `yaml:"kind"`
	SpeedMin   float64 `yaml:"speed_min"`
	SpeedMax   float64 `yaml:"speed_max"`
	Multiplier float64 `yaml:"multiplier"`
	Smoothing  float64 `yaml:"smoothing"` // Heavy only: velocity blend per 60 Hz frame
}

// DefaultKinds returns one entry per kind.
func DefaultKinds() []KindParams {
	return []KindParams{
		{Kind: KindPulse, SpeedMin: 0.42, SpeedMax: 0.66, Multiplier: 1.0},
		{Kind: KindBlink, SpeedMin: 0.42, SpeedMax: 0.66, Multiplier: 1.1},
		{Kind: KindCold, SpeedMin: 0.35, SpeedMax: 0.55, Multiplier: 0.85},
		{Kind: KindTrail, SpeedMin: 0.45, SpeedMax: 0.70, Multiplier: 1.0},
		{Kind: KindHeavy, SpeedMin: 0.30, SpeedMax: 0.50, Multiplier: 1.2, Smoothing: 0.08},
	}
}

func (p KindParams) validate() error {
	switch {
	case p.Kind < KindPulse || p.Kind > KindHeavy:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidConfig, int(p.Kind))
	case p.SpeedMin <= 0 || p.SpeedMax < p.SpeedMin:
		return fmt.Errorf("%w: %s speed range [%g, %g] is invalid", ErrInvalidConfig, p.Kind, p.SpeedMin, p.SpeedMax)
	case p.Multiplier <= 0:
		return fmt.Errorf("%w: %s multiplier must be positive", ErrInvalidConfig, p.Kind)
	case p.Kind == KindHeavy && (p.Smoothing <= 0 || p.Smoothing > 1):
		return fmt.Errorf("%w: heavy smoothing must be in (0, 1], got %g", ErrInvalidConfig, p.Smoothing)
	}
	return nil
}
