package world

import (
	"math"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/temperature"
)

// ErrInvalidPhysics is returned for a negative heat damage rate or a heat capacity outside
// [0.1, 0.4].
var ErrInvalidPhysics = apperrors.New(apperrors.CodeOutOfRange, "invalid physical constants")

const (
	coldDamageThreshold = -5.0
	rustDamageThreshold = 30_00
	rustPerDamagePoint  = 7_00
)

// Physics holds the constants of the damage and inhabitability formulas.
type Physics struct {
	HeatDamageBoundary  temperature.Temperature
	HeatDamagePerDegree float64
	HeatCapacity        float64
}

// DefaultPhysics returns a 35 °C heat boundary, one damage point per 15 degrees above it and a
// heat capacity of 0.2.
func DefaultPhysics() Physics {
	return Physics{
		HeatDamageBoundary:  temperature.C(35),
		HeatDamagePerDegree: 1.0 / 15.0,
		HeatCapacity:        0.2,
	}
}

// Validate checks the constants.
func (p Physics) Validate() error {
	if p.HeatDamagePerDegree < 0 || math.IsNaN(p.HeatDamagePerDegree) {
		return ErrInvalidPhysics
	}
	if p.HeatCapacity < 0.1 || p.HeatCapacity > 0.4 {
		return ErrInvalidPhysics
	}
	return nil
}

// ColdDamage returns the damage an explorer takes per turn from the cold of s.
func (p Physics) ColdDamage(s *Square) int {
	c := s.Temperature().Celsius()
	if c >= coldDamageThreshold {
		return 0
	}
	return int(math.Floor(-c/10 - 0.5))
}

// HeatDamage returns the damage an explorer takes per turn from the heat of s.
func (p Physics) HeatDamage(s *Square) int {
	t := s.Temperature()
	if t.Compare(p.HeatDamageBoundary) <= 0 {
		return 0
	}
	damage := (t.Celsius() - p.HeatDamageBoundary.Celsius()) * p.HeatDamagePerDegree
	return int(math.Min(math.MaxInt32, math.Floor(damage)))
}

// RustDamage returns the rust damage caused by the humidity of s.
func (p Physics) RustDamage(s *Square) int {
	if s.Humidity() <= rustDamageThreshold {
		return 0
	}
	return int((s.Humidity() - rustDamageThreshold) / rustPerDamagePoint)
}

// Inhabitability scores how livable s is; zero is best and the score falls with heat and cold.
func (p Physics) Inhabitability(s *Square) float64 {
	heat := -math.Pow(float64(p.HeatDamage(s)), 1.5) / math.Sqrt(101-s.Humidity().Percent())
	cold := -math.Sqrt(float64(p.ColdDamage(s)))
	return heat + cold
}
