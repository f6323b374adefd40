// Package temperature provides temperature values and unit conversion.
package temperature

import (
	"math"
	"strconv"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

const (
	// AbsoluteZeroCelsius is the lowest representable temperature.
	AbsoluteZeroCelsius = -273.15
	// MaximumCelsius is the highest representable temperature.
	MaximumCelsius = 1e200
)

// ErrInvalid is returned when a value is not representable in its unit.
var ErrInvalid = apperrors.New(apperrors.CodeOutOfRange, "temperature out of the unit's range")

// Unit is a temperature scale.
type Unit int

const (
	// Celsius is the canonical unit.
	Celsius Unit = iota
	// Fahrenheit converts as C*1.8+32.
	Fahrenheit
	// Kelvin converts as C+273.15.
	Kelvin
)

// Symbol returns the unit's display symbol.
func (u Unit) Symbol() string {
	switch u {
	case Celsius:
		return "°C"
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "?"
	}
}

// Min returns the lowest valid value in u.
func (u Unit) Min() float64 {
	return u.fromCelsius(AbsoluteZeroCelsius)
}

// Max returns the highest valid value in u.
func (u Unit) Max() float64 {
	return u.fromCelsius(MaximumCelsius)
}

// Valid reports whether v is a representable value in u.
func (u Unit) Valid(v float64) bool {
	return !math.IsNaN(v) && v >= u.Min() && v <= u.Max()
}

// Convert converts v from u to target.
func (u Unit) Convert(target Unit, v float64) (float64, error) {
	if !u.Valid(v) {
		return 0, ErrInvalid
	}
	if u == target {
		return v, nil
	}
	return target.fromCelsius(u.toCelsius(v)), nil
}

func (u Unit) toCelsius(v float64) float64 {
	switch u {
	case Fahrenheit:
		return (v - 32) / 1.8
	case Kelvin:
		return v + AbsoluteZeroCelsius
	default:
		return v
	}
}

func (u Unit) fromCelsius(c float64) float64 {
	switch u {
	case Fahrenheit:
		return c*1.8 + 32
	case Kelvin:
		return c - AbsoluteZeroCelsius
	default:
		return c
	}
}

// Temperature is an immutable temperature stored in Celsius.
type Temperature struct {
	celsius float64
}

// New returns the temperature v expressed in u.
func New(v float64, u Unit) (Temperature, error) {
	if !u.Valid(v) {
		return Temperature{}, apperrors.WithMetadata(apperrors.CodeOutOfRange, ErrInvalid.Message,
			map[string]string{"value": strconv.FormatFloat(v, 'g', -1, 64), "unit": u.Symbol()})
	}
	return Temperature{celsius: u.toCelsius(v)}, nil
}

// C returns a temperature in Celsius, clamping to the representable range.
// It is meant for literals that are known to be valid.
func C(v float64) Temperature {
	return Temperature{celsius: math.Max(AbsoluteZeroCelsius, math.Min(MaximumCelsius, v))}
}

// Celsius returns the value in Celsius.
func (t Temperature) Celsius() float64 {
	return t.celsius
}

// In returns the value expressed in u.
func (t Temperature) In(u Unit) float64 {
	return u.fromCelsius(t.celsius)
}

// Compare returns -1, 0 or +1 as t is colder than, equal to or warmer than o.
func (t Temperature) Compare(o Temperature) int {
	switch {
	case t.celsius < o.celsius:
		return -1
	case t.celsius > o.celsius:
		return 1
	default:
		return 0
	}
}

// Within reports whether t lies in the inclusive range [lo, hi].
func (t Temperature) Within(lo, hi Temperature) bool {
	return t.Compare(lo) >= 0 && t.Compare(hi) <= 0
}

// String renders the temperature in Celsius.
func (t Temperature) String() string {
	return strconv.FormatFloat(t.celsius, 'f', -1, 64) + Celsius.Symbol()
}
