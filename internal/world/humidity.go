package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

// Humidity is a relative humidity percentage with two decimals, stored in hundredths of a percent.
type Humidity int64

const (
	// MinHumidity is 0.00 %.
	MinHumidity Humidity = 0
	// MaxHumidity is 100.00 %.
	MaxHumidity Humidity = 100_00
	// DefaultHumidity is 50.00 %.
	DefaultHumidity Humidity = 50_00
)

// ErrInvalidHumidity is returned for humidity values outside 0–100 %.
var ErrInvalidHumidity = apperrors.New(apperrors.CodeOutOfRange, "humidity must lie between 0 and 100 percent")

// HumidityFromPercent converts a percentage, rounding half up to two decimals.
func HumidityFromPercent(percent float64) (Humidity, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return 0, ErrInvalidHumidity
	}
	return Humidity(math.Floor(percent*100 + 0.5)), nil
}

// ParseHumidity parses a decimal percentage such as "42.5" or "42.50%".
func ParseHumidity(s string) (Humidity, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeOutOfRange, "parse humidity "+strconv.Quote(s), err)
	}
	return HumidityFromPercent(v)
}

// Valid reports whether h lies between 0 and 100 %.
func (h Humidity) Valid() bool {
	return h >= MinHumidity && h <= MaxHumidity
}

// Percent returns the value as a floating point percentage.
func (h Humidity) Percent() float64 {
	return float64(h) / 100
}

// String renders h with two decimals, e.g. "50.00%".
func (h Humidity) String() string {
	return fmt.Sprintf("%d.%02d%%", h/100, h%100)
}

// meanHumidity returns the average of values rounded half up to two decimals.
func meanHumidity(values []Humidity) Humidity {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	n := int64(len(values))
	return Humidity((2*sum + n) / (2 * n))
}
