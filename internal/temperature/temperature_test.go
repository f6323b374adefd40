package temperature

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		from, to Unit
		in, want float64
	}{
		{Celsius, Fahrenheit, 100, 212},
		{Fahrenheit, Celsius, 32, 0},
		{Celsius, Kelvin, 0, 273.15},
		{Kelvin, Celsius, 0, AbsoluteZeroCelsius},
		{Kelvin, Fahrenheit, 273.15, 32},
		{Celsius, Celsius, 25, 25},
	}

	for _, tt := range tests {
		got, err := tt.from.Convert(tt.to, tt.in)
		if err != nil {
			t.Fatalf("Convert(%v -> %v, %v): %v", tt.from.Symbol(), tt.to.Symbol(), tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Convert(%v -> %v, %v) = %v, want %v", tt.from.Symbol(), tt.to.Symbol(), tt.in, got, tt.want)
		}
	}
}

func TestConvertRejectsInvalid(t *testing.T) {
	if _, err := Kelvin.Convert(Celsius, -1); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid below absolute zero, got %v", err)
	}
	if _, err := Celsius.Convert(Kelvin, math.NaN()); err == nil {
		t.Error("expected NaN to be rejected")
	}
}

func TestNew(t *testing.T) {
	temp, err := New(212, Fahrenheit)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if math.Abs(temp.Celsius()-100) > 1e-9 {
		t.Errorf("Celsius() = %v, want 100", temp.Celsius())
	}
	if math.Abs(temp.In(Kelvin)-373.15) > 1e-9 {
		t.Errorf("In(Kelvin) = %v", temp.In(Kelvin))
	}

	_, err = New(-300, Celsius)
	if !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("expected out-of-range error, got %v", err)
	}
}

func TestCompareAndWithin(t *testing.T) {
	cold, warm := C(-5), C(30)
	if cold.Compare(warm) != -1 || warm.Compare(cold) != 1 || cold.Compare(C(-5)) != 0 {
		t.Error("Compare mismatch")
	}
	if !C(0).Within(cold, warm) {
		t.Error("0°C should be within [-5, 30]")
	}
	if C(-5).Within(C(0), warm) {
		t.Error("-5°C should not be within [0, 30]")
	}
	if C(-1000).Celsius() != AbsoluteZeroCelsius {
		t.Error("C should clamp to absolute zero")
	}
	if C(25).String() != "25°C" {
		t.Errorf("String = %q", C(25).String())
	}
}
