package sensor

import (
	"context"
	"errors"
	"math"
)

// Source yields raw temperature samples in Celsius.
type Source interface {
	ID() string
	Read(ctx context.Context) (float64, error)
}

// Plausible range for an AHT-class ambient sensor.
const (
	MinValidC = -40.0
	MaxValidC = 85.0
)

var (
	ErrNotANumber = errors.New("sensor reading is NaN or infinite")
	ErrOutOfRange = errors.New("sensor reading outside plausible range")
)

// Validate rejects readings no real ambient sensor could produce.
func Validate(celsius float64) error {
	if math.IsNaN(celsius) || math.IsInf(celsius, 0) {
		return ErrNotANumber
	}
	if celsius < MinValidC || celsius > MaxValidC {
		return ErrOutOfRange
	}
	return nil
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// FToC converts Fahrenheit to Celsius.
func FToC(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}
