package calibration

import (
	"errors"
	"fmt"
)

const (
	// MinConfidence and MaxConfidence bound the self-reported confidence scale.
	MinConfidence = 1
	MaxConfidence = 5

	// MinScore and MaxScore bound a graded score.
	MinScore = 0.0
	MaxScore = 100.0

	// Tolerance is the widest |delta| still considered calibrated.
	Tolerance = 15.0

	// MinCorrelationPairs is the fewest pairs for which a correlation is reported.
	MinCorrelationPairs = 5
)

// ErrInvalidRange is returned when a confidence or score falls outside its scale.
// It is the only calibration failure that should abort a caller's operation.
var ErrInvalidRange = errors.New("invalid range")

// RangeError describes which input was out of bounds.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %v outside [%v, %v]: %v", e.Field, e.Value, e.Min, e.Max, ErrInvalidRange)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// Category classifies the gap between confidence and performance.
type Category string

const (
	CategoryOverconfident  Category = "OVERCONFIDENT"
	CategoryUnderconfident Category = "UNDERCONFIDENT"
	CategoryCalibrated     Category = "CALIBRATED"
)

// Record is the calibration signal derived from one response.
type Record struct {
	Confidence           int      `json:"confidence"`
	NormalizedConfidence float64  `json:"normalized_confidence"`
	Score                float64  `json:"score"`
	Delta                float64  `json:"delta"`
	Category             Category `json:"category"`
}

// Strength labels the magnitude of a correlation coefficient.
type Strength string

const (
	StrengthStrong   Strength = "Strong"
	StrengthModerate Strength = "Moderate"
	StrengthWeak     Strength = "Weak"
)
