package calibration

import (
	"fmt"
	"math"
)

// Correlation is a Pearson coefficient over confidence/score pairs.
type Correlation struct {
	R        float64  `json:"r"`
	N        int      `json:"n"`
	Strength Strength `json:"strength"`
}

// Correlate computes Pearson's r over paired, length-matched slices.
//
//	r = Σ(x−x̄)(y−ȳ) / sqrt[Σ(x−x̄)² · Σ(y−ȳ)²]
//
// Returns nil when fewer than MinCorrelationPairs pairs are supplied. When
// either side is constant, r is exactly 0.
func Correlate(confidences, scores []float64) (*Correlation, error) {
	if len(confidences) != len(scores) {
		return nil, fmt.Errorf("correlate: %d confidences vs %d scores", len(confidences), len(scores))
	}
	n := len(confidences)
	if n < MinCorrelationPairs {
		return nil, nil
	}
	if constant(confidences) || constant(scores) {
		return &Correlation{R: 0, N: n, Strength: Interpret(0)}, nil
	}

	meanX, meanY := mean(confidences), mean(scores)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := confidences[i]-meanX, scores[i]-meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	r := 0.0
	if sxx > 0 && syy > 0 {
		r = sxy / math.Sqrt(sxx*syy)
		// Rounding can push a perfect fit a hair past ±1.
		r = math.Max(-1, math.Min(1, r))
	}

	return &Correlation{R: r, N: n, Strength: Interpret(r)}, nil
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Interpret labels |r|: above 0.7 is strong, 0.4 through 0.7 moderate, below 0.4 weak.
func Interpret(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs > 0.7:
		return StrengthStrong
	case abs >= 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
