package calibration

import "math"

// NormalizeConfidence maps the 1-5 confidence scale onto 0-100:
// 1→0, 2→25, 3→50, 4→75, 5→100.
func NormalizeConfidence(c int) (float64, error) {
	if c < MinConfidence || c > MaxConfidence {
		return 0, &RangeError{Field: "confidence", Value: float64(c), Min: MinConfidence, Max: MaxConfidence}
	}
	return float64(c-1) * 25, nil
}

// ValidateScore rejects scores outside [0, 100]. Scores are never clamped.
func ValidateScore(score float64) error {
	if math.IsNaN(score) || score < MinScore || score > MaxScore {
		return &RangeError{Field: "score", Value: score, Min: MinScore, Max: MaxScore}
	}
	return nil
}

// Delta returns normalizeConfidence(c) - score.
func Delta(confidence int, score float64) (float64, error) {
	norm, err := NormalizeConfidence(confidence)
	if err != nil {
		return 0, err
	}
	if err := ValidateScore(score); err != nil {
		return 0, err
	}
	return norm - score, nil
}

// Categorize classifies a delta. Exactly ±Tolerance is calibrated.
func Categorize(delta float64) Category {
	switch {
	case delta > Tolerance:
		return CategoryOverconfident
	case delta < -Tolerance:
		return CategoryUnderconfident
	default:
		return CategoryCalibrated
	}
}

// IsCalibrated reports whether |delta| stays within the tolerance.
func IsCalibrated(delta float64) bool {
	return Categorize(delta) == CategoryCalibrated
}

// Analyze builds the calibration record for a single response.
func Analyze(confidence int, score float64) (Record, error) {
	norm, err := NormalizeConfidence(confidence)
	if err != nil {
		return Record{}, err
	}
	if err := ValidateScore(score); err != nil {
		return Record{}, err
	}
	delta := norm - score
	return Record{
		Confidence:           confidence,
		NormalizedConfidence: norm,
		Score:                score,
		Delta:                delta,
		Category:             Categorize(delta),
	}, nil
}

// MeanAbsoluteError returns mean(|delta|) over the records.
// The second return is false when there are no records.
func MeanAbsoluteError(records []Record) (float64, bool) {
	if len(records) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, r := range records {
		sum += math.Abs(r.Delta)
	}
	return sum / float64(len(records)), true
}
