// Package difficulty proposes the next question difficulty from the most
// recent score. It knows nothing about ability estimation or history, so a
// different selector can replace it without touching callers.
package difficulty

const (
	MinDifficulty = 0.0
	MaxDifficulty = 100.0
)

// Band identifies which score band drove an adjustment.
type Band string

const (
	BandExcellent  Band = "excellent"
	BandProficient Band = "proficient"
	BandStruggling Band = "struggling"
	BandFailing    Band = "failing"
)

// Adjustment is the controller's proposal.
type Adjustment struct {
	Previous      float64 `json:"previous_difficulty"`
	NewDifficulty float64 `json:"new_difficulty"`
	// Delta is the change actually applied after clamping.
	Delta  float64 `json:"delta"`
	Band   Band    `json:"band"`
	Reason string  `json:"reason"`
}

// rule is one row of the decision table. A score matches when it is >= min.
type rule struct {
	min    float64
	step   float64
	band   Band
	reason string
}

// table is ordered from the highest band down.
var table = []rule{
	{min: 85, step: 15, band: BandExcellent, reason: "Excellent performance, increase challenge"},
	{min: 60, step: 0, band: BandProficient, reason: "Solid performance, maintain difficulty"},
	{min: 40, step: -10, band: BandStruggling, reason: "Some difficulty, decrease difficulty"},
}

var failing = rule{step: -20, band: BandFailing, reason: "Significant difficulty, decrease substantially"}

// Adapt returns the next difficulty for (currentDifficulty, lastScore).
//
//	score >= 85        +15
//	60 <= score < 85    0
//	40 <= score < 60   -10
//	score < 40         -20
//
// The result is always clamped to [0, 100].
func Adapt(currentDifficulty, lastScore float64) Adjustment {
	current := Clamp(currentDifficulty)

	r := failing
	for _, row := range table {
		if lastScore >= row.min {
			r = row
			break
		}
	}

	next := Clamp(current + r.step)
	return Adjustment{
		Previous:      current,
		NewDifficulty: next,
		Delta:         next - current,
		Band:          r.band,
		Reason:        r.reason,
	}
}

// Clamp bounds a difficulty to [0, 100].
func Clamp(d float64) float64 {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}
