package mastery

import (
	"fmt"
	"math"

	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

// Criteria is the five-part mastery check. Status is VERIFIED only when
// every field is true.
type Criteria struct {
	ConsecutiveHighScores   bool `json:"consecutive_high_scores"`
	MultipleAssessmentTypes bool `json:"multiple_assessment_types"`
	AppropriateDifficulty   bool `json:"appropriate_difficulty"`
	AccurateCalibration     bool `json:"accurate_calibration"`
	TimeSpaced              bool `json:"time_spaced"`
}

// All reports whether every criterion holds.
func (c Criteria) All() bool {
	return c.ConsecutiveHighScores &&
		c.MultipleAssessmentTypes &&
		c.AppropriateDifficulty &&
		c.AccurateCalibration &&
		c.TimeSpaced
}

// Qualifying returns the trailing run of responses scoring above the high
// score threshold, most recent last, truncated to the configured window.
// history must be ordered oldest first.
func Qualifying(history []store.ResponseRecord, cfg Config) []store.ResponseRecord {
	cfg = cfg.withDefaults()
	start := len(history)
	for start > 0 && history[start-1].Score > cfg.HighScore {
		start--
	}
	run := history[start:]
	if len(run) > cfg.Window {
		run = run[len(run)-cfg.Window:]
	}
	return run
}

// Evaluate checks the five criteria against history (oldest first) for an
// objective of the given tier. An empty qualifying set fails every criterion.
func Evaluate(history []store.ResponseRecord, tier objectives.Tier, cfg Config) Criteria {
	cfg = cfg.withDefaults()
	q := Qualifying(history, cfg)
	if len(q) == 0 {
		return Criteria{}
	}

	floor := cfg.floor(tier)
	types := make(map[store.AssessmentType]bool)
	days := make(map[string]bool)
	difficultyOK, calibrationOK := true, true
	for _, r := range q {
		types[r.AssessmentType] = true
		days[r.RespondedAt.UTC().Format("2006-01-02")] = true
		if r.Difficulty < floor {
			difficultyOK = false
		}
		delta, err := calibration.Delta(r.Confidence, r.Score)
		if err != nil || math.Abs(delta) > cfg.CalibrationTolerance {
			calibrationOK = false
		}
	}

	return Criteria{
		ConsecutiveHighScores:   len(q) >= cfg.RequiredHigh,
		MultipleAssessmentTypes: len(types) >= cfg.RequiredTypes,
		AppropriateDifficulty:   difficultyOK,
		AccurateCalibration:     calibrationOK,
		TimeSpaced:              len(days) >= cfg.RequiredDays,
	}
}

// NextSteps lists a remediation hint for each unmet criterion in fixed order.
func NextSteps(c Criteria, tier objectives.Tier, cfg Config) []string {
	cfg = cfg.withDefaults()
	steps := []string{}
	if !c.ConsecutiveHighScores {
		steps = append(steps, fmt.Sprintf("Score above %.0f on %d consecutive questions", cfg.HighScore, cfg.RequiredHigh))
	}
	if !c.MultipleAssessmentTypes {
		steps = append(steps, fmt.Sprintf("Demonstrate mastery across at least %d different assessment types", cfg.RequiredTypes))
	}
	if !c.AppropriateDifficulty {
		steps = append(steps, fmt.Sprintf("Answer questions at difficulty %.0f or higher for this %s objective", cfg.floor(tier), tier))
	}
	if !c.AccurateCalibration {
		steps = append(steps, fmt.Sprintf("Keep confidence within %.0f points of actual performance", cfg.CalibrationTolerance))
	}
	if !c.TimeSpaced {
		steps = append(steps, fmt.Sprintf("Show mastery on at least %d different days", cfg.RequiredDays))
	}
	return steps
}
