package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/store"
)

// CalibrationReport summarizes a learner's confidence calibration over the
// lookback window. An empty objectiveID covers every objective; topics are
// grouped by objective.
func (e *Engine) CalibrationReport(ctx context.Context, learnerID, objectiveID string) (*calibration.Report, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("%w: learner id is required", ErrInvalidRequest)
	}
	history, err := e.responses.Query(ctx, store.ResponseQuery{
		LearnerID:   learnerID,
		ObjectiveID: objectiveID,
		Since:       e.lookbackStart(),
	})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	samples := make([]calibration.Sample, len(history))
	for i, r := range history {
		samples[i] = calibration.Sample{Topic: r.ObjectiveID, Confidence: r.Confidence, Score: r.Score}
	}
	return calibration.BuildReport(samples)
}

// AbilityReport returns the current ability estimate for an objective.
// Estimate is nil until enough responses exist.
func (e *Engine) AbilityReport(ctx context.Context, learnerID, objectiveID string) (*AbilityReport, error) {
	if err := requireIDs(learnerID, objectiveID); err != nil {
		return nil, err
	}
	est, stop, err := e.currentAbility(ctx, learnerID, objectiveID)
	if err != nil {
		return nil, err
	}
	return &AbilityReport{LearnerID: learnerID, ObjectiveID: objectiveID, Estimate: est, ShouldStopEarly: stop}, nil
}

func (e *Engine) lookbackStart() time.Time {
	return e.now().Add(-time.Duration(e.opts.LookbackDays) * 24 * time.Hour)
}
