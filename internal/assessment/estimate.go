package assessment

import (
	"context"
	"fmt"

	"github.com/abhisek/assessor/internal/ability"
	"github.com/abhisek/assessor/internal/store"
)

// currentAbility returns the ability estimate from the learner's full
// history on an objective, and the early-stop signal. Both are nil below
// the estimator's minimum response count.
func (e *Engine) currentAbility(ctx context.Context, learnerID, objectiveID string) (*ability.Estimate, *bool, error) {
	seq, err := e.responses.LatestSequence(ctx, learnerID, objectiveID)
	if err != nil {
		return nil, nil, fmt.Errorf("latest sequence: %w", err)
	}
	if seq == 0 {
		return nil, nil, nil
	}

	est, ok, err := e.cache.Get(ctx, learnerID, objectiveID, seq)
	if err != nil {
		e.log.Warn("ability cache read failed", "learner_id", learnerID, "objective_id", objectiveID, "error", err)
	}
	if !ok {
		history, err := e.responses.Query(ctx, store.ResponseQuery{LearnerID: learnerID, ObjectiveID: objectiveID})
		if err != nil {
			return nil, nil, fmt.Errorf("load history: %w", err)
		}
		est = e.estimator.Estimate(observations(history))
		if est == nil {
			return nil, nil, nil
		}
		if est.NonConvergent {
			e.log.Warn("ability estimate did not converge",
				"learner_id", learnerID, "objective_id", objectiveID, "iterations", est.Iterations)
		}
		if err := e.cache.Set(ctx, learnerID, objectiveID, seq, est); err != nil {
			e.log.Warn("ability cache write failed", "learner_id", learnerID, "objective_id", objectiveID, "error", err)
		}
	}

	stop := e.estimator.ShouldStopEarly(est)
	return est, &stop, nil
}

func observations(history []store.ResponseRecord) []ability.Observation {
	obs := make([]ability.Observation, len(history))
	for i, r := range history {
		obs[i] = ability.Observation{Difficulty: r.Difficulty, Score: r.Score}
	}
	return obs
}
