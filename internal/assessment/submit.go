package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/difficulty"
	"github.com/abhisek/assessor/internal/followup"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/store"
)

// SubmitResponse records a graded answer and returns every derived output:
// calibration, ability, difficulty adjustment, mastery and follow-up.
//
// Out-of-range score, confidence or difficulty aborts before anything is
// written. Submitting the same answer twice records it twice; callers must
// guard against duplicates.
func (e *Engine) SubmitResponse(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := requireIDs(req.LearnerID, req.ObjectiveID); err != nil {
		return nil, err
	}
	if req.PromptID == "" {
		return nil, fmt.Errorf("%w: prompt id is required", ErrInvalidRequest)
	}
	cal, err := calibration.Analyze(req.Confidence, req.Score)
	if err != nil {
		return nil, err
	}
	if err := validateDifficulty(req.Difficulty); err != nil {
		return nil, err
	}

	atype := req.AssessmentType
	if atype == "" {
		p, err := e.prompts.Get(ctx, req.PromptID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: assessment type is required for unknown prompt %q", ErrInvalidRequest, req.PromptID)
		}
		if err != nil {
			return nil, err
		}
		atype = p.AssessmentType
	}

	respondedAt := req.RespondedAt
	if respondedAt.IsZero() {
		respondedAt = e.now()
	}
	rec := &store.ResponseRecord{
		LearnerID:       req.LearnerID,
		ObjectiveID:     req.ObjectiveID,
		PromptID:        req.PromptID,
		SessionID:       req.SessionID,
		Difficulty:      req.Difficulty,
		Score:           req.Score,
		Confidence:      req.Confidence,
		AssessmentType:  atype,
		TimeToRespondMs: req.TimeToRespondMs,
		RespondedAt:     respondedAt,
	}
	if err := e.responses.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append response: %w", err)
	}

	log := e.log.With("learner_id", req.LearnerID, "objective_id", req.ObjectiveID, "response_id", rec.ID)
	log.Debug("response recorded", "score", req.Score, "confidence", req.Confidence, "category", cal.Category)

	res := &SubmitResult{
		Response:    *rec,
		Calibration: cal,
		Adjustment:  difficulty.Adapt(req.Difficulty, req.Score),
	}

	res.Ability, res.ShouldStopEarly, err = e.currentAbility(ctx, req.LearnerID, req.ObjectiveID)
	if err != nil {
		return nil, err
	}

	res.Mastery, res.Transition, err = e.mastery.Refresh(ctx, req.LearnerID, req.ObjectiveID)
	if err != nil {
		return nil, fmt.Errorf("refresh mastery: %w", err)
	}
	if res.Transition != nil {
		log.Info("mastery status changed", "from", res.Transition.From, "to", res.Transition.To, "trigger", res.Transition.Trigger)
	}

	res.FollowUp, err = e.followUp(ctx, req.LearnerID, req.ObjectiveID, req.Score, req.Difficulty)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetMasteryStatus recomputes and returns the learner's mastery of an objective.
func (e *Engine) GetMasteryStatus(ctx context.Context, learnerID, objectiveID string) (*mastery.Record, error) {
	if err := requireIDs(learnerID, objectiveID); err != nil {
		return nil, err
	}
	rec, tr, err := e.mastery.Refresh(ctx, learnerID, objectiveID)
	if err != nil {
		return nil, err
	}
	if tr != nil {
		e.log.Info("mastery status changed",
			"learner_id", learnerID, "objective_id", objectiveID, "from", tr.From, "to", tr.To, "trigger", tr.Trigger)
	}
	return rec, nil
}

// GenerateFollowUp computes a follow-up for a score without recording it.
func (e *Engine) GenerateFollowUp(ctx context.Context, req FollowUpRequest) (*followup.Result, error) {
	if err := requireIDs(req.LearnerID, req.ObjectiveID); err != nil {
		return nil, err
	}
	if err := calibration.ValidateScore(req.Score); err != nil {
		return nil, err
	}
	if err := validateDifficulty(req.Difficulty); err != nil {
		return nil, err
	}
	return e.followUp(ctx, req.LearnerID, req.ObjectiveID, req.Score, req.Difficulty)
}

func (e *Engine) followUp(ctx context.Context, learnerID, objectiveID string, score, current float64) (*followup.Result, error) {
	exclude, err := e.cooldown.Exclusions(ctx, e.responses, learnerID, e.now())
	if err != nil {
		return nil, err
	}
	res, err := e.followups.Select(ctx, objectiveID, score, current, exclude)
	if err != nil {
		return nil, fmt.Errorf("follow-up: %w", err)
	}
	return res, nil
}

func validateDifficulty(d float64) error {
	if math.IsNaN(d) || d < difficulty.MinDifficulty || d > difficulty.MaxDifficulty {
		return &calibration.RangeError{Field: "difficulty", Value: d, Min: difficulty.MinDifficulty, Max: difficulty.MaxDifficulty}
	}
	return nil
}
