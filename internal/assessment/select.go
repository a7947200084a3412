package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/cooldown"
	"github.com/abhisek/assessor/internal/difficulty"
	"github.com/abhisek/assessor/internal/store"
)

// SelectNext picks the next question for a learner on an objective.
//
// With no previous response the initial difficulty applies. Otherwise the
// difficulty controller adapts from the previous response's difficulty and
// score. Questions answered inside the cooldown window are excluded. The
// ability estimate and early-stop signal are attached only once enough
// responses exist.
func (e *Engine) SelectNext(ctx context.Context, req NextRequest) (*Selection, error) {
	if err := requireIDs(req.LearnerID, req.ObjectiveID); err != nil {
		return nil, err
	}
	if req.LastScore != nil {
		if err := calibration.ValidateScore(*req.LastScore); err != nil {
			return nil, err
		}
	}
	if req.LastConfidence != nil {
		if _, err := calibration.NormalizeConfidence(*req.LastConfidence); err != nil {
			return nil, err
		}
	}

	log := e.log.With("learner_id", req.LearnerID, "objective_id", req.ObjectiveID)
	sel := &Selection{}

	prev, err := e.previousResponse(ctx, req)
	if err != nil {
		return nil, err
	}
	switch {
	case prev != nil:
		score := prev.Score
		if req.LastScore != nil {
			score = *req.LastScore
		}
		adj := difficulty.Adapt(prev.Difficulty, score)
		sel.Adjustment = &adj
		sel.TargetDifficulty = adj.NewDifficulty
	case req.LastScore != nil:
		// A score with no recorded response: adapt from the initial level.
		adj := difficulty.Adapt(e.opts.InitialDifficulty, *req.LastScore)
		sel.Adjustment = &adj
		sel.TargetDifficulty = adj.NewDifficulty
	default:
		sel.TargetDifficulty = difficulty.Clamp(e.opts.InitialDifficulty)
	}

	now := e.now()
	exclude, err := e.cooldown.Exclusions(ctx, e.responses, req.LearnerID, now)
	if err != nil {
		return nil, err
	}
	p, err := e.prompts.Find(ctx, req.ObjectiveID, sel.TargetDifficulty, exclude)
	if err != nil {
		return nil, fmt.Errorf("find prompt: %w", err)
	}

	if p == nil && e.opts.RelaxCooldown {
		sessionOnly, err := cooldown.SessionExclusions(ctx, e.responses, req.LearnerID, req.SessionID)
		if err != nil {
			return nil, err
		}
		p, err = e.prompts.Find(ctx, req.ObjectiveID, sel.TargetDifficulty, sessionOnly)
		if err != nil {
			return nil, fmt.Errorf("find prompt: %w", err)
		}
		if p != nil {
			sel.CooldownRelaxed = true
			log.Info("cooldown relaxed to find a question", "excluded", len(exclude))
		}
	}

	if p == nil {
		sel.NoCandidate = true
		sel.Reason = fmt.Sprintf("No question available for objective %q near difficulty %.0f", req.ObjectiveID, sel.TargetDifficulty)
		log.Info("no candidate question", "target_difficulty", sel.TargetDifficulty, "excluded", len(exclude))
	} else {
		sel.Prompt = p
		if sel.Adjustment != nil {
			sel.Reason = sel.Adjustment.Reason
		} else {
			sel.Reason = "Initial difficulty"
		}
	}

	sel.Ability, sel.ShouldStopEarly, err = e.currentAbility(ctx, req.LearnerID, req.ObjectiveID)
	if err != nil {
		return nil, err
	}

	log.Debug("selected next question",
		"target_difficulty", sel.TargetDifficulty, "prompt_id", promptID(sel.Prompt), "no_candidate", sel.NoCandidate)
	return sel, nil
}

// previousResponse resolves the response that drives adaptation: the one
// named in the request, else (with ResumeFromHistory) the learner's most
// recent on the objective.
func (e *Engine) previousResponse(ctx context.Context, req NextRequest) (*store.ResponseRecord, error) {
	if req.LastResponseID != "" {
		rec, err := e.responses.Get(ctx, req.LastResponseID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: last response %q not found", ErrInvalidRequest, req.LastResponseID)
		}
		if err != nil {
			return nil, err
		}
		if rec.LearnerID != req.LearnerID || rec.ObjectiveID != req.ObjectiveID {
			return nil, fmt.Errorf("%w: last response %q belongs to another learner or objective", ErrInvalidRequest, req.LastResponseID)
		}
		return rec, nil
	}
	if !e.opts.ResumeFromHistory {
		return nil, nil
	}

	recent, err := e.responses.Query(ctx, store.ResponseQuery{
		LearnerID:   req.LearnerID,
		ObjectiveID: req.ObjectiveID,
		Limit:       1,
	})
	if err != nil {
		return nil, fmt.Errorf("load latest response: %w", err)
	}
	if len(recent) == 0 {
		return nil, nil
	}
	return &recent[0], nil
}

func requireIDs(learnerID, objectiveID string) error {
	if learnerID == "" {
		return fmt.Errorf("%w: learner id is required", ErrInvalidRequest)
	}
	if objectiveID == "" {
		return fmt.Errorf("%w: objective id is required", ErrInvalidRequest)
	}
	return nil
}

func promptID(p *store.Prompt) string {
	if p == nil {
		return ""
	}
	return p.ID
}
