package mastery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

// Service computes mastery authoritatively from response history and
// persists the result with its transition log.
type Service struct {
	responses store.ResponseRepo
	records   store.MasteryRepo
	graph     objectives.Graph
	cfg       Config
	now       func() time.Time
}

// NewService creates a mastery service. A nil graph treats every objective
// as INTERMEDIATE.
func NewService(responses store.ResponseRepo, records store.MasteryRepo, graph objectives.Graph, cfg Config) *Service {
	return &Service{
		responses: responses,
		records:   records,
		graph:     graph,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Config returns the effective thresholds.
func (s *Service) Config() Config {
	return s.cfg
}

// Refresh recomputes the learner's mastery of an objective, saves it, and
// appends a transition event if the status changed. The returned transition
// is nil when the status is unchanged.
func (s *Service) Refresh(ctx context.Context, learnerID, objectiveID string) (*Record, *StateTransition, error) {
	now := s.now().UTC()
	history, err := s.responses.Query(ctx, store.ResponseQuery{
		LearnerID:   learnerID,
		ObjectiveID: objectiveID,
		Since:       now.Add(-s.cfg.Lookback),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}

	hasResponses := len(history) > 0
	if !hasResponses {
		seq, err := s.responses.LatestSequence(ctx, learnerID, objectiveID)
		if err != nil {
			return nil, nil, fmt.Errorf("latest sequence: %w", err)
		}
		hasResponses = seq > 0
	}

	tier, err := s.tierOf(ctx, objectiveID)
	if err != nil {
		return nil, nil, err
	}

	prev, err := s.records.Get(ctx, learnerID, objectiveID)
	if err != nil {
		return nil, nil, fmt.Errorf("load mastery record: %w", err)
	}

	criteria := Evaluate(history, tier, s.cfg)
	rec := &Record{
		LearnerID:   learnerID,
		ObjectiveID: objectiveID,
		Status:      StatusFor(hasResponses, criteria),
		CriteriaMet: criteria,
		NextSteps:   NextSteps(criteria, tier, s.cfg),
		UpdatedAt:   now,
	}

	from := StatusNotStarted
	if prev != nil {
		from = Status(prev.Status)
	}
	if rec.Status == StatusVerified {
		if prev != nil && from == StatusVerified && prev.VerifiedAt != nil {
			rec.VerifiedAt = prev.VerifiedAt
		} else {
			rec.VerifiedAt = &now
		}
	}

	if err := s.records.Save(ctx, toData(rec)); err != nil {
		return nil, nil, err
	}

	if from == rec.Status {
		return rec, nil, nil
	}
	trigger := triggerFor(from, rec.Status)
	if trigger == TriggerDisconfirmingEvidence {
		expired, err := s.agedOut(ctx, learnerID, objectiveID, tier)
		if err != nil {
			return nil, nil, err
		}
		if expired {
			trigger = TriggerEvidenceExpired
		}
	}
	tr := &StateTransition{
		LearnerID:   learnerID,
		ObjectiveID: objectiveID,
		From:        from,
		To:          rec.Status,
		Trigger:     trigger,
	}
	if err := s.records.AppendEvent(ctx, store.MasteryEventData{
		Timestamp:   now,
		LearnerID:   learnerID,
		ObjectiveID: objectiveID,
		FromState:   string(tr.From),
		ToState:     string(tr.To),
		Trigger:     tr.Trigger,
	}); err != nil {
		return nil, nil, err
	}
	return rec, tr, nil
}

// agedOut reports whether the full, unbounded history still meets every
// criterion, meaning only the lookback cut-off broke mastery.
func (s *Service) agedOut(ctx context.Context, learnerID, objectiveID string, tier objectives.Tier) (bool, error) {
	all, err := s.responses.Query(ctx, store.ResponseQuery{LearnerID: learnerID, ObjectiveID: objectiveID})
	if err != nil {
		return false, fmt.Errorf("load full history: %w", err)
	}
	return Evaluate(all, tier, s.cfg).All(), nil
}

// History returns the recorded status transitions, oldest first.
func (s *Service) History(ctx context.Context, learnerID, objectiveID string) ([]StateTransition, error) {
	events, err := s.records.Events(ctx, learnerID, objectiveID)
	if err != nil {
		return nil, err
	}
	out := make([]StateTransition, len(events))
	for i, ev := range events {
		out[i] = StateTransition{
			LearnerID:   ev.LearnerID,
			ObjectiveID: ev.ObjectiveID,
			From:        Status(ev.FromState),
			To:          Status(ev.ToState),
			Trigger:     ev.Trigger,
		}
	}
	return out, nil
}

func (s *Service) tierOf(ctx context.Context, objectiveID string) (objectives.Tier, error) {
	if s.graph == nil {
		return objectives.TierIntermediate, nil
	}
	tier, err := s.graph.TierOf(ctx, objectiveID)
	if errors.Is(err, objectives.ErrUnknownObjective) {
		return objectives.TierIntermediate, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve tier: %w", err)
	}
	return tier, nil
}

func toData(r *Record) store.MasteryRecordData {
	return store.MasteryRecordData{
		LearnerID:               r.LearnerID,
		ObjectiveID:             r.ObjectiveID,
		Status:                  string(r.Status),
		ConsecutiveHighScores:   r.CriteriaMet.ConsecutiveHighScores,
		MultipleAssessmentTypes: r.CriteriaMet.MultipleAssessmentTypes,
		AppropriateDifficulty:   r.CriteriaMet.AppropriateDifficulty,
		AccurateCalibration:     r.CriteriaMet.AccurateCalibration,
		TimeSpaced:              r.CriteriaMet.TimeSpaced,
		NextSteps:               r.NextSteps,
		VerifiedAt:              r.VerifiedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}
