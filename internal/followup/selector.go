package followup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

// PromptFinder is the slice of the question repository the selector needs.
type PromptFinder interface {
	Find(ctx context.Context, objectiveID string, target float64, exclude []string) (*store.Prompt, error)
}

// Result pairs a directive with the question chosen for it.
type Result struct {
	Directive   Directive
	Prompt      *store.Prompt
	HasFollowUp bool
	Reason      string
}

// MarshalJSON flattens the directive variant into the wire form.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Directive   directiveJSON `json:"directive"`
		Prompt      *store.Prompt `json:"prompt,omitempty"`
		HasFollowUp bool          `json:"has_follow_up"`
		Reason      string        `json:"reason"`
	}{toJSON(r.Directive), r.Prompt, r.HasFollowUp, r.Reason})
}

// Selector resolves a directive against the objective graph and the
// question repository. It never widens a search that comes back empty.
type Selector struct {
	graph   objectives.Graph
	prompts PromptFinder
}

// NewSelector creates a Selector. A nil graph keeps every follow-up on the
// same objective.
func NewSelector(graph objectives.Graph, prompts PromptFinder) *Selector {
	return &Selector{graph: graph, prompts: prompts}
}

// Select computes the follow-up for a just-graded response on objectiveID.
// exclude lists prompt ids that must not be offered.
func (s *Selector) Select(ctx context.Context, objectiveID string, score, currentDifficulty float64, exclude []string) (*Result, error) {
	d := Decide(score, currentDifficulty)

	switch v := d.(type) {
	case Prerequisite:
		target, err := s.related(ctx, objectiveID, s.prerequisitesOf)
		if err != nil {
			return nil, err
		}
		v.TargetObjectiveID = target
		d = v
	case Advanced:
		target, err := s.related(ctx, objectiveID, s.advancedVariantsOf)
		if err != nil {
			return nil, err
		}
		v.TargetObjectiveID = target
		d = v
	}

	targetObjective, targetDifficulty, ok := TargetOf(d)
	if !ok {
		return &Result{Directive: d, Reason: d.(None).Reasoning}, nil
	}
	if targetObjective == "" {
		targetObjective = objectiveID
	}

	p, err := s.prompts.Find(ctx, targetObjective, targetDifficulty, exclude)
	if err != nil {
		return nil, fmt.Errorf("find follow-up prompt: %w", err)
	}
	if p == nil {
		return &Result{
			Directive: d,
			Reason:    fmt.Sprintf("No question available for objective %q near difficulty %.0f", targetObjective, targetDifficulty),
		}, nil
	}
	return &Result{Directive: d, Prompt: p, HasFollowUp: true, Reason: reasoningOf(d)}, nil
}

// related returns the first related objective id in sorted order, or ""
// when the graph has none.
func (s *Selector) related(ctx context.Context, objectiveID string, lookup func(context.Context, string) ([]string, error)) (string, error) {
	if s.graph == nil {
		return "", nil
	}
	ids, err := lookup(ctx, objectiveID)
	if errors.Is(err, objectives.ErrUnknownObjective) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("objective graph: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func (s *Selector) prerequisitesOf(ctx context.Context, id string) ([]string, error) {
	return s.graph.PrerequisitesOf(ctx, id)
}

func (s *Selector) advancedVariantsOf(ctx context.Context, id string) ([]string, error) {
	return s.graph.AdvancedVariantsOf(ctx, id)
}

func reasoningOf(d Directive) string {
	switch v := d.(type) {
	case Prerequisite:
		return v.Reasoning
	case Advanced:
		return v.Reasoning
	case None:
		return v.Reasoning
	}
	return ""
}
