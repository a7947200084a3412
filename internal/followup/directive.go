package followup

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/assessor/internal/difficulty"
)

// Kind names a follow-up branch.
type Kind string

const (
	KindNone         Kind = "NONE"
	KindPrerequisite Kind = "PREREQUISITE"
	KindAdvanced     Kind = "ADVANCED"
)

const (
	// PrerequisiteBelow is the exclusive score bound under which the learner
	// is sent back to a prerequisite.
	PrerequisiteBelow = 60.0
	// AdvancedAbove is the exclusive score bound over which the learner is
	// sent ahead to a more complex objective.
	AdvancedAbove = 85.0
	// Step is the difficulty offset applied in either branch.
	Step = 20.0
)

// Directive is one of None, Prerequisite or Advanced.
type Directive interface {
	Kind() Kind
	isDirective()
}

// None means no follow-up is warranted.
type None struct {
	Reasoning string
}

// Prerequisite sends the learner to an easier, foundational question.
// An empty TargetObjectiveID means the same objective.
type Prerequisite struct {
	TargetObjectiveID string
	TargetDifficulty  float64
	Reasoning         string
}

// Advanced sends the learner to a harder, more complex question.
// An empty TargetObjectiveID means the same objective.
type Advanced struct {
	TargetObjectiveID string
	TargetDifficulty  float64
	Reasoning         string
}

func (None) Kind() Kind         { return KindNone }
func (Prerequisite) Kind() Kind { return KindPrerequisite }
func (Advanced) Kind() Kind     { return KindAdvanced }

func (None) isDirective()         {}
func (Prerequisite) isDirective() {}
func (Advanced) isDirective()     {}

// Decide applies the branch table to a just-graded score:
//
//	score < 60         PREREQUISITE at difficulty - 20
//	60 <= score <= 85  NONE
//	score > 85         ADVANCED at difficulty + 20
//
// Target difficulties are clamped to [0, 100]. The returned directive has no
// target objective; the Selector fills it from the objective graph.
func Decide(score, currentDifficulty float64) Directive {
	switch {
	case score < PrerequisiteBelow:
		target := difficulty.Clamp(currentDifficulty - Step)
		return Prerequisite{
			TargetDifficulty: target,
			Reasoning:        fmt.Sprintf("Score %.0f is below %.0f; reinforce foundations at difficulty %.0f", score, PrerequisiteBelow, target),
		}
	case score > AdvancedAbove:
		target := difficulty.Clamp(currentDifficulty + Step)
		return Advanced{
			TargetDifficulty: target,
			Reasoning:        fmt.Sprintf("Score %.0f is above %.0f; extend to a more complex question at difficulty %.0f", score, AdvancedAbove, target),
		}
	default:
		return None{Reasoning: fmt.Sprintf("Score %.0f is within the expected range; no follow-up needed", score)}
	}
}

// directiveJSON is the wire form shared by every variant.
type directiveJSON struct {
	Type              Kind     `json:"type"`
	TargetDifficulty  *float64 `json:"target_difficulty,omitempty"`
	TargetObjectiveID *string  `json:"target_objective_id"`
	Reasoning         string   `json:"reasoning"`
}

func toJSON(d Directive) directiveJSON {
	switch v := d.(type) {
	case Prerequisite:
		return directiveJSON{Type: v.Kind(), TargetDifficulty: &v.TargetDifficulty, TargetObjectiveID: optional(v.TargetObjectiveID), Reasoning: v.Reasoning}
	case Advanced:
		return directiveJSON{Type: v.Kind(), TargetDifficulty: &v.TargetDifficulty, TargetObjectiveID: optional(v.TargetObjectiveID), Reasoning: v.Reasoning}
	case None:
		return directiveJSON{Type: v.Kind(), Reasoning: v.Reasoning}
	default:
		return directiveJSON{Type: KindNone}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MarshalDirective encodes any directive variant.
func MarshalDirective(d Directive) ([]byte, error) {
	return json.Marshal(toJSON(d))
}

// TargetOf returns the target objective and difficulty for a branching
// directive. ok is false for None.
func TargetOf(d Directive) (objectiveID string, target float64, ok bool) {
	switch v := d.(type) {
	case Prerequisite:
		return v.TargetObjectiveID, v.TargetDifficulty, true
	case Advanced:
		return v.TargetObjectiveID, v.TargetDifficulty, true
	default:
		return "", 0, false
	}
}
