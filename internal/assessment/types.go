package assessment

import (
	"errors"
	"time"

	"github.com/abhisek/assessor/internal/ability"
	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/difficulty"
	"github.com/abhisek/assessor/internal/followup"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/store"
)

// ErrInvalidRequest is returned when a required identifier is missing or
// refers to something that does not exist.
var ErrInvalidRequest = errors.New("invalid request")

// NextRequest asks for the next question on an objective.
type NextRequest struct {
	LearnerID   string `json:"learner_id"`
	ObjectiveID string `json:"objective_id"`
	SessionID   string `json:"session_id,omitempty"`
	// LastResponseID identifies the response just graded, if any.
	LastResponseID string `json:"last_response_id,omitempty"`
	// LastScore overrides the score stored on LastResponseID.
	LastScore *float64 `json:"last_score,omitempty"`
	// LastConfidence is validated when present; it does not steer selection.
	LastConfidence *int `json:"last_confidence,omitempty"`
}

// Selection is the outcome of SelectNext. When NoCandidate is true, Prompt
// is nil and Reason explains why; the caller decides whether to widen the
// search or end the session.
type Selection struct {
	Prompt           *store.Prompt          `json:"prompt,omitempty"`
	TargetDifficulty float64                `json:"target_difficulty"`
	Adjustment       *difficulty.Adjustment `json:"adjustment,omitempty"`
	NoCandidate      bool                   `json:"no_candidate"`
	Reason           string                 `json:"reason,omitempty"`
	CooldownRelaxed  bool                   `json:"cooldown_relaxed,omitempty"`
	Ability          *ability.Estimate      `json:"ability,omitempty"`
	ShouldStopEarly  *bool                  `json:"should_stop_early,omitempty"`
}

// SubmitRequest records one graded answer.
type SubmitRequest struct {
	LearnerID   string  `json:"learner_id"`
	ObjectiveID string  `json:"objective_id"`
	PromptID    string  `json:"prompt_id"`
	SessionID   string  `json:"session_id,omitempty"`
	Score       float64 `json:"score"`
	Confidence  int     `json:"confidence"`
	Difficulty  float64 `json:"difficulty"`
	// AssessmentType defaults to the prompt's type when empty.
	AssessmentType  store.AssessmentType `json:"assessment_type,omitempty"`
	TimeToRespondMs *int64               `json:"time_to_respond_ms,omitempty"`
	// RespondedAt defaults to the engine clock when zero.
	RespondedAt time.Time `json:"responded_at,omitempty"`
}

// SubmitResult carries every derived output of a submission together.
type SubmitResult struct {
	Response        store.ResponseRecord     `json:"response"`
	Calibration     calibration.Record       `json:"calibration"`
	Ability         *ability.Estimate        `json:"ability,omitempty"`
	ShouldStopEarly *bool                    `json:"should_stop_early,omitempty"`
	Adjustment      difficulty.Adjustment    `json:"adjustment"`
	Mastery         *mastery.Record          `json:"mastery"`
	Transition      *mastery.StateTransition `json:"transition,omitempty"`
	FollowUp        *followup.Result         `json:"follow_up"`
}

// FollowUpRequest asks for a follow-up without recording a response.
type FollowUpRequest struct {
	LearnerID   string  `json:"learner_id"`
	ObjectiveID string  `json:"objective_id"`
	Score       float64 `json:"score"`
	Difficulty  float64 `json:"difficulty"`
}

// AbilityReport is the current ability view for one objective.
type AbilityReport struct {
	LearnerID       string            `json:"learner_id"`
	ObjectiveID     string            `json:"objective_id"`
	Estimate        *ability.Estimate `json:"estimate,omitempty"`
	ShouldStopEarly *bool             `json:"should_stop_early,omitempty"`
}
