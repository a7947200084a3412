package mastery

import "time"

// Status represents an objective's position in the mastery lifecycle.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusVerified   Status = "VERIFIED"
)

// Transition triggers.
const (
	TriggerFirstAttempt          = "first-attempt"
	TriggerCriteriaMet           = "criteria-met"
	TriggerDisconfirmingEvidence = "disconfirming-evidence"
	TriggerEvidenceExpired       = "evidence-expired"
)

// StateTransition records a mastery status change for the event log.
type StateTransition struct {
	LearnerID   string `json:"learner_id"`
	ObjectiveID string `json:"objective_id"`
	From        Status `json:"from"`
	To          Status `json:"to"`
	Trigger     string `json:"trigger"`
}

// Record is the computed mastery judgment for one learner and objective.
type Record struct {
	LearnerID   string     `json:"learner_id"`
	ObjectiveID string     `json:"objective_id"`
	Status      Status     `json:"status"`
	CriteriaMet Criteria   `json:"criteria_met"`
	NextSteps   []string   `json:"next_steps"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StatusFor derives the status from whether any response exists at all and
// the evaluated criteria. Evidence that has aged out of the lookback still
// counts as a response, so a learner never falls back to NOT_STARTED.
func StatusFor(hasResponses bool, c Criteria) Status {
	switch {
	case !hasResponses:
		return StatusNotStarted
	case c.All():
		return StatusVerified
	default:
		return StatusInProgress
	}
}

// triggerFor names the reason for a from -> to change.
func triggerFor(from, to Status) string {
	switch {
	case to == StatusVerified:
		return TriggerCriteriaMet
	case from == StatusVerified:
		return TriggerDisconfirmingEvidence
	default:
		return TriggerFirstAttempt
	}
}
