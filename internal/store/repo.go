package store

import (
	"context"
	"time"

	"github.com/abhisek/assessor/internal/objectives"
)

// AssessmentType names the kind of question a response answered.
type AssessmentType string

const (
	AssessmentComprehension     AssessmentType = "COMPREHENSION"
	AssessmentClinicalReasoning AssessmentType = "CLINICAL_REASONING"
	AssessmentApplication       AssessmentType = "APPLICATION"
	AssessmentRecall            AssessmentType = "RECALL"
)

// ResponseRecord is one graded attempt. Records are immutable once appended.
type ResponseRecord struct {
	ID              string         `json:"id"`
	Sequence        int64          `json:"sequence"`
	LearnerID       string         `json:"learner_id"`
	ObjectiveID     string         `json:"objective_id"`
	PromptID        string         `json:"prompt_id"`
	SessionID       string         `json:"session_id,omitempty"`
	Difficulty      float64        `json:"difficulty"`
	Score           float64        `json:"score"`
	Confidence      int            `json:"confidence"`
	AssessmentType  AssessmentType `json:"assessment_type"`
	TimeToRespondMs *int64         `json:"time_to_respond_ms,omitempty"`
	RespondedAt     time.Time      `json:"responded_at"`
}

// ResponseQuery filters the response history. Empty fields do not filter.
type ResponseQuery struct {
	LearnerID   string
	ObjectiveID string
	SessionID   string
	Since       time.Time // responded_at >= Since
	Limit       int       // most recent N when > 0
}

// ResponseRepo is the append-only response history store.
//
// Callers must ensure at most one writer per (learner, objective) at a time;
// the repository does not serialize appends for a key.
type ResponseRepo interface {
	// Append stores a new record, assigning ID (if empty) and Sequence.
	Append(ctx context.Context, rec *ResponseRecord) error

	// Get returns a single record or ErrNotFound.
	Get(ctx context.Context, id string) (*ResponseRecord, error)

	// Query returns matching records, oldest first.
	Query(ctx context.Context, q ResponseQuery) ([]ResponseRecord, error)

	// LatestSequence returns the highest sequence for a learner/objective,
	// or 0 when there are no responses.
	LatestSequence(ctx context.Context, learnerID, objectiveID string) (int64, error)
}

// Prompt is a candidate question in the catalog.
type Prompt struct {
	ID             string         `json:"id"`
	ObjectiveID    string         `json:"objective_id"`
	Difficulty     float64        `json:"difficulty"`
	AssessmentType AssessmentType `json:"assessment_type"`
	Text           string         `json:"text,omitempty"`
}

// PromptRepo is the candidate question repository.
type PromptRepo interface {
	// Upsert inserts or replaces a prompt.
	Upsert(ctx context.Context, p Prompt) error

	// Get returns a prompt or ErrNotFound.
	Get(ctx context.Context, id string) (*Prompt, error)

	// Find returns the prompt for objectiveID whose difficulty is nearest to
	// target, skipping excluded ids. Returns nil, nil when nothing matches.
	Find(ctx context.Context, objectiveID string, target float64, exclude []string) (*Prompt, error)

	// List returns every prompt for an objective ordered by difficulty.
	List(ctx context.Context, objectiveID string) ([]Prompt, error)
}

// ObjectiveRepo persists the objective catalog.
type ObjectiveRepo interface {
	Upsert(ctx context.Context, o objectives.Objective) error
	All(ctx context.Context) ([]objectives.Objective, error)
}

// MasteryRecordData is the persisted form of a learner's mastery on one objective.
type MasteryRecordData struct {
	LearnerID               string
	ObjectiveID             string
	Status                  string
	ConsecutiveHighScores   bool
	MultipleAssessmentTypes bool
	AppropriateDifficulty   bool
	AccurateCalibration     bool
	TimeSpaced              bool
	NextSteps               []string
	VerifiedAt              *time.Time
	UpdatedAt               time.Time
}

// MasteryEventData captures a mastery status change.
type MasteryEventData struct {
	Sequence    int64
	Timestamp   time.Time
	LearnerID   string
	ObjectiveID string
	FromState   string
	ToState     string
	Trigger     string
}

// MasteryRepo persists computed mastery records and their transition log.
type MasteryRepo interface {
	// Get returns the stored record, or nil, nil if none exists.
	Get(ctx context.Context, learnerID, objectiveID string) (*MasteryRecordData, error)

	// Save inserts or replaces the record for its learner/objective.
	Save(ctx context.Context, rec MasteryRecordData) error

	// AppendEvent records a status transition.
	AppendEvent(ctx context.Context, ev MasteryEventData) error

	// Events returns the transitions for a learner/objective, oldest first.
	Events(ctx context.Context, learnerID, objectiveID string) ([]MasteryEventData, error)
}
