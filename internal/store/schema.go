package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ResponsesColumns holds the columns for the "responses" table.
	ResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "objective_id", Type: field.TypeString},
		{Name: "prompt_id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeFloat64},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "confidence", Type: field.TypeInt},
		{Name: "assessment_type", Type: field.TypeString},
		{Name: "time_to_respond_ms", Type: field.TypeInt64, Nullable: true},
		{Name: "responded_at", Type: field.TypeTime},
	}
	// ResponsesTable holds the append-only response history.
	ResponsesTable = &schema.Table{
		Name:       "responses",
		Columns:    ResponsesColumns,
		PrimaryKey: []*schema.Column{ResponsesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "response_learner_objective_time",
				Columns: []*schema.Column{ResponsesColumns[2], ResponsesColumns[3], ResponsesColumns[11]},
			},
			{
				Name:    "response_learner_prompt",
				Columns: []*schema.Column{ResponsesColumns[2], ResponsesColumns[4]},
			},
		},
	}

	// PromptsColumns holds the columns for the "prompts" table.
	PromptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "objective_id", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeFloat64},
		{Name: "assessment_type", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// PromptsTable holds the candidate question catalog.
	PromptsTable = &schema.Table{
		Name:       "prompts",
		Columns:    PromptsColumns,
		PrimaryKey: []*schema.Column{PromptsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "prompt_objective_difficulty",
				Columns: []*schema.Column{PromptsColumns[1], PromptsColumns[2]},
			},
		},
	}

	// ObjectivesColumns holds the columns for the "objectives" table.
	ObjectivesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "tier", Type: field.TypeString},
		{Name: "prerequisites", Type: field.TypeString, Size: 2147483647, Comment: "JSON array of objective ids"},
	}
	// ObjectivesTable holds the objective dependency graph.
	ObjectivesTable = &schema.Table{
		Name:       "objectives",
		Columns:    ObjectivesColumns,
		PrimaryKey: []*schema.Column{ObjectivesColumns[0]},
	}

	// MasteryRecordsColumns holds the columns for the "mastery_records" table.
	MasteryRecordsColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString},
		{Name: "objective_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "consecutive_high_scores", Type: field.TypeBool},
		{Name: "multiple_assessment_types", Type: field.TypeBool},
		{Name: "appropriate_difficulty", Type: field.TypeBool},
		{Name: "accurate_calibration", Type: field.TypeBool},
		{Name: "time_spaced", Type: field.TypeBool},
		{Name: "next_steps", Type: field.TypeString, Size: 2147483647, Comment: "JSON array of strings"},
		{Name: "verified_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// MasteryRecordsTable holds the latest computed mastery per learner/objective.
	MasteryRecordsTable = &schema.Table{
		Name:       "mastery_records",
		Columns:    MasteryRecordsColumns,
		PrimaryKey: []*schema.Column{MasteryRecordsColumns[0], MasteryRecordsColumns[1]},
	}

	// MasteryEventsColumns holds the columns for the "mastery_events" table.
	MasteryEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "objective_id", Type: field.TypeString},
		{Name: "from_state", Type: field.TypeString},
		{Name: "to_state", Type: field.TypeString},
		{Name: "trigger_name", Type: field.TypeString},
	}
	// MasteryEventsTable is the append-only log of mastery status changes.
	MasteryEventsTable = &schema.Table{
		Name:       "mastery_events",
		Columns:    MasteryEventsColumns,
		PrimaryKey: []*schema.Column{MasteryEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "masteryevent_learner_objective",
				Columns: []*schema.Column{MasteryEventsColumns[3], MasteryEventsColumns[4]},
			},
		},
	}

	// Tables holds every table the engine migrates.
	Tables = []*schema.Table{
		ResponsesTable,
		PromptsTable,
		ObjectivesTable,
		MasteryRecordsTable,
		MasteryEventsTable,
	}
)
