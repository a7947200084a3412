package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var masteryRecordColumns = []string{
	"learner_id", "objective_id", "status",
	"consecutive_high_scores", "multiple_assessment_types", "appropriate_difficulty",
	"accurate_calibration", "time_spaced", "next_steps", "verified_at", "updated_at",
}

// masteryRepo implements MasteryRepo on SQL.
type masteryRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

func (r *masteryRepo) Get(ctx context.Context, learnerID, objectiveID string) (*MasteryRecordData, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(masteryRecordColumns...).
		From(entsql.Table(MasteryRecordsTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("objective_id", objectiveID),
		)).
		Query()

	var (
		rec        MasteryRecordData
		nextSteps  string
		verifiedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.LearnerID, &rec.ObjectiveID, &rec.Status,
		&rec.ConsecutiveHighScores, &rec.MultipleAssessmentTypes, &rec.AppropriateDifficulty,
		&rec.AccurateCalibration, &rec.TimeSpaced, &nextSteps, &verifiedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query mastery record: %w", err)
	}

	if nextSteps != "" {
		if err := json.Unmarshal([]byte(nextSteps), &rec.NextSteps); err != nil {
			return nil, fmt.Errorf("unmarshal next steps: %w", err)
		}
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time.UTC()
		rec.VerifiedAt = &t
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

func (r *masteryRepo) Save(ctx context.Context, rec MasteryRecordData) error {
	steps := rec.NextSteps
	if steps == nil {
		steps = []string{}
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("marshal next steps: %w", err)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	var verifiedAt any
	if rec.VerifiedAt != nil {
		verifiedAt = rec.VerifiedAt.UTC()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(MasteryRecordsTable.Name).
		Columns(masteryRecordColumns...).
		Values(rec.LearnerID, rec.ObjectiveID, rec.Status,
			rec.ConsecutiveHighScores, rec.MultipleAssessmentTypes, rec.AppropriateDifficulty,
			rec.AccurateCalibration, rec.TimeSpaced, string(raw), verifiedAt, rec.UpdatedAt.UTC()).
		OnConflict(entsql.ConflictColumns("learner_id", "objective_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save mastery record: %w", err)
	}
	return nil
}

func (r *masteryRepo) AppendEvent(ctx context.Context, ev MasteryEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(MasteryEventsTable.Name).
		Columns("sequence", "timestamp", "learner_id", "objective_id", "from_state", "to_state", "trigger_name").
		Values(seqNum, ev.Timestamp.UTC(), ev.LearnerID, ev.ObjectiveID, ev.FromState, ev.ToState, ev.Trigger).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save mastery event: %w", err)
	}
	return nil
}

func (r *masteryRepo) Events(ctx context.Context, learnerID, objectiveID string) ([]MasteryEventData, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("sequence", "timestamp", "learner_id", "objective_id", "from_state", "to_state", "trigger_name").
		From(entsql.Table(MasteryEventsTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("objective_id", objectiveID),
		)).
		OrderBy("sequence").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery events: %w", err)
	}
	defer rows.Close()

	var out []MasteryEventData
	for rows.Next() {
		var ev MasteryEventData
		if err := rows.Scan(&ev.Sequence, &ev.Timestamp, &ev.LearnerID, &ev.ObjectiveID,
			&ev.FromState, &ev.ToState, &ev.Trigger); err != nil {
			return nil, fmt.Errorf("scan mastery event: %w", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery events: %w", err)
	}
	return out, nil
}
