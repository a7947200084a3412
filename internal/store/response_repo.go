package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var responseColumns = []string{
	"id", "sequence", "learner_id", "objective_id", "prompt_id", "session_id",
	"difficulty", "score", "confidence", "assessment_type", "time_to_respond_ms", "responded_at",
}

// responseRepo implements ResponseRepo on SQL.
type responseRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

func (r *responseRepo) Append(ctx context.Context, rec *ResponseRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RespondedAt.IsZero() {
		rec.RespondedAt = time.Now()
	}
	rec.RespondedAt = rec.RespondedAt.UTC()

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	rec.Sequence = seqNum

	var ttr any
	if rec.TimeToRespondMs != nil {
		ttr = *rec.TimeToRespondMs
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(ResponsesTable.Name).
		Columns(responseColumns...).
		Values(rec.ID, rec.Sequence, rec.LearnerID, rec.ObjectiveID, rec.PromptID, rec.SessionID,
			rec.Difficulty, rec.Score, rec.Confidence, string(rec.AssessmentType), ttr, rec.RespondedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

func (r *responseRepo) Get(ctx context.Context, id string) (*ResponseRecord, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(responseColumns...).
		From(entsql.Table(ResponsesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query response: %w", err)
	}
	recs, err := scanResponses(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("response %q: %w", id, ErrNotFound)
	}
	return &recs[0], nil
}

func (r *responseRepo) Query(ctx context.Context, q ResponseQuery) ([]ResponseRecord, error) {
	sel := entsql.Dialect(r.dialect).
		Select(responseColumns...).
		From(entsql.Table(ResponsesTable.Name))

	var preds []*entsql.Predicate
	if q.LearnerID != "" {
		preds = append(preds, entsql.EQ("learner_id", q.LearnerID))
	}
	if q.ObjectiveID != "" {
		preds = append(preds, entsql.EQ("objective_id", q.ObjectiveID))
	}
	if q.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", q.SessionID))
	}
	if !q.Since.IsZero() {
		preds = append(preds, entsql.GTE("responded_at", q.Since.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}

	// Most recent first so Limit keeps the newest N; reversed below.
	sel.OrderBy(entsql.Desc("sequence"))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	recs, err := scanResponses(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

func (r *responseRepo) LatestSequence(ctx context.Context, learnerID, objectiveID string) (int64, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("sequence").
		From(entsql.Table(ResponsesTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("objective_id", objectiveID),
		)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var seq int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query latest sequence: %w", err)
	}
	return seq, nil
}

func scanResponses(rows *sql.Rows) ([]ResponseRecord, error) {
	defer rows.Close()

	var out []ResponseRecord
	for rows.Next() {
		var (
			rec   ResponseRecord
			atype string
			ttr   sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.LearnerID, &rec.ObjectiveID, &rec.PromptID,
			&rec.SessionID, &rec.Difficulty, &rec.Score, &rec.Confidence, &atype, &ttr, &rec.RespondedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		rec.AssessmentType = AssessmentType(atype)
		if ttr.Valid {
			v := ttr.Int64
			rec.TimeToRespondMs = &v
		}
		rec.RespondedAt = rec.RespondedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return out, nil
}
