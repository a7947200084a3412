package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/assessor/internal/objectives"
)

// objectiveRepo implements ObjectiveRepo on SQL.
type objectiveRepo struct {
	db      *sql.DB
	dialect string
}

func (r *objectiveRepo) Upsert(ctx context.Context, o objectives.Objective) error {
	tier, err := objectives.ParseTier(string(o.Tier))
	if err != nil {
		return fmt.Errorf("objective %q: %w", o.ID, err)
	}
	prereqs := o.Prerequisites
	if prereqs == nil {
		prereqs = []string{}
	}
	raw, err := json.Marshal(prereqs)
	if err != nil {
		return fmt.Errorf("marshal prerequisites: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(ObjectivesTable.Name).
		Columns("id", "name", "description", "tier", "prerequisites").
		Values(o.ID, o.Name, o.Description, string(tier), string(raw)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert objective %q: %w", o.ID, err)
	}
	return nil
}

func (r *objectiveRepo) All(ctx context.Context) ([]objectives.Objective, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("id", "name", "description", "tier", "prerequisites").
		From(entsql.Table(ObjectivesTable.Name)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query objectives: %w", err)
	}
	defer rows.Close()

	var out []objectives.Objective
	for rows.Next() {
		var (
			o       objectives.Objective
			tier    string
			prereqs string
		)
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &tier, &prereqs); err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		o.Tier = objectives.Tier(tier)
		if prereqs != "" {
			if err := json.Unmarshal([]byte(prereqs), &o.Prerequisites); err != nil {
				return nil, fmt.Errorf("objective %q prerequisites: %w", o.ID, err)
			}
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objectives: %w", err)
	}
	return out, nil
}
