package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	entsql "entgo.io/ent/dialect/sql"
)

var promptColumns = []string{"id", "objective_id", "difficulty", "assessment_type", "text"}

// promptRepo implements PromptRepo on SQL.
type promptRepo struct {
	db      *sql.DB
	dialect string
}

func (r *promptRepo) Upsert(ctx context.Context, p Prompt) error {
	if p.ID == "" || p.ObjectiveID == "" {
		return fmt.Errorf("prompt requires id and objective id")
	}
	query, args := entsql.Dialect(r.dialect).
		Insert(PromptsTable.Name).
		Columns(promptColumns...).
		Values(p.ID, p.ObjectiveID, p.Difficulty, string(p.AssessmentType), p.Text).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prompt %q: %w", p.ID, err)
	}
	return nil
}

func (r *promptRepo) Get(ctx context.Context, id string) (*Prompt, error) {
	prompts, err := r.query(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("prompt %q: %w", id, ErrNotFound)
	}
	return &prompts[0], nil
}

func (r *promptRepo) Find(ctx context.Context, objectiveID string, target float64, exclude []string) (*Prompt, error) {
	pred := entsql.EQ("objective_id", objectiveID)
	if len(exclude) > 0 {
		ids := make([]any, len(exclude))
		for i, id := range exclude {
			ids[i] = id
		}
		pred = entsql.And(pred, entsql.NotIn("id", ids...))
	}

	candidates, err := r.query(ctx, pred)
	if err != nil {
		return nil, err
	}
	return nearest(candidates, target), nil
}

func (r *promptRepo) List(ctx context.Context, objectiveID string) ([]Prompt, error) {
	return r.query(ctx, entsql.EQ("objective_id", objectiveID))
}

func (r *promptRepo) query(ctx context.Context, pred *entsql.Predicate) ([]Prompt, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(promptColumns...).
		From(entsql.Table(PromptsTable.Name)).
		Where(pred).
		OrderBy("difficulty", "id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var out []Prompt
	for rows.Next() {
		var (
			p     Prompt
			atype string
		)
		if err := rows.Scan(&p.ID, &p.ObjectiveID, &p.Difficulty, &atype, &p.Text); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		p.AssessmentType = AssessmentType(atype)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}
	return out, nil
}

// nearest picks the candidate closest to target. Candidates arrive sorted by
// (difficulty, id), so ties resolve to the easier prompt.
func nearest(candidates []Prompt, target float64) *Prompt {
	var best *Prompt
	bestDist := math.Inf(1)
	for i := range candidates {
		d := math.Abs(candidates[i].Difficulty - target)
		if d < bestDist {
			best = &candidates[i]
			bestDist = d
		}
	}
	return best
}
