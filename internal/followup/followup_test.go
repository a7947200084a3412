package followup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

type fakeFinder struct {
	prompts []store.Prompt
	calls   []string
}

func (f *fakeFinder) Find(_ context.Context, objectiveID string, target float64, exclude []string) (*store.Prompt, error) {
	f.calls = append(f.calls, objectiveID)
	skip := make(map[string]bool)
	for _, id := range exclude {
		skip[id] = true
	}
	var best *store.Prompt
	for i := range f.prompts {
		p := &f.prompts[i]
		if p.ObjectiveID != objectiveID || skip[p.ID] {
			continue
		}
		if best == nil || abs(p.Difficulty-target) < abs(best.Difficulty-target) {
			best = p
		}
	}
	return best, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func testGraph(t *testing.T) *objectives.MemoryGraph {
	t.Helper()
	g, err := objectives.NewGraph([]objectives.Objective{
		{ID: "fluids", Tier: objectives.TierFoundational},
		{ID: "electrolytes", Tier: objectives.TierFoundational},
		{ID: "acid-base", Tier: objectives.TierIntermediate, Prerequisites: []string{"fluids", "electrolytes"}},
		{ID: "dka", Tier: objectives.TierAdvanced, Prerequisites: []string{"acid-base"}},
	})
	require.NoError(t, err)
	return g
}

func TestDecide(t *testing.T) {
	tests := []struct {
		score, difficulty float64
		kind              Kind
		target            float64
	}{
		{59, 50, KindPrerequisite, 30},
		{0, 10, KindPrerequisite, 0},
		{60, 50, KindNone, 0},
		{72, 50, KindNone, 0},
		{85, 50, KindNone, 0},
		{86, 50, KindAdvanced, 70},
		{100, 90, KindAdvanced, 100},
	}
	for _, tt := range tests {
		d := Decide(tt.score, tt.difficulty)
		assert.Equal(t, tt.kind, d.Kind(), "score %v", tt.score)
		_, target, ok := TargetOf(d)
		assert.Equal(t, tt.kind != KindNone, ok)
		assert.Equal(t, tt.target, target, "score %v", tt.score)
	}
}

func TestSelect_Prerequisite(t *testing.T) {
	finder := &fakeFinder{prompts: []store.Prompt{
		{ID: "e1", ObjectiveID: "electrolytes", Difficulty: 25},
		{ID: "e2", ObjectiveID: "electrolytes", Difficulty: 45},
		{ID: "f1", ObjectiveID: "fluids", Difficulty: 30},
	}}
	s := NewSelector(testGraph(t), finder)

	res, err := s.Select(context.Background(), "acid-base", 59, 50, nil)
	require.NoError(t, err)
	require.True(t, res.HasFollowUp)

	d, ok := res.Directive.(Prerequisite)
	require.True(t, ok)
	assert.Equal(t, "electrolytes", d.TargetObjectiveID, "first prerequisite in sorted order")
	assert.Equal(t, 30.0, d.TargetDifficulty)
	assert.Equal(t, "e1", res.Prompt.ID)
}

func TestSelect_Advanced(t *testing.T) {
	finder := &fakeFinder{prompts: []store.Prompt{{ID: "d1", ObjectiveID: "dka", Difficulty: 90}}}
	s := NewSelector(testGraph(t), finder)

	res, err := s.Select(context.Background(), "acid-base", 86, 75, nil)
	require.NoError(t, err)
	require.True(t, res.HasFollowUp)

	d, ok := res.Directive.(Advanced)
	require.True(t, ok)
	assert.Equal(t, "dka", d.TargetObjectiveID)
	assert.Equal(t, 95.0, d.TargetDifficulty)
	assert.Equal(t, "d1", res.Prompt.ID)
}

func TestSelect_None(t *testing.T) {
	finder := &fakeFinder{}
	s := NewSelector(testGraph(t), finder)

	res, err := s.Select(context.Background(), "acid-base", 72, 50, nil)
	require.NoError(t, err)
	assert.False(t, res.HasFollowUp)
	assert.Equal(t, KindNone, res.Directive.Kind())
	assert.Nil(t, res.Prompt)
	assert.Empty(t, finder.calls, "no repository lookup for NONE")
}

func TestSelect_NoCandidateDoesNotWiden(t *testing.T) {
	finder := &fakeFinder{prompts: []store.Prompt{
		{ID: "same", ObjectiveID: "dka", Difficulty: 50},
		{ID: "f1", ObjectiveID: "fluids", Difficulty: 30},
	}}
	s := NewSelector(testGraph(t), finder)

	res, err := s.Select(context.Background(), "dka", 40, 50, nil)
	require.NoError(t, err)
	assert.False(t, res.HasFollowUp)
	assert.Equal(t, KindPrerequisite, res.Directive.Kind())
	assert.Contains(t, res.Reason, "acid-base")
	assert.Equal(t, []string{"acid-base"}, finder.calls, "only the target objective is searched")
}

func TestSelect_NoRelatedObjectiveStaysOnObjective(t *testing.T) {
	finder := &fakeFinder{prompts: []store.Prompt{{ID: "f2", ObjectiveID: "fluids", Difficulty: 10}}}
	s := NewSelector(testGraph(t), finder)

	res, err := s.Select(context.Background(), "fluids", 20, 30, nil)
	require.NoError(t, err)
	require.True(t, res.HasFollowUp)
	d := res.Directive.(Prerequisite)
	assert.Empty(t, d.TargetObjectiveID)
	assert.Equal(t, 10.0, d.TargetDifficulty)
	assert.Equal(t, "f2", res.Prompt.ID)
}

func TestSelect_Exclusions(t *testing.T) {
	finder := &fakeFinder{prompts: []store.Prompt{{ID: "d1", ObjectiveID: "dka", Difficulty: 90}}}
	s := NewSelector(testGraph(t), finder)

	res, err := s.Select(context.Background(), "acid-base", 95, 70, []string{"d1"})
	require.NoError(t, err)
	assert.False(t, res.HasFollowUp)
}

func TestResultJSON(t *testing.T) {
	res := Result{
		Directive:   Advanced{TargetObjectiveID: "dka", TargetDifficulty: 95, Reasoning: "go"},
		Prompt:      &store.Prompt{ID: "d1", ObjectiveID: "dka", Difficulty: 90},
		HasFollowUp: true,
		Reason:      "go",
	}
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	dir := got["directive"].(map[string]any)
	assert.Equal(t, "ADVANCED", dir["type"])
	assert.Equal(t, "dka", dir["target_objective_id"])
	assert.Equal(t, 95.0, dir["target_difficulty"])
	assert.Equal(t, true, got["has_follow_up"])

	raw, err = MarshalDirective(None{Reasoning: "fine"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"NONE","target_objective_id":null,"reasoning":"fine"}`, string(raw))
}
