package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

func TestLoadFile(t *testing.T) {
	cat, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", cat.Version)
	assert.Len(t, cat.Objectives, 4)
	assert.Len(t, cat.Prompts, 6)

	objs := cat.ObjectiveList()
	assert.Equal(t, objectives.Tier("foundational"), objs[0].Tier, "tier normalization happens at graph/store boundary")
	assert.Equal(t, []string{"fluid-balance", "electrolytes"}, objs[2].Prerequisites)

	prompts := cat.PromptList()
	assert.Equal(t, store.AssessmentClinicalReasoning, prompts[3].AssessmentType)
	assert.Equal(t, "acid-base", prompts[3].ObjectiveID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ``},
		{"bad yaml", "version: [\n"},
		{"missing version", "objectives: []\n"},
		{"unknown field", "version: v1.0.0\nobjectives: []\nextra: 1\n"},
		{"bad version", "version: one\nobjectives: []\n"},
		{"future major", "version: v2.0.0\nobjectives: []\n"},
		{"difficulty out of range", `
version: v1.0.0
objectives: [{id: a}]
prompts: [{id: p, objective: a, difficulty: 120, type: RECALL}]
`},
		{"unknown assessment type", `
version: v1.0.0
objectives: [{id: a}]
prompts: [{id: p, objective: a, difficulty: 50, type: ESSAY}]
`},
		{"unknown objective", `
version: v1.0.0
objectives: [{id: a}]
prompts: [{id: p, objective: b, difficulty: 50, type: RECALL}]
`},
		{"duplicate prompt", `
version: v1.0.0
objectives: [{id: a}]
prompts:
  - {id: p, objective: a, difficulty: 50, type: RECALL}
  - {id: p, objective: a, difficulty: 60, type: RECALL}
`},
		{"cycle", `
version: v1.0.0
objectives:
  - {id: a, prerequisites: [b]}
  - {id: b, prerequisites: [a]}
`},
		{"bad tier", `
version: v1.0.0
objectives: [{id: a, tier: EXPERT}]
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "got %v", err)
		})
	}
}

func TestParse_VersionWithoutPrefix(t *testing.T) {
	cat, err := Parse([]byte("version: 1.4.2\nobjectives: [{id: a}]\n"))
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", cat.Version)
}

func TestImport(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cat, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	ctx := context.Background()
	sum, err := Import(ctx, cat, s.Objectives(), s.Prompts())
	require.NoError(t, err)
	assert.Equal(t, &Summary{Version: "v1.2.0", Objectives: 4, Prompts: 6}, sum)

	// Re-import is idempotent.
	_, err = Import(ctx, cat, s.Objectives(), s.Prompts())
	require.NoError(t, err)

	objs, err := s.Objectives().All(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 4)

	graph, err := objectives.NewGraph(objs)
	require.NoError(t, err)
	tier, err := graph.TierOf(ctx, "fluid-balance")
	require.NoError(t, err)
	assert.Equal(t, objectives.TierFoundational, tier)

	list, err := s.Prompts().List(ctx, "acid-base")
	require.NoError(t, err)
	assert.Len(t, list, 4)
}
