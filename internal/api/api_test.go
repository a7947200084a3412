package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/assessor/internal/assessment"
	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	graph, err := objectives.NewGraph([]objectives.Objective{
		{ID: "fluid-balance", Tier: objectives.TierFoundational},
		{ID: "acid-base", Tier: objectives.TierIntermediate, Prerequisites: []string{"fluid-balance"}},
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, p := range []store.Prompt{
		{ID: "fb-30", ObjectiveID: "fluid-balance", Difficulty: 30, AssessmentType: store.AssessmentRecall},
		{ID: "ab-50", ObjectiveID: "acid-base", Difficulty: 50, AssessmentType: store.AssessmentRecall},
		{ID: "ab-70", ObjectiveID: "acid-base", Difficulty: 70, AssessmentType: store.AssessmentComprehension},
	} {
		require.NoError(t, s.Prompts().Upsert(ctx, p))
	}

	engine := assessment.New(assessment.Deps{
		Responses: s.Responses(),
		Prompts:   s.Prompts(),
		Mastery:   s.Mastery(),
		Graph:     graph,
	}, assessment.DefaultOptions())
	return NewRouter(engine, Options{})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSelectAndSubmitFlow(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/v1/next", map[string]any{
		"learner_id": "l1", "objective_id": "acid-base",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sel := decodeBody(t, rec)
	assert.Equal(t, 50.0, sel["target_difficulty"])
	assert.Equal(t, false, sel["no_candidate"])
	prompt := sel["prompt"].(map[string]any)
	assert.Equal(t, "ab-50", prompt["id"])

	rec = do(t, h, http.MethodPost, "/v1/responses", map[string]any{
		"learner_id": "l1", "objective_id": "acid-base", "prompt_id": "ab-50",
		"score": 90, "confidence": 5, "difficulty": 50,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeBody(t, rec)
	assert.Equal(t, "IN_PROGRESS", res["mastery"].(map[string]any)["status"])
	assert.Equal(t, 65.0, res["adjustment"].(map[string]any)["new_difficulty"])
	fu := res["follow_up"].(map[string]any)
	assert.Equal(t, true, fu["has_follow_up"])

	rec = do(t, h, http.MethodGet, "/v1/learners/l1/objectives/acid-base/mastery", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IN_PROGRESS", decodeBody(t, rec)["status"])

	rec = do(t, h, http.MethodGet, "/v1/learners/l1/calibration?objective_id=acid-base", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["records"], 1)

	rec = do(t, h, http.MethodGet, "/v1/learners/l1/objectives/acid-base/ability", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ab := decodeBody(t, rec)
	assert.Equal(t, "acid-base", ab["objective_id"])
	assert.Nil(t, ab["estimate"])
}

func TestFollowUpEndpoint(t *testing.T) {
	h := newServer(t)
	rec := do(t, h, http.MethodPost, "/v1/followup", map[string]any{
		"learner_id": "l1", "objective_id": "acid-base", "score": 40, "difficulty": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["has_follow_up"])
	assert.Equal(t, "PREREQUISITE", body["directive"].(map[string]any)["type"])
	assert.Equal(t, "fb-30", body["prompt"].(map[string]any)["id"])
}

func TestErrorMapping(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/v1/responses", map[string]any{
		"learner_id": "l1", "objective_id": "acid-base", "prompt_id": "ab-50",
		"score": 90, "confidence": 12, "difficulty": 50,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "confidence", decodeBody(t, rec)["field"])

	rec = do(t, h, http.MethodPost, "/v1/next", map[string]any{"objective_id": "acid-base"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/next", `{"learner_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "invalid JSON")

	rec = do(t, h, http.MethodPost, "/v1/next", map[string]any{"learner_id": "l1", "objective_id": "x", "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&calibration.RangeError{Field: "score"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", store.ErrNotFound), http.StatusNotFound},
		{objectives.ErrUnknownObjective, http.StatusNotFound},
		{fmt.Errorf("%w: missing", assessment.ErrInvalidRequest), http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

type failingService struct{ Service }

func (failingService) GetMasteryStatus(context.Context, string, string) (*mastery.Record, error) {
	return nil, errors.New("connection reset")
}

func TestInternalErrorsAreLoggedNotLeaked(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewRouter(failingService{}, Options{Logger: logger.FromZap(zap.New(core))})

	rec := do(t, h, http.MethodGet, "/v1/learners/l1/objectives/o1/mastery", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeBody(t, rec)["error"])
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("http request").Len())
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(failingService{}, Options{CORSOrigins: []string{"https://app.example.com"}})
	req := httptest.NewRequest(http.MethodOptions, "/v1/next", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
