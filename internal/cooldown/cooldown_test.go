package cooldown

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/abhisek/assessor/internal/store"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) time.Time {
	return now.Add(-time.Duration(d * 24 * float64(time.Hour)))
}

func TestNew_Defaults(t *testing.T) {
	if w := New(0).Window; w != 14*24*time.Hour {
		t.Errorf("New(0).Window = %v, want 14 days", w)
	}
	if w := New(3).Window; w != 3*24*time.Hour {
		t.Errorf("New(3).Window = %v, want 3 days", w)
	}
}

func TestIsCooling(t *testing.T) {
	p := New(14)
	tests := []struct {
		ago  float64
		want bool
	}{
		{1, true},
		{13.9, true},
		{14, false}, // available exactly at the window edge
		{30, false},
	}
	for _, tt := range tests {
		if got := p.IsCooling(daysAgo(tt.ago), now); got != tt.want {
			t.Errorf("IsCooling(%v days ago) = %v, want %v", tt.ago, got, tt.want)
		}
	}
}

func TestDaysUntilAvailable(t *testing.T) {
	p := New(14)
	tests := []struct {
		ago  float64
		want int
	}{
		{1, 13},
		{13.5, 1},
		{20, 0},
	}
	for _, tt := range tests {
		if got := p.DaysUntilAvailable(daysAgo(tt.ago), now); got != tt.want {
			t.Errorf("DaysUntilAvailable(%v days ago) = %d, want %d", tt.ago, got, tt.want)
		}
	}
}

func TestExcluded(t *testing.T) {
	p := New(14)
	history := []store.ResponseRecord{
		{PromptID: "b", RespondedAt: daysAgo(2)},
		{PromptID: "a", RespondedAt: daysAgo(5)},
		{PromptID: "b", RespondedAt: daysAgo(1)},
		{PromptID: "old", RespondedAt: daysAgo(15)},
		{PromptID: "", RespondedAt: daysAgo(1)},
	}
	if got, want := p.Excluded(history, now), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Excluded = %v, want %v", got, want)
	}
	if got := p.Excluded(nil, now); len(got) != 0 {
		t.Errorf("Excluded(nil) = %v, want empty", got)
	}
}

type fakeResponses struct {
	recs    []store.ResponseRecord
	lastQry store.ResponseQuery
}

func (f *fakeResponses) Append(context.Context, *store.ResponseRecord) error { return nil }
func (f *fakeResponses) Get(context.Context, string) (*store.ResponseRecord, error) {
	return nil, store.ErrNotFound
}
func (f *fakeResponses) LatestSequence(context.Context, string, string) (int64, error) {
	return 0, nil
}
func (f *fakeResponses) Query(_ context.Context, q store.ResponseQuery) ([]store.ResponseRecord, error) {
	f.lastQry = q
	var out []store.ResponseRecord
	for _, r := range f.recs {
		if q.SessionID != "" && r.SessionID != q.SessionID {
			continue
		}
		if !q.Since.IsZero() && r.RespondedAt.Before(q.Since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func TestExclusions_QueriesWindow(t *testing.T) {
	repo := &fakeResponses{recs: []store.ResponseRecord{
		{PromptID: "p1", ObjectiveID: "x", RespondedAt: daysAgo(3)},
		{PromptID: "p2", ObjectiveID: "y", RespondedAt: daysAgo(10)},
		{PromptID: "p3", ObjectiveID: "x", RespondedAt: daysAgo(40)},
	}}
	ids, err := New(14).Exclusions(context.Background(), repo, "l1", now)
	if err != nil {
		t.Fatalf("Exclusions: %v", err)
	}
	if want := []string{"p1", "p2"}; !slices.Equal(ids, want) {
		t.Errorf("cooldown spans objectives: got %v, want %v", ids, want)
	}
	if repo.lastQry.LearnerID != "l1" {
		t.Errorf("queried learner %q, want l1", repo.lastQry.LearnerID)
	}
	if !repo.lastQry.Since.Equal(daysAgo(14)) {
		t.Errorf("queried since %v, want %v", repo.lastQry.Since, daysAgo(14))
	}
}

func TestSessionExclusions(t *testing.T) {
	repo := &fakeResponses{recs: []store.ResponseRecord{
		{PromptID: "p1", SessionID: "s1", RespondedAt: daysAgo(3)},
		{PromptID: "p2", SessionID: "s2", RespondedAt: daysAgo(1)},
	}}
	ids, err := SessionExclusions(context.Background(), repo, "l1", "s1")
	if err != nil {
		t.Fatalf("SessionExclusions: %v", err)
	}
	if want := []string{"p1"}; !slices.Equal(ids, want) {
		t.Errorf("session exclusions = %v, want %v", ids, want)
	}

	ids, err = SessionExclusions(context.Background(), repo, "l1", "")
	if err != nil {
		t.Fatalf("SessionExclusions: %v", err)
	}
	if ids != nil {
		t.Errorf("no session should exclude nothing, got %v", ids)
	}
}
