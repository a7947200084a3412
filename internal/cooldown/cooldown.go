// Package cooldown keeps recently answered questions out of selection.
package cooldown

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/assessor/internal/store"
)

// DefaultDays is how long an answered question stays out of rotation.
const DefaultDays = 14

// Policy is a fixed cooldown window.
type Policy struct {
	Window time.Duration
}

// New creates a policy of the given number of days. Non-positive days use
// DefaultDays.
func New(days int) Policy {
	if days <= 0 {
		days = DefaultDays
	}
	return Policy{Window: time.Duration(days) * 24 * time.Hour}
}

// Since returns the start of the window ending at now.
func (p Policy) Since(now time.Time) time.Time {
	return now.Add(-p.Window)
}

// AvailableAt returns when a question answered at answeredAt may be reselected.
func (p Policy) AvailableAt(answeredAt time.Time) time.Time {
	return answeredAt.Add(p.Window)
}

// IsCooling reports whether a question answered at answeredAt is still
// inside the window at now.
func (p Policy) IsCooling(answeredAt, now time.Time) bool {
	return now.Before(p.AvailableAt(answeredAt))
}

// DaysUntilAvailable returns whole days until reselection. Returns 0 if the
// question is already available.
func (p Policy) DaysUntilAvailable(answeredAt, now time.Time) int {
	if !p.IsCooling(answeredAt, now) {
		return 0
	}
	return int(math.Ceil(p.AvailableAt(answeredAt).Sub(now).Hours() / 24.0))
}

// Excluded returns the sorted, de-duplicated prompt ids in history that are
// still cooling at now.
func (p Policy) Excluded(history []store.ResponseRecord, now time.Time) []string {
	return promptIDs(history, func(r store.ResponseRecord) bool {
		return p.IsCooling(r.RespondedAt, now)
	})
}

// Exclusions reads the learner's history inside the window and returns the
// prompt ids that must not be offered. Cooldown applies across objectives.
func (p Policy) Exclusions(ctx context.Context, responses store.ResponseRepo, learnerID string, now time.Time) ([]string, error) {
	history, err := responses.Query(ctx, store.ResponseQuery{
		LearnerID: learnerID,
		Since:     p.Since(now),
	})
	if err != nil {
		return nil, fmt.Errorf("load cooldown history: %w", err)
	}
	return p.Excluded(history, now), nil
}

// SessionExclusions returns the prompt ids already answered in a session.
// It is the narrower exclusion used when the cooldown is relaxed.
func SessionExclusions(ctx context.Context, responses store.ResponseRepo, learnerID, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, nil
	}
	history, err := responses.Query(ctx, store.ResponseQuery{
		LearnerID: learnerID,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}
	return promptIDs(history, func(store.ResponseRecord) bool { return true }), nil
}

func promptIDs(history []store.ResponseRecord, keep func(store.ResponseRecord) bool) []string {
	seen := make(map[string]bool)
	for _, r := range history {
		if r.PromptID == "" || !keep(r) {
			continue
		}
		seen[r.PromptID] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
