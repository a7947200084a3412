package objectives

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownObjective is returned when an objective id is not in the graph.
var ErrUnknownObjective = errors.New("unknown objective")

// Tier is an objective's declared complexity.
type Tier string

const (
	TierFoundational Tier = "FOUNDATIONAL"
	TierIntermediate Tier = "INTERMEDIATE"
	TierAdvanced     Tier = "ADVANCED"
)

// AllTiers returns all tiers in ascending complexity.
func AllTiers() []Tier {
	return []Tier{TierFoundational, TierIntermediate, TierAdvanced}
}

// ParseTier parses a tier name case-insensitively. Empty means intermediate.
func ParseTier(s string) (Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return TierIntermediate, nil
	case string(TierFoundational):
		return TierFoundational, nil
	case string(TierIntermediate):
		return TierIntermediate, nil
	case string(TierAdvanced):
		return TierAdvanced, nil
	default:
		return "", fmt.Errorf("unknown complexity tier %q", s)
	}
}

// Floor is the lowest question difficulty that counts as evidence of
// mastery for an objective in this tier.
func (t Tier) Floor() float64 {
	switch t {
	case TierFoundational:
		return 20
	case TierAdvanced:
		return 60
	default:
		return 40
	}
}

// Objective is a single knowledge objective node.
type Objective struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	Tier          Tier     `json:"tier"`
	Prerequisites []string `json:"prerequisites"`
}

// Graph is the read-only objective dependency lookup.
type Graph interface {
	// PrerequisitesOf returns the ids the objective directly depends on.
	PrerequisitesOf(ctx context.Context, objectiveID string) ([]string, error)

	// AdvancedVariantsOf returns the ids that directly depend on the objective.
	AdvancedVariantsOf(ctx context.Context, objectiveID string) ([]string, error)

	// TierOf returns the objective's declared complexity tier.
	TierOf(ctx context.Context, objectiveID string) (Tier, error)
}
