package objectives

import (
	"context"
	"fmt"
	"sort"
)

// MemoryGraph holds the objective DAG with precomputed indices.
type MemoryGraph struct {
	objectives []Objective
	byID       map[string]*Objective
	dependents map[string][]string
	topoOrder  []string
}

// NewGraph validates the objectives and builds the graph.
func NewGraph(objs []Objective) (*MemoryGraph, error) {
	if err := Validate(objs); err != nil {
		return nil, err
	}

	g := &MemoryGraph{
		objectives: make([]Objective, len(objs)),
		byID:       make(map[string]*Objective, len(objs)),
		dependents: make(map[string][]string),
	}
	copy(g.objectives, objs)

	for i := range g.objectives {
		o := &g.objectives[i]
		// Validate already rejected unknown tiers.
		o.Tier, _ = ParseTier(string(o.Tier))
		prereqs := make([]string, len(o.Prerequisites))
		copy(prereqs, o.Prerequisites)
		sort.Strings(prereqs)
		o.Prerequisites = prereqs
		g.byID[o.ID] = o
	}

	for i := range g.objectives {
		for _, p := range g.objectives[i].Prerequisites {
			g.dependents[p] = append(g.dependents[p], g.objectives[i].ID)
		}
	}
	for id := range g.dependents {
		sort.Strings(g.dependents[id])
	}

	g.topoOrder = topoSort(g.objectives)
	return g, nil
}

// Get returns the objective with the given id.
func (g *MemoryGraph) Get(id string) (Objective, error) {
	o, ok := g.byID[id]
	if !ok {
		return Objective{}, fmt.Errorf("objective %q: %w", id, ErrUnknownObjective)
	}
	return *o, nil
}

// All returns every objective in topological order (prerequisites first).
func (g *MemoryGraph) All() []Objective {
	out := make([]Objective, 0, len(g.topoOrder))
	for _, id := range g.topoOrder {
		out = append(out, *g.byID[id])
	}
	return out
}

// Len returns the number of objectives.
func (g *MemoryGraph) Len() int {
	return len(g.objectives)
}

func (g *MemoryGraph) PrerequisitesOf(_ context.Context, objectiveID string) ([]string, error) {
	o, ok := g.byID[objectiveID]
	if !ok {
		return nil, fmt.Errorf("objective %q: %w", objectiveID, ErrUnknownObjective)
	}
	out := make([]string, len(o.Prerequisites))
	copy(out, o.Prerequisites)
	return out, nil
}

func (g *MemoryGraph) AdvancedVariantsOf(_ context.Context, objectiveID string) ([]string, error) {
	if _, ok := g.byID[objectiveID]; !ok {
		return nil, fmt.Errorf("objective %q: %w", objectiveID, ErrUnknownObjective)
	}
	deps := g.dependents[objectiveID]
	out := make([]string, len(deps))
	copy(out, deps)
	return out, nil
}

func (g *MemoryGraph) TierOf(_ context.Context, objectiveID string) (Tier, error) {
	o, ok := g.byID[objectiveID]
	if !ok {
		return "", fmt.Errorf("objective %q: %w", objectiveID, ErrUnknownObjective)
	}
	return o.Tier, nil
}

// topoSort orders ids with Kahn's algorithm, breaking ties by id.
// The input has already been validated as acyclic.
func topoSort(objs []Objective) []string {
	inDegree := make(map[string]int, len(objs))
	dependents := make(map[string][]string)
	for _, o := range objs {
		inDegree[o.ID] = len(o.Prerequisites)
		for _, p := range o.Prerequisites {
			dependents[p] = append(dependents[p], o.ID)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(objs))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		next := append([]string(nil), dependents[id]...)
		sort.Strings(next)
		for _, d := range next {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	return order
}
