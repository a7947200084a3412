package objectives

import (
	"fmt"
	"sort"
	"strings"
)

// Validate performs all structural checks on an objective set and returns
// one error describing every problem found, or nil.
func Validate(objs []Objective) error {
	var errs []string

	ids := make(map[string]bool, len(objs))
	for _, o := range objs {
		if o.ID == "" {
			errs = append(errs, "objective with empty ID")
			continue
		}
		if ids[o.ID] {
			errs = append(errs, fmt.Sprintf("duplicate objective ID: %q", o.ID))
		}
		ids[o.ID] = true
		if o.Tier != "" {
			if _, err := ParseTier(string(o.Tier)); err != nil {
				errs = append(errs, fmt.Sprintf("objective %q: %v", o.ID, err))
			}
		}
	}

	for _, o := range objs {
		for _, p := range o.Prerequisites {
			if p == o.ID {
				errs = append(errs, fmt.Sprintf("objective %q lists itself as a prerequisite", o.ID))
				continue
			}
			if !ids[p] {
				errs = append(errs, fmt.Sprintf("objective %q references nonexistent prerequisite %q", o.ID, p))
			}
		}
	}

	if len(errs) == 0 {
		if cycle := cycleMembers(objs); len(cycle) > 0 {
			errs = append(errs, fmt.Sprintf("cycle detected involving objectives: %s", strings.Join(cycle, ", ")))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid objective graph:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// cycleMembers returns the ids Kahn's algorithm could not drain.
func cycleMembers(objs []Objective) []string {
	inDegree := make(map[string]int, len(objs))
	adj := make(map[string][]string)
	for _, o := range objs {
		inDegree[o.ID] = len(o.Prerequisites)
		for _, p := range o.Prerequisites {
			adj[p] = append(adj[p], o.ID)
		}
	}

	var queue []string
	for _, o := range objs {
		if inDegree[o.ID] == 0 {
			queue = append(queue, o.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, d := range adj[id] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	var stuck []string
	for id, deg := range inDegree {
		if deg > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return stuck
}
