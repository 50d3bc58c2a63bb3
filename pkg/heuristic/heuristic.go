// Package heuristic holds per-goal cost estimates used by informed searches.
//
// A [Table] maps a goal node to the estimated remaining cost from every other
// node to that goal. Lookups of missing goals or nodes return 0, which turns
// A* into uniform-cost search for anything the table does not cover.
package heuristic

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/graph"
)

// Table maps goal -> node -> non-negative estimate. A nil Table is valid and
// empty.
type Table map[string]map[string]float64

// Estimate returns the estimated cost from node to goal, or 0 when the table
// has no entry.
func (t Table) Estimate(goal, node string) float64 {
	return t[goal][node]
}

// For returns the estimates towards goal. The map is shared and must not be
// modified.
func (t Table) For(goal string) map[string]float64 {
	return t[goal]
}

// Goals returns the goals covered by the table in sorted order.
func (t Table) Goals() []string {
	return slices.Sorted(maps.Keys(t))
}

// Len returns the number of goals.
func (t Table) Len() int { return len(t) }

// Normalize converts a decoded heuristic structure into a Table.
//
// A nil or empty value yields an empty table. Goals whose value is not a
// mapping are skipped. Estimates must be finite non-negative numbers;
// anything else is an INVALID_FORMAT error.
func Normalize(raw any) (Table, error) {
	if raw == nil {
		return Table{}, nil
	}
	top, ok := graph.AsMap(raw)
	if !ok {
		if l, isList := raw.([]any); isList && len(l) == 0 {
			return Table{}, nil
		}
		return nil, errors.Format("heuristic must be a mapping of goal to estimates")
	}

	out := make(Table, len(top))
	for goal, v := range top {
		estimates, ok := graph.AsMap(v)
		if !ok {
			continue
		}
		m := make(map[string]float64, len(estimates))
		for node, rv := range estimates {
			h, ok := graph.ToFloat(rv)
			if !ok || math.IsNaN(h) || math.IsInf(h, 0) {
				return nil, errors.Format("heuristic %s -> %s: estimate must be a finite number", node, goal)
			}
			if h < 0 {
				return nil, errors.Format("heuristic %s -> %s: estimate %v is negative", node, goal, h)
			}
			m[node] = h
		}
		out[goal] = m
	}
	return out, nil
}

// Admissible reports whether every estimate towards goal is at most the
// true cost computed by exact. Nodes absent from exact are ignored. The
// first offending node is returned when the table is not admissible.
func (t Table) Admissible(goal string, exact map[string]float64) (string, bool) {
	for _, node := range slices.Sorted(maps.Keys(t[goal])) {
		c, ok := exact[node]
		if ok && t[goal][node] > c {
			return node, false
		}
	}
	return "", true
}
