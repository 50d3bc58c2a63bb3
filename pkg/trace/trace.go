// Package trace records what a search did so it can be replayed or rendered.
//
// A [Trace] lists nodes in the order they were expanded, every edge whose
// relaxation improved a best-known cost, and the final path. It carries no
// behavior beyond recording; [Replay] turns a finished trace back into a
// sequence of per-expansion frames for step-by-step visualization.
package trace

import (
	"fmt"
	"slices"
)

// Edge is a directed (from, to) pair recorded during relaxation.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// String returns "from->to".
func (e Edge) String() string { return e.From + "->" + e.To }

// Stats summarizes frontier activity during a search.
type Stats struct {
	Pushes      int `json:"pushes"`       // entries pushed onto the frontier
	StalePops   int `json:"stale_pops"`   // popped entries skipped as already expanded
	MaxFrontier int `json:"max_frontier"` // largest frontier size observed
}

// Trace is the execution record of one search.
//
// Relaxations[i] is the number of Explored edges appended while expanding
// Expanded[i], so the two slices always have the same length.
type Trace struct {
	Expanded    []string `json:"expanded"`
	Explored    []Edge   `json:"explored_edges"`
	Path        []string `json:"final_path"`
	Relaxations []int    `json:"relaxations"`
	Stats       Stats    `json:"stats"`
}

// New returns an empty trace with non-nil slices, which keeps the JSON
// encoding stable ([] rather than null).
func New() *Trace {
	return &Trace{
		Expanded:    []string{},
		Explored:    []Edge{},
		Path:        []string{},
		Relaxations: []int{},
	}
}

// Expand records that node was popped and expanded.
func (t *Trace) Expand(node string) {
	t.Expanded = append(t.Expanded, node)
	t.Relaxations = append(t.Relaxations, 0)
}

// Explore records an accepted relaxation of from -> to. It is attributed to
// the most recent expansion.
func (t *Trace) Explore(from, to string) {
	t.Explored = append(t.Explored, Edge{From: from, To: to})
	if n := len(t.Relaxations); n > 0 {
		t.Relaxations[n-1]++
	}
}

// Finish records the final path. A nil path is stored as empty.
func (t *Trace) Finish(path []string) {
	if path == nil {
		path = []string{}
	}
	t.Path = path
}

// Found reports whether the trace ends with a path.
func (t *Trace) Found() bool { return len(t.Path) > 0 }

// Clone returns a deep copy.
func (t Trace) Clone() Trace {
	return Trace{
		Expanded:    cloneNonNil(t.Expanded),
		Explored:    cloneNonNil(t.Explored),
		Path:        cloneNonNil(t.Path),
		Relaxations: cloneNonNil(t.Relaxations),
		Stats:       t.Stats,
	}
}

func cloneNonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return slices.Clone(s)
}

// Validate checks the bookkeeping between Expanded, Explored and
// Relaxations. Traces decoded from untrusted JSON should be validated before
// replay.
func (t Trace) Validate() error {
	if len(t.Relaxations) != len(t.Expanded) {
		return fmt.Errorf("trace: %d relaxation counts for %d expansions", len(t.Relaxations), len(t.Expanded))
	}
	total := 0
	for i, n := range t.Relaxations {
		if n < 0 {
			return fmt.Errorf("trace: negative relaxation count at step %d", i)
		}
		total += n
	}
	if total != len(t.Explored) {
		return fmt.Errorf("trace: relaxation counts sum to %d but %d edges were explored", total, len(t.Explored))
	}
	if len(t.Path) > 0 && len(t.Expanded) > 0 && t.Path[len(t.Path)-1] != t.Expanded[len(t.Expanded)-1] {
		return fmt.Errorf("trace: path ends at %q but last expansion is %q", t.Path[len(t.Path)-1], t.Expanded[len(t.Expanded)-1])
	}
	return nil
}

// PathEdges returns the consecutive edges along the final path.
func (t Trace) PathEdges() []Edge {
	if len(t.Path) < 2 {
		return nil
	}
	out := make([]Edge, 0, len(t.Path)-1)
	for i := 1; i < len(t.Path); i++ {
		out = append(out, Edge{From: t.Path[i-1], To: t.Path[i]})
	}
	return out
}
