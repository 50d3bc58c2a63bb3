package search

import (
	"encoding/json"
	"math"
	"time"

	"github.com/matzehuels/pathtrace/pkg/trace"
)

// Result is the outcome of one search.
type Result struct {
	Strategy Strategy
	Directed bool
	Start    string
	Goal     string
	Path     []string      // empty when the goal is unreachable
	Cost     float64       // +Inf when the goal is unreachable
	Elapsed  time.Duration // wall time measured with the monotonic clock
	Trace    trace.Trace
}

// Reachable reports whether a path was found.
func (r Result) Reachable() bool {
	return len(r.Path) > 0
}

// Hops returns the number of edges on the path.
func (r Result) Hops() int {
	return max(len(r.Path)-1, 0)
}

// resultJSON is the wire form of Result. Cost is a pointer so that an
// unreachable result encodes as null; JSON has no infinity.
type resultJSON struct {
	Algorithm      Kind        `json:"algorithm"`
	Weight         float64     `json:"weight"`
	Directed       bool        `json:"directed,omitempty"`
	Start          string      `json:"start"`
	Goal           string      `json:"goal"`
	Reachable      bool        `json:"reachable"`
	Path           []string    `json:"path"`
	Cost           *float64    `json:"cost"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
	Trace          trace.Trace `json:"trace"`
}

// MarshalJSON encodes the result with an explicit reachable flag and a null
// cost for unreachable goals.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Algorithm:      r.Strategy.Kind,
		Weight:         r.Strategy.Weight,
		Directed:       r.Directed,
		Start:          r.Start,
		Goal:           r.Goal,
		Reachable:      r.Reachable(),
		Path:           r.Path,
		ElapsedSeconds: r.Elapsed.Seconds(),
		Trace:          r.Trace,
	}
	if out.Path == nil {
		out.Path = []string{}
	}
	if !math.IsInf(r.Cost, 1) {
		c := r.Cost
		out.Cost = &c
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON. A null cost
// decodes as +Inf.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Result{
		Strategy: Strategy{Kind: in.Algorithm, Weight: in.Weight},
		Directed: in.Directed,
		Start:    in.Start,
		Goal:     in.Goal,
		Path:     in.Path,
		Cost:     math.Inf(1),
		Elapsed:  time.Duration(in.ElapsedSeconds * float64(time.Second)),
		Trace:    in.Trace,
	}
	if in.Cost != nil {
		r.Cost = *in.Cost
	}
	return nil
}
