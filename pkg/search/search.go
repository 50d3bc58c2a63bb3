package search

import (
	"container/heap"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/graph"
	"github.com/matzehuels/pathtrace/pkg/heuristic"
	"github.com/matzehuels/pathtrace/pkg/trace"
)

// Search finds a path from start to goal in g.
//
// h may be nil. Without options the search runs A* with weight 1, which is
// uniform-cost search when h has no estimates for goal.
//
// Search returns an error only when g is nil, the options are invalid, or
// start or goal is not a node of g. An unreachable goal yields a Result with
// an empty path and a cost of +Inf.
func Search(g *graph.Graph, h heuristic.Table, start, goal string, opts ...Option) (Result, error) {
	began := time.Now()

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if g == nil {
		return Result{}, ErrNilGraph
	}
	if err := o.Strategy.validate(); err != nil {
		return Result{}, err
	}
	if missing := g.MissingEndpoints(start, goal); missing != nil {
		return Result{}, &errors.UnknownNodeError{Missing: missing, Available: g.AvailableNodes()}
	}

	r := &runner{
		g:        g,
		h:        h.For(goal),
		goal:     goal,
		strategy: o.Strategy,
		directed: o.Directed,
		best:     make(map[string]float64),
		visited:  make(map[string]struct{}),
		tr:       trace.New(),
	}
	path, cost := r.run(start)
	r.tr.Finish(path)

	return Result{
		Strategy: o.Strategy,
		Directed: o.Directed,
		Start:    start,
		Goal:     goal,
		Path:     slices.Clone(r.tr.Path),
		Cost:     cost,
		Elapsed:  time.Since(began),
		Trace:    *r.tr,
	}, nil
}

// Solve runs a search with an explicit kind and weight. A negative weight is
// rejected with ErrInvalidWeight.
func Solve(kind Kind, g *graph.Graph, h heuristic.Table, start, goal string, weight float64) (Result, error) {
	return Search(g, h, start, goal, WithStrategy(Strategy{Kind: kind, Weight: weight}))
}

// runner holds the mutable state of a single search.
type runner struct {
	g        *graph.Graph
	h        map[string]float64
	goal     string
	strategy Strategy
	directed bool

	pq      frontier
	seq     uint64
	best    map[string]float64
	visited map[string]struct{}
	tr      *trace.Trace
}

func (r *runner) estimate(node string) float64 {
	if !r.strategy.Informed() {
		return 0
	}
	return r.h[node]
}

func (r *runner) push(g float64, node string, path []string) {
	heap.Push(&r.pq, &entry{
		priority: r.strategy.Priority(g, r.estimate(node)),
		g:        g,
		node:     node,
		path:     path,
		seq:      r.seq,
	})
	r.seq++
	r.tr.Stats.Pushes++
	r.tr.Stats.MaxFrontier = max(r.tr.Stats.MaxFrontier, r.pq.Len())
}

// run executes the loop and returns the path and its cost, or nil and +Inf
// once the frontier is exhausted.
func (r *runner) run(start string) ([]string, float64) {
	r.best[start] = 0
	r.push(0, start, []string{start})

	for r.pq.Len() > 0 {
		cur := heap.Pop(&r.pq).(*entry)
		if _, seen := r.visited[cur.node]; seen {
			r.tr.Stats.StalePops++
			continue
		}
		r.visited[cur.node] = struct{}{}
		r.tr.Expand(cur.node)

		if cur.node == r.goal {
			return cur.path, cur.g
		}
		r.relax(cur)
	}
	return nil, math.Inf(1)
}

// relax pushes an entry for every neighbor whose best-known cost improves.
// Visited neighbors are not excluded; their new entries are discarded as
// stale when popped.
func (r *runner) relax(cur *entry) {
	neighbors := r.g.Neighbors(cur.node)
	if r.directed {
		neighbors = r.g.Successors(cur.node)
	}
	for _, nb := range neighbors {
		gNew := cur.g + nb.Weight
		if prev, ok := r.best[nb.ID]; ok && gNew >= prev {
			continue
		}
		r.best[nb.ID] = gNew
		path := make([]string, len(cur.path)+1)
		copy(path, cur.path)
		path[len(cur.path)] = nb.ID
		r.push(gNew, nb.ID, path)
		r.tr.Explore(cur.node, nb.ID)
	}
}
