package graph

import (
	"cmp"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/pathtrace/pkg/errors"
)

// Neighbor is an adjacent node together with the cost of the edge to it.
type Neighbor struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Edge is a declared directed edge.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Graph is a validated weighted graph.
//
// The zero value is not usable. Build one with [New] or [Normalize].
type Graph struct {
	adj      map[string]map[string]float64 // declared edges
	merged   map[string]map[string]float64 // bidirectional view
	sorted   map[string][]Neighbor         // merged, ordered by ID
	succ     map[string][]Neighbor         // declared, ordered by ID
	nodes    []string
	nodeSet  map[string]struct{}
	numEdges int
}

// New validates a canonical adjacency mapping and builds a Graph from it.
// The input is copied; later changes to adj do not affect the Graph.
//
// It returns an INVALID_FORMAT error when adj is empty, a node identifier
// is empty, or a weight is negative, NaN or infinite.
func New(adj map[string]map[string]float64) (*Graph, error) {
	if len(adj) == 0 {
		return nil, errors.Format("graph must contain at least one node")
	}

	g := &Graph{
		adj:     make(map[string]map[string]float64, len(adj)),
		nodeSet: make(map[string]struct{}, len(adj)),
	}
	for _, from := range slices.Sorted(maps.Keys(adj)) {
		if from == "" {
			return nil, errors.Format("node id must not be empty")
		}
		edges := make(map[string]float64, len(adj[from]))
		for _, to := range slices.Sorted(maps.Keys(adj[from])) {
			w := adj[from][to]
			if to == "" {
				return nil, errors.Format("node %q: neighbor id must not be empty", from)
			}
			if err := checkWeight(from, to, w); err != nil {
				return nil, err
			}
			edges[to] = w
			g.nodeSet[to] = struct{}{}
		}
		g.adj[from] = edges
		g.nodeSet[from] = struct{}{}
		g.numEdges += len(edges)
	}
	g.nodes = slices.Sorted(maps.Keys(g.nodeSet))
	g.buildViews()
	return g, nil
}

func checkWeight(from, to string, w float64) error {
	switch {
	case math.IsNaN(w):
		return errors.Format("edge %s -> %s: weight is NaN", from, to)
	case math.IsInf(w, 0):
		return errors.Format("edge %s -> %s: weight must be finite", from, to)
	case w < 0:
		return errors.Format("edge %s -> %s: weight %v is negative", from, to, w)
	}
	return nil
}

// buildViews precomputes the merged bidirectional adjacency and the sorted
// neighbor slices used by the search loop.
func (g *Graph) buildViews() {
	g.merged = make(map[string]map[string]float64, len(g.nodes))
	for _, n := range g.nodes {
		g.merged[n] = make(map[string]float64)
	}
	for from, edges := range g.adj {
		for to, w := range edges {
			mergeMin(g.merged[from], to, w)
			if to != from {
				mergeMin(g.merged[to], from, w)
			}
		}
	}

	g.sorted = make(map[string][]Neighbor, len(g.nodes))
	g.succ = make(map[string][]Neighbor, len(g.adj))
	for _, n := range g.nodes {
		g.sorted[n] = toNeighbors(g.merged[n])
		if edges, ok := g.adj[n]; ok {
			g.succ[n] = toNeighbors(edges)
		}
	}
}

func mergeMin(m map[string]float64, id string, w float64) {
	if cur, ok := m[id]; !ok || w < cur {
		m[id] = w
	}
}

func toNeighbors(m map[string]float64) []Neighbor {
	out := make([]Neighbor, 0, len(m))
	for id, w := range m {
		out = append(out, Neighbor{ID: id, Weight: w})
	}
	slices.SortFunc(out, func(a, b Neighbor) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// NeighborsOf returns every node adjacent to node in the bidirectional view,
// mapped to the edge cost. Unknown nodes yield nil.
// The returned map is a fresh copy owned by the caller.
func (g *Graph) NeighborsOf(node string) map[string]float64 {
	return maps.Clone(g.merged[node])
}

// Neighbors returns the bidirectional neighbors of node ordered by ID.
// The slice is shared and must not be modified.
func (g *Graph) Neighbors(node string) []Neighbor {
	return g.sorted[node]
}

// Successors returns only the declared outgoing edges of node ordered by ID.
// The slice is shared and must not be modified.
func (g *Graph) Successors(node string) []Neighbor {
	return g.succ[node]
}

// AvailableNodes returns every node identifier, including nodes that only
// appear as neighbors, in sorted order.
func (g *Graph) AvailableNodes() []string {
	return slices.Clone(g.nodes)
}

// HasNode reports whether id is a key or a neighbor in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeSet[id]
	return ok
}

// ValidateEndpoints reports whether both start and goal are nodes of g.
func (g *Graph) ValidateEndpoints(start, goal string) bool {
	return g.HasNode(start) && g.HasNode(goal)
}

// MissingEndpoints returns the endpoints that are not nodes of g, in start,
// goal order. A nil slice means both are present.
func (g *Graph) MissingEndpoints(start, goal string) []string {
	var missing []string
	if !g.HasNode(start) {
		missing = append(missing, start)
	}
	if !g.HasNode(goal) && goal != start {
		missing = append(missing, goal)
	}
	return missing
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of declared directed edges.
func (g *Graph) EdgeCount() int { return g.numEdges }

// Edges returns every declared edge ordered by source, then target.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.numEdges)
	for _, from := range slices.Sorted(maps.Keys(g.adj)) {
		for _, n := range g.succ[from] {
			out = append(out, Edge{From: from, To: n.ID, Weight: n.Weight})
		}
	}
	return out
}

// Weight returns the declared weight of the edge from -> to.
func (g *Graph) Weight(from, to string) (float64, bool) {
	w, ok := g.adj[from][to]
	return w, ok
}

// Adjacency returns a deep copy of the declared adjacency mapping.
func (g *Graph) Adjacency() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(g.adj))
	for from, edges := range g.adj {
		out[from] = maps.Clone(edges)
	}
	return out
}
