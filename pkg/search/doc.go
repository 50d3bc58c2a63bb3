// Package search finds minimum and near-minimum cost paths over a
// [graph.Graph] with a family of best-first strategies sharing one loop.
//
// # Strategies
//
// The frontier is ordered by a priority computed from the accumulated cost g
// and the heuristic estimate h of each entry:
//
//	UniformCost     g                 optimal, ignores heuristics
//	AStar           g + weight*h      optimal when weight = 1 and h is admissible
//	WeightedAStar   g + weight*h      trades optimality for fewer expansions
//	Greedy          h                 never guaranteed optimal
//
// Heuristic estimates come from a [heuristic.Table]. A missing estimate is 0,
// so an informed strategy without a table degrades to uniform-cost behavior
// instead of failing.
//
// # Determinism
//
// Frontier ties are broken by accumulated cost, then node identifier, then
// the path so far (compared element by element), then insertion order.
// Neighbors are visited in identifier order. Two calls with the same inputs
// produce the same path, cost and trace.
//
// # Traversal
//
// By default edges are traversable in both directions using the merged view
// of [graph.Graph.Neighbors]. [WithDirected] restricts expansion to declared
// edges.
//
// # Errors
//
// [Search] fails only before the loop starts: a nil graph, an invalid weight,
// or endpoints missing from the graph (an [errors.UnknownNodeError]). An
// unreachable goal is a normal result with an empty path and a cost of
// +Inf; check [Result.Reachable].
//
// # Concurrency
//
// A call owns its frontier, cost table and trace. Any number of searches may
// share one Graph and Table concurrently.
//
// Example:
//
//	res, err := search.Search(g, h, "Arad", "Bucharest",
//	    search.WithKind(search.WeightedAStar),
//	    search.WithWeight(1.5),
//	)
//	if err != nil {
//	    return err
//	}
//	if !res.Reachable() {
//	    fmt.Println("no route")
//	}
package search
