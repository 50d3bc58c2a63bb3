// Package graph provides the weighted graph model searched by pathtrace.
//
// A [Graph] maps each node identifier to its declared neighbors and the
// non-negative cost of the edge to each of them. Input files rarely arrive in
// that canonical shape, so [Normalize] accepts the encodings produced by the
// tools pathtrace interoperates with and converts them into a validated
// [Graph].
//
// # Accepted Encodings
//
// Edges mapping, as written by most JSON exporters:
//
//	{"A": {"edges": {"B": 1, "C": 4}, "n_edges": 2}}
//
// List of single-entry maps with an optional count marker, common in YAML:
//
//	A:
//	  - B: 1
//	  - C: 4
//	  - n_edges: 2
//
// Wrapper document carrying a graph, heuristics and free-form config:
//
//	{"graph": {...}, "heuristic": {...}, "config": {...}}
//
// Plain adjacency, which is also what [Graph.Adjacency] returns:
//
//	{"A": {"B": 1, "C": 4}}
//
// The Portuguese keys grafo, heuristica, arestas and n_arestas are accepted
// as aliases.
//
// # Bidirectional View
//
// Searches treat edges as traversable in both directions. [Graph.NeighborsOf]
// returns the declared edges of a node merged with the inverse of every edge
// that points at it. When both directions are declared with different
// weights, the smaller weight wins. The merged view is computed once in the
// constructor.
//
// # Concurrency
//
// A Graph is immutable after construction and safe for concurrent use.
package graph
