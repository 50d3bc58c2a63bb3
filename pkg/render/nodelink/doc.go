// Package nodelink renders a searched graph as a node-link diagram with the
// execution trace drawn on top.
//
// # Usage
//
// Convert a graph and a search result to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, &res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Passing a nil result draws the bare graph.
//
// # Styling
//
// The start node is green and the goal is red. Expanded nodes are filled
// light blue; with [Options].Detailed their label carries the 1-based
// expansion order. Edges relaxed during the search are dashed, and edges of
// the final path are bold crimson. Undirected searches produce a "graph"
// with one edge per node pair at the lower of the two declared weights,
// which is the cost the search actually used. Directed searches produce a
// "digraph" of the declared edges.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion goes through the parent render package
// and requires librsvg (rsvg-convert).
package nodelink
