// Package pkg provides the core libraries for pathtrace, a shortest-path
// search engine that records how it got to its answer.
//
// # Overview
//
// pathtrace runs uniform-cost, A*, weighted A* and greedy best-first search
// over weighted graphs and keeps a trace of every node it expanded and
// every edge it explored. The trace can be rendered as a Graphviz diagram
// or stepped through frame by frame. The pkg directory is organized into
// these areas:
//
//  1. [graph], [heuristic] - Graph model and heuristic tables
//  2. [search], [trace] - The search engine and its execution trace
//  3. [io], [source/neo4j] - Document formats and external graph sources
//  4. [render] - DOT, SVG, PNG and PDF output
//  5. [pipeline] - Orchestration (load → search → render) with caching
//  6. [cache], [observability], [config] - Infrastructure
//  7. [api] - The HTTP service
//
// # Architecture
//
// The typical data flow through pathtrace:
//
//	JSON/YAML document or Neo4j query
//	         ↓
//	    [io] package (decode, normalize)
//	         ↓
//	    [search] package (priority-queue search + trace)
//	         ↓
//	    [render] package (trace overlay)
//	         ↓
//	    TXT/JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
// Load a graph and find a path:
//
//	import (
//	    "github.com/matzehuels/pathtrace/pkg/io"
//	    "github.com/matzehuels/pathtrace/pkg/search"
//	)
//
//	doc, err := io.ReadFile("romania.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := search.Search(doc.Graph, doc.Heuristics, "Arad", "Bucharest",
//	    search.WithKind(search.AStar))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Path, res.Cost)
//
// For cached, rendered runs use [pipeline.Runner] instead.
//
// [graph]: github.com/matzehuels/pathtrace/pkg/graph
// [heuristic]: github.com/matzehuels/pathtrace/pkg/heuristic
// [search]: github.com/matzehuels/pathtrace/pkg/search
// [trace]: github.com/matzehuels/pathtrace/pkg/trace
// [io]: github.com/matzehuels/pathtrace/pkg/io
// [source/neo4j]: github.com/matzehuels/pathtrace/pkg/source/neo4j
// [render]: github.com/matzehuels/pathtrace/pkg/render
// [pipeline]: github.com/matzehuels/pathtrace/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/pathtrace/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/pathtrace/pkg/cache
// [observability]: github.com/matzehuels/pathtrace/pkg/observability
// [config]: github.com/matzehuels/pathtrace/pkg/config
// [api]: github.com/matzehuels/pathtrace/pkg/api
package pkg
