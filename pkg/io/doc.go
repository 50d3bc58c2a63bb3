// Package io loads graph documents from JSON and YAML and exports search
// results.
//
// # Import
//
// [ReadFile] picks the decoder from the file extension (.json, .jsn, .yaml,
// .yml) and returns a [Document]. [Read] does the same for any io.Reader
// given an explicit [Format]. Both accept every encoding understood by
// [graph.Normalize], including the wrapper document:
//
//	{
//	  "graph":     {"A": {"B": 1, "C": 4}, "B": {"D": 2}},
//	  "heuristic": {"D": {"A": 3, "B": 2}},
//	  "config":    {"algorithm": "astar", "start": "A", "goal": "D"}
//	}
//
// The config section is free-form. The keys algorithm, start, goal, weight
// and directed are read by [Document.Defaults]; everything else is kept for
// callers.
//
// # Export
//
// [WriteResult] encodes a [search.Result] as indented JSON. Unreachable
// results carry "reachable": false and a null cost because JSON cannot
// represent infinity. [WriteReport] writes a plain-text summary, and
// [WriteDocument] writes a canonical wrapper document that re-imports to the
// same graph.
//
// # Concurrency
//
// All functions are safe for concurrent use. Returned documents share no
// state with their input.
package io
