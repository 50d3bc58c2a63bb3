package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/matzehuels/pathtrace/pkg/heuristic"
	"github.com/matzehuels/pathtrace/pkg/search"
)

// MarshalResult encodes a search result as indented JSON.
func MarshalResult(res search.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// UnmarshalResult decodes a result written by MarshalResult.
func UnmarshalResult(data []byte) (search.Result, error) {
	var res search.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return search.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}

// WriteResult writes a search result as indented JSON to w.
func WriteResult(w io.Writer, res search.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteResultFile writes a search result as JSON to path.
// The file is created with 0644 permissions.
func WriteResultFile(res search.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(f, res)
}

// WriteReport writes a plain-text summary of res. source names the graph
// file and may be empty.
func WriteReport(w io.Writer, res search.Result, source string) error {
	var b strings.Builder
	b.WriteString("SEARCH RESULT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	if source != "" {
		fmt.Fprintf(&b, "Graph: %s\n", source)
	}
	fmt.Fprintf(&b, "Algorithm: %s\n", res.Strategy)
	fmt.Fprintf(&b, "Query: %s -> %s\n\n", res.Start, res.Goal)

	if res.Reachable() {
		b.WriteString("PATH FOUND\n")
		fmt.Fprintf(&b, "Route: %s\n", strings.Join(res.Path, " -> "))
		fmt.Fprintf(&b, "Total cost: %.2f\n", res.Cost)
		fmt.Fprintf(&b, "Nodes on path: %d\n", len(res.Path))
	} else {
		b.WriteString("NO PATH FOUND\n")
	}

	fmt.Fprintf(&b, "\nElapsed: %.6f seconds\n", res.Elapsed.Seconds())
	fmt.Fprintf(&b, "Nodes expanded: %d\n", len(res.Trace.Expanded))
	fmt.Fprintf(&b, "Edges explored: %d\n", len(res.Trace.Explored))
	fmt.Fprintf(&b, "Expansion order: %s\n", strings.Join(res.Trace.Expanded, " -> "))

	_, err := io.WriteString(w, b.String())
	return err
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportName returns a file name for a report of a start -> goal search
// taken at t, such as "search_A_to_D_20250101_120000.txt".
func ReportName(start, goal string, t time.Time) string {
	clean := func(s string) string {
		s = unsafeName.ReplaceAllString(s, "_")
		if s == "" {
			return "_"
		}
		return s
	}
	return fmt.Sprintf("search_%s_to_%s_%s.txt", clean(start), clean(goal), t.Format("20060102_150405"))
}

// documentJSON is the canonical wrapper written by WriteDocument.
type documentJSON struct {
	Graph     map[string]map[string]float64 `json:"graph"`
	Heuristic heuristic.Table               `json:"heuristic"`
	Config    map[string]any                `json:"config,omitempty"`
}

// WriteDocument writes doc as a canonical wrapper document. Reading the
// output back with Read yields the same graph and heuristics.
func WriteDocument(w io.Writer, doc *Document) error {
	out := documentJSON{
		Graph:     doc.Graph.Adjacency(),
		Heuristic: doc.Heuristics,
		Config:    doc.Config,
	}
	if out.Heuristic == nil {
		out.Heuristic = heuristic.Table{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
