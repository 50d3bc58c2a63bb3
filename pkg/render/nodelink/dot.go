package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pathtrace/pkg/graph"
	"github.com/matzehuels/pathtrace/pkg/search"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends the expansion order to expanded node labels.
	Detailed bool
	// HideWeights omits edge weight labels.
	HideWeights bool
	// RankDir is the Graphviz rankdir. Defaults to "LR".
	RankDir string
}

const (
	colorStart    = "palegreen"
	colorGoal     = "lightpink"
	colorExpanded = "lightblue"
	colorPath     = "crimson"
	colorExplored = "steelblue"
)

type pair struct{ a, b string }

// key canonicalizes an edge. Undirected edges are stored with the smaller
// ID first.
func key(from, to string, directed bool) pair {
	if !directed && to < from {
		from, to = to, from
	}
	return pair{from, to}
}

// ToDOT converts g to Graphviz DOT source and overlays res. The output is
// deterministic: nodes and edges appear in ID order.
func ToDOT(g *graph.Graph, res *search.Result, opts Options) string {
	directed := res != nil && res.Directed
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	order := map[string]int{}
	explored := map[pair]bool{}
	onPath := map[pair]bool{}
	pathNodes := map[string]bool{}
	var start, goal string
	if res != nil {
		start, goal = res.Start, res.Goal
		for i, n := range res.Trace.Expanded {
			order[n] = i + 1
		}
		for _, e := range res.Trace.Explored {
			explored[key(e.From, e.To, directed)] = true
		}
		for _, e := range res.Trace.PathEdges() {
			onPath[key(e.From, e.To, directed)] = true
		}
		for _, n := range res.Path {
			pathNodes[n] = true
		}
	}

	var buf bytes.Buffer
	kind, arrow := "graph", "--"
	if directed {
		kind, arrow = "digraph", "->"
	}
	fmt.Fprintf(&buf, "%s G {\n", kind)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	for _, id := range g.AvailableNodes() {
		attrs := nodeAttrs(id, start, goal, order[id], pathNodes[id], opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges(g, directed) {
		k := key(e.From, e.To, directed)
		attrs := edgeAttrs(e.Weight, explored[k], onPath[k], opts.HideWeights)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q %s %q;\n", e.From, arrow, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q %s %q [%s];\n", e.From, arrow, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// edges returns the declared edges for a directed drawing, or one edge per
// unordered pair at the minimum declared weight otherwise.
func edges(g *graph.Graph, directed bool) []graph.Edge {
	all := g.Edges()
	if directed {
		return all
	}
	seen := map[pair]int{}
	var out []graph.Edge
	for _, e := range all {
		k := key(e.From, e.To, false)
		if i, ok := seen[k]; ok {
			out[i].Weight = min(out[i].Weight, e.Weight)
			continue
		}
		seen[k] = len(out)
		out = append(out, graph.Edge{From: k.a, To: k.b, Weight: e.Weight})
	}
	return out
}

func nodeAttrs(id, start, goal string, order int, onPath, detailed bool) []string {
	label := id
	if detailed && order > 0 {
		label = fmt.Sprintf("%s\n#%d", id, order)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}

	switch {
	case id == start:
		attrs = append(attrs, "fillcolor="+colorStart)
	case id == goal:
		attrs = append(attrs, "fillcolor="+colorGoal)
	case order > 0:
		attrs = append(attrs, "fillcolor="+colorExpanded)
	}
	if onPath {
		attrs = append(attrs, "color="+colorPath, "penwidth=2.5")
	}
	return attrs
}

func edgeAttrs(w float64, explored, onPath, hideWeights bool) []string {
	var attrs []string
	if !hideWeights {
		attrs = append(attrs, fmt.Sprintf("label=%q", strconv.FormatFloat(w, 'g', -1, 64)))
	}
	switch {
	case onPath:
		attrs = append(attrs, "color="+colorPath, "penwidth=3", "style=bold")
	case explored:
		attrs = append(attrs, "color="+colorExplored, "style=dashed")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// viewBox-only one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
