package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/graph"
	"github.com/matzehuels/pathtrace/pkg/heuristic"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/search"
)

func (c *CLI) validateCommand() *cobra.Command {
	var directed bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a graph file and its heuristic table",
		Long: `Validate a graph file. The graph must decode, name at least one node and use
finite non-negative weights. Heuristic estimates are compared with exact
costs; an estimate above the true cost makes A* lose its optimality
guarantee and is reported as a warning.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pio.ReadFile(args[0])
			if err != nil {
				return err
			}
			printSuccess("%s is a valid graph", args[0])
			printStats(doc.Graph.NodeCount(), doc.Graph.EdgeCount(), false)

			for _, goal := range doc.Heuristics.Goals() {
				if !doc.Graph.HasNode(goal) {
					printWarning("heuristic goal %q is not in the graph", goal)
					continue
				}
				exact := exactCosts(doc.Graph, goal, directed)
				if node, ok := doc.Heuristics.Admissible(goal, exact); !ok {
					printWarning("heuristic towards %s overestimates at %s (%g > %g)",
						goal, node, doc.Heuristics.Estimate(goal, node), exact[node])
					continue
				}
				printDetail("heuristic towards %s is admissible", goal)
			}
			if d := doc.Defaults(); d.Start != "" || d.Goal != "" {
				printKeyValue("query", fmt.Sprintf("%s %s %s", d.Start, iconArrow, d.Goal))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&directed, "directed", false, "measure exact costs along declared edges only")
	return cmd
}

// exactCosts returns the true cost from every node to goal. Unreachable
// nodes are omitted.
func exactCosts(g *graph.Graph, goal string, directed bool) map[string]float64 {
	opts := []search.Option{search.WithKind(search.UniformCost)}
	if directed {
		opts = append(opts, search.WithDirected())
	}
	out := make(map[string]float64, g.NodeCount())
	for _, node := range g.AvailableNodes() {
		res, err := search.Search(g, heuristic.Table{}, node, goal, opts...)
		if err != nil || math.IsInf(res.Cost, 1) {
			continue
		}
		out[node] = res.Cost
	}
	return out
}
