package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/graph"
	pio "github.com/matzehuels/pathtrace/pkg/io"
)

func (c *CLI) nodesCommand() *cobra.Command {
	var asJSON, withEdges bool

	cmd := &cobra.Command{
		Use:   "nodes [file]",
		Short: "List the nodes of a graph file",
		Long: `List every node of a graph file in sorted order, including nodes that only
appear as edge targets.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pio.ReadFile(args[0])
			if err != nil {
				return err
			}
			nodes := doc.Graph.AvailableNodes()
			switch {
			case asJSON:
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(nodes)
			case withEdges:
				fmt.Println(nodeTable(doc.Graph))
			default:
				fmt.Println(strings.Join(nodes, "\n"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON array")
	cmd.Flags().BoolVar(&withEdges, "edges", false, "print a table of nodes and their neighbors")
	return cmd
}

// nodeTable renders nodes with their declared successors and their
// neighbors in the bidirectional view.
func nodeTable(g *graph.Graph) string {
	join := func(ns []graph.Neighbor) string {
		parts := make([]string, len(ns))
		for i, n := range ns {
			parts[i] = fmt.Sprintf("%s (%g)", n.ID, n.Weight)
		}
		return strings.Join(parts, ", ")
	}

	rows := make([][]string, 0, g.NodeCount())
	for _, id := range g.AvailableNodes() {
		rows = append(rows, []string{id, join(g.Successors(id)), join(g.Neighbors(id))})
	}

	return newTable([]string{"Node", "Declared", "Neighbors"}, rows, func(_, col int) lipgloss.Style {
		if col == 0 {
			return StyleHighlight
		}
		return lipgloss.NewStyle()
	}).Render()
}
