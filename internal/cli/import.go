package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/heuristic"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/source/neo4j"
)

func (c *CLI) importCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a graph file from an external source",
	}
	cmd.AddCommand(c.importNeo4jCommand())
	return cmd
}

// neo4jOpts holds the command-line flags for "import neo4j".
type neo4jOpts struct {
	uri, username, password, database string
	cypher                            string
	relType, idProp, weightProp       string
	output                            string
}

func (c *CLI) importNeo4jCommand() *cobra.Command {
	var opts neo4jOpts

	cmd := &cobra.Command{
		Use:   "neo4j",
		Short: "Import a weighted graph from Neo4j",
		Long: `Read a graph from Neo4j and write it as a pathtrace document.

By default every relationship becomes an edge between the nodes' "name"
properties, weighted by the relationship's "weight" property (1 when
missing). --rel restricts the relationship type and --id-prop/--weight-prop
rename the properties. --query runs custom Cypher that must return the
columns from, to and weight. Connection defaults come from the [neo4j]
config section; the password may also be set with NEO4J_PASSWORD.`,
		Example: `  pathtrace import neo4j --uri neo4j://localhost:7687 --rel ROAD --weight-prop km -o roads.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImportNeo4j(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.uri, "uri", "", "Bolt URI (default from config)")
	cmd.Flags().StringVar(&opts.username, "user", "", "username (default from config)")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (default $NEO4J_PASSWORD or config)")
	cmd.Flags().StringVar(&opts.database, "database", "", "database name (default from config)")
	cmd.Flags().StringVar(&opts.cypher, "query", "", "custom Cypher returning from, to, weight")
	cmd.Flags().StringVar(&opts.relType, "rel", "", "relationship type to import (default all)")
	cmd.Flags().StringVar(&opts.idProp, "id-prop", "name", "node property used as identifier")
	cmd.Flags().StringVar(&opts.weightProp, "weight-prop", "weight", "relationship property used as weight")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) neo4jOptions(opts neo4jOpts) neo4j.Options {
	cfg := c.Config.Neo4j
	out := neo4j.Options{
		URI:      firstNonEmpty(opts.uri, cfg.URI),
		Username: firstNonEmpty(opts.username, cfg.Username),
		Password: firstNonEmpty(opts.password, os.Getenv("NEO4J_PASSWORD"), cfg.Password),
		Database: firstNonEmpty(opts.database, cfg.Database),
	}
	return out
}

func (c *CLI) runImportNeo4j(ctx context.Context, opts neo4jOpts) error {
	nopts := c.neo4jOptions(opts)

	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Querying %s", nopts.URI))
	spin.Start()

	client, err := neo4j.NewClient(ctx, nopts)
	if err != nil {
		spin.StopWithError("Connection failed")
		return err
	}
	loader := neo4j.NewLoader(client)
	defer loader.Close(context.Background())

	q := neo4j.DefaultQuery()
	switch {
	case opts.cypher != "":
		q = neo4j.Query{Cypher: opts.cypher}
	case opts.relType != "" || opts.idProp != "name" || opts.weightProp != "weight":
		q = neo4j.RelationshipQuery(opts.relType, opts.idProp, opts.weightProp)
	}

	g, err := loader.LoadGraph(ctx, q)
	if err != nil {
		spin.StopWithError("Import failed")
		return err
	}
	spin.Stop()

	doc := &pio.Document{Graph: g, Heuristics: heuristic.Table{}}
	if opts.output == "" {
		return pio.WriteDocument(os.Stdout, doc)
	}
	if err := writeDocumentFile(opts.output, doc); err != nil {
		return err
	}
	printSuccess("Imported %d nodes", g.NodeCount())
	printStats(g.NodeCount(), g.EdgeCount(), false)
	printFile(opts.output)
	return nil
}

func writeDocumentFile(path string, doc *pio.Document) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return pio.WriteDocument(io.Writer(f), doc)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
