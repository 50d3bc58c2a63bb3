package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/errors"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
	"github.com/matzehuels/pathtrace/pkg/search"
)

// searchFlags holds the flags shared by search, batch and replay.
type searchFlags struct {
	from      string
	to        string
	algorithm string
	weight    float64
	directed  bool
	noCache   bool
}

func (f *searchFlags) register(cmd *cobra.Command, endpoints bool) {
	if endpoints {
		cmd.Flags().StringVar(&f.from, "from", "", "start node (default from the graph's config section)")
		cmd.Flags().StringVar(&f.to, "to", "", "goal node (default from the graph's config section)")
	}
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "", "ucs, astar, weighted-astar or greedy (default astar)")
	cmd.Flags().Float64VarP(&f.weight, "weight", "w", 0, "heuristic weight for A* variants (default per algorithm)")
	cmd.Flags().BoolVar(&f.directed, "directed", false, "follow declared edge directions only")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	cmd.ValidArgsFunction = completeGraphFile
	if endpoints {
		_ = cmd.RegisterFlagCompletionFunc("from", completeNodes)
		_ = cmd.RegisterFlagCompletionFunc("to", completeNodes)
	}
	_ = cmd.RegisterFlagCompletionFunc("algorithm", cobra.FixedCompletions(kindNames(), cobra.ShellCompDirectiveNoFileComp))
}

func kindNames() []string {
	names := make([]string, len(search.Kinds))
	for i, k := range search.Kinds {
		names[i] = k.String()
	}
	return names
}

// options resolves flags, then the document's config section, then the
// config file. Built-in defaults are applied by the pipeline.
func (c *CLI) options(doc *pio.Document, f searchFlags) pipeline.Options {
	opts := pipeline.Options{
		Start:     f.from,
		Goal:      f.to,
		Algorithm: f.algorithm,
		Weight:    f.weight,
		Directed:  f.directed,
		Logger:    c.Logger,
	}
	opts.ApplyDocumentDefaults(doc.Defaults())
	c.Config.Search.ApplyTo(&opts)
	return opts
}

// searchOpts holds the command-line flags for the search command.
type searchOpts struct {
	searchFlags
	formats  string // comma-separated output formats
	output   string // output file, base path, or "-" for stdout
	detailed bool   // expansion order in DOT labels
	refresh  bool   // ignore cached results
}

func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search [file]",
		Short: "Find a path between two nodes of a graph file",
		Long: `Search a JSON or YAML graph file and write the result.

A single text format (json, text, dot) is printed to stdout unless -o is
given. Other formats are written to files named after the query, or to the
base path given with -o.`,
		Example: `  pathtrace search romania.yaml --from Arad --to Bucharest
  pathtrace search graph.json --from A --to D -a ucs -f json,svg -o out/route`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runSearch(cmd.Context(), args[0], opts, formats)
		},
	}

	opts.register(cmd, true)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), text, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format), base path (multiple), or "-" for stdout`)
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their expansion order")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, path string, opts searchOpts, formats []string) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	doc, hash, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}

	popts := c.options(doc, opts.searchFlags)
	if len(formats) > 0 {
		popts.Formats = formats
	}
	popts.Detailed = opts.detailed
	popts.Refresh = opts.refresh

	result, err := runner.Execute(ctx, doc, hash, popts)
	if err != nil {
		c.hintNodes(err)
		return err
	}
	res := result.Search
	prog.done(fmt.Sprintf("Searched %s → %s", res.Start, res.Goal))

	if toStdout(opts.output, result.Artifacts) {
		for _, data := range result.Artifacts {
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
		}
		return nil
	}

	paths := outputPaths(opts.output, slices.Sorted(maps.Keys(result.Artifacts)), res.Start, res.Goal)
	for _, format := range slices.Sorted(maps.Keys(paths)) {
		if err := writeFile(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printResult(res)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.SearchHit)
	for _, format := range slices.Sorted(maps.Keys(paths)) {
		printFile(paths[format])
	}
	printNextStep("Step through it", fmt.Sprintf("%s replay %s --from %s --to %s -a %s", appName, path, res.Start, res.Goal, res.Strategy.Kind))
	return nil
}

// hintNodes logs the available nodes when err is an unknown-node error.
func (c *CLI) hintNodes(err error) {
	var unknown *errors.UnknownNodeError
	if stderrors.As(err, &unknown) {
		c.Logger.Info("available nodes", "nodes", strings.Join(unknown.Available, ", "))
	}
}

// printResult prints the path (or its absence) and the search effort.
func printResult(res search.Result) {
	if !res.Reachable() {
		printWarning("No path from %s to %s", res.Start, res.Goal)
	} else {
		printSuccess("%s %s", formatPath(res.Path), StyleNumber.Render(fmt.Sprintf("(cost %g)", res.Cost)))
	}
	printDetail("%s · %d expanded · %d edges explored · %s", res.Strategy, len(res.Trace.Expanded), len(res.Trace.Explored), res.Elapsed.Round(time.Microsecond))
}

// textFormats can be printed to a terminal.
var textFormats = map[string]bool{
	pipeline.FormatJSON: true,
	pipeline.FormatText: true,
	pipeline.FormatDOT:  true,
}

// toStdout reports whether the artifacts go to stdout: always for "-",
// and by default for a single text format.
func toStdout(output string, artifacts map[string][]byte) bool {
	if output == "-" {
		return len(artifacts) == 1
	}
	if output != "" || len(artifacts) != 1 {
		return false
	}
	var format string
	for f := range artifacts {
		format = f
	}
	return textFormats[format]
}

// outputPaths maps each format to its output file. A single format writes
// to output as given; several formats use output (minus its extension) as
// a base path. Without output the file names are derived from the query.
func outputPaths(output string, formats []string, start, goal string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && output != "-" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}

	base := strings.TrimSuffix(output, filepath.Ext(output))
	if base == "" || output == "-" {
		base = strings.TrimSuffix(pio.ReportName(start, goal, time.Now()), ".txt")
	}
	for _, f := range formats {
		ext := f
		if f == pipeline.FormatText {
			ext = "txt"
		}
		paths[f] = base + "." + ext
	}
	return paths
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
