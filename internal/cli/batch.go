package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/pipeline"
	"github.com/matzehuels/pathtrace/pkg/search"
)

// batchOpts holds the command-line flags for the batch command.
type batchOpts struct {
	searchFlags
	pairs       []string
	concurrency int
	asJSON      bool
}

func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOpts

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Run many start/goal searches over one graph",
		Long: `Run every --pair START:GOAL over the same graph concurrently. Failing pairs
(such as unknown nodes) are reported per row and do not stop the others.`,
		Example: `  pathtrace batch romania.yaml --pair Arad:Bucharest --pair Oradea:Neamt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := parsePairs(opts.pairs)
			if err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), args[0], queries, opts)
		},
	}

	opts.register(cmd, false)
	cmd.Flags().StringArrayVarP(&opts.pairs, "pair", "p", nil, "start:goal pair (repeatable)")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "parallel searches (default from config)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON lines")
	_ = cmd.MarkFlagRequired("pair")

	return cmd
}

// parsePairs parses START:GOAL arguments. The last colon separates the
// two, so start nodes may contain colons.
func parsePairs(pairs []string) ([]pipeline.Query, error) {
	out := make([]pipeline.Query, 0, len(pairs))
	for _, p := range pairs {
		i := strings.LastIndex(p, ":")
		if i <= 0 || i == len(p)-1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid pair %q (want START:GOAL)", p)
		}
		out = append(out, pipeline.Query{Start: p[:i], Goal: p[i+1:]})
	}
	return out, nil
}

func (c *CLI) runBatch(ctx context.Context, path string, queries []pipeline.Query, opts batchOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	doc, hash, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = c.Config.Search.Concurrency
	}

	prog := newProgress(c.Logger)
	items, err := runner.Batch(ctx, doc, hash, queries, c.options(doc, opts.searchFlags), concurrency)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Ran %d searches", len(items)))

	if opts.asJSON {
		return writeBatchJSON(items)
	}
	fmt.Println(batchTable(items))

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		printWarning("%d of %d searches failed", failed, len(items))
	}
	return nil
}

type batchLine struct {
	Start  string         `json:"start"`
	Goal   string         `json:"goal"`
	Result *search.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func writeBatchJSON(items []pipeline.BatchItem) error {
	enc := json.NewEncoder(os.Stdout)
	for _, it := range items {
		line := batchLine{Start: it.Query.Start, Goal: it.Query.Goal}
		if it.Err != nil {
			line.Error = errors.UserMessage(it.Err)
		} else {
			line.Result = &it.Result
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func batchTable(items []pipeline.BatchItem) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		res := it.Result
		switch {
		case it.Err != nil:
			rows = append(rows, []string{it.Query.Start, it.Query.Goal, "error", "", "", errors.UserMessage(it.Err)})
		case !res.Reachable():
			rows = append(rows, []string{it.Query.Start, it.Query.Goal, "—", "", fmt.Sprint(len(res.Trace.Expanded)), "unreachable"})
		default:
			rows = append(rows, []string{
				it.Query.Start, it.Query.Goal,
				fmt.Sprintf("%g", res.Cost),
				fmt.Sprint(res.Hops()),
				fmt.Sprint(len(res.Trace.Expanded)),
				formatPath(res.Path),
			})
		}
	}

	headers := []string{"Start", "Goal", "Cost", "Hops", "Expanded", "Path"}
	return newTable(headers, rows, func(row, col int) lipgloss.Style {
		if row < len(items) && items[row].Err != nil {
			return StyleError
		}
		if col == 2 {
			return StyleNumber
		}
		return lipgloss.NewStyle()
	}).Render()
}
