package cli

import (
	"context"
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	searchFlags
	interval time.Duration
	plain    bool
}

func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Step through a search expansion by expansion",
		Long: `Run a search and replay its trace in an interactive terminal view, one
expansion at a time. When stdout is not a terminal, or with --plain, the
frames are printed as lines instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd, true)
	cmd.Flags().DurationVar(&opts.interval, "interval", defaultReplayInterval, "delay between frames while playing")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print frames instead of starting the interactive view")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, path string, opts replayOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	doc, hash, err := runner.Load(ctx, path)
	if err != nil {
		return err
	}
	res, err := runner.Search(ctx, doc, hash, c.options(doc, opts.searchFlags))
	if err != nil {
		c.hintNodes(err)
		return err
	}

	if opts.plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		return printFrames(res)
	}

	model, err := NewReplayModel(res, opts.interval)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
