package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The config file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pathtrace finds and traces shortest paths in weighted graphs",
		Long: `Pathtrace runs uniform-cost, A*, weighted A* and greedy best-first search over
weighted graphs read from JSON or YAML files, records every expansion, and
renders the result as JSON, text reports, DOT, SVG, PNG or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pathtrace/config.toml)")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
