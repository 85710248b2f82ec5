// Package cli implements the asyncrun command line.
package cli

import (
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath    string
	logLevel      string
	logFormat     string
	metricsListen string
	queueCapacity int
}

// NewRootCmd creates the root cobra command for asyncrun.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "asyncrun",
		Short: "Run demo workloads on the single-threaded executor",
		Long: "asyncrun drives timer, composition and overflow workloads through a\n" +
			"single-threaded cooperative executor and reports its statistics.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML config file (default ./asyncrun.toml if present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format (console, json)")
	root.PersistentFlags().StringVar(&opts.metricsListen, "metrics-listen", "", "Serve Prometheus /metrics on this address while running")
	root.PersistentFlags().IntVar(&opts.queueCapacity, "queue-capacity", 0, "Ready queue capacity (overrides config)")

	root.AddCommand(
		newTimersCmd(opts),
		newComposeCmd(opts),
		newOverflowCmd(opts),
	)

	return root
}
