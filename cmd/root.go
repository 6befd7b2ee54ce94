package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"bootstrap/internal/logger"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag or BOOTSTRAP_DEBUG.
var debug bool

// rootCmd provisions the machine when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Provision a workstation: tools, configs and login shell",
	Long: `bootstrap installs a fixed catalog of command line tools, clones the
configuration repositories, links them into place and makes the configured
shell the login shell. Every step is safe to re-run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
	RunE: runBootstrap,
}

// Execute runs the CLI and exits with status 1 on any unrecovered error.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(catalogCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
}
