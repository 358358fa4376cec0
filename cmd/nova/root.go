package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "One team of personas, a few local models",
	Long: `nova routes requests to a small set of language models, each standing
in for many agent personas, and runs multi-persona projects in company mode.

With no arguments, launches the interactive shell.

Modes:
- personal: ask questions and get answers from the best-fit persona
- company: hand nova a project brief and the team decomposes and builds it`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          withCore(runShell),
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results and errors as JSON")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Read configuration from this file instead of the user and project files")

	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(tierCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
