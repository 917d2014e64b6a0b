package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verdant",
		Short: "Verdant - carbon-aware AI provider selection",
		Long: `Verdant evaluates prompts across multiple AI providers and picks the
candidate with the best balance of output quality and carbon footprint.

Every evaluation records tokens, energy, and emissions, so the history can
answer which provider is cheapest for the planet, not just the wallet.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configPath, "config", "verdant.yaml", "Path to the configuration file")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newEstimateCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newModelsCommand())
	cmd.AddCommand(newImpactCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newExportCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
