// Package main provides the CLI entry point for browserpilot, the
// browser-driving agent runtime.
//
// # Basic Usage
//
// Start the gateway and bridge against a live browser pool:
//
//	browserpilot serve --config browserpilot.yaml
//
// Run a single registered Action non-interactively:
//
//	browserpilot run extract_page --input '{"tab":"t1"}'
//
// Inspect a persisted trace:
//
//	browserpilot trace stats run.jsonl
//
// # Environment Variables
//
//   - BROWSERPILOT_CONFIG: path to the config file (default: browserpilot.yaml)
//   - ANTHROPIC_API_KEY: Anthropic API key for Claude models
//   - OPENAI_API_KEY: OpenAI API key for GPT models
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main so tests can exercise it without os.Exit.
func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "browserpilot",
		Short: "browserpilot - an autonomous browser-driving agent runtime",
		Long: `browserpilot runs declarative Actions against a live browser through a
content-script bridge, cascading across an LLM model catalog and recording
every step to a local trace store.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", resolveDefaultConfigPath(), "Path to browserpilot.yaml")

	rootCmd.AddCommand(
		buildServeCmd(&configPath),
		buildRunCmd(&configPath),
		buildTraceCmd(),
		buildDoctorCmd(&configPath),
		buildPrefsCmd(&configPath),
	)
	return rootCmd
}

func resolveDefaultConfigPath() string {
	if v := os.Getenv("BROWSERPILOT_CONFIG"); v != "" {
		return v
	}
	return "browserpilot.yaml"
}
