package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/browserpilot/agent/internal/config"
	"github.com/browserpilot/agent/internal/trace"
)

// summarizeSystemPromptPrefKey is the one preference key this module's
// built-in Actions actually read (NewSummarizePageAction's override); the
// "prefs" subcommand otherwise treats keys as an opaque free-form store.
const summarizeSystemPromptPrefKey = "summarize_system_prompt"

func buildPrefsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Get or set a free-form user preference in the trace store",
	}
	cmd.AddCommand(buildPrefsGetCmd(configPath), buildPrefsSetCmd(configPath))
	return cmd
}

func buildPrefsGetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a preference's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefsStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			value, ok, err := store.GetPreference(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no preference set for key %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func buildPrefsSetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference's value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPrefsStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetPreference(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %q\n", args[0])
			return nil
		},
	}
}

func openPrefsStore(configPath string) (*trace.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	store, err := trace.Open(cfg.Trace.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("open trace store: %w", err)
	}
	return store, nil
}
