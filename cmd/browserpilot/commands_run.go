package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/browserpilot/agent/internal/config"
	"github.com/browserpilot/agent/internal/runtime"
)

// buildRunCmd creates the "run" command: it executes one registered Action
// against a JSON input, non-interactively, and prints the resulting
// context as JSON.
func buildRunCmd(configPath *string) *cobra.Command {
	var inputJSON string

	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Execute a single registered Action and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actionName := args[0]

			var input map[string]any
			if inputJSON != "" {
				if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
					return fmt.Errorf("parse --input: %w", err)
				}
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			deps, err := buildDependencies(cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			action, err := deps.registry.Lookup(actionName)
			if err != nil {
				return err
			}

			result, err := deps.executor.ExecuteAction(cmd.Context(), action, input, runtime.NewRootTraceID())
			if err != nil {
				return fmt.Errorf("action %q failed: %w", actionName, err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&inputJSON, "input", "", "JSON object to seed the Action's context")
	return cmd
}
