package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/browserpilot/agent/internal/trace"
)

// buildTraceCmd creates the "trace" command group: inspect JSONL trace
// exports of the Tracer-native AgentEvent stream, adapted from the
// teacher's "trace validate/stats/replay" group. It reads export files
// only; it neither writes exports nor opens the sqlite store.
func buildTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect JSONL trace exports",
		Long: `Inspect JSONL trace exports captured by the runtime's event stream.

Example workflow:
  browserpilot trace stats run.jsonl   # view computed statistics
  browserpilot trace show run.jsonl    # print every event`,
	}
	cmd.AddCommand(buildTraceStatsCmd(), buildTraceShowCmd())
	return cmd
}

func buildTraceStatsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Compute run statistics from a JSONL trace export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open trace file: %w", err)
			}
			defer f.Close()

			importer, err := trace.NewImporter(f)
			if err != nil {
				return fmt.Errorf("read trace: %w", err)
			}
			stats, err := trace.ReplayToStats(importer)
			if err != nil {
				return fmt.Errorf("compute stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(out, "Run Statistics: %s\n", stats.RunID)
			fmt.Fprintln(out, strings.Repeat("-", 40))
			fmt.Fprintf(out, "Duration:   %v\n", stats.Duration)
			fmt.Fprintf(out, "Tool calls: %d\n", stats.ToolCalls)
			fmt.Fprintf(out, "Errors:     %d\n", stats.Errors)
			fmt.Fprintln(out, "Events by type:")
			for eventType, count := range stats.EventsByType {
				fmt.Fprintf(out, "  %s: %d\n", eventType, count)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output statistics as JSON")
	return cmd
}

func buildTraceShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print every event in a JSONL trace export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open trace file: %w", err)
			}
			defer f.Close()

			importer, err := trace.NewImporter(f)
			if err != nil {
				return fmt.Errorf("read trace: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s\n", importer.RunID())
			for {
				event, err := importer.ReadEvent()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fmt.Errorf("read event: %w", err)
				}
				fmt.Fprintf(out, "[%d] %s trace=%s %v\n", event.Sequence, event.Type, event.TraceID, event.Payload)
			}
			return nil
		},
	}
	return cmd
}
