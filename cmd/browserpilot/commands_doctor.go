package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/browserpilot/agent/internal/config"
	"github.com/browserpilot/agent/internal/gateway"
	"github.com/browserpilot/agent/internal/stats"
	"github.com/browserpilot/agent/internal/trace"
	"github.com/browserpilot/agent/pkg/models"
)

// buildDoctorCmd creates the "doctor" command: validates the config file
// and reports which providers have an API key configured and how many
// candidates each intelligence tier lists (providers are not contacted),
// adapted from the teacher's buildDoctorCmd (config validation plus
// channel/provider checks) without its workspace-repair and
// service-migration steps, which have no analogue here.
func buildDoctorCmd(configPath *string) *cobra.Command {
	var debugPort string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and report provider/pool health",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
			fmt.Fprintf(out, "Config OK: %s\n", *configPath)

			providerSet, err := cfg.Providers()
			if err != nil {
				return fmt.Errorf("provider setup failed: %w", err)
			}
			fmt.Fprintln(out, "Providers:")
			for _, hint := range []string{"anthropic", "openai"} {
				if _, ok := providerSet[hint]; ok {
					fmt.Fprintf(out, "  - %s: configured\n", hint)
				} else {
					fmt.Fprintf(out, "  - %s: not configured\n", hint)
				}
			}

			fmt.Fprintln(out, "Model catalog:")
			catalog := cfg.Catalog()
			for _, tier := range []models.Intelligence{models.IntelligenceHigh, models.IntelligenceMedium, models.IntelligenceLow} {
				fmt.Fprintf(out, "  - %s: %d candidate(s)\n", tier, len(catalog[tier]))
			}

			fmt.Fprintf(out, "Browser pool: max_instances=%d headless=%v\n", cfg.Browser.MaxInstances, cfg.Browser.Headless)
			fmt.Fprintf(out, "Trace store: %s\n", cfg.Trace.Path)

			if store, err := trace.Open(cfg.Trace.Path, nil); err == nil {
				defer store.Close()
				fmt.Fprintln(out, "Model health (last 5m, from trace store):")
				since := time.Now().Add(-5 * time.Minute)
				for _, tier := range catalog {
					for _, model := range tier {
						key := gateway.CandidateKey(model)
						successes, _ := store.StatSum(stats.PersistedCounterName(key, stats.CounterSuccess), since)
						errs, _ := store.StatSum(stats.PersistedCounterName(key, stats.CounterError), since)
						fmt.Fprintf(out, "  - %s: successes=%.0f errors=%.0f\n", model.Model, successes, errs)
					}
				}
			}

			if debugPort != "" {
				port, err := config.ParsePort(debugPort)
				if err != nil {
					return err
				}
				addr := fmt.Sprintf("127.0.0.1:%d", port)
				conn, dialErr := net.DialTimeout("tcp", addr, 2*time.Second)
				if dialErr != nil {
					fmt.Fprintf(out, "Remote debug port %d: unreachable (%v)\n", port, dialErr)
				} else {
					conn.Close()
					fmt.Fprintf(out, "Remote debug port %d: reachable\n", port)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&debugPort, "port", "", "Check reachability of a local CDP remote-debugging port")
	return cmd
}
