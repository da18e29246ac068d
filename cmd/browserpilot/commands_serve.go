package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/browserpilot/agent/internal/actions"
	"github.com/browserpilot/agent/internal/browserstate"
	"github.com/browserpilot/agent/internal/config"
	"github.com/browserpilot/agent/internal/gateway"
	"github.com/browserpilot/agent/internal/runtime"
	"github.com/browserpilot/agent/internal/stats"
	"github.com/browserpilot/agent/internal/trace"
)

// buildServeCmd creates the "serve" command: it boots the gateway, the
// browser pool and bridge, and the built-in Action registry, then blocks
// until interrupted. Adapted from the teacher's buildServeCmd, collapsed
// to this module's single long-running process (no channel adapters).
func buildServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway, browser pool, and bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			deps, err := buildDependencies(cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			slog.Info("browserpilot serving",
				"actions", deps.registry.Names(),
				"browser_max_instances", cfg.Browser.MaxInstances,
				"trace_path", cfg.Trace.Path,
			)
			<-ctx.Done()
			slog.Info("shutting down")
			return nil
		},
	}
}

// dependencies bundles the process-lifetime collaborators serve and run
// both need, so each owns exactly one construction path.
type dependencies struct {
	store      *trace.Store
	pool       *browserstate.Pool
	registry   *runtime.Registry
	executor   *runtime.Executor
	pageSource *browserstate.PlaywrightPageSource
	statsReg   *stats.Registry
}

func (d *dependencies) Close() {
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.pool != nil {
		_ = d.pool.Close()
	}
}

func buildDependencies(cfg *config.Config) (*dependencies, error) {
	providerSet, err := cfg.Providers()
	if err != nil {
		return nil, err
	}

	store, err := trace.Open(cfg.Trace.Path, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("open trace store: %w", err)
	}

	// The gateway's skip/circuit decisions read from a Stats Counter
	// registry durably backed by the trace store's stats table, so skip
	// history survives a restart instead of resetting every process.
	statsReg := stats.NewWithSink(store)
	gw := gateway.NewWithStats(cfg.Catalog(), providerSet, statsReg)

	pool, err := browserstate.NewPool(cfg.BrowserPoolConfig())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("start browser pool: %w", err)
	}

	tabRegistry := browserstate.NewRegistry()
	pageSource := browserstate.NewPlaywrightPageSource()
	bridge := browserstate.NewBridge(tabRegistry, pageSource)

	summaryPrompt, _, err := store.GetPreference(summarizeSystemPromptPrefKey)
	if err != nil {
		_ = pool.Close()
		_ = store.Close()
		return nil, fmt.Errorf("read summarize_system_prompt preference: %w", err)
	}

	actionRegistry := runtime.NewRegistry()
	actionRegistry.Register(actions.NewExtractPageAction(bridge, cfg.DOMCleanConfig()))
	actionRegistry.Register(actions.NewSummarizePageAction(summaryPrompt))

	executor := runtime.NewExecutor(actionRegistry, gw, store)

	return &dependencies{
		store:      store,
		pool:       pool,
		registry:   actionRegistry,
		executor:   executor,
		pageSource: pageSource,
		statsReg:   statsReg,
	}, nil
}
