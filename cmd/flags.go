package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/ui"
)

// addRunFlags registers the session flags on a command that runs a debate.
func addRunFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("artifact-file", "", "read the artifact from this file")
	f.String("target", "", "artifact kind: auto, code, proposal, or mixed")
	f.String("scope", "", "git scope: uncommitted, commit:<id>, base:<ref>, range:<expr>, file:<path>")
	f.Int("max-rounds", 0, "maximum debate rounds")
	f.Int("budget-minutes", 0, "wall-clock budget for the session in minutes")
	f.String("mode", "", "auto or manual")
	f.Int("backend-timeout-seconds", 0, "timeout for a single backend call")
	f.Bool("skip-materialize-opposite", false, "record accept-opposite without generating the revision")
	f.Bool("no-history", false, "do not record the session in history.db")
}

// applyFlagOverrides applies explicitly set CLI flag values to the loaded
// config and validates the result.
func applyFlagOverrides(c *cobra.Command, cfg *config.Config) error {
	f := c.Flags()
	if f.Changed("target") {
		cfg.Target, _ = f.GetString("target")
	}
	if f.Changed("scope") {
		cfg.Scope, _ = f.GetString("scope")
	}
	if f.Changed("max-rounds") {
		cfg.MaxRounds, _ = f.GetInt("max-rounds")
	}
	if f.Changed("budget-minutes") {
		cfg.BudgetMinutes, _ = f.GetInt("budget-minutes")
	}
	if f.Changed("mode") {
		cfg.Mode, _ = f.GetString("mode")
	}
	if f.Changed("backend-timeout-seconds") {
		cfg.BackendTimeoutSeconds, _ = f.GetInt("backend-timeout-seconds")
	}
	if v, _ := f.GetBool("skip-materialize-opposite"); v {
		cfg.SkipMaterializeOpposite = true
	}
	if v, _ := f.GetBool("no-history"); v {
		cfg.History = false
	}
	applyCommonOverrides(c, cfg)
	return cfg.Validate()
}

// applyCommonOverrides applies the persistent flags every command shares.
func applyCommonOverrides(c *cobra.Command, cfg *config.Config) {
	if v, _ := c.Flags().GetString("state-dir"); v != "" {
		cfg.StateDir = v
	}
	if v, _ := c.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
}

// newLogger returns a debug text logger on stderr when verbose, otherwise a
// logger that discards everything.
func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
