package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/claude"
	"github.com/papapumpkin/debate/internal/codex"
	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/loop"
)

// versionTimeout bounds each --version probe.
const versionTimeout = 20 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which review backends are available",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// versioner is a backend CLI that can report its version.
type versioner interface {
	Validate(ctx context.Context) (string, error)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return usageFailure(err)
	}
	applyCommonOverrides(cmd, &cfg)
	logger := newLogger(cfg.Verbose)

	clis := map[string]versioner{
		agent.Claude: &claude.Invoker{ClaudePath: cfg.ClaudePath, Logger: logger},
		agent.Codex:  &codex.Invoker{CodexPath: cfg.CodexPath, Logger: logger},
	}
	host := agent.HostBackend(os.LookupEnv)
	return diagnose(cmd.Context(), os.Stderr, host, clis)
}

// diagnose probes both backends, reports the routing a session would use,
// and fails when no backend can run.
func diagnose(ctx context.Context, w io.Writer, host string, clis map[string]versioner) error {
	fmt.Fprintf(w, "host backend:     %s\n", host)
	fmt.Fprintf(w, "opposite backend: %s\n", agent.Opposite(host))

	ok := make(map[string]bool)
	for _, name := range []string{agent.Claude, agent.Codex} {
		probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
		version, err := clis[name].Validate(probeCtx)
		cancel()
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", name, err)
			continue
		}
		ok[name] = true
		fmt.Fprintf(w, "✓ %s CLI found (%s)\n", name, version)
	}

	sel, err := loop.SelectBackends(host, func(name string) bool { return ok[name] })
	switch {
	case errors.Is(err, loop.ErrNoBackend):
		return fmt.Errorf("no usable backend: install claude or codex")
	case err != nil:
		return err
	case sel.FallbackLocal:
		fmt.Fprintf(w, "critiques will fall back to the local %s backend\n", sel.Primary)
	default:
		fmt.Fprintf(w, "critiques will come from %s\n", sel.Primary)
	}
	return nil
}
