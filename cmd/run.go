package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/claude"
	"github.com/papapumpkin/debate/internal/codex"
	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/loop"
	"github.com/papapumpkin/debate/internal/session"
	"github.com/papapumpkin/debate/internal/source"
	"github.com/papapumpkin/debate/internal/telemetry"
	"github.com/papapumpkin/debate/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [content]",
	Short: "Run a debate session (same as the root command)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDebate,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// sessionPlan is everything decided before the session directory exists.
type sessionPlan struct {
	cfg       config.Config
	mode      judge.Mode
	scope     artifact.Scope
	ws        workspace
	selection loop.Selection
	backends  map[string]loop.Backend
	resolved  source.Resolved
}

func runDebate(cmd *cobra.Command, args []string) error {
	printer := ui.New()

	cfg, err := config.Load()
	if err != nil {
		return usageFailure(err)
	}
	if err := applyFlagOverrides(cmd, &cfg); err != nil {
		return usageFailure(err)
	}
	logger := newLogger(cfg.Verbose)

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	content := ""
	if len(args) > 0 {
		content = args[0]
	}
	artifactFile, _ := cmd.Flags().GetString("artifact-file")

	plan, err := prepare(ctx, cfg, printer, logger, content, artifactFile)
	if err != nil {
		return err
	}
	return execute(ctx, cmd, plan, printer, logger)
}

// prepare validates the request, selects backends, and resolves the initial
// artifact. Every failure here happens before any session state is written.
func prepare(ctx context.Context, cfg config.Config, printer *ui.Printer, logger *slog.Logger, content, artifactFile string) (sessionPlan, error) {
	plan := sessionPlan{cfg: cfg}

	mode, err := judge.ParseMode(cfg.Mode)
	if err != nil {
		return plan, usageFailure(err)
	}
	plan.mode = mode

	plan.scope = artifact.ParseScope(cfg.Scope)
	if err := plan.scope.Validate(); err != nil {
		return plan, usageFailure(err)
	}

	var target artifact.Kind
	if cfg.Target != "" && cfg.Target != "auto" {
		if target, err = artifact.ParseKind(cfg.Target); err != nil {
			return plan, usageFailure(err)
		}
	}

	if plan.ws, err = openWorkspace(ctx, cfg); err != nil {
		return plan, err
	}

	host := agent.HostBackend(os.LookupEnv)
	paths := map[string]string{agent.Claude: cfg.ClaudePath, agent.Codex: cfg.CodexPath}
	plan.selection, err = loop.SelectBackends(host, func(name string) bool {
		return agent.Available(paths[name])
	})
	opposite := agent.Opposite(host)
	if err != nil || plan.selection.FallbackLocal {
		printer.Warn(fmt.Sprintf("opposite backend '%s' unavailable; fallback to local '%s' critique.", opposite, host))
	}
	if err != nil {
		return plan, usageFailure(fmt.Errorf("local backend '%s' is unavailable: %w", host, err))
	}
	plan.backends = map[string]loop.Backend{
		agent.Claude: &claude.Invoker{ClaudePath: cfg.ClaudePath, Model: cfg.Model, Logger: logger},
		agent.Codex:  &codex.Invoker{CodexPath: cfg.CodexPath, Logger: logger},
	}

	plan.resolved, err = source.Resolve(ctx, source.Request{
		Content:      content,
		ArtifactFile: artifactFile,
		Target:       target,
		Scope:        plan.scope,
		WorkDir:      plan.ws.root,
		Repo:         plan.ws.repo,
		Stdin:        os.Stdin,
		Prompt:       os.Stderr,
	})
	if err != nil {
		return plan, usageFailure(err)
	}
	if cfg.TimeoutTooLow(plan.resolved.Artifact.Kind) {
		printer.Warn(fmt.Sprintf("backend-timeout-seconds is low for proposal/mixed reviews; recommend >=%d (default 600).",
			config.LowTimeoutSeconds))
	}
	return plan, nil
}

// execute creates the session directory and runs the debate.
func execute(ctx context.Context, cmd *cobra.Command, plan sessionPlan, printer *ui.Printer, logger *slog.Logger) error {
	cfg, initial := plan.cfg, plan.resolved.Artifact
	now := time.Now()
	id := session.NewID(now, os.Getpid())

	store, err := session.Create(plan.ws.baseDir, id)
	if err != nil {
		return err
	}
	if plan.resolved.Collected {
		if err := store.WriteCollected(plan.resolved.Diff, plan.resolved.Stat); err != nil {
			return err
		}
	}

	emitter, err := telemetry.NewEmitter(store.Path(session.EventsFile))
	if err != nil {
		printer.Warn(err.Error())
	}
	defer emitter.Close()

	idx, err := plan.ws.openHistory(ctx, cfg)
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		idx = nil
	}
	if idx != nil {
		defer idx.Close()
	}

	st := &session.State{
		SessionID:            id,
		StartedAt:            now,
		Target:               initial.Kind,
		Provenance:           string(initial.Provenance),
		Scope:                plan.scope.String(),
		Mode:                 string(plan.mode),
		MaxRounds:            cfg.MaxRounds,
		BudgetMinutes:        cfg.BudgetMinutes,
		WorkspaceRoot:        plan.ws.root,
		SessionDir:           store.Dir,
		HostBackend:          plan.selection.Host,
		Backend:              plan.selection.Primary,
		FallbackLocalBackend: plan.selection.FallbackLocal,
		Status:               session.StatusInProgress,
	}
	printer.SessionStart(id, plan.selection.Host, plan.selection.Primary, initial.Kind, store.Dir)
	recordHistory(ctx, idx, st, logger)

	debate := &loop.Loop{
		Backends:        plan.backends,
		Selection:       plan.selection,
		Recorder:        store,
		UI:              printer,
		Emitter:         emitter,
		Logger:          logger,
		Mode:            plan.mode,
		MaxRounds:       cfg.MaxRounds,
		Budget:          cfg.Budget(),
		Timeout:         cfg.BackendTimeout(),
		SkipMaterialize: cfg.SkipMaterializeOpposite,
		Scope:           plan.scope,
		WorkDir:         plan.ws.root,
		InRepo:          plan.ws.repo != nil,
	}
	if plan.mode == judge.ModeManual {
		debate.Prompter = ui.NewLinePrompter(os.Stdin, os.Stderr)
	}

	res, runErr := debate.Run(ctx, st, initial)
	if res == nil {
		return runErr
	}
	// The session is already closed; index it even when the context is done.
	recordHistory(context.WithoutCancel(ctx), idx, res.State, logger)

	fmt.Fprintln(os.Stderr, ui.SummaryBox(res.State, time.Now()))
	out := cmd.OutOrStdout()
	fmt.Fprint(out, res.Summary)
	fmt.Fprintf(out, "Saved: %s\n", store.Dir)
	return runErr
}
