package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/session"
	"github.com/papapumpkin/debate/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the record of a debate session",
	Long: `Prints the summary and per-round record of a session, read from its
metadata.toml. Without a session id the most recent session is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return usageFailure(err)
	}
	applyCommonOverrides(cmd, &cfg)

	ws, err := openWorkspace(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	dir, err := ws.sessionDir(id)
	if err != nil {
		return err
	}
	return showSession(cmd.OutOrStdout(), dir, time.Now())
}

// showSession prints the summary box, the round records and summary.md of
// the session stored in dir.
func showSession(out io.Writer, dir string, now time.Time) error {
	st, err := session.LoadState(dir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.SummaryBox(st, now))
	writeRounds(out, st)

	summary, err := os.ReadFile(filepath.Join(dir, session.SummaryFile))
	switch {
	case err == nil:
		fmt.Fprintf(out, "\n%s", summary)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading summary: %w", err)
	}
	fmt.Fprintf(out, "Saved: %s\n", dir)
	return nil
}

// writeRounds prints one block per round record.
func writeRounds(w io.Writer, st *session.State) {
	for _, r := range st.Rounds {
		fmt.Fprintf(w, "\nRound %d: %s (%s), judged %s\n", r.Round, r.Choice, r.Choice.Label(), r.JudgeRecommendation)
		fmt.Fprintf(w, "  reason:  %s\n", r.JudgeReason)
		backend := r.BackendUsed
		if r.BackendUnavailable {
			backend += " (opposite unavailable)"
		}
		if r.BackendError {
			backend += " (backend error)"
		}
		fmt.Fprintf(w, "  target:  %s via %s\n", r.Target, backend)
		fmt.Fprintf(w, "  counts:  P1=%d P2=%d P3=%d Missing=%d\n", len(r.P1), len(r.P2), len(r.P3), len(r.Missing))
		for _, item := range r.P1 {
			fmt.Fprintf(w, "  P1: %s\n", strings.TrimSpace(item))
		}
	}
}
