package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/history"
	"github.com/papapumpkin/debate/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past debate sessions, newest first",
	Long: `Lists sessions from the history index in the session base directory.
When the index is disabled or missing, session directories are scanned instead.`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntP("limit", "n", 20, "maximum sessions to list (0 for all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return usageFailure(err)
	}
	applyCommonOverrides(cmd, &cfg)
	limit, _ := cmd.Flags().GetInt("limit")

	ws, err := openWorkspace(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var entries []history.Entry
	idx, err := ws.openHistory(cmd.Context(), cfg)
	switch {
	case err != nil:
		newLogger(cfg.Verbose).Warn("history unavailable, scanning session dirs", "error", err)
		fallthrough
	case idx == nil:
		entries, err = scanSessions(ws.baseDir, limit)
	default:
		defer idx.Close()
		entries, err = idx.List(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no sessions in %s\n", ws.baseDir)
		return nil
	}
	return printSessions(cmd.OutOrStdout(), entries)
}

// scanSessions builds entries from the metadata of session directories.
// Directories whose metadata cannot be read are skipped.
func scanSessions(baseDir string, limit int) ([]history.Entry, error) {
	ids, err := session.List(baseDir)
	if err != nil {
		return nil, err
	}
	var entries []history.Entry
	for _, id := range ids {
		if limit > 0 && len(entries) >= limit {
			break
		}
		st, err := session.LoadState(filepath.Join(baseDir, id))
		if err != nil {
			continue
		}
		entries = append(entries, history.EntryFromState(st))
	}
	return entries, nil
}

func printSessions(w io.Writer, entries []history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTARTED\tTARGET\tBACKEND\tROUNDS\tSTATUS\tDECISION")
	for _, e := range entries {
		backend := e.Backend
		if e.FallbackLocal {
			backend += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.SessionID, humanize.Time(e.StartedAt), e.Target, backend, e.Rounds, e.Status, e.FinalDecision)
	}
	return tw.Flush()
}
