package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/debate/internal/config"
	"github.com/papapumpkin/debate/internal/session"
	"github.com/papapumpkin/debate/internal/telemetry"
)

var eventsCmd = &cobra.Command{
	Use:   "events [session-id]",
	Short: "View the JSONL event stream of a debate session",
	Long: `Reads and formats the events.jsonl file of a session.

Without a session id, the most recent session is used.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
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
	path := filepath.Join(dir, session.EventsFile)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	tail := &eventTail{r: bufio.NewReader(f)}
	done, err := tail.drain(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("events: read %s: %w", path, err)
	}

	if !follow || done {
		return nil
	}
	return tailFollow(cmd.Context(), cmd.OutOrStdout(), tail, path)
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until ctx is done, the watcher closes, or the session closes.
func tailFollow(ctx context.Context, w io.Writer, tail *eventTail, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			done, err := tail.drain(w)
			if err != nil {
				return fmt.Errorf("events: read %s: %w", path, err)
			}
			if done {
				return nil
			}
		}
	}
}

// eventTail reads JSONL events incrementally. A line without its newline is
// held back until the writer completes it.
type eventTail struct {
	r       *bufio.Reader
	partial string
}

// drain prints every complete line available and reports whether a
// session_done event was among them.
func (t *eventTail) drain(w io.Writer) (bool, error) {
	for {
		chunk, err := t.r.ReadString('\n')
		t.partial += chunk
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		line := strings.TrimSpace(t.partial)
		t.partial = ""
		if line == "" {
			continue
		}
		if kind := printEvent(w, line); kind == telemetry.KindSessionDone {
			return true, nil
		}
	}
}

// printEvent decodes a JSONL line, prints a human-readable representation,
// and returns the event kind.
func printEvent(w io.Writer, line string) string {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return ""
	}
	fmt.Fprintln(w, telemetry.Format(evt))
	return evt.Kind
}
