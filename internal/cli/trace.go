package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
	"github.com/stjordanis/jsdares/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Handler  string // optional - filter to one handler
}

// StoredEvent is one entry of a stored event log.
type StoredEvent struct {
	Seq     int    `json:"seq"`
	Kind    string `json:"kind"`
	Handler string `json:"handler"`
	Event   string `json:"event"`
	State   string `json:"state"`
}

// TraceResult holds the trace command output.
type TraceResult struct {
	Session  string         `json:"session"`
	Name     string         `json:"name"`
	Timeline []StoredEvent  `json:"timeline"`
	Counts   map[string]int `json:"counts"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the event log of a stored session",
		Long: `Show the stored event log of a session: every delivered event with the
handler it reached and the registry state captured before it.

Examples:
  jsdares trace --db ./jsdares.db --session 0190c1e2-...
  jsdares trace --session 0190c1e2-... --handler down
  jsdares trace --session 0190c1e2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $JSDARES_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Handler, "handler", "", "only show events delivered to this handler")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	sess, entries, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, store.ErrSessionNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	counts, err := st.EventCounts(ctx, sess.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count events", err)
	}

	result := TraceResult{
		Session:  sess.ID,
		Name:     sess.Name,
		Timeline: storedEvents(entries, opts.Handler),
		Counts:   make(map[string]int, len(counts)),
	}
	for cat, n := range counts {
		result.Counts[string(cat)] = n
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	if f.JSON() {
		return f.Respond(result, "", "")
	}

	f.Printf("Session %s (%s)\n\n", result.Session, result.Name)
	if len(result.Timeline) == 0 {
		f.Printf("No events.\n")
	}
	for _, e := range result.Timeline {
		f.Printf("  [%d] %-8s %s %s\n", e.Seq, e.Kind, e.Handler, e.Event)
		if opts.Verbose {
			f.Printf("       %s\n", f.Subtle(e.State))
		}
	}
	cats := make([]string, 0, len(result.Counts))
	for c := range result.Counts {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	f.Printf("\nStats:\n")
	for _, c := range cats {
		f.Printf("  %-10s %d\n", c+":", result.Counts[c])
	}
	return nil
}

func storedEvents(entries []input.Entry, handler string) []StoredEvent {
	out := []StoredEvent{}
	for i, e := range entries {
		h := e.Handler().Name
		if handler != "" && h != handler {
			continue
		}
		out = append(out, StoredEvent{
			Seq:     i,
			Kind:    string(e.Event.Category()),
			Handler: h,
			Event:   string(ir.MustCanonical(e.Event.Encode())),
			State:   string(ir.MustCanonical(e.Preceding.Encode())),
		})
	}
	return out
}

// requireFile fails with a command error when path does not exist.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	return nil
}
