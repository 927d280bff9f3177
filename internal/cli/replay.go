package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/luahost"
	"github.com/stjordanis/jsdares/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string `json:"session"`
	Name          string `json:"name"`
	Events        int    `json:"events"`
	Calls         int    `json:"calls"`
	TraceHash     string `json:"trace_hash"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored sessions and verify determinism",
		Long: `Re-run stored sessions from their program source and event log.

Each session is restored twice on fresh hosts and the content hashes of the
two traces are compared.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed
  2 - Command error (database not found, unknown session, etc.)

Examples:
  jsdares replay --db ./jsdares.db
  jsdares replay --db ./jsdares.db --session 0190c1e2-...
  jsdares replay --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $JSDARES_DB)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay this session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	var ids []string
	if opts.Session != "" {
		ids = []string{opts.Session}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(ids)),
		AllDeterministic: true,
	}
	replayOpts := store.ReplayOptions{Factory: luahost.Factory(luahost.Options{})}
	for _, id := range ids {
		r, err := st.ReplaySession(ctx, id, replayOpts)
		if errors.Is(err, store.ErrSessionNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", id))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		result.Sessions = append(result.Sessions, ReplaySessionResult{
			Session:       r.Session.ID,
			Name:          r.Session.Name,
			Events:        r.Events,
			Calls:         len(r.Trace),
			TraceHash:     r.Hashes[0],
			Deterministic: r.Deterministic(),
		})
		if !r.Deterministic() {
			result.AllDeterministic = false
		}
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	failure := ""
	if !result.AllDeterministic {
		failure = "non-deterministic replay detected"
	}
	if f.JSON() {
		if err := f.Respond(result, "E_NONDETERMINISTIC", failure); err != nil {
			return err
		}
	} else if len(result.Sessions) == 0 {
		f.Printf("No sessions found in database.\n")
	} else {
		for _, s := range result.Sessions {
			f.Printf("%s %s %s %s\n", f.Mark(s.Deterministic), s.Session, s.Name,
				f.Subtle(fmt.Sprintf("(%d events, %d calls, trace %s)", s.Events, s.Calls, shortHash(s.TraceHash))))
		}
	}

	if failure != "" {
		return NewExitError(ExitFailure, failure)
	}
	return nil
}

// openExisting opens a session database that must already exist.
func openExisting(path string) (*store.Store, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
