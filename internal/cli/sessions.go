package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
}

// SessionInfo describes one stored session.
type SessionInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Events int    `json:"events"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Long: `List the sessions stored in a database, oldest first.

Examples:
  jsdares sessions --db ./jsdares.db
  jsdares sessions --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $JSDARES_DB)")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		counts, err := st.EventCounts(ctx, s.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count events", err)
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		infos = append(infos, SessionInfo{ID: s.ID, Name: s.Name, Width: s.Width, Height: s.Height, Events: total})
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	if f.JSON() {
		return f.Respond(infos, "", "")
	}
	if len(infos) == 0 {
		f.Printf("No sessions found in database.\n")
		return nil
	}
	for _, s := range infos {
		f.Printf("%s  %-20s %s\n", s.ID, s.Name,
			f.Subtle(fmt.Sprintf("%dx%d, %d events", s.Width, s.Height, s.Events)))
	}
	return nil
}
