package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/harness"
	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/ir"
	"github.com/stjordanis/jsdares/internal/render"
	"github.com/stjordanis/jsdares/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	Record    bool
	PNG       string
	ShadowPNG string
	Console   bool
}

// TraceLine is one addEvent call in command output.
type TraceLine struct {
	Seq      int64  `json:"seq"`
	Category string `json:"category"`
	Handler  string `json:"handler"`
	Args     string `json:"args"`
	Error    string `json:"error,omitempty"`
}

// RunResult holds the run command output.
type RunResult struct {
	Scenario  string      `json:"scenario"`
	Pass      bool        `json:"pass"`
	Events    int         `json:"events"`
	Runs      int         `json:"runs"`
	TraceHash string      `json:"trace_hash"`
	InputHash string      `json:"input_hash"`
	Trace     []TraceLine `json:"trace"`
	Errors    []string    `json:"errors,omitempty"`
	Console   string      `json:"console,omitempty"`
	Session   string      `json:"session,omitempty"`
	PNG       string      `json:"png,omitempty"`
	ShadowPNG string      `json:"shadow_png,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print its trace",
		Long: `Run an input-script scenario against its Lua program on virtual time.

The trace of handler calls is printed, assertions are checked and the final
event log can be stored as a session for later replay.

Exit codes:
  0 - Scenario passed
  1 - A step or assertion failed
  2 - Command error (unreadable scenario, program does not load, etc.)

Examples:
  jsdares run scenarios/keyboard.yaml
  jsdares run scenarios/keyboard.yaml --db ./jsdares.db
  jsdares run scenarios/keyboard.yaml --png out.png --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "store the session in this SQLite database")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "store the session in $JSDARES_DB")
	cmd.Flags().StringVar(&opts.PNG, "png", "", "write the final canvas to this PNG file")
	cmd.Flags().StringVar(&opts.ShadowPNG, "shadow-png", "", "write the index-colored shadow surface to this PNG file")
	cmd.Flags().BoolVar(&opts.Console, "console", false, "stream program output while running")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()

	s, err := loadScenario(opts.RootOptions, path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runOpts := harness.Options{}
	if opts.Console && opts.Format == "text" {
		runOpts.Console = cmd.ErrOrStderr()
	}

	var sessionID string
	if opts.Database != "" || opts.Record {
		st, sess, err := openRecording(ctx, opts.database(opts.Database), s)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to store session", err)
		}
		defer st.Close()
		runOpts.Recorder = st.Recorder(ctx, sess.ID)
		sessionID = sess.ID
		defer func() {
			if sessionID == "" {
				_ = st.DeleteSession(ctx, sess.ID)
			}
		}()
	}

	result, err := harness.Run(s, runOpts)
	if err != nil {
		sessionID = ""
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	out := RunResult{
		Scenario:  s.Name,
		Pass:      result.Pass,
		Events:    result.LogLength(),
		Runs:      result.Runs,
		TraceHash: host.TraceHash(result.Trace),
		InputHash: result.Fingerprint,
		Trace:     traceLines(result.Trace),
		Errors:    result.Errors,
		Console:   result.Console,
		Session:   sessionID,
	}
	if opts.PNG != "" {
		if err := writePNG(opts.PNG, result.Renderer.Visible()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write PNG", err)
		}
		out.PNG = opts.PNG
	}
	if opts.ShadowPNG != "" {
		if err := writePNG(opts.ShadowPNG, result.Renderer.Shadow()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write shadow PNG", err)
		}
		out.ShadowPNG = opts.ShadowPNG
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	if f.JSON() {
		failure := ""
		if !out.Pass {
			failure = fmt.Sprintf("scenario %s failed", s.Name)
		}
		if err := f.Respond(out, "E_SCENARIO_FAILED", failure); err != nil {
			return err
		}
	} else {
		printRunText(f, out)
	}

	if !out.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", s.Name))
	}
	return nil
}

func printRunText(f *OutputFormatter, out RunResult) {
	f.Printf("%s %s %s\n", f.Mark(out.Pass), out.Scenario,
		f.Subtle(fmt.Sprintf("(%d events, %d runs, trace %s, input %s)",
			out.Events, out.Runs, shortHash(out.TraceHash), shortHash(out.InputHash))))
	for _, line := range out.Trace {
		f.Printf("  [%d] %-8s %s %s", line.Seq, line.Category, line.Handler, line.Args)
		if line.Error != "" {
			f.Printf("  error: %s", line.Error)
		}
		f.Printf("\n")
	}
	for _, e := range out.Errors {
		f.Printf("  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
	}
	if out.Session != "" {
		f.Printf("session %s\n", out.Session)
	}
	if out.PNG != "" {
		f.Printf("canvas written to %s\n", out.PNG)
	}
	if out.ShadowPNG != "" {
		f.Printf("shadow written to %s\n", out.ShadowPNG)
	}
}

// loadScenario loads a scenario and fills in the size and quiet period from
// the global options when the scenario leaves them unset.
func loadScenario(opts *RootOptions, path string) (*harness.Scenario, error) {
	s, err := harness.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	if s.Size == 0 {
		s.Size = opts.size()
	}
	if s.QuietPeriod == "" && opts.Config.QuietPeriod > 0 {
		s.QuietPeriod = opts.Config.QuietPeriod.String()
	}
	return s, nil
}

func traceLines(trace []host.TraceEntry) []TraceLine {
	lines := make([]TraceLine, 0, len(trace))
	for _, e := range trace {
		lines = append(lines, TraceLine{
			Seq:      e.Seq,
			Category: string(e.Category),
			Handler:  e.Handler,
			Args:     string(ir.MustCanonical(e.Encode()["args"])),
			Error:    e.Err,
		})
	}
	return lines
}

// openRecording opens the session database and creates the session a run
// records into. The program and events are written live by the host.
func openRecording(ctx context.Context, path string, s *harness.Scenario) (*store.Store, store.Session, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, store.Session{}, err
	}
	size := s.Size
	if size <= 0 {
		size = host.DefaultSize
	}
	sess, err := st.CreateSession(ctx, store.Session{
		Name:   s.Name,
		Source: s.Source,
		Width:  size,
		Height: size,
	})
	if err != nil {
		st.Close()
		return nil, store.Session{}, err
	}
	return st, sess, nil
}

func writePNG(path string, surface *render.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := surface.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
