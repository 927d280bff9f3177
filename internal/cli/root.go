package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Size overrides the canvas size of programs that do not set one.
	Size int

	// Config is read from the environment before any command runs.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jsdares CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "jsdares",
		Short: "jsdares - run, record and pick apart canvas programs",
		Long: `Run Lua canvas programs against scripted input, record the event log,
replay it deterministically and trace any pixel back to the call that drew it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid environment", err)
			}
			opts.Config = cfg
			return setupLogging(cmd.ErrOrStderr(), opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().IntVar(&opts.Size, "size", 0, "canvas size in pixels (default $JSDARES_SURFACE_SIZE)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewPickCommand(opts))
	cmd.AddCommand(NewOpsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// setupLogging installs the default slog handler. --verbose wins over
// JSDARES_LOG_LEVEL.
func setupLogging(w io.Writer, opts *RootOptions) error {
	level := slog.LevelWarn
	if opts.Config.LogLevel != "" {
		lvl, err := opts.Config.Level()
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid log level", err)
		}
		level = lvl
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// size returns the canvas size for programs that do not choose one. Zero
// leaves the host default.
func (o *RootOptions) size() int {
	if o.Size > 0 {
		return o.Size
	}
	return o.Config.SurfaceSize
}

// database returns the session database path, falling back to JSDARES_DB.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	return o.Config.DBPath
}
