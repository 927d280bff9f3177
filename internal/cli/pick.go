package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/luahost"
)

// PickOptions holds flags for the pick command.
type PickOptions struct {
	*RootOptions
	X int
	Y int
}

// PickResult describes the drawing call under a pixel.
type PickResult struct {
	Program string    `json:"program"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Index   int       `json:"index"`
	Op      string    `json:"op,omitempty"`
	Args    []float64 `json:"args,omitempty"`
	Sites   []string  `json:"sites"`
}

// NewPickCommand creates the pick command.
func NewPickCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PickOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pick <program.lua>",
		Short: "Find the drawing call under a canvas pixel",
		Long: `Run a program once and report which drawing call produced the pixel at
(x, y), together with the source location of that call.

Exit codes:
  0 - A call was found
  1 - No drawing call covers the pixel
  2 - Command error (missing file, program error, etc.)

Examples:
  jsdares pick ./square.lua --x 12 --y 12
  jsdares pick ./square.lua --x 12 --y 12 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.X, "x", 0, "canvas x coordinate")
	cmd.Flags().IntVar(&opts.Y, "y", 0, "canvas y coordinate")

	return cmd
}

func runPick(opts *PickOptions, path string, cmd *cobra.Command) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read program %s", path), err)
	}

	size := opts.size()
	h := host.New(luahost.Factory(luahost.Options{}), host.Config{Width: size, Height: size})
	defer h.Close()

	if err := h.Load(string(src)); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load program %s", path), err)
	}
	if err := h.SetHighlighting(true); err != nil {
		return WrapExitError(ExitCommandError, "failed to enable highlighting", err)
	}
	idx, err := h.Hover(opts.X, opts.Y)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to pick", err)
	}

	result := PickResult{Program: path, X: opts.X, Y: opts.Y, Index: idx, Sites: []string{}}
	for _, c := range h.Renderer().Calls() {
		if idx != 0 && c.Index == idx {
			result.Op = c.Op
			result.Args = c.Args
			break
		}
	}
	seen := map[string]bool{}
	for _, s := range h.Sites() {
		if !seen[string(s)] {
			seen[string(s)] = true
			result.Sites = append(result.Sites, string(s))
		}
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	failure := ""
	if idx == 0 {
		failure = fmt.Sprintf("no drawing call at (%d, %d)", opts.X, opts.Y)
	}
	if f.JSON() {
		if err := f.Respond(result, "E_NO_CALL", failure); err != nil {
			return err
		}
	} else if idx == 0 {
		f.Printf("%s nothing drawn at (%d, %d)\n", f.Mark(false), opts.X, opts.Y)
	} else {
		f.Printf("%s #%d %s%v\n", f.Mark(true), result.Index, result.Op, result.Args)
		for _, s := range result.Sites {
			f.Printf("  %s\n", s)
		}
	}

	if failure != "" {
		return NewExitError(ExitFailure, failure)
	}
	return nil
}
