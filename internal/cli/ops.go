package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/render"
)

// OpInfo describes one drawing method of the canvas context.
type OpInfo struct {
	Name    string `json:"name"`
	MinArgs int    `json:"min_args"`
	MaxArgs int    `json:"max_args"`
	Example string `json:"example"`
	Draws   bool   `json:"draws"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops [method]...",
		Short: "List the drawing methods available to programs",
		Long: `List the methods of the canvas context object, or describe the named ones.

Methods marked "draws" produce geometry: each call gets a picking index and
can be highlighted.

Examples:
  jsdares ops
  jsdares ops fillRect arc --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runOps(opts *RootOptions, names []string, cmd *cobra.Command) error {
	if len(names) == 0 {
		names = render.OpNames()
	}
	infos := make([]OpInfo, 0, len(names))
	for _, name := range names {
		op, ok := render.LookupOp(name)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown drawing method: %s", name))
		}
		infos = append(infos, OpInfo{
			Name:    op.Name,
			MinArgs: op.MinArgs,
			MaxArgs: op.MaxArgs,
			Example: op.Example,
			Draws:   op.Draws,
		})
	}

	f := newFormatter(opts, cmd.OutOrStdout())
	if f.JSON() {
		return f.Respond(infos, "", "")
	}
	for _, op := range infos {
		arity := fmt.Sprintf("%d", op.MinArgs)
		if op.MaxArgs != op.MinArgs {
			arity = fmt.Sprintf("%d-%d", op.MinArgs, op.MaxArgs)
		}
		tag := ""
		if op.Draws {
			tag = " draws"
		}
		f.Printf("%-22s %s\n", op.Name, f.Subtle(fmt.Sprintf("(%s args%s) context.%s", arity, tag, op.Example)))
	}
	return nil
}
