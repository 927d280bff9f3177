package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/harness"
	"github.com/stjordanis/jsdares/internal/luahost"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenarios without running them",
		Long: `Check scenario files against the scenario schema and compile every program
they reference, without executing anything.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		v := validateFile(path)
		if !v.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, v)
	}

	f := newFormatter(opts, cmd.OutOrStdout())
	failure := ""
	if !result.Valid {
		failure = "validation failed"
	}
	if f.JSON() {
		if err := f.Respond(result, "E_INVALID_SCENARIO", failure); err != nil {
			return err
		}
	} else {
		for _, v := range result.Files {
			f.Printf("%s %s\n", f.Mark(v.Valid), v.Path)
			for _, e := range v.Errors {
				f.Printf("  %s\n", e)
			}
		}
	}

	if failure != "" {
		return NewExitError(ExitFailure, failure)
	}
	return nil
}

func validateFile(path string) FileValidation {
	v := FileValidation{Path: path, Valid: true}
	s, err := harness.LoadScenario(path)
	if err != nil {
		v.Valid = false
		v.Errors = append(v.Errors, err.Error())
		return v
	}

	sources := map[string]string{s.Program: s.Source}
	for _, st := range s.Steps {
		if st.Edit != nil {
			sources[st.Edit.Program] = st.Edit.Source
		}
	}
	for name, src := range sources {
		p, err := luahost.New(src, nil, luahost.Options{})
		if err != nil {
			v.Valid = false
			v.Errors = append(v.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		p.Close()
	}
	return v
}
