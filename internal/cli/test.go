package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stjordanis/jsdares/internal/harness"
	"github.com/stjordanis/jsdares/internal/ir"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run every scenario in a directory",
		Long: `Run every scenario file in a directory, check its assertions and compare
its snapshot with golden/<name>.golden next to the scenarios.

Scenarios without a golden file are judged by their assertions alone.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  jsdares test ./scenarios
  jsdares test ./scenarios --filter "pointer*"
  jsdares test ./scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		r := runTestScenario(opts, dir, file)
		result.Scenarios = append(result.Scenarios, r)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if !f.JSON() {
			printScenarioResult(f, r)
		}
	}

	failure := ""
	if result.Failed > 0 {
		failure = fmt.Sprintf("%d scenario(s) failed", result.Failed)
	}
	if f.JSON() {
		if err := f.Respond(result, "E_TEST_FAILED", failure); err != nil {
			return err
		}
	} else if result.Total == 0 {
		f.Printf("No scenarios found.\n")
	} else {
		f.Printf("\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		if failure == "" {
			f.Printf("%s All scenarios passed\n", f.Mark(true))
		}
	}

	if failure != "" {
		return NewExitError(ExitFailure, failure)
	}
	return nil
}

func printScenarioResult(f *OutputFormatter, r ScenarioResult) {
	suffix := ""
	if r.Golden == "updated" {
		suffix = " (golden updated)"
	}
	f.Printf("%s %s%s\n", f.Mark(r.Pass), r.Name, suffix)
	for _, e := range r.Errors {
		f.Printf("  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
	}
}

// findScenarioFiles finds all YAML scenario files under dir, in lexical
// order.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runTestScenario runs one scenario file and checks its golden file.
func runTestScenario(opts *TestOptions, dir, file string) ScenarioResult {
	s, err := loadScenario(opts.RootOptions, file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}
	result, err := harness.Run(s, harness.Options{})
	if err != nil {
		return ScenarioResult{
			Name:   s.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	r := ScenarioResult{Name: s.Name, Pass: result.Pass, Errors: result.Errors}
	data, err := ir.MarshalCanonical(harness.Snapshot(s.Name, result))
	if err != nil {
		r.Pass = false
		r.Errors = append(r.Errors, fmt.Sprintf("failed to encode snapshot: %v", err))
		return r
	}

	golden := goldenFilePath(dir, s.Name)
	if opts.Update {
		if err := writeGolden(golden, data); err != nil {
			r.Pass = false
			r.Errors = append(r.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return r
		}
		r.Golden = "updated"
		return r
	}

	want, err := os.ReadFile(golden)
	switch {
	case os.IsNotExist(err):
		r.Golden = "missing"
	case err != nil:
		r.Pass = false
		r.Errors = append(r.Errors, fmt.Sprintf("failed to read golden file: %v", err))
	case !bytes.Equal(want, data):
		r.Pass = false
		r.Errors = append(r.Errors, "trace does not match golden file (run with --update to regenerate)")
	default:
		r.Golden = "match"
	}
	return r
}

// goldenFilePath returns the golden file for a scenario named name.
func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
