package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/ir"
)

// Snapshot is the canonical form of a scenario outcome compared against
// golden files.
func Snapshot(name string, result *Result) ir.Object {
	return ir.Object{
		"scenario":   ir.String(name),
		"trace":      host.EncodeTrace(result.Trace),
		"log_length": ir.Int(result.LogLength()),
		"console":    ir.String(result.Console),
	}
}

// RunWithGolden executes a scenario and compares its canonical snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(s, Options{})
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, s.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(name, result))
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
