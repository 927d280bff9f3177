package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandWithoutGolden(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ keyboard_echo")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "--update", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "keyboard_echo (golden updated)")

	golden := filepath.Join(dir, "golden", "keyboard_echo.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"keyboard_echo"`)

	var resp struct {
		Data TestResult `json:"data"`
	}
	out, err = execute(NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err, out)
	decodeJSON(t, out, &resp)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)
	assert.Equal(t, 1, resp.Data.Passed)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"keyboard.yaml":               keyboardScenario,
		"golden/keyboard_echo.golden": `{"scenario":"keyboard_echo","trace":[]}`,
	})

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"keyboard.yaml": keyboardScenario,
		"wrong.yaml":    failingScenario,
	})

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, "1 scenario(s) failed", err.Error())
	assert.Contains(t, out, "✗ keyboard_wrong")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"keyboard.yaml": keyboardScenario,
		"wrong.yaml":    failingScenario,
	})

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "--filter", "key*", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "keyboard_wrong")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandMissingDir(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.yaml":          "",
		"a.yml":           "",
		"nested/c.yaml":   "",
		"notes.txt":       "",
		"golden/a.golden": "",
	})

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}
