package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenarioText(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "keyboard.yaml"))
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ keyboard_echo")
	assert.Contains(t, out, "3 events, 1 runs")
	assert.Contains(t, out, `[1] keyboard down [{"keyCode":65}]`)
	assert.Contains(t, out, `[2] keyboard up [{"keyCode":65}]`)
	assert.Contains(t, out, `[3] keyboard down [{"keyCode":66}]`)
	assert.NotContains(t, out, "session")
}

func TestRunScenarioJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), filepath.Join(dir, "keyboard.yaml"))
	require.NoError(t, err, out)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	decodeJSON(t, out, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "keyboard_echo", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, 3, resp.Data.Events)
	assert.Len(t, resp.Data.TraceHash, 64)
	assert.Len(t, resp.Data.InputHash, 64)
	assert.NotEqual(t, resp.Data.TraceHash, resp.Data.InputHash)
	require.Len(t, resp.Data.Trace, 3)
	assert.Equal(t, "up", resp.Data.Trace[1].Handler)
	assert.Equal(t, "down\t65\t1\nup\t65\ndown\t66\t2\n", resp.Data.Console)
}

func TestRunTraceHashIsStable(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})

	hash := func() string {
		var resp struct {
			Data RunResult `json:"data"`
		}
		out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), filepath.Join(dir, "keyboard.yaml"))
		require.NoError(t, err, out)
		decodeJSON(t, out, &resp)
		return resp.Data.TraceHash
	}
	assert.Equal(t, hash(), hash())
}

func TestRunFailingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wrong.yaml": failingScenario})

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "wrong.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario keyboard_wrong failed")
	assert.Contains(t, out, "✗ keyboard_wrong")
	assert.Contains(t, out, "Assertion failed")
}

func TestRunMissingScenario(t *testing.T) {
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRunRequiresScenarioArg(t *testing.T) {
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunWritesPNG(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})
	pngPath := filepath.Join(dir, "canvas.png")
	shadowPath := filepath.Join(dir, "shadow.png")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}),
		"--png", pngPath, "--shadow-png", shadowPath, filepath.Join(dir, "keyboard.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "canvas written to "+pngPath)
	assert.Contains(t, out, "shadow written to "+shadowPath)

	for _, path := range []string{pngPath, shadowPath} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, "\x89PNG", string(data[:4]))
	}
}

func TestRunStoresSession(t *testing.T) {
	dbPath, id := recordSession(t)

	_, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestRunRecordUsesConfiguredDatabase(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})
	opts := &RootOptions{Format: "text"}
	opts.Config.DBPath = filepath.Join(dir, "configured.db")

	out, err := execute(NewRunCommand(opts), "--record", filepath.Join(dir, "keyboard.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "session ")

	_, err = os.Stat(opts.Config.DBPath)
	assert.NoError(t, err)
}
