package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const keyboardProgram = `count = 0
function down(e)
  count = count + 1
  print("down", e.keyCode, count)
  context.fillRect(count * 10, 10, 8, 8)
end
function up(e)
  print("up", e.keyCode)
end
document.onkeydown = down
document.onkeyup = up
`

const keyboardScenario = `name: keyboard_echo
program: keyboard.lua
size: 100
steps:
  - key_down: 65
  - key_up: 65
  - key_down: 66
assertions:
  - type: trace_count
    handler: down
    count: 2
  - type: log_length
    count: 3
  - type: no_errors
`

const failingScenario = `name: keyboard_wrong
program: keyboard.lua
size: 100
steps:
  - key_down: 65
assertions:
  - type: trace_count
    handler: down
    count: 5
`

const squareProgram = `context.fillStyle = "#ff0000"
context.fillRect(10, 10, 20, 20)
`

// writeFiles writes name/content pairs into dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// scenarioDir creates a directory holding the keyboard program and the
// given scenarios.
func scenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{"keyboard.lua": keyboardProgram}
	for name, content := range scenarios {
		files[name] = content
	}
	writeFiles(t, dir, files)
	return dir
}

// execute runs cmd with args, capturing output.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// recordSession runs the keyboard scenario into a fresh database and
// returns the database path and session id.
func recordSession(t *testing.T) (string, string) {
	t.Helper()
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})
	dbPath := filepath.Join(dir, "sessions.db")

	var result struct {
		Data RunResult `json:"data"`
	}
	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}),
		"--db", dbPath, filepath.Join(dir, "keyboard.yaml"))
	require.NoError(t, err, out)
	decodeJSON(t, out, &result)
	require.NotEmpty(t, result.Data.Session)
	return dbPath, result.Data.Session
}

// decodeJSON decodes a JSON response, failing the test on bad output.
func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}
