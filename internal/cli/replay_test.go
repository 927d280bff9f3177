package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/store"
)

func TestReplayRecordedSession(t *testing.T) {
	dbPath, id := recordSession(t)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	out, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--session", id)
	require.NoError(t, err, out)
	decodeJSON(t, out, &resp)

	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Sessions, 1)
	s := resp.Data.Sessions[0]
	assert.Equal(t, id, s.Session)
	assert.Equal(t, "keyboard_echo", s.Name)
	assert.Equal(t, 3, s.Events)
	assert.Equal(t, 3, s.Calls)
	assert.True(t, s.Deterministic)
	assert.Len(t, s.TraceHash, 64)
}

func TestReplayAllSessionsText(t *testing.T) {
	dbPath, id := recordSession(t)

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ "+id+" keyboard_echo")
	assert.Contains(t, out, "3 events, 3 calls")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in database.")
}

func TestReplayUnknownSession(t *testing.T) {
	dbPath, _ := recordSession(t)

	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "session not found: nope")
}

func TestReplayMissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestReplaySessionWrittenByStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "direct.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	sess, err := st.CreateSession(context.Background(), store.Session{
		Name:   "static",
		Source: squareProgram,
		Width:  50,
		Height: 50,
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	var resp struct {
		Data ReplayResult `json:"data"`
	}
	out, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--session", sess.ID)
	require.NoError(t, err, out)
	decodeJSON(t, out, &resp)
	require.Len(t, resp.Data.Sessions, 1)
	assert.Equal(t, 0, resp.Data.Sessions[0].Events)
	assert.True(t, resp.Data.Sessions[0].Deterministic)
}

const editedKeyboardProgram = `count = 100
function down(e)
  count = count - 1
  context.fillRect(count, 40, 4, 4)
end
document.onkeydown = down
`

const editScenario = `name: keyboard_edit
program: keyboard.lua
size: 100
steps:
  - key_down: 65
  - key_up: 65
  - edit:
      program: keyboard_v2.lua
      keep: 1
  - key_down: 66
assertions:
  - type: log_length
    count: 2
`

func TestReplayMatchesEditedRun(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"edit.yaml": editScenario})
	writeFiles(t, dir, map[string]string{"keyboard_v2.lua": editedKeyboardProgram})
	dbPath := filepath.Join(dir, "edit.db")

	var run struct {
		Data RunResult `json:"data"`
	}
	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), "--db", dbPath, filepath.Join(dir, "edit.yaml"))
	require.NoError(t, err, out)
	decodeJSON(t, out, &run)
	require.NotEmpty(t, run.Data.Session)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	sess, entries, err := st.ReadSession(context.Background(), run.Data.Session)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	assert.Equal(t, editedKeyboardProgram, sess.Source)
	assert.Len(t, entries, 2)

	var replay struct {
		Data ReplayResult `json:"data"`
	}
	out, err = execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--session", run.Data.Session)
	require.NoError(t, err, out)
	decodeJSON(t, out, &replay)
	require.Len(t, replay.Data.Sessions, 1)
	assert.True(t, replay.Data.Sessions[0].Deterministic)
	assert.Equal(t, run.Data.TraceHash, replay.Data.Sessions[0].TraceHash)
}

func TestRunLoadFailureDropsSession(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"keyboard.yaml": keyboardScenario})
	writeFiles(t, dir, map[string]string{"keyboard.lua": "function ("})
	dbPath := filepath.Join(dir, "failed.db")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", dbPath, filepath.Join(dir, "keyboard.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	sessions, err := st.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
