package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsListsRecorded(t *testing.T) {
	dbPath, id := recordSession(t)

	out, err := execute(NewSessionsCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "keyboard_echo")
	assert.Contains(t, out, "100x100, 3 events")

	var resp struct {
		Data []SessionInfo `json:"data"`
	}
	out, err = execute(NewSessionsCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err, out)
	decodeJSON(t, out, &resp)
	assert.Equal(t, []SessionInfo{{ID: id, Name: "keyboard_echo", Width: 100, Height: 100, Events: 3}}, resp.Data)
}

func TestSessionsMissingDatabase(t *testing.T) {
	_, err := execute(NewSessionsCommand(&RootOptions{Format: "text"}), "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSessionsRejectsArgs(t *testing.T) {
	_, err := execute(NewSessionsCommand(&RootOptions{Format: "text"}), "extra")
	require.Error(t, err)
}
