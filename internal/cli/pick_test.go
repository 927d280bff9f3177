package cli

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/render"
)

func TestPickFindsCall(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"square.lua": squareProgram})
	path := filepath.Join(dir, "square.lua")
	first := render.NewIndexer().Advance()

	out, err := execute(NewPickCommand(&RootOptions{Format: "text", Size: 50}), "--x", "15", "--y", "15", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, fmt.Sprintf("✓ #%d fillRect[10 10 20 20]", first))
	assert.Contains(t, out, "main:2")

	var resp struct {
		Data PickResult `json:"data"`
	}
	out, err = execute(NewPickCommand(&RootOptions{Format: "json", Size: 50}), "--x", "15", "--y", "15", path)
	require.NoError(t, err, out)
	decodeJSON(t, out, &resp)
	assert.Equal(t, first, resp.Data.Index)
	assert.Equal(t, "fillRect", resp.Data.Op)
	assert.Equal(t, []float64{10, 10, 20, 20}, resp.Data.Args)
	assert.Equal(t, []string{"main:2"}, resp.Data.Sites)
}

func TestPickEmptyPixel(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"square.lua": squareProgram})

	out, err := execute(NewPickCommand(&RootOptions{Format: "text", Size: 50}),
		"--x", "45", "--y", "45", filepath.Join(dir, "square.lua"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "no drawing call at (45, 45)")
	assert.Contains(t, out, "nothing drawn at (45, 45)")
}

func TestPickProgramErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.lua": "error(\"boom\")\n"})

	_, err := execute(NewPickCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "bad.lua"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load program")

	_, err = execute(NewPickCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "missing.lua"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to read program")
}
