package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario and a program next to it.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.lua"), []byte("x = 1\n"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: all_steps
description: "Every step kind"
program: prog.lua
size: 200
offset: {x: 3, y: 4}
quiet_period: 10ms
steps:
  - key_down: 65
  - key_up: 65
  - pointer: {type: down, x: 1, y: 2}
  - advance: 1s
  - hover: {x: 5, y: 6}
  - highlight: true
  - highlight_all: false
  - edit: {program: prog.lua, keep: 0}
  - checkpoint: true
  - rerun: true
assertions:
  - type: log_length
    count: 0
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "all_steps", s.Name)
	assert.Equal(t, 200, s.Size)
	assert.Equal(t, &Point{X: 3, Y: 4}, s.Offset)
	assert.Equal(t, "x = 1\n", s.Source)
	require.Len(t, s.Steps, 10)
	assert.Equal(t, 65, *s.Steps[0].KeyDown)
	assert.Equal(t, 65, *s.Steps[1].KeyUp)
	assert.Equal(t, &PointerStep{Type: "down", X: 1, Y: 2}, s.Steps[2].Pointer)
	assert.Equal(t, "1s", s.Steps[3].Advance)
	assert.Equal(t, &Point{X: 5, Y: 6}, s.Steps[4].Hover)
	assert.True(t, *s.Steps[5].Highlight)
	assert.False(t, *s.Steps[6].HighlightAll)
	assert.Equal(t, "x = 1\n", s.Steps[7].Edit.Source)
	assert.True(t, s.Steps[8].Checkpoint)
	assert.True(t, s.Steps[9].Rerun)
	assert.Equal(t, []Assertion{{Type: AssertLogLength}}, s.Assertions)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingProgramFile(t *testing.T) {
	path := writeScenario(t, `
name: missing_program
program: elsewhere.lua
steps: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read program")
}

func TestValidateScenario_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty document", ``},
		{"not yaml", "name: [unterminated"},
		{"missing program", "name: x\nsteps: []\n"},
		{"bad name", "name: Has Spaces\nprogram: p.lua\nsteps: []\n"},
		{"unknown top-level key", "name: x\nprogram: p.lua\nsteps: []\nassertion: []\n"},
		{"two actions in one step", "name: x\nprogram: p.lua\nsteps:\n  - key_down: 1\n    key_up: 1\n"},
		{"unknown step", "name: x\nprogram: p.lua\nsteps:\n  - wiggle: 1\n"},
		{"bad pointer type", "name: x\nprogram: p.lua\nsteps:\n  - pointer: {type: drag, x: 1, y: 1}\n"},
		{"bad duration", "name: x\nprogram: p.lua\nsteps:\n  - advance: soon\n"},
		{"negative keep", "name: x\nprogram: p.lua\nsteps:\n  - edit: {program: p.lua, keep: -1}\n"},
		{"negative size", "name: x\nprogram: p.lua\nsize: -4\nsteps: []\n"},
		{"unknown assertion", "name: x\nprogram: p.lua\nsteps: []\nassertions:\n  - type: final_state\n"},
		{"trace_count without handler", "name: x\nprogram: p.lua\nsteps: []\nassertions:\n  - type: trace_count\n    count: 1\n"},
		{"empty trace_order", "name: x\nprogram: p.lua\nsteps: []\nassertions:\n  - type: trace_order\n    handlers: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScenario([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestValidateScenario_Accepts(t *testing.T) {
	err := ValidateScenario([]byte(`
name: ok
program: p.lua
steps:
  - key_down: 1
  - pointer: {type: move, x: 1, y: 1}
assertions:
  - type: no_errors
  - type: pick
    x: 1
    y: 2
    site: "main:1"
`))
	assert.NoError(t, err)
}

func TestParseScenario_ResolvesAgainstBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte("a = 1"), 0644))

	s, err := ParseScenario([]byte("name: x\nprogram: a.lua\nsteps: []\n"), dir)
	require.NoError(t, err)
	assert.Equal(t, "a = 1", s.Source)
}
