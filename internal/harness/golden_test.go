package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/ir"
)

func TestSnapshot_Canonical(t *testing.T) {
	s := &Scenario{
		Name: "snap",
		Source: `function down(e)
  print(e.keyCode)
end
document.onkeydown = down
`,
		Steps: []Step{{KeyDown: intp(9)}},
	}
	result, err := Run(s, Options{})
	require.NoError(t, err)

	data, err := ir.MarshalCanonical(Snapshot(s.Name, result))
	require.NoError(t, err)
	assert.Equal(t,
		`{"console":"9\n","log_length":1,"scenario":"snap","trace":[{"args":[{"keyCode":9}],"category":"keyboard","handler":"down","seq":1}]}`,
		string(data))
}

func TestSnapshot_StableAcrossRuns(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/pointer_interval.yaml")
	require.NoError(t, err)

	first, err := Run(s, Options{})
	require.NoError(t, err)
	second, err := Run(s, Options{})
	require.NoError(t, err)

	assert.Equal(t,
		ir.MustCanonical(Snapshot(s.Name, first)),
		ir.MustCanonical(Snapshot(s.Name, second)))
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/keyboard.yaml")
	require.NoError(t, err)
	result, err := Run(s, Options{})
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "keyboard_echo", result))
}
