package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
)

func sampleTrace() []host.TraceEntry {
	key := ir.Array{ir.Object{"keyCode": ir.Int(65)}}
	return []host.TraceEntry{
		{Seq: 1, Category: input.CategoryKeyboard, Handler: "down", Args: key},
		{Seq: 2, Category: input.CategoryInterval, Handler: "tick", Args: ir.Array{}},
		{Seq: 3, Category: input.CategoryKeyboard, Handler: "up", Args: key},
		{Seq: 4, Category: input.CategoryKeyboard, Handler: "down", Args: key},
	}
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertTraceCount(trace, Assertion{Handler: "down", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Handler: "move", Count: 0}))

	err := assertTraceCount(trace, Assertion{Handler: "tick", Count: 3})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceCount, ae.Type)
	assert.Equal(t, "called 1 times", ae.Actual)
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertTraceOrder(trace, Assertion{Handlers: []string{"down", "tick", "up"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Handlers: []string{"down", "up"}}))

	err := assertTraceOrder(trace, Assertion{Handlers: []string{"up", "down"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "up (pos 3) should be before down (pos 1)")

	err = assertTraceOrder(trace, Assertion{Handlers: []string{"down", "move"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing handler: move")
}

func TestAssertNoErrors(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertNoErrors(trace))

	trace[2].Err = "boom"
	err := assertNoErrors(trace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "up failed at seq 3: boom")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertLogLength,
		Expected: "2 logged events",
		Actual:   "1 logged events",
		Trace:    sampleTrace()[:1],
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: log_length")
	assert.Contains(t, msg, "Expected: 2 logged events")
	assert.Contains(t, msg, "Full trace:")
	assert.Contains(t, msg, "[1] keyboard down")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()
	result.Entries = make([]input.Entry, 4)

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertLogLength, Count: 4},
		{Type: AssertTraceCount, Handler: "down", Count: 2},
		{Type: AssertNoErrors},
		{Type: AssertPick, X: 1, Y: 1, Site: "main:1"},
		{Type: "final_state"},
	})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "assertions[3]: pick needs a running scenario")
	assert.Contains(t, failures[1], `unknown assertion type "final_state"`)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("nope")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"nope"}, r.Errors)
}
