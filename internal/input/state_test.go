package input_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
)

func TestState_EncodeDecode(t *testing.T) {
	s := input.State{
		KeyDown: input.Handler{Name: "down"},
		Pointer: map[input.PointerSlot]input.Handler{
			{Surface: "canvas", Kind: input.PointerUp}:   {Name: "release"},
			{Surface: "canvas", Kind: input.PointerMove}: {Name: "move"},
		},
		Interval:       input.Handler{Name: "tick"},
		IntervalPeriod: 30 * time.Millisecond,
	}

	obj := s.Encode()
	assert.Equal(t, ir.Null{}, obj["keyup"])
	assert.Equal(t, ir.Int(30), obj["interval_ms"])
	pointer := obj["pointer"].(ir.Array)
	require.Len(t, pointer, 2)
	assert.Equal(t, ir.String("move"), pointer[0].(ir.Object)["type"])

	got, err := input.DecodeState(obj)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, s.Hash(), got.Hash())
}

func TestState_EncodeIsCanonical(t *testing.T) {
	a := input.State{Pointer: map[input.PointerSlot]input.Handler{
		{Surface: "b", Kind: input.PointerDown}: {Name: "x"},
		{Surface: "a", Kind: input.PointerDown}: {Name: "y"},
	}}
	b := a.Clone()
	assert.Equal(t, ir.MustCanonical(a.Encode()), ir.MustCanonical(b.Encode()))
	assert.NotEqual(t, a.Hash(), input.State{}.Hash())
}

func TestDecodeState_Errors(t *testing.T) {
	_, err := input.DecodeState(ir.Object{})
	assert.Error(t, err)

	obj := input.State{}.Encode()
	obj["pointer"] = ir.Array{ir.Object{"surface": ir.String("c"), "type": ir.String("hover"), "handler": ir.String("h")}}
	_, err = input.DecodeState(obj)
	assert.Error(t, err)
}

func TestEntry_Handler(t *testing.T) {
	e := input.Entry{
		Event:     input.KeyEvent(input.KeyUp, 3),
		Preceding: input.State{KeyUp: input.Handler{Name: "up"}},
	}
	assert.Equal(t, "up", e.Handler().Name)

	e.Event = input.IntervalEvent()
	assert.False(t, e.Handler().Declared())
}
