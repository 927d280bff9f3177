package store

import (
	"fmt"

	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
)

// marshalEvent converts an event to canonical JSON TEXT.
func marshalEvent(ev input.Event) (string, error) {
	data, err := ir.MarshalCanonical(ev.Encode())
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(data), nil
}

// marshalState converts a registry state to canonical JSON TEXT.
func marshalState(st input.State) (string, error) {
	data, err := ir.MarshalCanonical(st.Encode())
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

func unmarshalObject(data, what string) (ir.Object, error) {
	v, err := ir.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", what, err)
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, fmt.Errorf("unmarshal %s: expected object, got %T", what, v)
	}
	return obj, nil
}

func unmarshalEvent(data string) (input.Event, error) {
	obj, err := unmarshalObject(data, "event")
	if err != nil {
		return input.Event{}, err
	}
	return input.DecodeEvent(obj)
}

func unmarshalState(data string) (input.State, error) {
	obj, err := unmarshalObject(data, "state")
	if err != nil {
		return input.State{}, err
	}
	return input.DecodeState(obj)
}
