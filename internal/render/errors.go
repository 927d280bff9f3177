package render

import (
	"errors"
	"fmt"

	"github.com/leonelquinteros/gotext"
)

// CallError reports a drawing call the program made with bad arguments or
// to a name that is not a drawing method.
type CallError struct {
	// Op is the method name as called.
	Op string

	// Message is the learner-facing description.
	Message string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsCallError returns true if err is a CallError.
// Uses errors.As to handle wrapped errors.
func IsCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}

func arityError(op Op, got int) error {
	msg := gotext.Get("%s takes exactly %d arguments, not %d", op.Name, op.MinArgs, got)
	if op.MinArgs != op.MaxArgs {
		msg = gotext.Get("%s takes %d to %d arguments, not %d", op.Name, op.MinArgs, op.MaxArgs, got)
	}
	return &CallError{Op: op.Name, Message: msg}
}

func unknownOpError(name string) error {
	return &CallError{Op: name, Message: gotext.Get("%s is not a drawing method", name)}
}
