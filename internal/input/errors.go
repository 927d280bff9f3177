package input

import (
	"errors"
	"fmt"

	"github.com/leonelquinteros/gotext"
)

// RegistrationError is raised back into the program when it tries to
// register a handler with an invalid value.
//
// Registration errors include:
//   - Type: the assigned value is not a function declared by the program
//   - Argument: setInterval called with the wrong arity or period
//   - UnknownSurface: a pointer handler for a surface that was never added
//
// The Message is the learner-facing text and is passed through gotext so a
// loaded locale can translate it.
type RegistrationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is the learner-facing description.
	Message string

	// Slot names the handler slot, e.g. "document.onkeydown".
	Slot string
}

// ReplayError reports an out-of-range log position or a recorded state that
// references a surface the virtualizer does not know.
type ReplayError struct {
	Code    ErrorCode
	Message string
	Index   int
}

// ErrorCode categorizes input errors.
type ErrorCode string

const (
	// ErrCodeType indicates a non-function handler value.
	ErrCodeType ErrorCode = "TYPE_ERROR"

	// ErrCodeArgument indicates invalid setInterval arguments.
	ErrCodeArgument ErrorCode = "ARGUMENT_ERROR"

	// ErrCodeUnknownSurface indicates a surface id that was never added.
	ErrCodeUnknownSurface ErrorCode = "UNKNOWN_SURFACE"

	// ErrCodeTruncateRange indicates a truncate position past the log end.
	ErrCodeTruncateRange ErrorCode = "TRUNCATE_RANGE"

	// ErrCodeReplayRange indicates a replay start past the log end.
	ErrCodeReplayRange ErrorCode = "REPLAY_RANGE"
)

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("%s: %s (slot=%s)", e.Code, e.Message, e.Slot)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	return fmt.Sprintf("%s: %s (index=%d)", e.Code, e.Message, e.Index)
}

// IsTypeError returns true if err is a RegistrationError with ErrCodeType.
// Uses errors.As to handle wrapped errors.
func IsTypeError(err error) bool {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Code == ErrCodeType
	}
	return false
}

// IsArgumentError returns true if err is a RegistrationError with
// ErrCodeArgument.
func IsArgumentError(err error) bool {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Code == ErrCodeArgument
	}
	return false
}

// IsUnknownSurface returns true for either error type carrying
// ErrCodeUnknownSurface.
func IsUnknownSurface(err error) bool {
	var re *RegistrationError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownSurface
	}
	var pe *ReplayError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeUnknownSurface
	}
	return false
}

// IsReplayError returns true if err is any ReplayError.
func IsReplayError(err error) bool {
	var pe *ReplayError
	return errors.As(err, &pe)
}

func typeError(slot string) error {
	return &RegistrationError{
		Code:    ErrCodeType,
		Message: gotext.Get("You can only set %s to a function declared by you", slot),
		Slot:    slot,
	}
}

// argumentError takes an already translated message.
func argumentError(msg string) error {
	return &RegistrationError{
		Code:    ErrCodeArgument,
		Message: msg,
		Slot:    "window.setInterval",
	}
}

func unknownSurfaceError(id SurfaceID) error {
	return &RegistrationError{
		Code:    ErrCodeUnknownSurface,
		Message: gotext.Get("No pointer surface named %s", string(id)),
	}
}

const (
	msgIntervalArity  = "setInterval takes exactly 2 arguments"
	msgIntervalFunc   = "First argument to setInterval must be the name of a function declared by you"
	msgIntervalPeriod = "Second argument to setInterval must be a number specifying the time in milliseconds, and cannot be smaller than 25"
)
