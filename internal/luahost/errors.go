package luahost

import (
	"errors"
	"fmt"
)

// Phase says where a script error was raised.
type Phase string

const (
	PhaseCompile Phase = "compile"
	PhaseRun     Phase = "run"
	PhaseCall    Phase = "call"
)

// ScriptError is an error raised inside the sandboxed program, including
// errors returned by augmented properties and surfaced through the script.
type ScriptError struct {
	Phase   Phase
	Handler string // set for PhaseCall
	Message string
}

func (e *ScriptError) Error() string {
	if e.Handler != "" {
		return fmt.Sprintf("%s %s: %s", e.Phase, e.Handler, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Phase, e.Message)
}

// IsScriptError reports whether err is a ScriptError.
func IsScriptError(err error) bool {
	var se *ScriptError
	return errors.As(err, &se)
}

// IsCompileError reports whether err is a ScriptError raised while
// compiling the source.
func IsCompileError(err error) bool {
	var se *ScriptError
	return errors.As(err, &se) && se.Phase == PhaseCompile
}
