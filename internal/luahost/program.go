package luahost

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/stjordanis/jsdares/internal/augment"
	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/ir"
)

// DefaultChunk names the program in call sites.
const DefaultChunk = "main"

const chunkKey = "jsdares.chunk"

var libraries = []lua.RegistryFunction{
	{Name: "_G", Function: lua.BaseOpen},
	{Name: "string", Function: lua.StringOpen},
	{Name: "table", Function: lua.TableOpen},
	{Name: "math", Function: lua.MathOpen},
}

var removedGlobals = []string{"dofile", "loadfile", "load", "require", "collectgarbage"}

// Options configures a Program.
type Options struct {
	// Console receives print output. Nil discards it.
	Console io.Writer

	// Chunk names the source in call sites and error messages.
	Chunk string
}

// Program is a compiled Lua program bound to its globals. It implements
// host.Program.
type Program struct {
	l       *lua.State
	chunk   string
	console io.Writer
	closed  bool
}

var _ host.Program = (*Program)(nil)

// New compiles source with globals installed. A syntax error is returned as
// a ScriptError with PhaseCompile.
func New(source string, globals []*augment.Object, opts Options) (*Program, error) {
	if opts.Chunk == "" {
		opts.Chunk = DefaultChunk
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}

	l := lua.NewState()
	for _, lib := range libraries {
		lua.Require(l, lib.Name, lib.Function, true)
		l.Pop(1)
	}
	for _, name := range removedGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}

	p := &Program{l: l, chunk: opts.Chunk, console: opts.Console}
	l.PushGoFunction(p.print)
	l.SetGlobal("print")
	for _, obj := range globals {
		p.install(obj)
	}

	if err := lua.LoadBuffer(l, source, "="+opts.Chunk, ""); err != nil {
		return nil, &ScriptError{Phase: PhaseCompile, Message: p.errorMessage(err)}
	}
	l.SetField(lua.RegistryIndex, chunkKey)
	return p, nil
}

// Factory returns a host.Factory compiling programs with opts.
func Factory(opts Options) host.Factory {
	return func(source string, globals []*augment.Object) (host.Program, error) {
		return New(source, globals, opts)
	}
}

// Run executes the top level of the program.
func (p *Program) Run() error {
	if p.closed {
		return &ScriptError{Phase: PhaseRun, Message: "program closed"}
	}
	p.l.Field(lua.RegistryIndex, chunkKey)
	if err := p.l.ProtectedCall(0, 0, 0); err != nil {
		return &ScriptError{Phase: PhaseRun, Message: p.errorMessage(err)}
	}
	return nil
}

// Call invokes the global function handler with args converted to Lua
// values. Objects become tables.
func (p *Program) Call(handler string, args ir.Array) error {
	if p.closed {
		return &ScriptError{Phase: PhaseCall, Handler: handler, Message: "program closed"}
	}
	p.l.Global(handler)
	if !p.l.IsFunction(-1) {
		p.l.Pop(1)
		return &ScriptError{Phase: PhaseCall, Handler: handler, Message: handler + " is not a function"}
	}
	for _, a := range args {
		p.pushValue(a)
	}
	if err := p.l.ProtectedCall(len(args), 0, 0); err != nil {
		return &ScriptError{Phase: PhaseCall, Handler: handler, Message: p.errorMessage(err)}
	}
	return nil
}

// Close releases the program. Further calls fail.
func (p *Program) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.l.SetTop(0)
	slog.Debug("lua program closed", "chunk", p.chunk)
}

// errorMessage takes the error object left on the stack by a failed load or
// call, falling back to err itself.
func (p *Program) errorMessage(err error) string {
	msg := err.Error()
	if p.l.Top() > 0 && p.l.TypeOf(-1) == lua.TypeString {
		msg, _ = p.l.ToString(-1)
	}
	p.l.SetTop(0)
	return msg
}

func (p *Program) print(l *lua.State) int {
	n := l.Top()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		s, _ := lua.ToStringMeta(l, i)
		l.Pop(1)
		parts = append(parts, s)
	}
	fmt.Fprintln(p.console, strings.Join(parts, "\t"))
	return 0
}
