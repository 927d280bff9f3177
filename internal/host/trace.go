package host

import (
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
)

// TraceEntry is one addEvent call observed during a run.
type TraceEntry struct {
	Seq      int64
	Category input.Category
	Handler  string
	Args     ir.Array

	// Err is the message of an error raised by the handler, empty when it
	// returned normally.
	Err string
}

// Encode returns the canonical form of the entry.
func (e TraceEntry) Encode() ir.Object {
	obj := ir.Object{
		"seq":      ir.Int(e.Seq),
		"category": ir.String(string(e.Category)),
		"handler":  ir.String(e.Handler),
		"args":     e.Args,
	}
	if e.Args == nil {
		obj["args"] = ir.Array{}
	}
	if e.Err != "" {
		obj["error"] = ir.String(e.Err)
	}
	return obj
}

// EncodeTrace returns the canonical array form of a trace.
func EncodeTrace(trace []TraceEntry) ir.Array {
	out := make(ir.Array, 0, len(trace))
	for _, e := range trace {
		out = append(out, e.Encode())
	}
	return out
}

// TraceHash is the content hash of a trace. Two runs that delivered the same
// events to the same handlers in the same order hash equally.
func TraceHash(trace []TraceEntry) string {
	return ir.MustHash(ir.DomainTrace, EncodeTrace(trace))
}
