// Package host runs a sandboxed program against the input virtualizer and
// the echo renderer.
//
// The Host is the only component that knows about all three collaborators.
// It hands the program its globals (document, window, the canvas pointer
// surface and the drawing context), executes handlers for every event the
// virtualizer accepts, and performs the full re-runs the renderer asks for.
//
// # Concurrency
//
// All state is owned by one goroutine. Embedders either drive the Host
// directly from a single goroutine with a virtual Scheduler (the harness and
// tests do this), or start Run and submit work through Post. The default
// LoopScheduler posts timer callbacks to the same queue, so interval ticks
// and trailing pointer moves never race with host input.
//
// # Re-runs
//
// A re-run discards the program instance, cancels its timers, clears the
// registry and both surfaces, runs the top level again and replays the
// event log. Re-run requests raised while an operation is in progress are
// applied once the operation returns, never in the middle of a handler.
package host
