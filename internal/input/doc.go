// Package input virtualizes keyboard, pointer and interval-timer input for a
// sandboxed program and records every delivered event so the program can be
// re-executed from any event boundary.
//
// ARCHITECTURE:
//
// Three components, leaves first:
//
//   - Registry holds the handlers the program registered (onkeydown, onkeyup,
//     per-surface pointer handlers, the setInterval handler) and can snapshot
//     and restore its complete state.
//   - EventLog is the ordered sequence of delivered events, each paired with the
//     Registry snapshot taken just before delivery.
//   - Virtualizer owns both. It receives host-level input, filters and
//     coalesces it, appends to the log and forwards accepted events to a Sink.
//
// Event Delivery Flow:
//  1. Host calls KeyDown / PointerMove / ... (or a timer fires)
//  2. Virtualizer drops filtered keys and unattached pointer sources
//  3. Pointer motion is coalesced (leading + trailing edge per quiet period)
//  4. EventLog.Begin snapshots the Registry
//  5. Sink.AddEvent receives (category, handler name, args)
//
// CONCURRENCY:
//
// Single-threaded and cooperative. Every method must be called from the one
// goroutine that owns the host loop; timers are obtained from a Scheduler
// whose callbacks run on that same goroutine. Nothing here locks.
//
// REPLAY CONTRACT:
//
// Replaying the log from index 0, restoring each entry's preceding state and
// redelivering its event in order, reproduces the identical sequence of Sink
// calls, provided no handler registration happened outside the virtualized
// channel.
package input
