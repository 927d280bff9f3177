package input

import (
	"time"

	"github.com/stjordanis/jsdares/internal/ir"
)

// Timer is a cancellable scheduled callback. Stop is idempotent; after it
// returns the callback will not run again.
type Timer interface {
	Stop()
}

// Scheduler hands out timers whose callbacks run on the goroutine that owns
// the Virtualizer. The host loop and testutil.ManualScheduler implement it.
type Scheduler interface {
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn each d until stopped.
	Every(d time.Duration, fn func()) Timer
}

// Sink receives every accepted event. It is the program's event executor.
type Sink interface {
	// AddEvent invokes the named handler with args.
	AddEvent(category Category, handlerName string, args ir.Array)

	// MakeInteractive is signalled whenever a handler is registered.
	MakeInteractive()
}
