package harness

import (
	"github.com/stjordanis/jsdares/internal/augment"
	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/render"
)

// Hover records the outcome of a hover step.
type Hover struct {
	X, Y int

	// Index is the call index under the pointer, zero for background.
	Index int

	// Sites are the call sites highlighted by the re-run.
	Sites []augment.Site
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step succeeded and every assertion held.
	Pass bool

	// Errors holds step failures and assertion failures.
	Errors []string

	// Trace is the addEvent trace of the final run.
	Trace []host.TraceEntry

	// Entries is the final event log.
	Entries []input.Entry

	// Fingerprint identifies the final event log's input history.
	Fingerprint string

	// Source is the program text of the final run.
	Source string

	// Console is everything the program printed, across all runs.
	Console string

	Hovers []Hover

	// Runs counts full program runs.
	Runs int

	// Renderer holds the surfaces of the final run.
	Renderer *render.EchoRenderer
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// LogLength is the length of the final event log.
func (r *Result) LogLength() int {
	return len(r.Entries)
}
