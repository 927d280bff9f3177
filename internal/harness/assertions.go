package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stjordanis/jsdares/internal/augment"
	"github.com/stjordanis/jsdares/internal/host"
)

// AssertionError is returned when an assertion fails. It carries the trace
// so a failure can be read without re-running the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []host.TraceEntry
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, entry := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %v\n", entry.Seq, entry.Category, entry.Handler, entry.Args)
		}
	}
	return buf.String()
}

// evaluate checks every assertion and returns the failure messages. Pick
// assertions drive the host, so evaluate runs after the snapshot.
func (h *Harness) evaluate(assertions []Assertion, result *Result) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		if a.Type == AssertPick {
			err = h.assertPick(a)
		} else {
			err = check(a, result)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

// EvaluateAssertions checks assertions against a finished result. Pick
// assertions need a live host and always fail here.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		err := check(a, result)
		if a.Type == AssertPick {
			err = fmt.Errorf("pick needs a running scenario")
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func check(a Assertion, result *Result) error {
	switch a.Type {
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertLogLength:
		return assertLogLength(result, a)
	case AssertNoErrors:
		return assertNoErrors(result.Trace)
	case AssertPick:
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertTraceCount(trace []host.TraceEntry, a Assertion) error {
	count := 0
	for _, e := range trace {
		if e.Handler == a.Handler {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("handler %s called %d times", a.Handler, a.Count),
			Actual:   fmt.Sprintf("called %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that the first call of each handler happens in
// the given order. Other calls may come in between.
func assertTraceOrder(trace []host.TraceEntry, a Assertion) error {
	positions := make(map[string]int)
	for i, e := range trace {
		if _, seen := positions[e.Handler]; !seen {
			positions[e.Handler] = i + 1
		}
	}

	for _, name := range a.Handlers {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all handlers called: %v", a.Handlers),
				Actual:   fmt.Sprintf("missing handler: %s", name),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(a.Handlers); i++ {
		prev, curr := a.Handlers[i-1], a.Handlers[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("handlers in order: %v", a.Handlers),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertLogLength(result *Result, a Assertion) error {
	if n := result.LogLength(); n != a.Count {
		return &AssertionError{
			Type:     AssertLogLength,
			Expected: fmt.Sprintf("%d logged events", a.Count),
			Actual:   fmt.Sprintf("%d logged events", n),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertNoErrors(trace []host.TraceEntry) error {
	for _, e := range trace {
		if e.Err != "" {
			return &AssertionError{
				Type:     AssertNoErrors,
				Expected: "every handler returns normally",
				Actual:   fmt.Sprintf("%s failed at seq %d: %s", e.Handler, e.Seq, e.Err),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertPick hovers the pixel with picking enabled and checks the
// highlighted call site.
func (h *Harness) assertPick(a Assertion) error {
	if err := h.host.SetHighlighting(true); err != nil {
		return err
	}
	idx, err := h.host.Hover(a.X, a.Y)
	if err != nil {
		return err
	}
	sites := h.host.Sites()
	if !slices.Contains(sites, augment.Site(a.Site)) {
		return &AssertionError{
			Type:     AssertPick,
			Expected: fmt.Sprintf("pixel (%d, %d) drawn by %s", a.X, a.Y, a.Site),
			Actual:   fmt.Sprintf("call %d highlighted at %v", idx, sites),
		}
	}
	return nil
}
