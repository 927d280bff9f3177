package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/luahost"
	"github.com/stjordanis/jsdares/internal/testutil"
)

// Options configures Run.
type Options struct {
	// Console additionally receives everything the program prints.
	Console io.Writer

	// Recorder, when set, receives the program and event log as the
	// scenario runs.
	Recorder host.Recorder
}

// Harness executes one scenario against a Lua host on virtual time.
type Harness struct {
	host    *host.Host
	sched   *testutil.ManualScheduler
	console *bytes.Buffer
}

// Run executes a scenario and returns the result.
//
// Time is virtual: only advance steps move it, so pointer coalescing and
// intervals fire at exactly the same points on every run. A program that
// fails to load is returned as an error; failures after that are recorded in
// the result.
func Run(s *Scenario, opts Options) (*Result, error) {
	h := newHarness(s, opts)
	defer h.host.Close()

	if err := h.host.Load(s.Source); err != nil {
		return nil, fmt.Errorf("failed to load program %q: %w", s.Program, err)
	}

	result := NewResult()
	for i, step := range s.Steps {
		if err := h.execute(step, result); err != nil {
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
	}

	h.snapshot(result)
	for _, msg := range h.evaluate(s.Assertions, result) {
		result.AddError(msg)
	}
	slog.Debug("scenario finished",
		"scenario", s.Name,
		"steps", len(s.Steps),
		"events", result.LogLength(),
		"pass", result.Pass,
	)
	return result, nil
}

func newHarness(s *Scenario, opts Options) *Harness {
	h := &Harness{
		sched:   testutil.NewManualScheduler(),
		console: &bytes.Buffer{},
	}
	var console io.Writer = h.console
	if opts.Console != nil {
		console = io.MultiWriter(h.console, opts.Console)
	}
	cfg := host.Config{
		Width:       s.Size,
		Height:      s.Size,
		QuietPeriod: s.quietPeriod(),
		Scheduler:   h.sched,
		Recorder:    opts.Recorder,
	}
	if s.Offset != nil {
		cfg.OffsetX, cfg.OffsetY = s.Offset.X, s.Offset.Y
	}
	h.host = host.New(luahost.Factory(luahost.Options{Console: console}), cfg)
	return h
}

// execute performs one step.
func (h *Harness) execute(step Step, result *Result) error {
	switch {
	case step.KeyDown != nil:
		h.host.KeyDown(*step.KeyDown)
	case step.KeyUp != nil:
		h.host.KeyUp(*step.KeyUp)
	case step.Pointer != nil:
		return h.pointer(*step.Pointer)
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		h.sched.Advance(d)
	case step.Hover != nil:
		idx, err := h.host.Hover(step.Hover.X, step.Hover.Y)
		result.Hovers = append(result.Hovers, Hover{
			X: step.Hover.X, Y: step.Hover.Y, Index: idx, Sites: h.host.Sites(),
		})
		return err
	case step.Highlight != nil:
		return h.host.SetHighlighting(*step.Highlight)
	case step.HighlightAll != nil:
		return h.host.HighlightAll(*step.HighlightAll)
	case step.Edit != nil:
		return h.host.Edit(step.Edit.Source, step.Edit.Keep)
	case step.Checkpoint:
		return h.host.Checkpoint()
	case step.Rerun:
		return h.host.Rerun()
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

func (h *Harness) pointer(p PointerStep) error {
	kind, err := input.ParsePointerKind(p.Type)
	if err != nil {
		return err
	}
	switch kind {
	case input.PointerMove:
		h.host.PointerMove(p.X, p.Y)
	case input.PointerDown:
		h.host.PointerDown(p.X, p.Y)
	case input.PointerUp:
		h.host.PointerUp(p.X, p.Y)
	}
	return nil
}

// snapshot copies the host's final state into result.
func (h *Harness) snapshot(result *Result) {
	result.Trace = h.host.Trace()
	result.Entries = h.host.Virtualizer().Log().Entries()
	result.Fingerprint = h.host.Virtualizer().Fingerprint()
	result.Source = h.host.Source()
	result.Console = h.console.String()
	result.Runs = h.host.Runs()
	result.Renderer = h.host.Renderer()
}
