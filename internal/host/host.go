package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stjordanis/jsdares/internal/augment"
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
	"github.com/stjordanis/jsdares/internal/render"
)

const (
	// DefaultSurface is the pointer surface id of the canvas.
	DefaultSurface input.SurfaceID = "canvas"

	// DefaultSize is the canvas width and height when Config leaves them
	// zero.
	DefaultSize = 540
)

// Program is one instantiation of a sandboxed program.
type Program interface {
	// Run executes the program's top level.
	Run() error

	// Call invokes the declared global function handler with args.
	Call(handler string, args ir.Array) error

	// Close releases the runtime.
	Close()
}

// Factory compiles source into a Program that sees globals as its
// virtualized environment.
type Factory func(source string, globals []*augment.Object) (Program, error)

// Recorder receives the event log as it grows. Entries are recorded once,
// when first delivered; replays are not recorded.
type Recorder interface {
	// Record stores the entry at log position index.
	Record(index int, entry input.Entry) error

	// Truncate drops every entry at position n and beyond.
	Truncate(n int) error

	// Source stores the program the recorded entries are replayed against.
	// It is called on every Load and Edit, after truncation.
	Source(src string) error
}

// Config configures a Host.
type Config struct {
	Width  int
	Height int

	// QuietPeriod is the pointer-move coalescing window.
	QuietPeriod time.Duration

	// Surface is the pointer surface id of the canvas. Empty means
	// DefaultSurface.
	Surface input.SurfaceID

	// OffsetX and OffsetY place the canvas origin in page coordinates.
	OffsetX int
	OffsetY int

	// Scheduler drives timers. Nil means a LoopScheduler posting to the
	// host's own queue, which requires Run.
	Scheduler input.Scheduler

	// Recorder, when set, receives every logged entry and every program
	// change.
	Recorder Recorder
}

// Host wires a program runtime to the input virtualizer and the echo
// renderer. It is the virtualizer's Sink and the renderer's Editor.
//
// Host is not safe for concurrent use. Either call it from a single
// goroutine, or start Run and submit work through Post.
type Host struct {
	cfg     Config
	factory Factory
	queue   *taskQueue
	clock   Clock

	virt     *input.Virtualizer
	renderer *render.EchoRenderer
	coord    *render.HighlightCoordinator
	globals  []*augment.Object

	source  string
	program Program
	trace   []TraceEntry
	sites   []augment.Site
	runs    int

	replaying    bool
	interactive  bool
	rerunPending bool
}

// New creates a Host. No program is loaded until Load.
func New(factory Factory, cfg Config) *Host {
	if cfg.Surface == "" {
		cfg.Surface = DefaultSurface
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultSize
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultSize
	}
	h := &Host{
		cfg:     cfg,
		factory: factory,
		queue:   newTaskQueue(),
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = NewLoopScheduler(h.Post)
	}
	h.virt = input.NewVirtualizer(h, sched, input.Config{QuietPeriod: cfg.QuietPeriod})
	h.renderer = render.NewEchoRenderer(cfg.Width, cfg.Height, h)
	h.coord = render.NewHighlightCoordinator(h.renderer, h)

	canvas := augment.NewObject(string(cfg.Surface), "[object canvas]")
	h.virt.AddPointerSurface(cfg.Surface, cfg.OffsetX, cfg.OffsetY, canvas)
	h.globals = []*augment.Object{
		h.virt.Document(),
		h.virt.Window(),
		canvas,
		h.renderer.Object(),
	}
	return h
}

// Virtualizer returns the input virtualizer.
func (h *Host) Virtualizer() *input.Virtualizer { return h.virt }

// Renderer returns the echo renderer.
func (h *Host) Renderer() *render.EchoRenderer { return h.renderer }

// Globals returns the augmented objects handed to each program instance.
func (h *Host) Globals() []*augment.Object { return h.globals }

// Source returns the loaded program source.
func (h *Host) Source() string { return h.source }

// Runs counts full runs since New.
func (h *Host) Runs() int { return h.runs }

// Interactive reports whether the program registered any handler.
func (h *Host) Interactive() bool { return h.interactive }

// Trace returns the addEvent calls of the current run, replays included.
func (h *Host) Trace() []TraceEntry {
	out := make([]TraceEntry, len(h.trace))
	copy(out, h.trace)
	return out
}

// Sites returns the call sites highlighted during the current run.
func (h *Host) Sites() []augment.Site {
	out := make([]augment.Site, len(h.sites))
	copy(out, h.sites)
	return out
}

// Load replaces the program and discards the event log.
func (h *Host) Load(source string) error {
	if err := h.truncate(0); err != nil {
		return err
	}
	if err := h.setSource(source); err != nil {
		return err
	}
	return h.Rerun()
}

// Edit replaces the program, keeps the first keep logged events and replays
// them against the new program.
func (h *Host) Edit(source string, keep int) error {
	if err := h.truncate(keep); err != nil {
		return err
	}
	if err := h.setSource(source); err != nil {
		return err
	}
	return h.Rerun()
}

func (h *Host) setSource(source string) error {
	h.source = source
	if h.cfg.Recorder != nil {
		if err := h.cfg.Recorder.Source(source); err != nil {
			return fmt.Errorf("record source: %w", err)
		}
	}
	return nil
}

// Checkpoint makes the current state the new base: the event log is emptied
// without touching the registry.
func (h *Host) Checkpoint() error {
	h.virt.Log().ResetToEnd()
	if h.cfg.Recorder != nil {
		if err := h.cfg.Recorder.Truncate(0); err != nil {
			return fmt.Errorf("checkpoint recording: %w", err)
		}
	}
	slog.Info("event log checkpointed")
	return nil
}

func (h *Host) truncate(keep int) error {
	if keep == h.virt.Log().Len() {
		return nil
	}
	if err := h.virt.Log().TruncateAfter(keep); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if h.cfg.Recorder != nil {
		if err := h.cfg.Recorder.Truncate(keep); err != nil {
			return fmt.Errorf("truncate recording: %w", err)
		}
	}
	return nil
}

// Rerun executes the program from scratch and replays the event log.
//
// Timers are cancelled and the registry cleared first, then both surfaces
// are reset before the top level runs. A top-level error stops the run
// before replay.
func (h *Host) Rerun() error {
	h.rerunPending = false
	if h.program != nil {
		h.program.Close()
		h.program = nil
	}
	h.virt.Reset()
	h.renderer.StartRun()
	h.clock.Reset()
	h.trace = h.trace[:0]
	h.sites = h.sites[:0]
	h.runs++

	prog, err := h.factory(h.source, h.globals)
	if err != nil {
		return fmt.Errorf("load program: %w", err)
	}
	h.program = prog
	if err := prog.Run(); err != nil {
		slog.Warn("program failed", "run", h.runs, "error", err)
		return fmt.Errorf("run program: %w", err)
	}

	h.replaying = true
	err = h.virt.Replay(0)
	h.replaying = false
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	slog.Debug("program run", "run", h.runs, "events", h.virt.Log().Len(), "calls", len(h.renderer.Calls()))
	return nil
}

// settle performs re-runs requested while the last operation was in
// progress.
func (h *Host) settle() error {
	for h.rerunPending {
		if err := h.Rerun(); err != nil {
			return err
		}
	}
	return nil
}

// KeyDown forwards a host key press.
func (h *Host) KeyDown(code int) { h.virt.KeyDown(code) }

// KeyUp forwards a host key release.
func (h *Host) KeyUp(code int) { h.virt.KeyUp(code) }

// PointerMove forwards pointer motion over the canvas in page coordinates.
func (h *Host) PointerMove(pageX, pageY int) { h.virt.PointerMove(h.cfg.Surface, pageX, pageY) }

// PointerDown forwards a button press over the canvas.
func (h *Host) PointerDown(pageX, pageY int) { h.virt.PointerDown(h.cfg.Surface, pageX, pageY) }

// PointerUp forwards a button release over the canvas.
func (h *Host) PointerUp(pageX, pageY int) { h.virt.PointerUp(h.cfg.Surface, pageX, pageY) }

// SetHighlighting turns hover picking on or off.
func (h *Host) SetHighlighting(on bool) error {
	if on {
		h.coord.Enable()
	} else {
		h.coord.Disable()
	}
	return h.settle()
}

// HighlightAll turns highlight-all mode on or off.
func (h *Host) HighlightAll(on bool) error {
	if on {
		h.renderer.StartHighlighting()
	} else {
		h.renderer.StopHighlighting()
	}
	return h.settle()
}

// Hover resolves the call under canvas pixel (x, y) and, when picking is
// enabled and the target changed, re-runs to highlight it. It returns the
// call index under the pointer.
func (h *Host) Hover(x, y int) (int, error) {
	idx := h.coord.Hover(x, y)
	return idx, h.settle()
}

// Close stops the loop and releases the program. Safe to call more than
// once.
func (h *Host) Close() {
	h.queue.Close()
	h.virt.Close()
	if h.program != nil {
		h.program.Close()
		h.program = nil
	}
}

// input.Sink

// AddEvent runs the handler in the current program and records the call.
func (h *Host) AddEvent(category input.Category, handler string, args ir.Array) {
	entry := TraceEntry{
		Seq:      h.clock.Next(),
		Category: category,
		Handler:  handler,
		Args:     args,
	}
	if !h.replaying && h.cfg.Recorder != nil {
		idx := h.virt.Log().Len() - 1
		if err := h.cfg.Recorder.Record(idx, h.virt.Log().At(idx)); err != nil {
			slog.Error("failed to record event", "seq", idx, "error", err)
		}
	}
	if h.program != nil {
		if err := h.program.Call(handler, args); err != nil {
			slog.Warn("handler failed", "handler", handler, "seq", entry.Seq, "error", err)
			entry.Err = err.Error()
		}
	}
	h.trace = append(h.trace, entry)
}

// MakeInteractive marks the program as interactive.
func (h *Host) MakeInteractive() {
	h.interactive = true
}

// render.Editor

// HighlightNode collects the site of the highlighted call.
func (h *Host) HighlightNode(site augment.Site) {
	h.sites = append(h.sites, site)
}

// OutputRequestsRerun schedules a re-run once the current operation returns.
func (h *Host) OutputRequestsRerun() {
	h.rerunPending = true
}

// Loop

// Post submits fn to run on the Run goroutine. It returns false once the host
// is closed.
func (h *Host) Post(fn func()) bool {
	return h.queue.Enqueue(fn)
}

// Run executes posted tasks until ctx is cancelled or Stop is called.
// It must be called from a single goroutine.
func (h *Host) Run(ctx context.Context) error {
	slog.Info("host loop starting")
	for {
		if fn, ok := h.queue.TryDequeue(); ok {
			fn()
			if err := h.settle(); err != nil {
				slog.Warn("re-run failed", "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("host loop stopping: context cancelled")
			h.queue.Close()
			return ctx.Err()
		case <-h.queue.Wait():
			if h.queue.Drained() {
				slog.Info("host loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns once pending tasks are drained.
func (h *Host) Stop() {
	h.queue.Close()
}
