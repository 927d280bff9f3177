package input

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/stjordanis/jsdares/internal/augment"
	"github.com/stjordanis/jsdares/internal/ir"
)

// DefaultQuietPeriod is the pointer-move coalescing window.
const DefaultQuietPeriod = 24 * time.Millisecond

// deniedKeys are modifier and escape keys the program never sees:
// ctrl, alt, left/right meta, the Firefox meta code, and escape.
var deniedKeys = []int{17, 18, 91, 93, 224, 27}

// Config configures a Virtualizer.
type Config struct {
	// QuietPeriod is the pointer-move coalescing window. Zero means
	// DefaultQuietPeriod.
	QuietPeriod time.Duration
}

// Virtualizer is the mediation layer between host input and the program.
//
// It owns the Registry and EventLog, filters keyboard input, coalesces
// pointer motion, drives the setInterval timer, and forwards every accepted
// event to the Sink after the log has captured the preceding state.
type Virtualizer struct {
	registry *Registry
	log      *EventLog
	sink     Sink
	sched    Scheduler
	quiet    time.Duration
	denied   mapset.Set[int]

	surfaces map[SurfaceID]*pointerSurface
	interval Timer
	closed   bool
}

// pointerSurface is the per-surface coalescing state.
type pointerSurface struct {
	id      SurfaceID
	offsetX int
	offsetY int

	timer   Timer         // quiet-period timer, nil when idle
	pending *PointerEvent // latest suppressed move
}

// NewVirtualizer creates a Virtualizer delivering to sink.
func NewVirtualizer(sink Sink, sched Scheduler, cfg Config) *Virtualizer {
	v := &Virtualizer{
		sink:     sink,
		sched:    sched,
		quiet:    cfg.QuietPeriod,
		denied:   mapset.New[int](),
		surfaces: make(map[SurfaceID]*pointerSurface),
	}
	if v.quiet <= 0 {
		v.quiet = DefaultQuietPeriod
	}
	for _, code := range deniedKeys {
		v.denied.Put(code)
	}
	v.registry = newRegistry(v)
	v.log = newEventLog(v.registry)
	return v
}

// Registry returns the handler registry.
func (v *Virtualizer) Registry() *Registry { return v.registry }

// Log returns the event log.
func (v *Virtualizer) Log() *EventLog { return v.log }

// KeyDown delivers a host key press.
func (v *Virtualizer) KeyDown(code int) {
	v.key(KeyDown, code)
}

// KeyUp delivers a host key release.
func (v *Virtualizer) KeyUp(code int) {
	v.key(KeyUp, code)
}

func (v *Virtualizer) key(dir Direction, code int) {
	if v.closed || v.denied.Has(code) {
		return
	}
	h := v.registry.state.KeyDown
	if dir == KeyUp {
		h = v.registry.state.KeyUp
	}
	if !h.Declared() {
		return
	}
	v.deliver(KeyEvent(dir, code), h)
}

// PointerMove delivers host pointer motion at page coordinates. Motion is
// coalesced: the first move after an idle period is delivered at once, moves
// inside the quiet period are collapsed so only the latest is delivered when
// the period elapses.
func (v *Virtualizer) PointerMove(surface SurfaceID, pageX, pageY int) {
	ps, ev, ok := v.pointer(surface, PointerMove, pageX, pageY)
	if !ok {
		return
	}
	if ps.timer != nil {
		ps.pending = &ev
		return
	}
	v.deliverPointer(ev)
	v.armQuiet(ps)
}

// PointerDown delivers a host button press immediately.
func (v *Virtualizer) PointerDown(surface SurfaceID, pageX, pageY int) {
	if _, ev, ok := v.pointer(surface, PointerDown, pageX, pageY); ok {
		v.deliverPointer(ev)
	}
}

// PointerUp delivers a host button release immediately.
func (v *Virtualizer) PointerUp(surface SurfaceID, pageX, pageY int) {
	if _, ev, ok := v.pointer(surface, PointerUp, pageX, pageY); ok {
		v.deliverPointer(ev)
	}
}

// pointer resolves a host pointer event. Events for pairs with no attached
// listener never reach the virtualizer in a real host, so they are dropped.
func (v *Virtualizer) pointer(surface SurfaceID, kind PointerKind, pageX, pageY int) (*pointerSurface, PointerEvent, bool) {
	if v.closed {
		return nil, PointerEvent{}, false
	}
	ps, ok := v.surfaces[surface]
	if !ok || !v.registry.Attached(PointerSlot{Surface: surface, Kind: kind}) {
		return nil, PointerEvent{}, false
	}
	return ps, PointerEvent{
		Surface: surface,
		Kind:    kind,
		LocalX:  pageX - ps.offsetX,
		LocalY:  pageY - ps.offsetY,
		PageX:   pageX,
		PageY:   pageY,
	}, true
}

func (v *Virtualizer) armQuiet(ps *pointerSurface) {
	ps.timer = v.sched.AfterFunc(v.quiet, func() { v.quietElapsed(ps) })
}

func (v *Virtualizer) quietElapsed(ps *pointerSurface) {
	ps.timer = nil
	if v.closed || ps.pending == nil {
		return
	}
	ev := *ps.pending
	ps.pending = nil
	v.deliverPointer(ev)
	v.armQuiet(ps)
}

func (v *Virtualizer) deliverPointer(ev PointerEvent) {
	h, ok := v.registry.state.Pointer[PointerSlot{Surface: ev.Surface, Kind: ev.Kind}]
	if !ok || !h.Declared() {
		return
	}
	v.deliver(PointerEventOf(ev), h)
}

func (v *Virtualizer) fireInterval() {
	if v.closed {
		return
	}
	h := v.registry.state.Interval
	if !h.Declared() {
		return
	}
	v.deliver(IntervalEvent(), h)
}

// deliver records ev with the current registry snapshot, then hands it to
// the sink.
func (v *Virtualizer) deliver(ev Event, h Handler) {
	v.log.Begin(ev)
	slog.Debug("input event delivered",
		"category", ev.Category(),
		"handler", h.Name,
		"seq", v.log.Len()-1,
	)
	v.sink.AddEvent(ev.Category(), h.Name, ev.Args())
}

// Replay restores each entry's preceding state from index from onward and
// redelivers its event without appending to the log.
func (v *Virtualizer) Replay(from int) error {
	if from < 0 || from > v.log.Len() {
		return &ReplayError{
			Code:    ErrCodeReplayRange,
			Message: fmt.Sprintf("cannot replay log of length %d from %d", v.log.Len(), from),
			Index:   from,
		}
	}
	for i := from; i < v.log.Len(); i++ {
		e := v.log.At(i)
		if err := v.registry.Restore(e.Preceding); err != nil {
			var re *ReplayError
			if errors.As(err, &re) {
				re.Index = i
			}
			return err
		}
		h, ok := handlerFor(e.Preceding, e.Event)
		if !ok {
			continue
		}
		v.sink.AddEvent(e.Event.Category(), h.Name, e.Event.Args())
	}
	slog.Debug("event log replayed", "from", from, "count", v.log.Len()-from)
	return nil
}

// handlerFor selects the handler s holds for ev.
func handlerFor(s State, ev Event) (Handler, bool) {
	var h Handler
	switch ev.Kind {
	case EventKeyboard:
		h = s.KeyDown
		if ev.Keyboard.Direction == KeyUp {
			h = s.KeyUp
		}
	case EventPointer:
		h = s.Pointer[PointerSlot{Surface: ev.Pointer.Surface, Kind: ev.Pointer.Kind}]
	case EventInterval:
		h = s.Interval
	}
	return h, h.Declared()
}

// Reset clears every handler, detaches every listener, cancels the interval
// and drops pending pointer moves. The virtualizer stays usable.
func (v *Virtualizer) Reset() {
	v.registry.Clear()
	for _, ps := range v.surfaces {
		if ps.timer != nil {
			ps.timer.Stop()
			ps.timer = nil
		}
		ps.pending = nil
	}
}

// Close tears the virtualizer down. Safe to call more than once.
func (v *Virtualizer) Close() {
	if v.closed {
		return
	}
	v.Reset()
	v.closed = true
	slog.Debug("input virtualizer closed")
}

// Closed reports whether Close was called.
func (v *Virtualizer) Closed() bool { return v.closed }

// binder implementation

func (v *Virtualizer) attachPointer(slot PointerSlot) {
	slog.Debug("pointer listener attached", "surface", slot.Surface, "kind", slot.Kind)
}

func (v *Virtualizer) detachPointer(slot PointerSlot) {
	if ps, ok := v.surfaces[slot.Surface]; ok && slot.Kind == PointerMove {
		if ps.timer != nil {
			ps.timer.Stop()
			ps.timer = nil
		}
		ps.pending = nil
	}
	slog.Debug("pointer listener detached", "surface", slot.Surface, "kind", slot.Kind)
}

func (v *Virtualizer) startInterval(period time.Duration) {
	if v.closed {
		return
	}
	v.interval = v.sched.Every(period, v.fireInterval)
}

func (v *Virtualizer) stopInterval() {
	if v.interval != nil {
		v.interval.Stop()
		v.interval = nil
	}
}

func (v *Virtualizer) makeInteractive() {
	v.sink.MakeInteractive()
}

// Document returns the augmented document object exposing onkeydown and
// onkeyup.
func (v *Virtualizer) Document() *augment.Object {
	obj := augment.NewObject("document", "[object document]")
	for _, dir := range []Direction{KeyDown, KeyUp} {
		dir := dir
		name := "onkey" + dir.String()
		obj.Add(augment.Variable(name, "events.document."+name,
			fmt.Sprintf("document.%s = function", name),
			func(augment.Site) any {
				h := v.registry.state.KeyDown
				if dir == KeyUp {
					h = v.registry.state.KeyUp
				}
				if !h.Declared() {
					return nil
				}
				return h
			},
			func(_ augment.Site, value any) error {
				return v.registry.RegisterKeyboard(dir, value)
			},
		))
	}
	return obj
}

// Window returns the augmented window object exposing setInterval.
func (v *Virtualizer) Window() *augment.Object {
	obj := augment.NewObject("window", "[object window]")
	obj.Add(augment.Method("setInterval", "events.window.setInterval",
		"window.setInterval(function, 30)",
		func(_ augment.Site, args []any) (any, error) {
			return nil, v.registry.RegisterInterval(args)
		},
	))
	return obj
}

// AddPointerSurface registers id as a pointer source whose origin sits at
// (offsetX, offsetY) in page coordinates, and installs onmousemove,
// onmousedown and onmouseup on obj. Adding an existing id updates its
// offset.
func (v *Virtualizer) AddPointerSurface(id SurfaceID, offsetX, offsetY int, obj *augment.Object) {
	if ps, ok := v.surfaces[id]; ok {
		ps.offsetX, ps.offsetY = offsetX, offsetY
	} else {
		v.surfaces[id] = &pointerSurface{id: id, offsetX: offsetX, offsetY: offsetY}
	}
	v.registry.AddSurface(id)
	if obj == nil {
		return
	}
	for _, kind := range PointerKinds {
		kind := kind
		name := "onmouse" + kind.String()
		obj.Add(augment.Variable(name, "events.mouse."+name,
			fmt.Sprintf("%s.%s = function", obj.Name, name),
			func(augment.Site) any {
				h, ok := v.registry.state.Pointer[PointerSlot{Surface: id, Kind: kind}]
				if !ok || !h.Declared() {
					return nil
				}
				return h
			},
			func(_ augment.Site, value any) error {
				return v.registry.RegisterPointer(id, kind, value)
			},
		))
	}
}

// Fingerprint hashes the encoded event log. Two sessions with identical
// input histories have identical fingerprints.
func (v *Virtualizer) Fingerprint() string {
	events := make(ir.Array, 0, v.log.Len())
	for _, e := range v.log.entries {
		events = append(events, e.Event.Encode())
	}
	return ir.MustHash(ir.DomainEvent, events)
}
