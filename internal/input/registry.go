package input

import (
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/leonelquinteros/gotext"
	"github.com/zyedidia/generic/mapset"

	"github.com/stjordanis/jsdares/internal/augment"
)

// MinInterval is the smallest accepted setInterval period.
const MinInterval = 25 * time.Millisecond

// Handler references a program-declared function by name.
type Handler = augment.Func

// PointerSlot identifies one (surface, kind) pointer registration.
type PointerSlot struct {
	Surface SurfaceID
	Kind    PointerKind
}

// State is the complete handler registry contents. The zero Handler means
// the slot is empty. IntervalPeriod is non-zero exactly when Interval is set.
type State struct {
	KeyDown        Handler
	KeyUp          Handler
	Pointer        map[PointerSlot]Handler
	Interval       Handler
	IntervalPeriod time.Duration
}

// Clone returns a deep copy. Mutating the clone never affects s.
func (s State) Clone() State {
	out := s
	out.Pointer = maps.Clone(s.Pointer)
	return out
}

// Empty reports whether no handler is registered.
func (s State) Empty() bool {
	return !s.KeyDown.Declared() && !s.KeyUp.Declared() && len(s.Pointer) == 0 && !s.Interval.Declared()
}

// binder is the host side of the registry: attaching listeners and driving
// the interval timer. The Virtualizer implements it.
type binder interface {
	attachPointer(slot PointerSlot)
	detachPointer(slot PointerSlot)
	startInterval(period time.Duration)
	stopInterval()
	makeInteractive()
}

// Registry holds the handlers currently registered by the program.
//
// Pointer listeners are attached lazily: the first registration for a
// (surface, kind) pair attaches it, later ones only replace the handler.
// Restoring a snapshot reconciles attachments with the restored state.
type Registry struct {
	state    State
	surfaces mapset.Set[SurfaceID]
	attached mapset.Set[PointerSlot]
	binder   binder
}

// newRegistry creates an empty registry. b may be nil, in which case host
// side effects are skipped.
func newRegistry(b binder) *Registry {
	return &Registry{
		state:    State{Pointer: make(map[PointerSlot]Handler)},
		surfaces: mapset.New[SurfaceID](),
		attached: mapset.New[PointerSlot](),
		binder:   b,
	}
}

// AddSurface makes id a valid target for pointer registrations.
func (r *Registry) AddSurface(id SurfaceID) {
	r.surfaces.Put(id)
}

// HasSurface reports whether id was added.
func (r *Registry) HasSurface(id SurfaceID) bool {
	return r.surfaces.Has(id)
}

// Attached reports whether a host listener is attached for slot.
func (r *Registry) Attached(slot PointerSlot) bool {
	return r.attached.Has(slot)
}

// State returns the live state. Callers must not mutate the returned map;
// use Snapshot for a private copy.
func (r *Registry) State() State {
	return r.state
}

// Snapshot returns a deep copy of the current state.
func (r *Registry) Snapshot() State {
	return r.state.Clone()
}

// RegisterKeyboard sets the onkeydown or onkeyup handler.
func (r *Registry) RegisterKeyboard(dir Direction, value any) error {
	slot := "document.onkeydown"
	if dir == KeyUp {
		slot = "document.onkeyup"
	}
	h, ok := asHandler(value)
	if !ok {
		return typeError(slot)
	}
	if dir == KeyUp {
		r.state.KeyUp = h
	} else {
		r.state.KeyDown = h
	}
	r.notifyInteractive()
	return nil
}

// RegisterPointer sets the handler for (surface, kind), attaching a host
// listener the first time the pair is used.
func (r *Registry) RegisterPointer(surface SurfaceID, kind PointerKind, value any) error {
	if !r.surfaces.Has(surface) {
		return unknownSurfaceError(surface)
	}
	h, ok := asHandler(value)
	if !ok {
		return typeError(fmt.Sprintf("%s.onmouse%s", surface, kind))
	}
	slot := PointerSlot{Surface: surface, Kind: kind}
	r.state.Pointer[slot] = h
	r.attach(slot)
	r.notifyInteractive()
	return nil
}

// RegisterInterval validates setInterval arguments and replaces any active
// interval. args must be exactly [handler, periodMillis].
func (r *Registry) RegisterInterval(args []any) error {
	if len(args) != 2 {
		return argumentError(gotext.Get(msgIntervalArity))
	}
	h, ok := asHandler(args[0])
	if !ok {
		return argumentError(gotext.Get(msgIntervalFunc))
	}
	period, ok := asMillis(args[1])
	if !ok || period < MinInterval {
		return argumentError(gotext.Get(msgIntervalPeriod))
	}
	if r.binder != nil {
		r.binder.stopInterval()
	}
	r.state.Interval = h
	r.state.IntervalPeriod = period
	if r.binder != nil {
		r.binder.startInterval(period)
	}
	r.notifyInteractive()
	return nil
}

// Clear removes every handler, detaches every listener and stops the
// interval. Added surfaces stay valid.
func (r *Registry) Clear() {
	r.attached.Each(func(slot PointerSlot) {
		if r.binder != nil {
			r.binder.detachPointer(slot)
		}
	})
	r.attached = mapset.New[PointerSlot]()
	if r.binder != nil {
		r.binder.stopInterval()
	}
	r.state = State{Pointer: make(map[PointerSlot]Handler)}
}

// Restore replaces the registry contents with a copy of s. Listeners implied
// by s are attached, listeners no longer present are detached and the
// interval is restarted to match s. The registry is unchanged on error.
func (r *Registry) Restore(s State) error {
	for slot := range s.Pointer {
		if !r.surfaces.Has(slot.Surface) {
			return &ReplayError{
				Code:    ErrCodeUnknownSurface,
				Message: fmt.Sprintf("restored state references unknown surface %q", slot.Surface),
				Index:   -1,
			}
		}
	}

	next := s.Clone()
	if next.Pointer == nil {
		next.Pointer = make(map[PointerSlot]Handler)
	}

	var stale []PointerSlot
	r.attached.Each(func(slot PointerSlot) {
		if _, ok := next.Pointer[slot]; !ok {
			stale = append(stale, slot)
		}
	})
	for _, slot := range stale {
		r.attached.Remove(slot)
		if r.binder != nil {
			r.binder.detachPointer(slot)
		}
	}
	for slot := range next.Pointer {
		r.attach(slot)
	}

	if r.binder != nil {
		r.binder.stopInterval()
	}
	r.state = next
	if r.binder != nil && next.Interval.Declared() {
		r.binder.startInterval(next.IntervalPeriod)
	}
	return nil
}

func (r *Registry) attach(slot PointerSlot) {
	if r.attached.Has(slot) {
		return
	}
	r.attached.Put(slot)
	if r.binder != nil {
		r.binder.attachPointer(slot)
	}
}

func (r *Registry) notifyInteractive() {
	if r.binder != nil {
		r.binder.makeInteractive()
	}
}

func asHandler(v any) (Handler, bool) {
	switch h := v.(type) {
	case augment.Func:
		return h, h.Declared()
	case *augment.Func:
		if h == nil {
			return Handler{}, false
		}
		return *h, h.Declared()
	default:
		return Handler{}, false
	}
}

// asMillis accepts the numeric types a runtime may hand over.
func asMillis(v any) (time.Duration, bool) {
	var ms float64
	switch n := v.(type) {
	case float64:
		ms = n
	case int:
		ms = float64(n)
	case int64:
		ms = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}
