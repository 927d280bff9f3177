package input

import (
	"fmt"

	"github.com/stjordanis/jsdares/internal/ir"
)

// Direction is the keyboard transition of a key event.
type Direction int

const (
	// KeyDown is a key press.
	KeyDown Direction = iota + 1
	// KeyUp is a key release.
	KeyUp
)

func (d Direction) String() string {
	switch d {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// PointerKind is the pointer event type a handler is registered for.
type PointerKind int

const (
	// PointerMove is pointer motion.
	PointerMove PointerKind = iota + 1
	// PointerDown is a button press.
	PointerDown
	// PointerUp is a button release.
	PointerUp
)

// PointerKinds lists every pointer kind in a stable order.
var PointerKinds = []PointerKind{PointerMove, PointerDown, PointerUp}

func (k PointerKind) String() string {
	switch k {
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	default:
		return fmt.Sprintf("PointerKind(%d)", int(k))
	}
}

// ParsePointerKind maps "move", "down" or "up" to a PointerKind.
func ParsePointerKind(s string) (PointerKind, error) {
	for _, k := range PointerKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pointer kind %q", s)
}

// SurfaceID names a pointer-event source, e.g. "canvas" or "maze".
type SurfaceID string

// Category is the addEvent category reported to the Sink.
type Category string

const (
	CategoryKeyboard Category = "keyboard"
	CategoryMouse    Category = "mouse"
	CategoryInterval Category = "interval"
)

// EventKind discriminates the Event union.
type EventKind int

const (
	// EventKeyboard is a key press or release.
	EventKeyboard EventKind = iota + 1
	// EventPointer is pointer motion or a button transition.
	EventPointer
	// EventInterval is one tick of the setInterval timer.
	EventInterval
)

func (k EventKind) String() string {
	switch k {
	case EventKeyboard:
		return "keyboard"
	case EventPointer:
		return "pointer"
	case EventInterval:
		return "interval"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// KeyboardEvent is the payload of an EventKeyboard.
type KeyboardEvent struct {
	Direction Direction
	KeyCode   int
}

// PointerEvent is the payload of an EventPointer.
// Local coordinates are relative to the surface origin, page coordinates to
// the host page.
type PointerEvent struct {
	Surface SurfaceID
	Kind    PointerKind
	LocalX  int
	LocalY  int
	PageX   int
	PageY   int
}

// Event is a delivered input event. Exactly one payload is meaningful,
// selected by Kind. Interval events carry no payload.
type Event struct {
	Kind     EventKind
	Keyboard KeyboardEvent
	Pointer  PointerEvent
}

// KeyEvent builds a keyboard Event.
func KeyEvent(dir Direction, code int) Event {
	return Event{Kind: EventKeyboard, Keyboard: KeyboardEvent{Direction: dir, KeyCode: code}}
}

// PointerEventOf builds a pointer Event.
func PointerEventOf(p PointerEvent) Event {
	return Event{Kind: EventPointer, Pointer: p}
}

// IntervalEvent builds an interval Event.
func IntervalEvent() Event {
	return Event{Kind: EventInterval}
}

// Category returns the addEvent category for the event.
func (e Event) Category() Category {
	switch e.Kind {
	case EventKeyboard:
		return CategoryKeyboard
	case EventPointer:
		return CategoryMouse
	default:
		return CategoryInterval
	}
}

// Args returns the argument list handed to the handler: a single event
// object for keyboard and pointer events, nothing for interval ticks.
func (e Event) Args() ir.Array {
	switch e.Kind {
	case EventKeyboard:
		return ir.Array{ir.Object{"keyCode": ir.Int(e.Keyboard.KeyCode)}}
	case EventPointer:
		return ir.Array{ir.Object{
			"layerX": ir.Int(e.Pointer.LocalX),
			"layerY": ir.Int(e.Pointer.LocalY),
			"pageX":  ir.Int(e.Pointer.PageX),
			"pageY":  ir.Int(e.Pointer.PageY),
		}}
	default:
		return ir.Array{}
	}
}

// Encode returns the canonical ir form of the event, used for storage and
// fingerprints.
func (e Event) Encode() ir.Object {
	obj := ir.Object{"kind": ir.String(e.Kind.String())}
	switch e.Kind {
	case EventKeyboard:
		obj["direction"] = ir.String(e.Keyboard.Direction.String())
		obj["keyCode"] = ir.Int(e.Keyboard.KeyCode)
	case EventPointer:
		obj["surface"] = ir.String(string(e.Pointer.Surface))
		obj["type"] = ir.String(e.Pointer.Kind.String())
		obj["layerX"] = ir.Int(e.Pointer.LocalX)
		obj["layerY"] = ir.Int(e.Pointer.LocalY)
		obj["pageX"] = ir.Int(e.Pointer.PageX)
		obj["pageY"] = ir.Int(e.Pointer.PageY)
	}
	return obj
}

// DecodeEvent is the inverse of Event.Encode.
func DecodeEvent(obj ir.Object) (Event, error) {
	kind, err := stringField(obj, "kind")
	if err != nil {
		return Event{}, err
	}
	switch kind {
	case "keyboard":
		dir, err := stringField(obj, "direction")
		if err != nil {
			return Event{}, err
		}
		code, err := intField(obj, "keyCode")
		if err != nil {
			return Event{}, err
		}
		switch dir {
		case "down":
			return KeyEvent(KeyDown, code), nil
		case "up":
			return KeyEvent(KeyUp, code), nil
		}
		return Event{}, fmt.Errorf("decode event: unknown direction %q", dir)
	case "pointer":
		surface, err := stringField(obj, "surface")
		if err != nil {
			return Event{}, err
		}
		typ, err := stringField(obj, "type")
		if err != nil {
			return Event{}, err
		}
		pk, err := ParsePointerKind(typ)
		if err != nil {
			return Event{}, fmt.Errorf("decode event: %w", err)
		}
		p := PointerEvent{Surface: SurfaceID(surface), Kind: pk}
		for name, dst := range map[string]*int{"layerX": &p.LocalX, "layerY": &p.LocalY, "pageX": &p.PageX, "pageY": &p.PageY} {
			if *dst, err = intField(obj, name); err != nil {
				return Event{}, err
			}
		}
		return PointerEventOf(p), nil
	case "interval":
		return IntervalEvent(), nil
	}
	return Event{}, fmt.Errorf("decode event: unknown kind %q", kind)
}

func stringField(obj ir.Object, name string) (string, error) {
	v, ok := obj[name].(ir.String)
	if !ok {
		return "", fmt.Errorf("decode: field %q missing or not a string", name)
	}
	return string(v), nil
}

func intField(obj ir.Object, name string) (int, error) {
	v, ok := obj[name].(ir.Int)
	if !ok {
		return 0, fmt.Errorf("decode: field %q missing or not an integer", name)
	}
	return int(v), nil
}
