package input

import (
	"fmt"
	"sort"
	"time"

	"github.com/stjordanis/jsdares/internal/ir"
)

// Handler returns the handler the entry's preceding state held for its
// event. It is the zero Handler when none was registered.
func (e Entry) Handler() Handler {
	h, _ := handlerFor(e.Preceding, e.Event)
	return h
}

// Encode returns the canonical ir form of the state. Pointer slots are listed
// in (surface, kind) order.
func (s State) Encode() ir.Object {
	slots := make([]PointerSlot, 0, len(s.Pointer))
	for slot := range s.Pointer {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Surface != slots[j].Surface {
			return slots[i].Surface < slots[j].Surface
		}
		return slots[i].Kind < slots[j].Kind
	})
	pointer := make(ir.Array, 0, len(slots))
	for _, slot := range slots {
		pointer = append(pointer, ir.Object{
			"surface": ir.String(string(slot.Surface)),
			"type":    ir.String(slot.Kind.String()),
			"handler": ir.String(s.Pointer[slot].Name),
		})
	}
	return ir.Object{
		"keydown":     handlerValue(s.KeyDown),
		"keyup":       handlerValue(s.KeyUp),
		"interval":    handlerValue(s.Interval),
		"interval_ms": ir.Int(s.IntervalPeriod / time.Millisecond),
		"pointer":     pointer,
	}
}

// Hash is the content hash of the encoded state.
func (s State) Hash() string {
	return ir.MustHash(ir.DomainState, s.Encode())
}

func handlerValue(h Handler) ir.Value {
	if !h.Declared() {
		return ir.Null{}
	}
	return ir.String(h.Name)
}

// DecodeState is the inverse of State.Encode.
func DecodeState(obj ir.Object) (State, error) {
	s := State{Pointer: make(map[PointerSlot]Handler)}
	var err error
	if s.KeyDown, err = handlerField(obj, "keydown"); err != nil {
		return State{}, err
	}
	if s.KeyUp, err = handlerField(obj, "keyup"); err != nil {
		return State{}, err
	}
	if s.Interval, err = handlerField(obj, "interval"); err != nil {
		return State{}, err
	}
	ms, err := intField(obj, "interval_ms")
	if err != nil {
		return State{}, err
	}
	s.IntervalPeriod = time.Duration(ms) * time.Millisecond

	pointer, ok := obj["pointer"].(ir.Array)
	if !ok {
		return State{}, fmt.Errorf("decode state: field %q missing or not an array", "pointer")
	}
	for i, v := range pointer {
		slot, ok := v.(ir.Object)
		if !ok {
			return State{}, fmt.Errorf("decode state: pointer[%d] is not an object", i)
		}
		surface, err := stringField(slot, "surface")
		if err != nil {
			return State{}, err
		}
		typ, err := stringField(slot, "type")
		if err != nil {
			return State{}, err
		}
		kind, err := ParsePointerKind(typ)
		if err != nil {
			return State{}, fmt.Errorf("decode state: %w", err)
		}
		name, err := stringField(slot, "handler")
		if err != nil {
			return State{}, err
		}
		s.Pointer[PointerSlot{Surface: SurfaceID(surface), Kind: kind}] = Handler{Name: name}
	}
	return s, nil
}

func handlerField(obj ir.Object, name string) (Handler, error) {
	switch v := obj[name].(type) {
	case ir.Null:
		return Handler{}, nil
	case ir.String:
		return Handler{Name: string(v)}, nil
	default:
		return Handler{}, fmt.Errorf("decode state: field %q must be a string or null", name)
	}
}
