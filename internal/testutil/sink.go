package testutil

import (
	"github.com/stjordanis/jsdares/internal/input"
	"github.com/stjordanis/jsdares/internal/ir"
)

// RecordedEvent is one AddEvent call observed by a RecordingSink.
type RecordedEvent struct {
	Category input.Category
	Handler  string
	Args     ir.Array
}

// RecordingSink is an input.Sink that records every call.
//
// OnEvent, when set, runs after an event is recorded. Tests use it to play
// the part of a program handler, e.g. registering another handler from
// inside one.
type RecordingSink struct {
	Events      []RecordedEvent
	Interactive int
	OnEvent     func(RecordedEvent)
}

// AddEvent implements input.Sink.
func (s *RecordingSink) AddEvent(category input.Category, handler string, args ir.Array) {
	ev := RecordedEvent{Category: category, Handler: handler, Args: args}
	s.Events = append(s.Events, ev)
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}

// MakeInteractive implements input.Sink.
func (s *RecordingSink) MakeInteractive() {
	s.Interactive++
}

// Handlers returns the handler names in delivery order.
func (s *RecordingSink) Handlers() []string {
	out := make([]string, len(s.Events))
	for i, ev := range s.Events {
		out[i] = ev.Handler
	}
	return out
}

// Reset forgets every recorded call.
func (s *RecordingSink) Reset() {
	s.Events = nil
	s.Interactive = 0
}
