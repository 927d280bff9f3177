package input

import "fmt"

// Entry is one delivered event together with the registry state captured
// immediately before it was delivered.
type Entry struct {
	Event     Event
	Preceding State
}

// EventLog is the ordered record of delivered events. Sequence position is
// the only ordering; there are no timestamps.
type EventLog struct {
	registry *Registry
	entries  []Entry
}

func newEventLog(r *Registry) *EventLog {
	return &EventLog{registry: r}
}

// Begin snapshots the registry and appends a new entry for ev.
func (l *EventLog) Begin(ev Event) Entry {
	e := Entry{Event: ev, Preceding: l.registry.Snapshot()}
	l.entries = append(l.entries, e)
	return e
}

// Append adds a previously recorded entry, used when loading a stored
// session.
func (l *EventLog) Append(e Entry) {
	l.entries = append(l.entries, Entry{Event: e.Event, Preceding: e.Preceding.Clone()})
}

// Len returns the number of entries.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// At returns entry i. It panics if i is out of range.
func (l *EventLog) At(i int) Entry {
	return l.entries[i]
}

// Entries returns a copy of the entry slice.
func (l *EventLog) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// PopOldest removes and returns the first entry.
func (l *EventLog) PopOldest() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	e := l.entries[0]
	l.entries[0] = Entry{}
	l.entries = l.entries[1:]
	return e, true
}

// TruncateAfter rewinds to the boundary before entry n: the registry is
// restored to entry n's preceding state and entries n and later are
// discarded. n == Len() is a no-op.
func (l *EventLog) TruncateAfter(n int) error {
	if n < 0 || n > len(l.entries) {
		return &ReplayError{
			Code:    ErrCodeTruncateRange,
			Message: fmt.Sprintf("cannot truncate log of length %d at %d", len(l.entries), n),
			Index:   n,
		}
	}
	if n == len(l.entries) {
		return nil
	}
	if err := l.registry.Restore(l.entries[n].Preceding); err != nil {
		return err
	}
	clear(l.entries[n:])
	l.entries = l.entries[:n]
	return nil
}

// ResetToEnd empties the log and keeps the current registry state, so the
// present becomes the new origin.
func (l *EventLog) ResetToEnd() {
	clear(l.entries)
	l.entries = l.entries[:0]
}
