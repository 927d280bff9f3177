package store

import (
	"context"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/input"
)

// Recorder mirrors a host's event log into a stored session.
type Recorder struct {
	ctx       context.Context
	store     *Store
	sessionID string
}

var _ host.Recorder = (*Recorder)(nil)

// Recorder returns a host.Recorder writing to sessionID.
func (s *Store) Recorder(ctx context.Context, sessionID string) *Recorder {
	return &Recorder{ctx: ctx, store: s, sessionID: sessionID}
}

// Record stores entry at index.
func (r *Recorder) Record(index int, entry input.Entry) error {
	return r.store.AppendEntry(r.ctx, r.sessionID, index, entry)
}

// Truncate drops entries from n onward.
func (r *Recorder) Truncate(n int) error {
	return r.store.TruncateSession(r.ctx, r.sessionID, n)
}

// Source stores src as the session's program.
func (r *Recorder) Source(src string) error {
	return r.store.UpdateSessionSource(r.ctx, r.sessionID, src)
}
