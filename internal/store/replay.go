package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stjordanis/jsdares/internal/host"
	"github.com/stjordanis/jsdares/internal/input"
)

// ReplayOptions configures how a stored session is re-run.
type ReplayOptions struct {
	// Factory compiles the session source.
	Factory host.Factory

	// Scheduler returns a fresh scheduler for each host. Nil uses the host
	// default.
	Scheduler func() input.Scheduler
}

// ReplayResult reports a determinism check of a stored session.
type ReplayResult struct {
	Session Session
	Events  int
	Hashes  [2]string
	Trace   []host.TraceEntry
}

// Deterministic reports whether both runs produced the same trace.
func (r ReplayResult) Deterministic() bool {
	return r.Hashes[0] == r.Hashes[1]
}

// Restore builds a host running sess with entries loaded into its event log
// and replayed. The caller closes the host.
func Restore(sess Session, entries []input.Entry, opts ReplayOptions) (*host.Host, error) {
	cfg := host.Config{Width: sess.Width, Height: sess.Height}
	if opts.Scheduler != nil {
		cfg.Scheduler = opts.Scheduler()
	}
	h := host.New(opts.Factory, cfg)
	if err := h.Load(sess.Source); err != nil {
		h.Close()
		return nil, fmt.Errorf("restore %s: %w", sess.ID, err)
	}
	for _, e := range entries {
		h.Virtualizer().Log().Append(e)
	}
	if err := h.Rerun(); err != nil {
		h.Close()
		return nil, fmt.Errorf("restore %s: %w", sess.ID, err)
	}
	return h, nil
}

// ReplaySession restores a stored session twice on fresh hosts and compares
// the content hashes of the two traces.
func (s *Store) ReplaySession(ctx context.Context, id string, opts ReplayOptions) (ReplayResult, error) {
	sess, entries, err := s.ReadSession(ctx, id)
	if err != nil {
		return ReplayResult{}, err
	}
	res := ReplayResult{Session: sess, Events: len(entries)}
	for pass := range res.Hashes {
		h, err := Restore(sess, entries, opts)
		if err != nil {
			return ReplayResult{}, err
		}
		res.Trace = h.Trace()
		res.Hashes[pass] = host.TraceHash(res.Trace)
		h.Close()
	}
	slog.Info("session replayed",
		"session", sess.ID,
		"events", res.Events,
		"deterministic", res.Deterministic(),
	)
	return res, nil
}
