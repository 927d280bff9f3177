package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stjordanis/jsdares/internal/input"
)

// Session is a recorded program run.
type Session struct {
	ID         string
	Name       string
	Source     string
	Width      int
	Height     int
	CreatedSeq int64
}

// CreateSession inserts sess. An empty ID is generated. CreatedSeq is
// assigned as one past the highest existing value and returned in the
// stored session.
func (s *Store) CreateSession(ctx context.Context, sess Session) (Session, error) {
	if sess.ID == "" {
		sess.ID = s.ids.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("create session: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(created_seq), 0) + 1 FROM sessions`,
	).Scan(&sess.CreatedSeq); err != nil {
		return Session{}, fmt.Errorf("create session: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, name, source, width, height, created_seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Name, sess.Source, sess.Width, sess.Height, sess.CreatedSeq)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("create session: commit: %w", err)
	}

	slog.Info("session created", "session", sess.ID, "name", sess.Name, "seq", sess.CreatedSeq)
	return sess, nil
}

// AppendEntry stores entry at log position seq. Writing the same position
// twice is a no-op, so a retried write is harmless.
func (s *Store) AppendEntry(ctx context.Context, sessionID string, seq int, entry input.Entry) error {
	payload, err := marshalEvent(entry.Event)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	state, err := marshalState(entry.Preceding)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, kind, handler, payload, state, state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		seq,
		string(entry.Event.Category()),
		entry.Handler().Name,
		payload,
		state,
		entry.Preceding.Hash(),
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// TruncateSession deletes the entries at position n and beyond.
func (s *Store) TruncateSession(ctx context.Context, sessionID string, n int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE session_id = ? AND seq >= ?`, sessionID, n)
	if err != nil {
		return fmt.Errorf("truncate session: %w", err)
	}
	if removed, err := res.RowsAffected(); err == nil && removed > 0 {
		slog.Debug("session truncated", "session", sessionID, "seq", n, "removed", removed)
	}
	return nil
}

// UpdateSessionSource replaces the program a session replays against.
func (s *Store) UpdateSessionSource(ctx context.Context, sessionID, source string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET source = ? WHERE id = ?`, source, sessionID)
	if err != nil {
		return fmt.Errorf("update session source: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update session source %s: %w", sessionID, ErrSessionNotFound)
	}
	return nil
}

// DeleteSession removes a session and its events.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
