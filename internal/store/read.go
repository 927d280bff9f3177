package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stjordanis/jsdares/internal/input"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession returns a session and its event log in log order.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, []input.Entry, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, width, height, created_seq
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Name, &sess.Source, &sess.Width, &sess.Height, &sess.CreatedSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, nil, fmt.Errorf("read session %s: %w", id, err)
	}

	entries, err := s.readEntries(ctx, id)
	if err != nil {
		return Session{}, nil, err
	}
	return sess, entries, nil
}

func (s *Store) readEntries(ctx context.Context, id string) ([]input.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, payload, state
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []input.Entry{}
	for rows.Next() {
		var (
			seq            int
			payload, state string
		)
		if err := rows.Scan(&seq, &payload, &state); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if seq != len(entries) {
			return nil, fmt.Errorf("session %s: event log has a gap at seq %d", id, len(entries))
		}
		ev, err := unmarshalEvent(payload)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}
		st, err := unmarshalState(state)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}
		entries = append(entries, input.Entry{Event: ev, Preceding: st})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

// ListSessions returns every session in creation order. Event logs are not
// loaded.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, width, height, created_seq
		FROM sessions
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Source, &sess.Width, &sess.Height, &sess.CreatedSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// EventCounts returns the number of stored events per category for a
// session.
func (s *Store) EventCounts(ctx context.Context, sessionID string) (map[input.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM events
		WHERE session_id = ?
		GROUP BY kind
		ORDER BY kind ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[input.Category]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[input.Category(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}
