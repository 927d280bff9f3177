// Package store persists recorded sessions in SQLite.
//
// A session is a program source plus the event log delivered to it. Each
// log entry is stored with the canonical JSON of its event and of the
// handler registry state that preceded it, which is everything needed to
// replay the session against the same source.
//
// # Ordering
//
// Events are keyed by (session_id, seq) where seq is the position in the
// event log. Sessions carry a logical created_seq. Every query orders by
// these columns and never by wall-clock time:
//
//	ORDER BY seq ASC
//	ORDER BY created_seq ASC, id COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: deleting a session deletes its events
package store
