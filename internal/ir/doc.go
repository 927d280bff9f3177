// Package ir provides the constrained value model used for event payloads,
// recorded handler state and traces.
//
// Every value that crosses the replay boundary (event arguments handed to a
// handler, the registry snapshot stored next to an event, the addEvent trace)
// is expressed in these types so it has exactly one canonical encoding.
//
// Key design constraints:
//   - NO floats: pointer coordinates are rounded to integers at the source
//   - Objects serialize with RFC 8785 key order
//   - ir imports nothing internal
//
// # Hashing
//
// Hashes are SHA-256 over a domain prefix, a zero byte and the canonical
// bytes, so an event log and a trace with equal encodings never collide:
//
//	jsdares/event/v1   input fingerprints
//	jsdares/state/v1   registry snapshots
//	jsdares/trace/v1   addEvent traces
package ir
