// Package store provides SQLite-backed storage for compiled scores.
//
// Scores are stored by fingerprint: the SHA-256 of the canonical JSON
// form, computed in internal/ir with domain separation. Saving the same
// score twice is a no-op, so a compile pipeline can persist
// unconditionally. Each first save mints a compile id (UUID) for
// tracing a score back to the run that produced it.
//
// Ordering uses seq INTEGER (insertion order), never wall-clock time,
// so "latest by name" is stable across machines and replays.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
