// Package store provides a SQLite-backed animation scene for keytar.
//
// The store holds:
//   - Channels and their keyframes (one row per channel and frame)
//   - Cameras, as JSON camera descriptions
//   - Scene state: the time cursor and the playbar selection
//   - An undo journal: one group per committed batch, one entry per
//     touched key recording its prior state
//
// # Hosting keyframe operations
//
// Store.Session returns a Session implementing the host interfaces used by
// the keyframe operations. A batch runs inside one transaction, so an
// operation that fails part-way leaves the stored scene unchanged.
//
// Auto slopes are never trusted from storage: every read recomputes them
// from the neighboring keys.
//
// # Logical Identity and Time
//
//   - Undo groups are identified by UUIDv7 (IDGenerator)
//   - Journal ordering uses seq INTEGER from a logical Clock, never timestamps
//   - The clock resumes after the highest stored seq on Open
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
