// Package anim defines the curve, keyframe and camera model shared by the
// keyframe operations and the hosts that own the actual scene data.
//
// The operations in internal/keyops never construct curves; they read and
// mutate curves handed to them through the Curve interface. Hosts
// (internal/scene for the in-memory scene, internal/store for SQLite)
// implement these interfaces.
//
// Key constraints:
//   - A curve's keyframes are sorted by ascending frame with no duplicates.
//   - SetKeyframe replaces any existing key at the same frame.
//   - Auto-slope sides are recomputed by the host whenever the key set changes.
//   - Channel and camera paths are NFC-normalized (see CleanPath).
//
// Positions and transforms use mathgl's float64 types (mgl64); matrices
// transform column vectors, so a.Mul4(b) applies b first.
package anim
