// Package keyops implements the keyframe editing operations.
//
// Four independent operations work over the anim model:
//
//   - NudgeInCameraSpace moves a world position along a camera's view axes
//     (left/right, up/down in normalized device coordinates, and depth).
//     NudgeKeys applies it to every key of a vector parameter.
//   - CompactFlatRuns removes interior keys of equal-value runs without
//     changing the sampled curve. RemoveFlatKeys applies it to many curves.
//   - TransformKeyframes scales and translates a selection about a pivot,
//     optionally rippling the keys outside the selected frame range.
//     Flip is a transform with -1 scale on one axis.
//   - TweenAt blends a frame's value between its nearest neighbors.
//
// EXECUTION MODEL:
//
// Every operation is synchronous and single-threaded and assumes exclusive
// access to the curves it is given. Mutating operations run inside one
// host batch (anim.Batcher), so the whole call is one undo step.
//
// Validation and planning finish before the first mutation: an invalid
// selection or a zero-width time range leaves every curve untouched.
// Once mutation starts, a host failure stops the operation and the error is
// passed to EndBatch. Rolling back is the host's job; without host support
// the curves stay partially mutated.
//
// The nudge workflow moves the host's time cursor to each key frame and
// always restores the original frame, on error paths too.
package keyops
