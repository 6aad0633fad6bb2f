// Package harness runs keyframe edit scenarios against a fresh scene
// store and checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scale_about_left_edge
//	description: "Scaling x by 2 about ml doubles key spacing"
//	scene:
//	  frame: 1
//	  channels:
//	    - path: /obj/geo1/tx
//	      keys: [{frame: 0, value: 0}, {frame: 10, value: 5}]
//	steps:
//	  - op: transform
//	    keys: [/obj/geo1/tx]
//	    sx: 2
//	    pivot: ml
//	    expect:
//	      report: {curves: 1}
//	assertions:
//	  - type: keys
//	    channel: /obj/geo1/tx
//	    frames: [0, 20]
//
// The scene block is a scene document (see package scene). Steps name an
// edit operation and its parameters; an expect clause checks the error
// code (empty for success) and a subset of the operation's report. A
// step without expect must succeed.
//
// # Assertion Types
//
//   - keys: the channel's key frames, in order
//   - value: the key at frame holds value (and interp, when given)
//   - sample: the channel evaluates to value at frame
//   - history: the undo history has count groups
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite store with sequential
// undo group IDs, so the same scenario always yields the same snapshot.
// RunWithGolden compares that snapshot against
// testdata/golden/<name>.golden.
package harness
