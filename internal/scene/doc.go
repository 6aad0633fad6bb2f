// Package scene is an in-memory animation host and the YAML scene format.
//
// A scene document lists channels with their keys, static cameras, the
// time cursor and an optional playbar selection:
//
//	frame: 1
//	playbar: {start: 1, end: 48}
//	cameras:
//	  - path: /obj/cam1
//	    translate: [0, 1.5, 10]
//	channels:
//	  - path: /obj/geo1/tx
//	    keys:
//	      - {frame: 1, value: 0}
//	      - {frame: 24, value: 3, interp: linear, out_slope: 0.5}
//
// Documents are checked against an embedded CUE schema (schema.cue),
// which also supplies defaults for omitted camera fields.
//
// Scene implements every host interface the keyframe operations need.
// Each batch is one undo group; a batch ended with an error is rolled back.
package scene
