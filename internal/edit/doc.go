// Package edit resolves path-based edit requests against a host and runs
// the matching keyframe operation.
//
// It is the layer shared by the command line and the scenario harness:
// requests name channels and keys by path ("/obj/geo1/tx@1,24"), edit
// turns them into curves and selections, and the operations in keyops do
// the work. Any host that exposes channels by path can be edited, the
// SQLite store session and the in-memory scene alike.
package edit
