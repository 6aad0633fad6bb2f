package anim

import "errors"

// Host errors shared by every host implementation.
var (
	// ErrNotFound is wrapped by hosts when a path resolves to nothing.
	ErrNotFound = errors.New("not found")

	// ErrNothingToUndo is returned by Undoer.Undo on an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Batcher groups the mutations of one operation into a single undoable
// unit. EndBatch receives the operation's outcome; a host with
// transactional storage may roll back when err is non-nil. The keyframe
// operations never roll back on their own.
type Batcher interface {
	BeginBatch(label string) error
	EndBatch(err error) error
}

// TimeCursor is the host's global current-time cursor.
type TimeCursor interface {
	Frame() float64
	SetFrame(frame float64) error
}

// Playbar exposes the frame range currently selected on the host timeline.
type Playbar interface {
	SelectionRange() (start, end float64, err error)
}

// Undoer is a host that keeps one undo group per committed batch.
type Undoer interface {
	// Undo reverts the most recent group and returns its batch label.
	Undo() (label string, err error)
}

