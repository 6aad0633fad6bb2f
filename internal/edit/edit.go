package edit

import (
	"errors"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/keyops"
)

// Host is an animation scene that edits can run against.
type Host interface {
	anim.Batcher
	anim.TimeCursor
	anim.Playbar
	anim.CameraLookup

	// Channel returns the channel at path, wrapping anim.ErrNotFound.
	Channel(path string) (anim.Channel, error)

	// ChannelPaths returns the channels whose path starts with prefix,
	// sorted.
	ChannelPaths(prefix string) ([]string, error)
}

var (
	// ErrInvalidArgument is wrapped by errors in a request itself.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUndoUnsupported is returned by Undo for a host without history.
	ErrUndoUnsupported = errors.New("host has no undo history")
)

// Codes reported by Code in addition to the keyops error codes.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNothingToUndo   = "NOTHING_TO_UNDO"
)

// Code classifies err for callers that report errors by code. Keyframe
// operation errors keep their own code; unclassified errors are host
// failures.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if c := keyops.CodeOf(err); c != "" {
		return string(c)
	}
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrUndoUnsupported):
		return CodeInvalidArgument
	case errors.Is(err, anim.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, anim.ErrNothingToUndo):
		return CodeNothingToUndo
	}
	return string(keyops.ErrCodeHostFailure)
}
