package keyops

import (
	"errors"
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
)

// Batch labels, shown by hosts in their undo history.
const (
	LabelTransform  = "TransformKeys"
	LabelRemoveFlat = "Remove Flat Keys"
	LabelTween      = "Tween"
	LabelNudge      = "Camera NudgeKeys"
)

// inBatch runs fn between BeginBatch and EndBatch. fn's error is handed to
// EndBatch so a transactional host can roll back. A nil Batcher runs fn
// unwrapped.
func inBatch(b anim.Batcher, op, label string, fn func() error) error {
	if b == nil {
		return fn()
	}
	if err := b.BeginBatch(label); err != nil {
		return hostError(op, "begin batch", err)
	}
	err := fn()
	if endErr := b.EndBatch(err); endErr != nil {
		slog.Error("end batch failed", "op", op, "label", label, "error", endErr)
		if err == nil {
			return hostError(op, "end batch", endErr)
		}
		return errors.Join(err, hostError(op, "end batch", endErr))
	}
	return err
}

// WithFrame saves the cursor's frame, runs fn, and restores the frame on
// every exit path. A restore failure is reported only when fn succeeded.
func WithFrame(cursor anim.TimeCursor, fn func() error) (err error) {
	orig := cursor.Frame()
	defer func() {
		if rerr := cursor.SetFrame(orig); rerr != nil {
			slog.Error("restore time cursor failed", "frame", orig, "error", rerr)
			if err == nil {
				err = hostError("time", "restore cursor", rerr)
			}
		}
	}()
	return fn()
}
