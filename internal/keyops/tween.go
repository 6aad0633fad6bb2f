package keyops

import (
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
)

// PlanTween returns the blended value for frame from the nearest keys
// strictly before and strictly after it. ok is false when either neighbor
// is missing. A key exactly at frame is never used as a neighbor.
//
// blend is not clamped: values outside [0, 1] extrapolate past the
// neighbors.
func PlanTween(c anim.Curve, frame, blend float64) (value float64, ok bool, err error) {
	before, err := c.KeyframesBefore(frame)
	if err != nil {
		return 0, false, hostError("tween", "read keys before frame on "+anim.PathOf(c), err)
	}
	after, err := c.KeyframesAfter(frame)
	if err != nil {
		return 0, false, hostError("tween", "read keys after frame on "+anim.PathOf(c), err)
	}
	if len(before) == 0 || len(after) == 0 {
		return 0, false, nil
	}
	prev := before[len(before)-1]
	next := after[0]
	return prev.Value*(1-blend) + next.Value*blend, true, nil
}

// TweenAt writes the blend of frame's neighbors at frame and reports
// whether a key was written. A frame missing a neighbor on either side
// is left alone.
func TweenAt(c anim.Curve, frame, blend float64) (bool, error) {
	v, ok, err := PlanTween(c, frame, blend)
	if err != nil || !ok {
		return false, err
	}
	if err := anim.WriteValue(c, frame, v); err != nil {
		return false, hostError("tween", "write key on "+anim.PathOf(c), err)
	}
	slog.Debug("tweened key", "curve", anim.PathOf(c), "frame", frame, "value", v)
	return true, nil
}

// TweenReport summarizes a batch of tweens.
type TweenReport struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

// TweenSelection tweens every selected key in one batch. Keys are visited
// in selection order and each write is visible to the keys after it.
func TweenSelection(b anim.Batcher, sel anim.Selection, blend float64) (TweenReport, error) {
	const op = "tween"
	if err := sel.Validate(); err != nil {
		return TweenReport{}, newOpError(op, ErrCodeInvalidSelection, "cannot tween selection", err)
	}
	var report TweenReport
	err := inBatch(b, op, LabelTween, func() error {
		for _, e := range sel {
			for _, k := range e.Keys {
				if err := report.tween(e.Curve, k.Frame, blend); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return report, err
}

// TweenChannels tweens each curve at one frame in one batch.
func TweenChannels(b anim.Batcher, curves []anim.Curve, frame, blend float64) (TweenReport, error) {
	var report TweenReport
	err := inBatch(b, "tween", LabelTween, func() error {
		for _, c := range curves {
			if err := report.tween(c, frame, blend); err != nil {
				return err
			}
		}
		return nil
	})
	return report, err
}

func (r *TweenReport) tween(c anim.Curve, frame, blend float64) error {
	wrote, err := TweenAt(c, frame, blend)
	if err != nil {
		return err
	}
	if wrote {
		r.Written++
	} else {
		r.Skipped++
	}
	return nil
}
