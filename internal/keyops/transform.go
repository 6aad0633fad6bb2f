package keyops

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/keytar/internal/anim"
)

// TransformOptions configures TransformKeyframes.
type TransformOptions struct {
	ScaleX, ScaleY         float64
	TranslateX, TranslateY float64
	Pivot                  Pivot

	// Ripple shifts keys outside the selected frame range by the
	// displacement of the nearest range boundary.
	Ripple bool

	// SnapFrame rounds every moved key to a whole frame.
	SnapFrame bool
}

// DefaultTransformOptions returns the identity transform about the middle
// of the selection with ripple and frame snapping on.
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{
		ScaleX:    1,
		ScaleY:    1,
		Pivot:     Pivot{Align: AlignMiddle},
		Ripple:    true,
		SnapFrame: true,
	}
}

// FlipAxis selects the axis mirrored by Flip.
type FlipAxis string

const (
	// FlipTime mirrors key timing (scale x by -1).
	FlipTime FlipAxis = "x"
	// FlipValue mirrors key values (scale y by -1).
	FlipValue FlipAxis = "y"
)

// TransformPlan is the validated, fully computed effect of a transform.
type TransformPlan struct {
	Bounds         Bounds
	PivotX, PivotY float64

	// LeftShift and RightShift are the frame displacements of the
	// selection's first and last frame.
	LeftShift, RightShift float64

	Mutations []*Mutation
}

// PlanTransform validates sel and computes every key move without
// touching the curves' keys beyond reading them.
func PlanTransform(sel anim.Selection, opts TransformOptions) (*TransformPlan, error) {
	const op = "transform"

	if err := sel.Validate(); err != nil {
		return nil, newOpError(op, ErrCodeInvalidSelection, "cannot transform selection", err)
	}
	b := SelectionBounds(sel)
	if b.XMin == b.XMax {
		return nil, newOpError(op, ErrCodeZeroTimeRange,
			fmt.Sprintf("all selected keys are at frame %g; select a wider time range", b.XMin), nil)
	}
	px, py := opts.Pivot.Resolve(b)

	plan := &TransformPlan{
		Bounds: b,
		PivotX: px,
		PivotY: py,
	}
	// boundary displacement: (x - px)*sx + tx + px - x
	plan.LeftShift = (b.XMin-px)*opts.ScaleX + opts.TranslateX - (b.XMin - px)
	plan.RightShift = (b.XMax-px)*opts.ScaleX + opts.TranslateX - (b.XMax - px)

	slog.Debug("transform plan",
		"xmin", b.XMin, "xmax", b.XMax, "ymin", b.YMin, "ymax", b.YMax,
		"pivot_x", px, "pivot_y", py,
		"left_shift", plan.LeftShift, "right_shift", plan.RightShift)

	ripple := opts.Ripple && opts.ScaleX > 0
	for _, e := range sel {
		m := &Mutation{Curve: e.Curve}

		if ripple {
			before, err := e.Curve.KeyframesBefore(b.XMin - 1)
			if err != nil {
				return nil, hostError(op, "read keys before range on "+anim.PathOf(e.Curve), err)
			}
			after, err := e.Curve.KeyframesAfter(b.XMax + 1)
			if err != nil {
				return nil, hostError(op, "read keys after range on "+anim.PathOf(e.Curve), err)
			}
			m.rippled(before, plan.LeftShift, opts.SnapFrame)
			m.rippled(after, plan.RightShift, opts.SnapFrame)
		}

		for _, k := range e.Keys {
			m.Deletes = append(m.Deletes, k.Frame)
		}
		for _, k := range e.Keys {
			m.Inserts = append(m.Inserts, transformKey(k, px, py, opts))
		}
		plan.Mutations = append(plan.Mutations, m)
	}
	return plan, nil
}

func (m *Mutation) rippled(keys []anim.Keyframe, shift float64, snap bool) {
	for _, k := range keys {
		m.Deletes = append(m.Deletes, k.Frame)
		k.Frame = snapped(k.Frame+shift, snap)
		m.Inserts = append(m.Inserts, k)
	}
}

// transformKey maps one selected key. Frames scale about the pivot and
// shift by TranslateX. Values are mapped onto the scaled and translated
// value range and then offset by TranslateY once more, so a pure value
// translation moves keys by twice TranslateY. The map needs no division,
// so a selection whose values are all equal scales to itself.
func transformKey(k anim.Keyframe, px, py float64, opts TransformOptions) anim.Keyframe {
	k.Frame = snapped((k.Frame-px)*opts.ScaleX+opts.TranslateX+px, opts.SnapFrame)
	k.Value = (k.Value-py)*opts.ScaleY + opts.TranslateY + py + opts.TranslateY

	if !k.IsSlopeAuto() {
		k.InAccel *= opts.ScaleX
		k.OutAccel *= opts.ScaleX
		k.InSlope *= opts.ScaleY
		k.OutSlope *= opts.ScaleY
	} else {
		k.SetSlope(0)
		k.SetSlopeAuto()
	}
	return k
}

func snapped(f float64, snap bool) float64 {
	if snap {
		return math.Round(f)
	}
	return f
}

// TransformKeyframes scales and translates the selected keys about a
// pivot in one batch.
//
// Before any mutation the selection is validated and the whole plan is
// computed; an empty selection or a selection spanning a single frame
// fails without touching any curve. Ripple applies only for ScaleX > 0.
func TransformKeyframes(b anim.Batcher, sel anim.Selection, opts TransformOptions) (Report, error) {
	plan, err := PlanTransform(sel, opts)
	if err != nil {
		return Report{}, err
	}
	var report Report
	err = inBatch(b, "transform", LabelTransform, func() error {
		var err error
		report, err = applyAll("transform", plan.Mutations)
		return err
	})
	if err == nil {
		slog.Info("transformed keys", "curves", report.Curves, "keys", sel.KeyCount())
	}
	return report, err
}

// Flip mirrors the selection in time or value about the aligned pivot,
// without ripple and with frame snapping.
func Flip(b anim.Batcher, sel anim.Selection, axis FlipAxis, align Alignment) (Report, error) {
	opts := TransformOptions{
		ScaleX:    1,
		ScaleY:    1,
		Pivot:     Pivot{Align: align},
		SnapFrame: true,
	}
	switch axis {
	case FlipTime:
		opts.ScaleX = -1
	case FlipValue:
		opts.ScaleY = -1
	default:
		return Report{}, newOpError("flip", ErrCodeInvalidSelection, fmt.Sprintf("unknown flip axis %q", axis), nil)
	}
	return TransformKeyframes(b, sel, opts)
}
