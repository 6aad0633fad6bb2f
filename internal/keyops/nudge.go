package keyops

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/roach88/keytar/internal/anim"
)

// TimeRange selects which frames NudgeKeys visits.
type TimeRange string

const (
	// RangeAll visits every frame keyed on any of the parameter's channels.
	RangeAll TimeRange = "all"
	// RangeSelection visits the keyed frames inside the playbar selection.
	RangeSelection TimeRange = "sel"
	// RangeCurrent visits only the cursor's current frame.
	RangeCurrent TimeRange = "cur"
)

// ParseTimeRange validates a time range name.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(s); r {
	case RangeAll, RangeSelection, RangeCurrent:
		return r, nil
	case "":
		return RangeAll, nil
	}
	return "", fmt.Errorf("unknown time range %q (want all, sel or cur)", s)
}

// Directions maps the nudge panel's buttons to unit offsets in camera
// space: x and y in normalized device coordinates, z in depth.
var Directions = map[string]mgl64.Vec3{
	"left":  {-1, 0, 0},
	"right": {1, 0, 0},
	"up":    {0, 1, 0},
	"down":  {0, -1, 0},
	"back":  {0, 0, 1},
	"fwd":   {0, 0, -1},
}

// NudgeHost is what NudgeKeys needs from the host.
type NudgeHost interface {
	anim.Batcher
	anim.TimeCursor
	anim.Playbar
	anim.CameraLookup
}

// NudgeRequest describes one nudge across the keys of some parameters.
type NudgeRequest struct {
	Camera    string
	Targets   []anim.VectorParm
	Direction mgl64.Vec3
	Amount    float64
	Range     TimeRange
}

// NudgeReport summarizes a NudgeKeys call.
type NudgeReport struct {
	Targets int `json:"targets"`
	Keys    int `json:"keys"`
}

type nudgeWrite struct {
	target anim.VectorParm
	frame  float64
	pos    mgl64.Vec3
}

// NudgeKeys moves each target parameter by Direction*Amount in the camera's
// space at every frame of the requested range.
//
// All positions are computed first, moving the host's time cursor to each
// frame so animated cameras and parameters evaluate there; the cursor is
// restored afterwards. The new positions are then written as keys inside one
// batch. A degenerate depth at any frame fails the call before any write.
func NudgeKeys(host NudgeHost, req NudgeRequest) (NudgeReport, error) {
	const op = "nudge"
	var report NudgeReport

	cam, err := host.Camera(anim.CleanPath(req.Camera))
	if err != nil {
		if errors.Is(err, anim.ErrNotFound) {
			return report, newOpError(op, ErrCodeCameraNotFound, fmt.Sprintf("cannot find camera %q", req.Camera), err)
		}
		return report, hostError(op, "look up camera", err)
	}
	if cam == nil {
		return report, newOpError(op, ErrCodeCameraNotFound, fmt.Sprintf("cannot find camera %q", req.Camera), nil)
	}
	rng := req.Range
	if rng == "" {
		rng = RangeAll
	}
	off := req.Direction.Mul(req.Amount)

	var writes []nudgeWrite
	err = WithFrame(host, func() error {
		current := host.Frame()
		for _, target := range req.Targets {
			frames, err := nudgeFrames(host, target, rng, current)
			if err != nil {
				return err
			}
			slog.Debug("nudge frames", "target", target.Name, "frames", frames)
			for _, f := range frames {
				if err := host.SetFrame(f); err != nil {
					return hostError(op, "set time cursor", err)
				}
				pos, err := target.Eval(host.Frame())
				if err != nil {
					return hostError(op, "evaluate "+target.Name, err)
				}
				moved, err := NudgeInCameraSpace(pos, cam, off.X(), off.Y(), off.Z())
				if err != nil {
					return fmt.Errorf("%s at frame %g: %w", target.Name, f, err)
				}
				writes = append(writes, nudgeWrite{target: target, frame: f, pos: moved})
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	err = inBatch(host, op, LabelNudge, func() error {
		for _, w := range writes {
			if err := w.target.Set(w.frame, w.pos); err != nil {
				return hostError(op, "write keys", err)
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	report.Targets = len(req.Targets)
	report.Keys = len(writes)
	slog.Info("nudged keys", "camera", req.Camera, "targets", report.Targets, "keys", report.Keys)
	return report, nil
}

func nudgeFrames(host NudgeHost, target anim.VectorParm, rng TimeRange, current float64) ([]float64, error) {
	if rng == RangeCurrent {
		return []float64{current}, nil
	}
	frames, err := target.KeyFrames()
	if err != nil {
		return nil, hostError("nudge", "read key frames", err)
	}
	if rng != RangeSelection {
		return frames, nil
	}
	start, end, err := host.SelectionRange()
	if err != nil {
		return nil, hostError("nudge", "read playbar selection", err)
	}
	inRange := frames[:0]
	for _, f := range frames {
		if f >= start && f <= end {
			inRange = append(inRange, f)
		}
	}
	return inRange, nil
}
