package edit

import (
	"fmt"
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/keyops"
)

// Keys returns the keys of the channel at path.
func Keys(h Host, path string) ([]anim.Keyframe, error) {
	c, err := h.Channel(path)
	if err != nil {
		return nil, err
	}
	keys, err := c.Keyframes()
	if err != nil {
		return nil, fmt.Errorf("read keys of %s: %w", path, err)
	}
	return keys, nil
}

// Flatten removes flat keys from every channel under the given path
// prefixes. No prefix selects every channel.
func Flatten(h Host, prefixes ...string) (keyops.Report, error) {
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}
	var curves []anim.Curve
	seen := make(map[string]bool)
	for _, prefix := range prefixes {
		paths, err := h.ChannelPaths(prefix)
		if err != nil {
			return keyops.Report{}, fmt.Errorf("list channels under %q: %w", prefix, err)
		}
		if len(paths) == 0 {
			return keyops.Report{}, fmt.Errorf("no channels under %q: %w", prefix, anim.ErrNotFound)
		}
		for _, p := range paths {
			if seen[p] {
				continue
			}
			seen[p] = true
			c, err := h.Channel(p)
			if err != nil {
				return keyops.Report{}, err
			}
			curves = append(curves, c)
		}
	}
	return keyops.RemoveFlatKeys(h, curves...)
}

// Transform scales and translates the keys named by specs.
func Transform(h Host, specs []string, opts keyops.TransformOptions) (keyops.Report, error) {
	sel, err := Select(h, specs)
	if err != nil {
		return keyops.Report{}, err
	}
	return keyops.TransformKeyframes(h, sel, opts)
}

// Flip mirrors the keys named by specs about an aligned pivot. axis is
// "x" for time or "y" for value.
func Flip(h Host, specs []string, axis, pivot string) (keyops.Report, error) {
	align, err := keyops.ParseAlignment(pivot)
	if err != nil {
		return keyops.Report{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if align == keyops.AlignNone {
		align = keyops.AlignMiddle
	}
	sel, err := Select(h, specs)
	if err != nil {
		return keyops.Report{}, err
	}
	return keyops.Flip(h, sel, keyops.FlipAxis(axis), align)
}

// TweenRequest is a tween of either selected keys or whole channels at
// one frame.
type TweenRequest struct {
	// Keys tweens each named key at its own frame.
	Keys []string

	// Channels tweens each channel at Frame, or at the host's current
	// frame when Frame is nil.
	Channels []string
	Frame    *float64

	Blend float64
}

// Tween blends keys toward their neighbors.
func Tween(h Host, req TweenRequest) (keyops.TweenReport, error) {
	switch {
	case len(req.Keys) > 0 && len(req.Channels) > 0:
		return keyops.TweenReport{}, fmt.Errorf("%w: tween takes keys or channels, not both", ErrInvalidArgument)
	case len(req.Keys) > 0:
		sel, err := Select(h, req.Keys)
		if err != nil {
			return keyops.TweenReport{}, err
		}
		return keyops.TweenSelection(h, sel, req.Blend)
	case len(req.Channels) > 0:
		curves := make([]anim.Curve, 0, len(req.Channels))
		for _, p := range req.Channels {
			c, err := h.Channel(p)
			if err != nil {
				return keyops.TweenReport{}, err
			}
			curves = append(curves, c)
		}
		frame := h.Frame()
		if req.Frame != nil {
			frame = *req.Frame
		}
		return keyops.TweenChannels(h, curves, frame, req.Blend)
	}
	return keyops.TweenReport{}, fmt.Errorf("%w: tween needs keys or channels", ErrInvalidArgument)
}

// NudgeRequest is a camera-space nudge of vector parameters. Each parm
// path names three channels: the path with "x", "y" and "z" appended.
type NudgeRequest struct {
	Camera string
	Parms  []string
	Dir    string
	Amount float64
	Range  string
}

// Nudge moves the parameters by Amount in the named direction of the
// camera's view.
func Nudge(h Host, req NudgeRequest) (keyops.NudgeReport, error) {
	dir, ok := keyops.Directions[req.Dir]
	if !ok {
		return keyops.NudgeReport{}, fmt.Errorf("%w: unknown nudge direction %q", ErrInvalidArgument, req.Dir)
	}
	rng, err := keyops.ParseTimeRange(req.Range)
	if err != nil {
		return keyops.NudgeReport{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if len(req.Parms) == 0 {
		return keyops.NudgeReport{}, fmt.Errorf("%w: nudge needs at least one parameter", ErrInvalidArgument)
	}

	targets := make([]anim.VectorParm, 0, len(req.Parms))
	for _, p := range req.Parms {
		parm, err := vectorParm(h, p)
		if err != nil {
			return keyops.NudgeReport{}, err
		}
		targets = append(targets, parm)
	}
	return keyops.NudgeKeys(h, keyops.NudgeRequest{
		Camera:    req.Camera,
		Targets:   targets,
		Direction: dir,
		Amount:    req.Amount,
		Range:     rng,
	})
}

func vectorParm(h Host, path string) (anim.VectorParm, error) {
	parm := anim.VectorParm{Name: anim.CleanPath(path)}
	for i, axis := range []string{"x", "y", "z"} {
		c, err := h.Channel(parm.Name + axis)
		if err != nil {
			return anim.VectorParm{}, fmt.Errorf("parameter %s: %w", parm.Name, err)
		}
		parm.Channels[i] = c
	}
	return parm, nil
}

// Undo reverts the host's most recent batch and returns its label.
func Undo(h Host) (string, error) {
	u, ok := h.(anim.Undoer)
	if !ok {
		return "", ErrUndoUnsupported
	}
	label, err := u.Undo()
	if err != nil {
		return "", err
	}
	slog.Debug("undo", "label", label)
	return label, nil
}
