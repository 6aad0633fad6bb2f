package keyops

import (
	"errors"
	"fmt"

	"github.com/roach88/keytar/internal/anim"
)

var errLocked = errors.New("curve is locked")

// testCurve is a frame-sorted in-memory curve. failSet makes every
// SetKeyframe call fail after the first failAfter successes.
type testCurve struct {
	path      string
	keys      []anim.Keyframe
	failSet   bool
	failAfter int
	sets      int
}

func newTestCurve(path string, keys ...anim.Keyframe) *testCurve {
	c := &testCurve{path: path, keys: append([]anim.Keyframe(nil), keys...)}
	anim.SortKeyframes(c.keys)
	return c
}

func (c *testCurve) Path() string { return c.path }

func (c *testCurve) Keyframes() ([]anim.Keyframe, error) {
	return append([]anim.Keyframe(nil), c.keys...), nil
}

func (c *testCurve) KeyframesBefore(f float64) ([]anim.Keyframe, error) {
	var out []anim.Keyframe
	for _, k := range c.keys {
		if k.Frame < f {
			out = append(out, k)
		}
	}
	return out, nil
}

func (c *testCurve) KeyframesAfter(f float64) ([]anim.Keyframe, error) {
	var out []anim.Keyframe
	for _, k := range c.keys {
		if k.Frame > f {
			out = append(out, k)
		}
	}
	return out, nil
}

func (c *testCurve) KeyframeAt(f float64) (anim.Keyframe, bool, error) {
	for _, k := range c.keys {
		if k.Frame == f {
			return k, true, nil
		}
	}
	return anim.Keyframe{}, false, nil
}

func (c *testCurve) SetKeyframe(k anim.Keyframe) error {
	if c.failSet && c.sets >= c.failAfter {
		return fmt.Errorf("set %s: %w", c.path, errLocked)
	}
	c.sets++
	_ = c.DeleteKeyframeAt(k.Frame)
	c.keys = append(c.keys, k)
	anim.SortKeyframes(c.keys)
	return nil
}

func (c *testCurve) DeleteKeyframeAt(f float64) error {
	out := c.keys[:0]
	for _, k := range c.keys {
		if k.Frame != f {
			out = append(out, k)
		}
	}
	c.keys = out
	return nil
}

func (c *testCurve) ValueAt(f float64) (float64, error) {
	return anim.Evaluate(c.keys, f), nil
}

func (c *testCurve) frames() []float64 { return anim.Frames(c.keys) }

func (c *testCurve) values() []float64 {
	out := make([]float64, len(c.keys))
	for i, k := range c.keys {
		out[i] = k.Value
	}
	return out
}

// explicitKey returns a linear key with non-auto slopes.
func explicitKey(f, v float64) anim.Keyframe {
	return anim.Keyframe{Frame: f, Value: v, Interp: anim.InterpLinear}
}

// recordingBatcher records batch boundaries.
type recordingBatcher struct {
	labels   []string
	ended    []error
	open     bool
	beginErr error
	endErr   error
}

func (b *recordingBatcher) BeginBatch(label string) error {
	if b.beginErr != nil {
		return b.beginErr
	}
	b.labels = append(b.labels, label)
	b.open = true
	return nil
}

func (b *recordingBatcher) EndBatch(err error) error {
	b.ended = append(b.ended, err)
	b.open = false
	return b.endErr
}

// testHost implements NudgeHost.
type testHost struct {
	recordingBatcher
	frame       float64
	frameLog    []float64
	selStart    float64
	selEnd      float64
	selErr      error
	cameras     map[string]anim.Camera
	setFrameErr error
}

func newTestHost() *testHost {
	return &testHost{cameras: map[string]anim.Camera{}}
}

func (h *testHost) Frame() float64 { return h.frame }

func (h *testHost) SetFrame(f float64) error {
	h.frameLog = append(h.frameLog, f)
	if h.setFrameErr != nil {
		return h.setFrameErr
	}
	h.frame = f
	return nil
}

func (h *testHost) SelectionRange() (float64, float64, error) {
	return h.selStart, h.selEnd, h.selErr
}

func (h *testHost) Camera(path string) (anim.Camera, error) {
	cam, ok := h.cameras[path]
	if !ok {
		return nil, fmt.Errorf("camera %s: %w", path, anim.ErrNotFound)
	}
	return cam, nil
}
