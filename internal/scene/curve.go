package scene

import (
	"sort"

	"github.com/roach88/keytar/internal/anim"
)

// Curve is an in-memory animation channel. Auto slopes are recomputed
// after every change to the key set.
type Curve struct {
	path string
	keys []anim.Keyframe
}

// NewCurve returns a curve holding keys, which need not be sorted.
func NewCurve(path string, keys ...anim.Keyframe) *Curve {
	c := &Curve{path: anim.CleanPath(path), keys: append([]anim.Keyframe(nil), keys...)}
	anim.SortKeyframes(c.keys)
	anim.RecomputeAutoSlopes(c.keys)
	return c
}

// Path returns the channel path.
func (c *Curve) Path() string { return c.path }

// Len returns the number of keys.
func (c *Curve) Len() int { return len(c.keys) }

// Keyframes implements anim.Curve.
func (c *Curve) Keyframes() ([]anim.Keyframe, error) {
	return c.copyKeys(0, len(c.keys)), nil
}

// KeyframesBefore implements anim.Curve.
func (c *Curve) KeyframesBefore(frame float64) ([]anim.Keyframe, error) {
	return c.copyKeys(0, c.search(frame)), nil
}

// KeyframesAfter implements anim.Curve.
func (c *Curve) KeyframesAfter(frame float64) ([]anim.Keyframe, error) {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Frame > frame })
	return c.copyKeys(i, len(c.keys)), nil
}

// KeyframeAt implements anim.Curve.
func (c *Curve) KeyframeAt(frame float64) (anim.Keyframe, bool, error) {
	i := c.search(frame)
	if i < len(c.keys) && c.keys[i].Frame == frame {
		return c.keys[i], true, nil
	}
	return anim.Keyframe{}, false, nil
}

// SetKeyframe implements anim.Curve.
func (c *Curve) SetKeyframe(k anim.Keyframe) error {
	i := c.search(k.Frame)
	if i < len(c.keys) && c.keys[i].Frame == k.Frame {
		c.keys[i] = k
	} else {
		c.keys = append(c.keys, anim.Keyframe{})
		copy(c.keys[i+1:], c.keys[i:])
		c.keys[i] = k
	}
	anim.RecomputeAutoSlopes(c.keys)
	return nil
}

// DeleteKeyframeAt implements anim.Curve.
func (c *Curve) DeleteKeyframeAt(frame float64) error {
	i := c.search(frame)
	if i < len(c.keys) && c.keys[i].Frame == frame {
		c.keys = append(c.keys[:i], c.keys[i+1:]...)
		anim.RecomputeAutoSlopes(c.keys)
	}
	return nil
}

// ValueAt implements anim.Channel.
func (c *Curve) ValueAt(frame float64) (float64, error) {
	return anim.Evaluate(c.keys, frame), nil
}

// search returns the index of the first key at or after frame.
func (c *Curve) search(frame float64) int {
	return sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Frame >= frame })
}

func (c *Curve) copyKeys(from, to int) []anim.Keyframe {
	if from >= to {
		return nil
	}
	return append([]anim.Keyframe(nil), c.keys[from:to]...)
}
