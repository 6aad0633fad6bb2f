package anim

import "fmt"

// Curve is the host's animation channel as seen by keyframe operations.
//
// Implementations must be comparable (typically pointer types) since a
// Selection identifies curves by equality.
type Curve interface {
	// Keyframes returns all keys sorted by frame.
	Keyframes() ([]Keyframe, error)

	// KeyframesBefore returns the keys with frame strictly less than frame.
	KeyframesBefore(frame float64) ([]Keyframe, error)

	// KeyframesAfter returns the keys with frame strictly greater than frame.
	KeyframesAfter(frame float64) ([]Keyframe, error)

	// KeyframeAt returns the key exactly at frame, if any.
	KeyframeAt(frame float64) (Keyframe, bool, error)

	// SetKeyframe inserts k, replacing any key already at k.Frame.
	SetKeyframe(k Keyframe) error

	// DeleteKeyframeAt removes the key at frame. Deleting a frame with no
	// key is not an error.
	DeleteKeyframeAt(frame float64) error
}

// Channel is a curve the host can also sample.
type Channel interface {
	Curve
	ValueAt(frame float64) (float64, error)
}

// Named is implemented by curves that know their host path.
type Named interface {
	Path() string
}

// PathOf returns c's path if it has one.
func PathOf(c Curve) string {
	if n, ok := c.(Named); ok {
		return n.Path()
	}
	return fmt.Sprintf("%p", c)
}

// WriteValue sets the value at frame on c. An existing key keeps its
// tangents and interpolation; otherwise a new auto-slope key is inserted.
func WriteValue(c Curve, frame, value float64) error {
	k, ok, err := c.KeyframeAt(frame)
	if err != nil {
		return err
	}
	if !ok {
		k = NewKey(frame, value)
	}
	k.Value = value
	return c.SetKeyframe(k)
}
