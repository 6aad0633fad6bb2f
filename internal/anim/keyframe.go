package anim

import (
	"fmt"
	"sort"
)

// Interpolation selects the shape of the segment leaving a keyframe.
type Interpolation int

const (
	// InterpCubic is a Hermite segment shaped by the out- and in-slopes.
	InterpCubic Interpolation = iota
	// InterpLinear is a straight line to the next key.
	InterpLinear
	// InterpConstant holds the key's value until the next key.
	InterpConstant
)

var interpNames = map[Interpolation]string{
	InterpCubic:    "cubic",
	InterpLinear:   "linear",
	InterpConstant: "constant",
}

func (i Interpolation) String() string {
	if name, ok := interpNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation converts a name produced by String back to an
// Interpolation. The empty string means cubic.
func ParseInterpolation(s string) (Interpolation, error) {
	if s == "" {
		return InterpCubic, nil
	}
	for k, v := range interpNames {
		if v == s {
			return k, nil
		}
	}
	return InterpCubic, fmt.Errorf("unknown interpolation %q", s)
}

// Keyframe is a timed value sample on a curve.
//
// Slopes are in value units per frame. Accel values shape the tangent
// handles for hosts that draw Bezier handles; evaluation here ignores them,
// but keyframe operations scale them along with the frame axis.
type Keyframe struct {
	Frame float64 `json:"frame"`
	Value float64 `json:"value"`

	InSlope      float64 `json:"in_slope"`
	OutSlope     float64 `json:"out_slope"`
	InSlopeAuto  bool    `json:"in_slope_auto"`
	OutSlopeAuto bool    `json:"out_slope_auto"`

	InAccel  float64 `json:"in_accel"`
	OutAccel float64 `json:"out_accel"`

	Interp Interpolation `json:"interp"`
}

// NewKey returns a key at frame with value and auto slopes on both sides.
func NewKey(frame, value float64) Keyframe {
	return Keyframe{
		Frame:        frame,
		Value:        value,
		InSlopeAuto:  true,
		OutSlopeAuto: true,
	}
}

// IsSlopeAuto reports whether the outgoing slope is automatic.
func (k Keyframe) IsSlopeAuto() bool {
	return k.OutSlopeAuto
}

// SetSlope sets both slopes explicitly.
func (k *Keyframe) SetSlope(s float64) {
	k.InSlope, k.OutSlope = s, s
}

// SetSlopeAuto flags both sides as automatic.
func (k *Keyframe) SetSlopeAuto() {
	k.InSlopeAuto, k.OutSlopeAuto = true, true
}

func (k Keyframe) String() string {
	return fmt.Sprintf("key(%g=%g)", k.Frame, k.Value)
}

// SortKeyframes sorts keys in place by ascending frame.
func SortKeyframes(keys []Keyframe) {
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Frame < keys[j].Frame
	})
}

// Frames returns the frames of keys in order.
func Frames(keys []Keyframe) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = k.Frame
	}
	return out
}
