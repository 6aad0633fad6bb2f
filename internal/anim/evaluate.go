package anim

import "sort"

// Evaluate samples a frame-sorted key list at frame.
//
// Before the first key and after the last the curve holds the end values.
// Between two keys the segment shape is chosen by the left key's Interp.
// An empty list evaluates to zero.
func Evaluate(keys []Keyframe, frame float64) float64 {
	n := len(keys)
	if n == 0 {
		return 0
	}
	if frame <= keys[0].Frame {
		return keys[0].Value
	}
	if frame >= keys[n-1].Frame {
		return keys[n-1].Value
	}

	// first key strictly after frame
	i := sort.Search(n, func(i int) bool { return keys[i].Frame > frame })
	k0, k1 := keys[i-1], keys[i]
	dt := k1.Frame - k0.Frame
	t := (frame - k0.Frame) / dt

	switch k0.Interp {
	case InterpConstant:
		return k0.Value
	case InterpLinear:
		return k0.Value + (k1.Value-k0.Value)*t
	default:
		return hermite(k0.Value, k0.OutSlope*dt, k1.Value, k1.InSlope*dt, t)
	}
}

func hermite(p0, m0, p1, m1, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*p0 + h10*m0 + h01*p1 + h11*m1
}

// RecomputeAutoSlopes updates every auto-flagged slope side in keys from
// its neighbors. Interior keys take the slope of the line through their
// two neighbors; the first and last keys get a flat slope.
// keys must be frame-sorted.
func RecomputeAutoSlopes(keys []Keyframe) {
	n := len(keys)
	for i := range keys {
		var s float64
		if i > 0 && i < n-1 {
			prev, next := keys[i-1], keys[i+1]
			s = (next.Value - prev.Value) / (next.Frame - prev.Frame)
		}
		if keys[i].InSlopeAuto {
			keys[i].InSlope = s
		}
		if keys[i].OutSlopeAuto {
			keys[i].OutSlope = s
		}
	}
}
