package anim

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// VectorParm is a three-channel parameter such as an object's translate.
type VectorParm struct {
	Name     string
	Channels [3]Channel
}

// KeyFrames returns the sorted union of key frames across all channels.
func (p VectorParm) KeyFrames() ([]float64, error) {
	seen := make(map[float64]bool)
	var frames []float64
	for _, ch := range p.Channels {
		keys, err := ch.Keyframes()
		if err != nil {
			return nil, fmt.Errorf("%s: read keys of %s: %w", p.Name, PathOf(ch), err)
		}
		for _, k := range keys {
			if !seen[k.Frame] {
				seen[k.Frame] = true
				frames = append(frames, k.Frame)
			}
		}
	}
	sort.Float64s(frames)
	return frames, nil
}

// Eval samples the three channels at frame.
func (p VectorParm) Eval(frame float64) (mgl64.Vec3, error) {
	var out mgl64.Vec3
	for i, ch := range p.Channels {
		v, err := ch.ValueAt(frame)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("%s: sample %s: %w", p.Name, PathOf(ch), err)
		}
		out[i] = v
	}
	return out, nil
}

// Set writes v as keys at frame on the three channels.
func (p VectorParm) Set(frame float64, v mgl64.Vec3) error {
	for i, val := range v {
		if err := WriteValue(p.Channels[i], frame, val); err != nil {
			return fmt.Errorf("%s: write %s: %w", p.Name, PathOf(p.Channels[i]), err)
		}
	}
	return nil
}
