package keyops

import (
	"github.com/roach88/keytar/internal/anim"
)

// Mutation is a planned change to one curve: delete the keys at Deletes,
// then set every key in Inserts.
type Mutation struct {
	Curve   anim.Curve
	Deletes []float64
	Inserts []anim.Keyframe
}

// Empty reports whether m changes nothing.
func (m *Mutation) Empty() bool {
	return m == nil || (len(m.Deletes) == 0 && len(m.Inserts) == 0)
}

// Apply performs the deletions and then the insertions on m.Curve.
func (m *Mutation) Apply(op string) error {
	if m.Empty() {
		return nil
	}
	for _, f := range m.Deletes {
		if err := m.Curve.DeleteKeyframeAt(f); err != nil {
			return hostError(op, "delete key on "+anim.PathOf(m.Curve), err)
		}
	}
	for _, k := range m.Inserts {
		if err := m.Curve.SetKeyframe(k); err != nil {
			return hostError(op, "set key on "+anim.PathOf(m.Curve), err)
		}
	}
	return nil
}

// Report summarizes what an operation changed.
type Report struct {
	Curves  int `json:"curves"`
	Deleted int `json:"deleted"`
	Set     int `json:"set"`
}

func (r *Report) add(m *Mutation) {
	if m.Empty() {
		return
	}
	r.Curves++
	r.Deleted += len(m.Deletes)
	r.Set += len(m.Inserts)
}

// applyAll applies each mutation in order and tallies a Report.
func applyAll(op string, muts []*Mutation) (Report, error) {
	var r Report
	for _, m := range muts {
		if err := m.Apply(op); err != nil {
			return r, err
		}
		r.add(m)
	}
	return r, nil
}
