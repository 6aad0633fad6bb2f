package keyops

import (
	"log/slog"

	"github.com/roach88/keytar/internal/anim"
)

// CompactFlatRuns plans the removal of redundant keys from c.
//
// Walking the keys in frame order, a run of two or more keys with exactly
// equal values keeps its first and last key. The first key's outgoing
// segment is switched to linear so the curve stays flat across the gap,
// and every key strictly inside the run is deleted. Values are compared
// with ==; there is no tolerance.
//
// Curves with fewer than two keys yield an empty mutation.
func CompactFlatRuns(c anim.Curve) (*Mutation, error) {
	keys, err := c.Keyframes()
	if err != nil {
		return nil, hostError("flatten", "read keys of "+anim.PathOf(c), err)
	}
	m := &Mutation{Curve: c}
	if len(keys) <= 1 {
		return m, nil
	}

	inRun := false
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		if cur.Value != prev.Value {
			inRun = false
			continue
		}
		if !inRun {
			// prev starts a flat run
			inRun = true
			start := prev
			start.Interp = anim.InterpLinear
			m.Inserts = append(m.Inserts, start)
			continue
		}
		m.Deletes = append(m.Deletes, prev.Frame)
	}
	return m, nil
}

// RemoveFlatKeys compacts every curve in one batch. Curves are planned
// one by one and mutated before the next is read.
func RemoveFlatKeys(b anim.Batcher, curves ...anim.Curve) (Report, error) {
	const op = "flatten"
	var report Report
	err := inBatch(b, op, LabelRemoveFlat, func() error {
		for _, c := range curves {
			m, err := CompactFlatRuns(c)
			if err != nil {
				return err
			}
			if len(m.Deletes) > 0 {
				slog.Info("removing flat keys", "curve", anim.PathOf(c), "count", len(m.Deletes))
			}
			if err := m.Apply(op); err != nil {
				return err
			}
			report.add(m)
		}
		return nil
	})
	return report, err
}
