package anim

import (
	"errors"
	"fmt"
)

// Selection validation errors.
var (
	ErrEmptySelection = errors.New("selection is empty")
	ErrNilCurve       = errors.New("selection entry has no curve")
	ErrDuplicateCurve = errors.New("curve appears more than once in selection")
	ErrEmptyKeySet    = errors.New("selection entry has no keys")
)

// SelectionEntry is the subset of one curve's keys chosen for an operation.
type SelectionEntry struct {
	Curve Curve
	Keys  []Keyframe
}

// Selection maps curves to chosen keys. Order is preserved for
// deterministic processing but carries no meaning.
type Selection []SelectionEntry

// Validate checks that the selection is non-empty, that every entry has
// a curve and at least one key, and that no curve repeats.
func (s Selection) Validate() error {
	if len(s) == 0 {
		return ErrEmptySelection
	}
	seen := make(map[Curve]bool, len(s))
	for i, e := range s {
		if e.Curve == nil {
			return fmt.Errorf("entry %d: %w", i, ErrNilCurve)
		}
		if len(e.Keys) == 0 {
			return fmt.Errorf("entry %d (%s): %w", i, PathOf(e.Curve), ErrEmptyKeySet)
		}
		if seen[e.Curve] {
			return fmt.Errorf("entry %d (%s): %w", i, PathOf(e.Curve), ErrDuplicateCurve)
		}
		seen[e.Curve] = true
	}
	return nil
}

// KeyCount returns the total number of selected keys.
func (s Selection) KeyCount() int {
	n := 0
	for _, e := range s {
		n += len(e.Keys)
	}
	return n
}

// SelectAll builds a selection holding every key of each curve.
// Curves without keys are skipped.
func SelectAll(curves ...Curve) (Selection, error) {
	var sel Selection
	for _, c := range curves {
		keys, err := c.Keyframes()
		if err != nil {
			return nil, fmt.Errorf("read keys of %s: %w", PathOf(c), err)
		}
		if len(keys) == 0 {
			continue
		}
		sel = append(sel, SelectionEntry{Curve: c, Keys: keys})
	}
	return sel, nil
}
