package edit

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/keytar/internal/anim"
)

// KeySpec names keys on one channel.
//
// The text form is a channel path, optionally followed by "@" and either
// a comma-separated frame list or an inclusive "start:end" span:
//
//	/obj/geo1/tx          every key
//	/obj/geo1/tx@1,12,24  the keys at frames 1, 12 and 24
//	/obj/geo1/tx@1:24     the keys from frame 1 to 24
type KeySpec struct {
	Path string

	// Frames lists explicit key frames. Each must hold a key.
	Frames []float64

	// Span, when set, selects every key inside [Span[0], Span[1]].
	Span *[2]float64
}

// ParseKeySpec parses the text form of a KeySpec.
func ParseKeySpec(s string) (KeySpec, error) {
	path, sel, hasSel := strings.Cut(strings.TrimSpace(s), "@")
	if path == "" {
		return KeySpec{}, fmt.Errorf("key spec %q: %w: missing channel path", s, ErrInvalidArgument)
	}
	spec := KeySpec{Path: anim.CleanPath(path)}
	if !hasSel {
		return spec, nil
	}

	if lo, hi, ok := strings.Cut(sel, ":"); ok {
		start, err := parseFrame(lo)
		if err != nil {
			return KeySpec{}, fmt.Errorf("key spec %q: %w", s, err)
		}
		end, err := parseFrame(hi)
		if err != nil {
			return KeySpec{}, fmt.Errorf("key spec %q: %w", s, err)
		}
		if end < start {
			return KeySpec{}, fmt.Errorf("key spec %q: %w: span ends before it starts", s, ErrInvalidArgument)
		}
		spec.Span = &[2]float64{start, end}
		return spec, nil
	}

	for _, f := range strings.Split(sel, ",") {
		frame, err := parseFrame(f)
		if err != nil {
			return KeySpec{}, fmt.Errorf("key spec %q: %w", s, err)
		}
		spec.Frames = append(spec.Frames, frame)
	}
	return spec, nil
}

func parseFrame(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad frame %q", ErrInvalidArgument, s)
	}
	return f, nil
}

// String returns the text form of k.
func (k KeySpec) String() string {
	switch {
	case k.Span != nil:
		return fmt.Sprintf("%s@%g:%g", k.Path, k.Span[0], k.Span[1])
	case len(k.Frames) > 0:
		frames := make([]string, len(k.Frames))
		for i, f := range k.Frames {
			frames[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return k.Path + "@" + strings.Join(frames, ",")
	}
	return k.Path
}

// keys returns the keys of c named by k.
func (k KeySpec) keys(c anim.Curve) ([]anim.Keyframe, error) {
	all, err := c.Keyframes()
	if err != nil {
		return nil, fmt.Errorf("read keys of %s: %w", k.Path, err)
	}
	switch {
	case k.Span != nil:
		var out []anim.Keyframe
		for _, key := range all {
			if key.Frame >= k.Span[0] && key.Frame <= k.Span[1] {
				out = append(out, key)
			}
		}
		return out, nil
	case len(k.Frames) > 0:
		out := make([]anim.Keyframe, 0, len(k.Frames))
		for _, f := range k.Frames {
			i := slices.IndexFunc(all, func(key anim.Keyframe) bool { return key.Frame == f })
			if i < 0 {
				return nil, fmt.Errorf("%s: no key at frame %g: %w", k.Path, f, anim.ErrNotFound)
			}
			out = append(out, all[i])
		}
		return out, nil
	}
	return all, nil
}

// Select resolves key specs into a selection.
//
// Specs naming the same channel are merged into one entry. Channels
// left with no keys are dropped; a selection with no entries at all is
// reported by the operation it is passed to.
func Select(h Host, specs []string) (anim.Selection, error) {
	var sel anim.Selection
	index := make(map[string]int)
	for _, s := range specs {
		spec, err := ParseKeySpec(s)
		if err != nil {
			return nil, err
		}
		c, err := h.Channel(spec.Path)
		if err != nil {
			return nil, err
		}
		keys, err := spec.keys(c)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			slog.Debug("key spec selects nothing", "spec", spec.String())
			continue
		}

		i, ok := index[spec.Path]
		if !ok {
			index[spec.Path] = len(sel)
			sel = append(sel, anim.SelectionEntry{Curve: c, Keys: keys})
			continue
		}
		sel[i].Keys = mergeKeys(sel[i].Keys, keys)
	}
	slog.Debug("resolved selection", "curves", len(sel), "keys", sel.KeyCount())
	return sel, nil
}

func mergeKeys(a, b []anim.Keyframe) []anim.Keyframe {
	out := append(a, b...)
	anim.SortKeyframes(out)
	return slices.CompactFunc(out, func(x, y anim.Keyframe) bool { return x.Frame == y.Frame })
}
