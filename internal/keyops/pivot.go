package keyops

import (
	"fmt"
	"math"

	"github.com/roach88/keytar/internal/anim"
)

// Alignment is one of nine pivot positions on a selection's bounding box,
// or AlignNone for an explicit pivot.
type Alignment string

const (
	AlignNone         Alignment = ""
	AlignTopLeft      Alignment = "tl"
	AlignTopMiddle    Alignment = "tm"
	AlignTopRight     Alignment = "tr"
	AlignMiddleLeft   Alignment = "ml"
	AlignMiddle       Alignment = "mm"
	AlignMiddleRight  Alignment = "mr"
	AlignBottomLeft   Alignment = "bl"
	AlignBottomMiddle Alignment = "bm"
	AlignBottomRight  Alignment = "br"
)

// Alignments lists the nine box alignments in grid order, top row first.
var Alignments = []Alignment{
	AlignTopLeft, AlignTopMiddle, AlignTopRight,
	AlignMiddleLeft, AlignMiddle, AlignMiddleRight,
	AlignBottomLeft, AlignBottomMiddle, AlignBottomRight,
}

// ParseAlignment validates an alignment tag. "none" and "" select an
// explicit pivot.
func ParseAlignment(s string) (Alignment, error) {
	if s == "" || s == "none" {
		return AlignNone, nil
	}
	for _, a := range Alignments {
		if string(a) == s {
			return a, nil
		}
	}
	return AlignNone, fmt.Errorf("unknown pivot alignment %q", s)
}

// Pivot is the (frame, value) point held fixed by a scale. When Align is
// set, X and Y are ignored and the point is taken from the bounding box.
type Pivot struct {
	Align Alignment
	X, Y  float64
}

// Bounds is the extent of a selection in frame (x) and value (y).
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// SelectionBounds returns the bounding box of every selected key.
func SelectionBounds(sel anim.Selection) Bounds {
	b := Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for _, e := range sel {
		for _, k := range e.Keys {
			b.XMin = math.Min(b.XMin, k.Frame)
			b.XMax = math.Max(b.XMax, k.Frame)
			b.YMin = math.Min(b.YMin, k.Value)
			b.YMax = math.Max(b.YMax, k.Value)
		}
	}
	return b
}

// Resolve returns the pivot point for bounding box b.
//
//	        left   middle  right
//	top     tl     tm      tr      y = YMax
//	middle  ml     mm      mr      y = (YMin+YMax)/2
//	bottom  bl     bm      br      y = YMin
func (p Pivot) Resolve(b Bounds) (x, y float64) {
	if p.Align == AlignNone {
		return p.X, p.Y
	}
	xs := [3]float64{b.XMin, (b.XMax-b.XMin)/2 + b.XMin, b.XMax}
	ys := [3]float64{b.YMax, (b.YMax-b.YMin)/2 + b.YMin, b.YMin}
	for i, a := range Alignments {
		if a == p.Align {
			return xs[i%3], ys[i/3]
		}
	}
	return p.X, p.Y
}
