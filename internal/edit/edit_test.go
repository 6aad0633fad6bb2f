package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/keyops"
	"github.com/roach88/keytar/internal/scene"
)

const testScene = `
frame: 5
cameras:
  - path: /obj/cam1
    translate: [0, 0, 10]
channels:
  - path: /obj/geo1/tx
    keys: [{frame: 0, value: 5}, {frame: 1, value: 5}, {frame: 2, value: 5}, {frame: 3, value: 8}]
  - path: /obj/geo1/ty
    keys: [{frame: 0, value: 0, interp: linear}, {frame: 10, value: 10, interp: linear}]
  - path: /obj/geo1/tz
    keys: []
  - path: /obj/geo2/rx
    keys: [{frame: 1, value: 2}, {frame: 2, value: 2}, {frame: 3, value: 2}]
`

func newTestHost(t *testing.T) *scene.Scene {
	t.Helper()
	doc, err := scene.Parse([]byte(testScene))
	require.NoError(t, err)
	s, err := scene.FromDocument(doc)
	require.NoError(t, err)
	return s
}

func keyFrames(t *testing.T, h Host, path string) []float64 {
	t.Helper()
	keys, err := Keys(h, path)
	require.NoError(t, err)
	return anim.Frames(keys)
}

func valueAt(t *testing.T, h Host, path string, frame float64) float64 {
	t.Helper()
	c, err := h.Channel(path)
	require.NoError(t, err)
	k, ok, err := c.KeyframeAt(frame)
	require.NoError(t, err)
	require.True(t, ok, "no key at %g on %s", frame, path)
	return k.Value
}

func TestParseKeySpec(t *testing.T) {
	tests := []struct {
		in     string
		path   string
		frames []float64
		span   *[2]float64
	}{
		{in: "/obj/geo1/tx", path: "/obj/geo1/tx"},
		{in: " /obj/geo1/tx@1,2.5 ", path: "/obj/geo1/tx", frames: []float64{1, 2.5}},
		{in: "/obj/geo1/tx@-4:10", path: "/obj/geo1/tx", span: &[2]float64{-4, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spec, err := ParseKeySpec(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.path, spec.Path)
			assert.Equal(t, tt.frames, spec.Frames)
			assert.Equal(t, tt.span, spec.Span)

			back, err := ParseKeySpec(spec.String())
			require.NoError(t, err)
			assert.Equal(t, spec, back)
		})
	}
}

func TestParseKeySpec_Invalid(t *testing.T) {
	for _, in := range []string{"", "@1", "/a@", "/a@x", "/a@1,,2", "/a@5:1", "/a@1:"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseKeySpec(in)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestSelect(t *testing.T) {
	h := newTestHost(t)

	sel, err := Select(h, []string{"/obj/geo1/tx@0", "/obj/geo1/ty", "/obj/geo1/tx@0:1", "/obj/geo1/tz"})
	require.NoError(t, err)
	require.Len(t, sel, 2, "specs on one channel merge and empty channels drop")
	assert.Equal(t, "/obj/geo1/tx", anim.PathOf(sel[0].Curve))
	assert.Equal(t, []float64{0, 1}, anim.Frames(sel[0].Keys))
	assert.Equal(t, []float64{0, 10}, anim.Frames(sel[1].Keys))

	_, err = Select(h, []string{"/obj/geo1/tx@7"})
	assert.ErrorIs(t, err, anim.ErrNotFound)
	_, err = Select(h, []string{"/obj/geo9/tx"})
	assert.ErrorIs(t, err, anim.ErrNotFound)
}

func TestFlatten(t *testing.T) {
	h := newTestHost(t)

	report, err := Flatten(h, "/obj/geo1")
	require.NoError(t, err)
	assert.Equal(t, keyops.Report{Curves: 1, Deleted: 1, Set: 1}, report)
	assert.Equal(t, []float64{0, 2, 3}, keyFrames(t, h, "/obj/geo1/tx"))
	assert.Equal(t, []float64{1, 2, 3}, keyFrames(t, h, "/obj/geo2/rx"), "outside the prefix")

	report, err = Flatten(h)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []float64{1, 3}, keyFrames(t, h, "/obj/geo2/rx"))

	_, err = Flatten(h, "/obj/nope")
	assert.Equal(t, CodeNotFound, Code(err))
}

func TestTransform(t *testing.T) {
	h := newTestHost(t)

	opts := keyops.DefaultTransformOptions()
	opts.TranslateX = 5
	_, err := Transform(h, []string{"/obj/geo1/ty"}, opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 15}, keyFrames(t, h, "/obj/geo1/ty"))

	_, err = Transform(h, []string{"/obj/geo1/tz"}, opts)
	assert.Equal(t, string(keyops.ErrCodeInvalidSelection), Code(err))
	_, err = Transform(h, []string{"/obj/geo1/tx@2"}, opts)
	assert.Equal(t, string(keyops.ErrCodeZeroTimeRange), Code(err))
}

func TestFlip(t *testing.T) {
	h := newTestHost(t)

	_, err := Flip(h, []string{"/obj/geo1/tx"}, "x", "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, keyFrames(t, h, "/obj/geo1/tx"))
	assert.Equal(t, 8.0, valueAt(t, h, "/obj/geo1/tx", 0))
	assert.Equal(t, 5.0, valueAt(t, h, "/obj/geo1/tx", 3))

	_, err = Flip(h, []string{"/obj/geo1/tx"}, "x", "middle")
	assert.Equal(t, CodeInvalidArgument, Code(err))
	_, err = Flip(h, []string{"/obj/geo1/tx"}, "z", "mm")
	assert.Equal(t, string(keyops.ErrCodeInvalidSelection), Code(err))
}

func TestTween(t *testing.T) {
	h := newTestHost(t)

	report, err := Tween(h, TweenRequest{Channels: []string{"/obj/geo1/tx", "/obj/geo1/ty"}, Blend: 0.5})
	require.NoError(t, err)
	assert.Equal(t, keyops.TweenReport{Written: 1, Skipped: 1}, report)
	assert.Equal(t, 5.0, valueAt(t, h, "/obj/geo1/ty", 5), "tweened at the current frame")

	frame := 2.0
	_, err = Tween(h, TweenRequest{Channels: []string{"/obj/geo1/ty"}, Frame: &frame, Blend: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, valueAt(t, h, "/obj/geo1/ty", 2))

	report, err = Tween(h, TweenRequest{Keys: []string{"/obj/geo1/tx@2"}, Blend: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Written)
	assert.Equal(t, 6.5, valueAt(t, h, "/obj/geo1/tx", 2))

	_, err = Tween(h, TweenRequest{Keys: []string{"/obj/geo1/tx"}, Channels: []string{"/obj/geo1/tx"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Tween(h, TweenRequest{Blend: 0.5})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNudge(t *testing.T) {
	h := newTestHost(t)

	report, err := Nudge(h, NudgeRequest{
		Camera: "/obj/cam1",
		Parms:  []string{"/obj/geo1/t"},
		Dir:    "back",
		Amount: 1,
		Range:  "cur",
	})
	require.NoError(t, err)
	assert.Equal(t, keyops.NudgeReport{Targets: 1, Keys: 1}, report)
	assert.Equal(t, []float64{5}, keyFrames(t, h, "/obj/geo1/tz"))
	assert.Less(t, valueAt(t, h, "/obj/geo1/tz", 5), 0.0, "moved away from the camera")

	tests := []struct {
		name string
		req  NudgeRequest
		code string
	}{
		{"bad direction", NudgeRequest{Camera: "/obj/cam1", Parms: []string{"/obj/geo1/t"}, Dir: "sideways"}, CodeInvalidArgument},
		{"bad range", NudgeRequest{Camera: "/obj/cam1", Parms: []string{"/obj/geo1/t"}, Dir: "up", Range: "some"}, CodeInvalidArgument},
		{"no parms", NudgeRequest{Camera: "/obj/cam1", Dir: "up"}, CodeInvalidArgument},
		{"missing parm", NudgeRequest{Camera: "/obj/cam1", Parms: []string{"/obj/geo2/t"}, Dir: "up"}, CodeNotFound},
		{"missing camera", NudgeRequest{Camera: "/obj/cam9", Parms: []string{"/obj/geo1/t"}, Dir: "up"}, string(keyops.ErrCodeCameraNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Nudge(h, tt.req)
			assert.Equal(t, tt.code, Code(err))
		})
	}
}

func TestUndo(t *testing.T) {
	h := newTestHost(t)

	_, err := Flatten(h, "/obj/geo1/tx")
	require.NoError(t, err)
	label, err := Undo(h)
	require.NoError(t, err)
	assert.Equal(t, keyops.LabelRemoveFlat, label)
	assert.Equal(t, []float64{0, 1, 2, 3}, keyFrames(t, h, "/obj/geo1/tx"))

	_, err = Undo(h)
	assert.Equal(t, CodeNothingToUndo, Code(err))

	_, err = Undo(struct{ Host }{h})
	assert.ErrorIs(t, err, ErrUndoUnsupported)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, CodeInvalidArgument, Code(ErrInvalidArgument))
	assert.Equal(t, CodeNotFound, Code(errors.Join(errors.New("lookup"), anim.ErrNotFound)))
	assert.Equal(t, CodeNothingToUndo, Code(anim.ErrNothingToUndo))
	assert.Equal(t, "HOST_FAILURE", Code(errors.New("disk full")))

	_, err := keyops.TransformKeyframes(nil, nil, keyops.DefaultTransformOptions())
	assert.Equal(t, "INVALID_SELECTION", Code(err))
}
