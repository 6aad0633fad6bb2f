package keyops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/roach88/keytar/internal/anim"
)

type nudgeFixture struct {
	host       *testHost
	tx, ty, tz *testCurve
	parm       anim.VectorParm
}

func newNudgeFixture() *nudgeFixture {
	f := &nudgeFixture{
		host: newTestHost(),
		tx:   newTestCurve("/obj/geo1/tx", anim.NewKey(1, 0), anim.NewKey(5, 0), anim.NewKey(10, 0)),
		ty:   newTestCurve("/obj/geo1/ty", anim.NewKey(5, 0)),
		tz:   newTestCurve("/obj/geo1/tz"),
	}
	f.parm = anim.VectorParm{Name: "/obj/geo1/t", Channels: [3]anim.Channel{f.tx, f.ty, f.tz}}
	f.host.frame = 7
	f.host.cameras["/obj/cam1"] = testCamera(mgl64.Translate3D(0, 0, 10))
	return f
}

func (f *nudgeFixture) request(dir string, rng TimeRange) NudgeRequest {
	return NudgeRequest{
		Camera:    "/obj/cam1",
		Targets:   []anim.VectorParm{f.parm},
		Direction: Directions[dir],
		Amount:    2,
		Range:     rng,
	}
}

func TestNudgeKeys_AllFrames(t *testing.T) {
	f := newNudgeFixture()

	report, err := NudgeKeys(f.host, f.request("back", RangeAll))
	require.NoError(t, err)
	assert.Equal(t, NudgeReport{Targets: 1, Keys: 3}, report)

	assert.Equal(t, []float64{1, 5, 10}, f.tz.frames())
	for _, v := range f.tz.values() {
		assert.InDelta(t, -2, v, tol)
	}
	assert.Equal(t, []float64{1, 5, 10}, f.ty.frames())
	assert.Equal(t, []string{LabelNudge}, f.host.labels)
	assert.Equal(t, []error{nil}, f.host.ended)
	assert.Equal(t, 7.0, f.host.frame, "cursor restored")
}

func TestNudgeKeys_Ranges(t *testing.T) {
	t.Run("current frame", func(t *testing.T) {
		f := newNudgeFixture()
		report, err := NudgeKeys(f.host, f.request("fwd", RangeCurrent))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Keys)
		assert.Equal(t, []float64{7}, f.tz.frames())
		assert.InDelta(t, 2, f.tz.keys[0].Value, tol)
	})

	t.Run("playbar selection", func(t *testing.T) {
		f := newNudgeFixture()
		f.host.selStart, f.host.selEnd = 4, 10
		report, err := NudgeKeys(f.host, f.request("back", RangeSelection))
		require.NoError(t, err)
		assert.Equal(t, 2, report.Keys)
		assert.Equal(t, []float64{5, 10}, f.tz.frames())
	})
}

func TestNudgeKeys_KeepsExistingTangents(t *testing.T) {
	f := newNudgeFixture()
	k := explicitKey(5, 0)
	k.SetSlope(0.25)
	require.NoError(t, f.tz.SetKeyframe(k))
	f.host.frame = 5

	_, err := NudgeKeys(f.host, f.request("back", RangeCurrent))
	require.NoError(t, err)

	got, ok, err := f.tz.KeyframeAt(5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.25, got.OutSlope)
	assert.False(t, got.IsSlopeAuto())
}

func TestNudgeKeys_CameraNotFound(t *testing.T) {
	f := newNudgeFixture()
	req := f.request("left", RangeAll)
	req.Camera = "/obj/missing"

	_, err := NudgeKeys(f.host, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCameraNotFound)
	assert.ErrorIs(t, err, anim.ErrNotFound)
	assert.Empty(t, f.host.labels)
}

func TestNudgeKeys_DegenerateDepthWritesNothing(t *testing.T) {
	f := newNudgeFixture()
	// the key at frame 10 sits on the camera's depth plane
	require.NoError(t, f.tz.SetKeyframe(anim.NewKey(10, 10)))
	before := f.tz.values()

	_, err := NudgeKeys(f.host, f.request("left", RangeAll))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateDepth)
	assert.Empty(t, f.host.labels, "no batch opened")
	assert.Equal(t, before, f.tz.values())
	assert.Equal(t, []float64{1, 5, 10}, f.tx.frames())
	assert.Equal(t, 7.0, f.host.frame, "cursor restored on error")
}

func TestNudgeKeys_SelectionReadFailure(t *testing.T) {
	f := newNudgeFixture()
	f.host.selErr = errors.New("playbar unavailable")
	before := f.tz.values()

	_, err := NudgeKeys(f.host, f.request("back", RangeSelection))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHostFailure)
	assert.Contains(t, err.Error(), "playbar unavailable")
	assert.Empty(t, f.host.labels, "no batch opened")
	assert.Equal(t, before, f.tz.values())
	assert.Equal(t, 7.0, f.host.frame, "cursor restored on error")

	// the other ranges never read the selection
	_, err = NudgeKeys(f.host, f.request("back", RangeAll))
	assert.NoError(t, err)
}

func TestNudgeKeys_SetFrameFailure(t *testing.T) {
	f := newNudgeFixture()
	f.host.setFrameErr = errors.New("cursor locked")

	_, err := NudgeKeys(f.host, f.request("up", RangeAll))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHostFailure)
	assert.Empty(t, f.host.labels)
}

func TestParseTimeRange(t *testing.T) {
	for in, want := range map[string]TimeRange{"": RangeAll, "all": RangeAll, "sel": RangeSelection, "cur": RangeCurrent} {
		got, err := ParseTimeRange(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTimeRange("selection")
	assert.Error(t, err)
}

func TestWithFrame(t *testing.T) {
	h := newTestHost()
	h.frame = 3

	err := WithFrame(h, func() error {
		require.NoError(t, h.SetFrame(9))
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 3.0, h.frame)
}
