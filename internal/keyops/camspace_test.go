package keyops

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keytar/internal/anim"
)

const tol = 1e-6

func assertVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "axis %d: want %v got %v", i, want, got)
	}
}

func testCamera(world mgl64.Mat4) *anim.StaticCamera {
	return &anim.StaticCamera{Params: anim.DefaultIntrinsics(), Transform: world}
}

func cameras() map[string]*anim.StaticCamera {
	return map[string]*anim.StaticCamera{
		"translated": testCamera(mgl64.Translate3D(0, 0, 10)),
		"rotated": testCamera(mgl64.Translate3D(3, -2, 12).
			Mul4(mgl64.HomogRotate3DX(-0.3)).
			Mul4(mgl64.HomogRotate3DY(math.Pi / 5))),
		"square": {
			Params: anim.Intrinsics{
				Focal: 35, Aperture: 36, ResX: 1000, ResY: 1000,
				PixelAspect: 1, Near: 0.1, Far: 1000,
			},
			Transform: mgl64.Translate3D(1, 1, 5),
		},
	}
}

func TestNudgeInCameraSpace_Identity(t *testing.T) {
	points := []mgl64.Vec3{
		{0, 0, 0},
		{1, 2, 0},
		{-4, 0.5, -3},
	}
	for name, cam := range cameras() {
		t.Run(name, func(t *testing.T) {
			for _, p := range points {
				got, err := NudgeInCameraSpace(p, cam, 0, 0, 0)
				require.NoError(t, err)
				assertVecNear(t, p, got)
			}
		})
	}
}

func TestNudgeInCameraSpace_Inverse(t *testing.T) {
	p := mgl64.Vec3{1, 2, -1}
	for name, cam := range cameras() {
		t.Run(name, func(t *testing.T) {
			moved, err := NudgeInCameraSpace(p, cam, 0.1, -0.05, 0.5)
			require.NoError(t, err)
			assert.Greater(t, moved.Sub(p).Len(), 0.01)

			back, err := NudgeInCameraSpace(moved, cam, -0.1, 0.05, -0.5)
			require.NoError(t, err)
			assertVecNear(t, p, back)
		})
	}
}

func TestNudgeInCameraSpace_Axes(t *testing.T) {
	cam := cameras()["translated"]
	p := mgl64.Vec3{0, 0, 0}

	right, err := NudgeInCameraSpace(p, cam, 0.1, 0, 0)
	require.NoError(t, err)
	assert.Greater(t, right.X(), 0.0)
	assert.InDelta(t, 0, right.Y(), tol)
	assert.InDelta(t, 0, right.Z(), tol)

	up, err := NudgeInCameraSpace(p, cam, 0, 0.1, 0)
	require.NoError(t, err)
	assert.Greater(t, up.Y(), 0.0)
	assert.InDelta(t, 0, up.X(), tol)

	// positive dz moves away from a camera looking down -z
	back, err := NudgeInCameraSpace(p, cam, 0, 0, 2)
	require.NoError(t, err)
	assertVecNear(t, mgl64.Vec3{0, 0, -2}, back)
}

func TestNudgeInCameraSpace_OffAxisScalesWithDepth(t *testing.T) {
	cam := cameras()["translated"]
	p := mgl64.Vec3{1, 0.5, 0}

	// pushing back keeps the point on the same view ray
	got, err := NudgeInCameraSpace(p, cam, 0, 0, 10)
	require.NoError(t, err)
	assertVecNear(t, mgl64.Vec3{2, 1, -10}, got)
}

func TestNudgeInCameraSpace_ScreenOffsetMatchesFocal(t *testing.T) {
	cam := cameras()["translated"]
	in := cam.Params
	zoom := in.Focal / in.Aperture

	// at depth 10 one NDC unit spans 10/(2*zoom) world units horizontally
	got, err := NudgeInCameraSpace(mgl64.Vec3{0, 0, 0}, cam, 0.1, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.1*10/(2*zoom), got.X(), tol)
}

func TestNudgeInCameraSpace_DegenerateDepth(t *testing.T) {
	cam := cameras()["translated"]

	_, err := NudgeInCameraSpace(mgl64.Vec3{1, 1, 10}, cam, 0, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateDepth)
	assert.True(t, IsInvalidInput(err))

	_, err = NudgeInCameraSpace(mgl64.Vec3{0, 0, 0}, cam, 0, 0, -10)
	assert.ErrorIs(t, err, ErrDegenerateDepth)
}

func TestNudgeInCameraSpace_InvalidCamera(t *testing.T) {
	_, err := NudgeInCameraSpace(mgl64.Vec3{}, nil, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidCamera)

	tests := []struct {
		name   string
		mutate func(*anim.Intrinsics)
	}{
		{"zero aperture", func(in *anim.Intrinsics) { in.Aperture = 0 }},
		{"zero yres", func(in *anim.Intrinsics) { in.ResY = 0 }},
		{"zero focal", func(in *anim.Intrinsics) { in.Focal = 0 }},
		{"zero near clip", func(in *anim.Intrinsics) { in.Near = 0 }},
		{"equal clips", func(in *anim.Intrinsics) { in.Near, in.Far = 1, 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := testCamera(mgl64.Translate3D(0, 0, 10))
			tt.mutate(&cam.Params)
			_, err := NudgeInCameraSpace(mgl64.Vec3{}, cam, 0, 0, 0)
			assert.ErrorIs(t, err, ErrInvalidCamera)
			assert.Equal(t, ErrCodeInvalidCamera, CodeOf(err))
		})
	}

	singular := testCamera(mgl64.Scale3D(1, 0, 1))
	_, err = NudgeInCameraSpace(mgl64.Vec3{0, 0, -1}, singular, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidCamera)
	assert.Contains(t, err.Error(), "singular")
}

func TestProjectionOf_PutsUnitDepthOnWindow(t *testing.T) {
	in := anim.DefaultIntrinsics()
	proj, err := ProjectionOf(in)
	require.NoError(t, err)

	// the view axis at unit depth lands on the window centre
	ndc := mgl64.TransformCoordinate(mgl64.Vec3{0, 0, -1}, proj)
	assert.InDelta(t, 0, ndc.X(), tol)
	assert.InDelta(t, 0, ndc.Y(), tol)

	zoom := in.Focal / in.Aperture
	aspect := in.ResX / in.ResY
	ndc = mgl64.TransformCoordinate(mgl64.Vec3{0.2, -0.1, -1}, proj)
	assert.InDelta(t, 0.2*2*zoom, ndc.X(), tol)
	assert.InDelta(t, -0.1*2*zoom*aspect, ndc.Y(), tol)

	// near and far clips map to the ends of the depth range
	assert.InDelta(t, -1, mgl64.TransformCoordinate(mgl64.Vec3{0, 0, -in.Near}, proj).Z(), tol)
	assert.InDelta(t, 1, mgl64.TransformCoordinate(mgl64.Vec3{0, 0, -in.Far}, proj).Z(), 1e-3)
}
