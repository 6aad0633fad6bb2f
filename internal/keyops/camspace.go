package keyops

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/roach88/keytar/internal/anim"
)

// ProjectionOf builds the camera's perspective projection over the full
// aperture. The camera's screen window (2D pan and zoom) is ignored.
//
// A camera-space point at z = -1 lands on the w = 1 plane, so x and y of a
// depth-normalized point map straight to normalized device coordinates.
func ProjectionOf(in anim.Intrinsics) (mgl64.Mat4, error) {
	switch {
	case in.Aperture <= 0:
		return mgl64.Mat4{}, fmt.Errorf("aperture must be positive, got %g", in.Aperture)
	case in.ResX <= 0 || in.ResY <= 0:
		return mgl64.Mat4{}, fmt.Errorf("resolution must be positive, got %gx%g", in.ResX, in.ResY)
	case in.PixelAspect <= 0:
		return mgl64.Mat4{}, fmt.Errorf("pixel aspect must be positive, got %g", in.PixelAspect)
	case in.Focal == 0:
		return mgl64.Mat4{}, fmt.Errorf("focal length must be non-zero")
	case in.Near <= 0:
		return mgl64.Mat4{}, fmt.Errorf("near clip must be positive, got %g", in.Near)
	case in.Near == in.Far:
		return mgl64.Mat4{}, fmt.Errorf("near and far clip are both %g", in.Near)
	}
	zoom := in.Focal / in.Aperture
	aspect := in.ResX / in.ResY * in.PixelAspect

	// half extents of the aperture on the near plane
	hw := in.Near / (2 * zoom)
	hh := hw / aspect
	return mgl64.Frustum(-hw, hw, -hh, hh, in.Near, in.Far), nil
}

// invert returns the inverse of m, or false when m is singular.
// mgl64's Inv yields a zero matrix in that case instead of failing.
func invert(m mgl64.Mat4) (mgl64.Mat4, bool) {
	d := m.Det()
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return mgl64.Mat4{}, false
	}
	return m.Inv(), true
}

// NudgeInCameraSpace moves a world-space position by dx and dy in the
// camera's normalized device coordinates and by dz in depth along the
// camera's viewing axis. Positive dz moves the point away from the camera.
//
// With all offsets zero the result equals pos up to rounding. A position
// at zero depth, or a dz that brings it there, fails with
// ErrDegenerateDepth.
func NudgeInCameraSpace(pos mgl64.Vec3, cam anim.Camera, dx, dy, dz float64) (mgl64.Vec3, error) {
	const op = "nudge"

	if cam == nil {
		return mgl64.Vec3{}, newOpError(op, ErrCodeInvalidCamera, "no camera", nil)
	}
	in, err := cam.Intrinsics()
	if err != nil {
		return mgl64.Vec3{}, hostError(op, "read camera intrinsics", err)
	}
	world, err := cam.WorldTransform()
	if err != nil {
		return mgl64.Vec3{}, hostError(op, "read camera transform", err)
	}

	proj, err := ProjectionOf(in)
	if err != nil {
		return mgl64.Vec3{}, newOpError(op, ErrCodeInvalidCamera, err.Error(), nil)
	}
	projInv, ok := invert(proj)
	if !ok {
		return mgl64.Vec3{}, newOpError(op, ErrCodeInvalidCamera, "projection is singular", nil)
	}
	worldInv, ok := invert(world)
	if !ok {
		return mgl64.Vec3{}, newOpError(op, ErrCodeInvalidCamera, "world transform is singular", nil)
	}

	local := mgl64.TransformCoordinate(pos, worldInv)

	// camera looks down -z
	depth := -local.Z()
	if depth == 0 {
		return mgl64.Vec3{}, newOpError(op, ErrCodeDegenerateDepth, fmt.Sprintf("position %v", pos), nil)
	}

	ndc := mgl64.TransformCoordinate(local.Mul(1/depth), proj)

	depth += dz
	if depth == 0 {
		return mgl64.Vec3{}, newOpError(op, ErrCodeDegenerateDepth, fmt.Sprintf("depth offset %g reaches the camera", dz), nil)
	}
	ndc[0] += dx
	ndc[1] += dy

	local = mgl64.TransformCoordinate(ndc, projInv).Mul(depth)
	return mgl64.TransformCoordinate(local, world), nil
}
