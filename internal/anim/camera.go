package anim

import "github.com/go-gl/mathgl/mgl64"

// Intrinsics are a camera's lens and film-back parameters.
type Intrinsics struct {
	Focal       float64 `json:"focal"`
	Aperture    float64 `json:"aperture"`
	ResX        float64 `json:"resx"`
	ResY        float64 `json:"resy"`
	PixelAspect float64 `json:"pixel_aspect"`
	Near        float64 `json:"near"`
	Far         float64 `json:"far"`
}

// DefaultIntrinsics returns a 50mm camera on a 41.4214mm aperture at
// 1920x1080 with square pixels.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{
		Focal:       50,
		Aperture:    41.4214,
		ResX:        1920,
		ResY:        1080,
		PixelAspect: 1,
		Near:        0.001,
		Far:         10000,
	}
}

// Camera is read-only access to a host camera. WorldTransform is
// evaluated at the host's current time.
type Camera interface {
	Intrinsics() (Intrinsics, error)
	WorldTransform() (mgl64.Mat4, error)
}

// CameraLookup resolves a camera by path.
type CameraLookup interface {
	Camera(path string) (Camera, error)
}

// StaticCamera is a Camera with fixed parameters.
type StaticCamera struct {
	Params    Intrinsics
	Transform mgl64.Mat4
}

// Intrinsics implements Camera.
func (c *StaticCamera) Intrinsics() (Intrinsics, error) {
	return c.Params, nil
}

// WorldTransform implements Camera.
func (c *StaticCamera) WorldTransform() (mgl64.Mat4, error) {
	return c.Transform, nil
}
