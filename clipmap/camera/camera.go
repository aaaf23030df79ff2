// Package camera provides a minimal free-fly camera a host application can
// drive from input and hand straight to World.Update, plus frustum
// extraction for culling which LODs/pages are worth uploading.
//
// Adapted from voxelrt's rt/core.CameraState: renamed to the clipmap
// domain and trimmed to what World actually consumes (position, view
// matrix, frustum planes) - rendering-side fields like DebugMode are
// dropped since this module has no renderer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Free is a simple yaw/pitch free-fly camera, Z-up to match the original
// voxel engine's convention.
type Free struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Speed       float32
	Sensitivity float32
}

// New returns a Free camera at a reasonable default pose.
func New() *Free {
	return &Free{
		Position:    mgl32.Vec3{0, 2, 20},
		Speed:       10.0,
		Sensitivity: 0.003,
	}
}

// Forward returns the unit forward vector for the camera's current yaw/pitch.
func (c *Free) Forward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
	}
}

// Right returns the unit right vector in the XY ground plane.
func (c *Free) Right() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(-math.Cos(float64(c.Yaw))),
		float32(-math.Sin(float64(c.Yaw))),
		0,
	}
}

// Move translates the camera by forward/right/up amounts scaled by Speed.
func (c *Free) Move(forwardAmt, rightAmt, upAmt float32) {
	c.Position = c.Position.Add(c.Forward().Mul(forwardAmt * c.Speed))
	c.Position = c.Position.Add(c.Right().Mul(rightAmt * c.Speed))
	c.Position = c.Position.Add(mgl32.Vec3{0, 0, upAmt * c.Speed})
}

// Look applies mouse-delta input, scaled by Sensitivity, clamping pitch to
// avoid gimbal flip.
func (c *Free) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	const limit = math.Pi/2 - 0.01
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// ViewMatrix returns the camera's current look-at matrix.
func (c *Free) ViewMatrix() mgl32.Mat4 {
	eye := c.Position
	target := eye.Add(c.Forward())
	up := mgl32.Vec3{0, 0, 1}
	return mgl32.LookAtV(eye, target, up)
}

// ExtractFrustum extracts the 6 normalized frustum planes (Left, Right,
// Bottom, Top, Near, Far; Ax+By+Cz+D=0) from a view-projection matrix, for
// culling which clipmap LODs' AABBs (see upload.Info) are worth uploading.
func ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	var planes [6]mgl32.Vec4

	planes[0] = mgl32.Vec4{
		vp.At(3, 0) + vp.At(0, 0), vp.At(3, 1) + vp.At(0, 1),
		vp.At(3, 2) + vp.At(0, 2), vp.At(3, 3) + vp.At(0, 3),
	}
	planes[1] = mgl32.Vec4{
		vp.At(3, 0) - vp.At(0, 0), vp.At(3, 1) - vp.At(0, 1),
		vp.At(3, 2) - vp.At(0, 2), vp.At(3, 3) - vp.At(0, 3),
	}
	planes[2] = mgl32.Vec4{
		vp.At(3, 0) + vp.At(1, 0), vp.At(3, 1) + vp.At(1, 1),
		vp.At(3, 2) + vp.At(1, 2), vp.At(3, 3) + vp.At(1, 3),
	}
	planes[3] = mgl32.Vec4{
		vp.At(3, 0) - vp.At(1, 0), vp.At(3, 1) - vp.At(1, 1),
		vp.At(3, 2) - vp.At(1, 2), vp.At(3, 3) - vp.At(1, 3),
	}
	planes[4] = mgl32.Vec4{
		vp.At(3, 0) + vp.At(2, 0), vp.At(3, 1) + vp.At(2, 1),
		vp.At(3, 2) + vp.At(2, 2), vp.At(3, 3) + vp.At(2, 3),
	}
	planes[5] = mgl32.Vec4{
		vp.At(3, 0) - vp.At(2, 0), vp.At(3, 1) - vp.At(2, 1),
		vp.At(3, 2) - vp.At(2, 2), vp.At(3, 3) - vp.At(2, 3),
	}

	for i := range planes {
		length := float32(math.Sqrt(float64(
			planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}

	return planes
}
