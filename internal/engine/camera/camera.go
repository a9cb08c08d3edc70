// Package camera provides an orbit camera for inspecting a model.
package camera

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Projection
	FovY float32 // radians
	Near float32
	Far  float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		RotationX:       0.4,
		MinDistance:     0.01,
		MaxDistance:     1000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		FovY:            mgl32.DegToRad(45),
		Near:            0.01,
		Far:             1000,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	pitch, yaw := float64(c.RotationX), float64(c.RotationY)
	offset := mgl32.Vec3{
		float32(stdmath.Cos(pitch) * stdmath.Sin(yaw)),
		float32(stdmath.Sin(pitch)),
		float32(stdmath.Cos(pitch) * stdmath.Cos(yaw)),
	}
	return c.Center.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToSphere centers the camera on a bounding sphere and backs off until
// it fills the vertical field of view. Clip planes follow the radius.
func (c *OrbitCamera) FitToSphere(center mgl32.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}
	c.Center = center
	c.Distance = radius / float32(stdmath.Sin(float64(c.FovY)/2))
	c.MinDistance = radius * 0.01
	c.MaxDistance = c.Distance * 20
	c.Near = c.Distance * 0.01
	c.Far = c.Distance * 100
	c.RotationX = 0.4
	c.RotationY = 0
}
