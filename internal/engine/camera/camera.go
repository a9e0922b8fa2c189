// Package camera provides the orbit camera used to inspect models.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// New creates an orbit camera with defaults sized for meter-scale
// models.
func New() *OrbitCamera {
	return &OrbitCamera{
		Distance:        4.0,
		RotationX:       0.35,
		RotationY:       0.0,
		MinDistance:     0.2,
		MaxDistance:     100.0,
		MinPitch:        -1.45,
		MaxPitch:        1.45,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	x := c.Distance * float32(math.Cos(float64(c.RotationX))*math.Sin(float64(c.RotationY)))
	y := c.Distance * float32(math.Sin(float64(c.RotationX)))
	z := c.Distance * float32(math.Cos(float64(c.RotationX))*math.Cos(float64(c.RotationY)))

	return c.Center.Add(mgl32.Vec3{x, y, z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds centers the camera on a bounding box and backs off far
// enough to see all of it, rescaling the zoom limits to match.
func (c *OrbitCamera) FitToBounds(min, max [3]float32) {
	c.Center = mgl32.Vec3{
		(min[0] + max[0]) / 2,
		(min[1] + max[1]) / 2,
		(min[2] + max[2]) / 2,
	}

	size := mgl32.Vec3{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
	radius := size.Len() / 2
	if radius < 0.01 {
		radius = 0.01
	}

	c.Distance = radius * 2.5
	c.MinDistance = radius * 0.2
	c.MaxDistance = radius * 20

	c.RotationX = 0.35
	c.RotationY = 0.0
}
