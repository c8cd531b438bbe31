package app

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/geometry"
)

const (
	orbitSpeed  = 0.3 // degrees per dragged pixel
	panSpeed    = 0.5
	zoomStep    = 20.0
	minDistance = 50.0
	maxPitch    = 89.9 // clamp to dodge gimbal lock at the poles
)

// Camera orbits a pannable target with the Z axis up: left-drag orbits,
// right-drag pans in the view plane, the wheel zooms.
type Camera struct {
	Yaw      float64 // degrees around Z
	Pitch    float64 // degrees above the XY plane
	Distance float64

	panX, panY float64 // accumulated pan along the view-plane axes

	dragging     bool
	panning      bool
	lastX, lastY int
}

func NewCamera(distance float64) *Camera {
	return &Camera{Distance: distance}
}

// Update consumes this frame's mouse input. blocked suppresses starting a
// drag or zooming, so interacting with the UI panel never moves the camera;
// a drag that started on the scene keeps tracking even over the panel.
func (c *Camera) Update(blocked bool) {
	x, y := ebiten.CursorPosition()

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	if c.dragging && left {
		c.Yaw += float64(x-c.lastX) * orbitSpeed
		c.Pitch += float64(y-c.lastY) * orbitSpeed
		if c.Pitch > maxPitch {
			c.Pitch = maxPitch
		}
		if c.Pitch < -maxPitch {
			c.Pitch = -maxPitch
		}
	}
	c.dragging = left && (c.dragging || !blocked)

	if c.panning && right {
		c.panX -= float64(x-c.lastX) * panSpeed
		c.panY += float64(y-c.lastY) * panSpeed
	}
	c.panning = right && (c.panning || !blocked)

	if !blocked {
		if _, wy := ebiten.Wheel(); wy != 0 {
			c.Distance -= wy * zoomStep
			if c.Distance < minDistance {
				c.Distance = minDistance
			}
		}
	}

	c.lastX, c.lastY = x, y
}

// view returns the eye position and the orthonormal camera basis the
// renderer projects through.
func (c *Camera) view() (eye, right, up, forward geometry.Vec3) {
	yaw := c.Yaw * math.Pi / 180
	pitch := c.Pitch * math.Pi / 180

	offset := geometry.NewVectorSpherical(c.Distance, yaw, pitch)
	forward = offset.Mul(-1).Normalize()
	// Pitch is clamped short of ±90°, so forward is never parallel to Z.
	right = forward.Cross(geometry.Vec3{Z: 1}).Normalize()
	up = right.Cross(forward)

	target := right.Mul(c.panX).Add(up.Mul(c.panY))
	eye = target.Add(offset)
	return eye, right, up, forward
}
