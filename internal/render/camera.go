package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-look camera in a Z-up world. Yaw turns around +Z,
// measured from +X; pitch tilts toward +Z. Both are in degrees.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float64
	Pitch       float64
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
	Sensitivity float64

	firstMouse bool
	lastX      float64
	lastY      float64
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(max(height, 1)),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Sensitivity: 0.1,
		firstMouse:  true,
	}
}

// SetViewport updates the aspect ratio after a resize.
func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// ResetMouse makes the next cursor event only record the position.
func (c *Camera) ResetMouse() {
	c.firstMouse = true
}

// HandleMouseMovement turns the camera by the cursor delta since the last
// call.
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX, c.lastY = xpos, ypos
		c.firstMouse = false
		return
	}

	xoffset := (c.lastX - xpos) * c.Sensitivity
	yoffset := (c.lastY - ypos) * c.Sensitivity
	c.lastX, c.lastY = xpos, ypos

	c.Yaw = math.Mod(c.Yaw+xoffset, 360)
	c.Pitch = max(-89.0, min(89.0, c.Pitch+yoffset))
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(float32(c.Yaw)))
	p := float64(mgl32.DegToRad(float32(c.Pitch)))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(y) * math.Cos(p)),
		float32(math.Sin(p)),
	}.Normalize()
}

// Right returns the horizontal unit vector to the right of the view.
func (c *Camera) Right() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(float32(c.Yaw)))
	return mgl32.Vec3{float32(math.Sin(y)), float32(-math.Cos(y)), 0}
}

// Forward returns the view direction flattened onto the XY plane.
func (c *Camera) Forward() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(float32(c.Yaw)))
	return mgl32.Vec3{float32(math.Cos(y)), float32(math.Sin(y)), 0}
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 0, 1})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
