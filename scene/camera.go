package scene

import "github.com/oliverbestmann/edlview/glm"

// Camera holds the state the renderer reads once per frame. Camera is a plain
// value, copying it yields an independent snapshot.
type Camera struct {
	Projection glm.Mat4f
	View       glm.Mat4f

	Near float32
	Far  float32

	// parameters of a perspective projection, zero for custom projections
	fovY   glm.Rad
	aspect float32
}

func NewPerspectiveCamera(fovY glm.Rad, aspect, near, far float32) *Camera {
	c := &Camera{
		View:   glm.IdentityMat4[float32](),
		Near:   near,
		Far:    far,
		fovY:   fovY,
		aspect: aspect,
	}

	c.UpdateProjection()

	return c
}

// NewOrthographicCamera returns a camera with an orthographic projection
// covering the given view volume.
func NewOrthographicCamera(left, right, bottom, top, near, far float32) *Camera {
	return &Camera{
		Projection: glm.Orthographic(left, right, bottom, top, near, far),
		View:       glm.IdentityMat4[float32](),
		Near:       near,
		Far:        far,
	}
}

// SetAspect updates the aspect ratio of a perspective camera.
func (c *Camera) SetAspect(aspect float32) {
	c.aspect = aspect
	c.UpdateProjection()
}

// UpdateProjection recomputes the projection matrix after changing the
// perspective parameters or the near and far planes. This is a no-op for
// cameras without perspective parameters.
func (c *Camera) UpdateProjection() {
	if c.fovY == 0 || c.aspect == 0 {
		return
	}

	c.Projection = glm.Perspective(c.fovY, c.aspect, c.Near, c.Far)
}

// LookAt points the camera from eye towards center.
func (c *Camera) LookAt(eye, center, up glm.Vec3f) {
	c.View = glm.LookAt(eye, center, up)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() glm.Mat4f {
	return c.Projection.Mul(c.View)
}

// Snapshot returns a copy of the current camera state.
func (c *Camera) Snapshot() Camera {
	return *c
}
