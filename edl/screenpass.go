package edl

import (
	"fmt"

	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/scene"
)

// ScreenPass draws a material onto a full screen quad.
type ScreenPass struct {
	quad   *scene.Quad
	scene  *scene.Scene
	camera *scene.Camera
}

func NewScreenPass() *ScreenPass {
	quad := &scene.Quad{}

	screen := scene.New()
	screen.Add(quad)

	// the quad already covers clip space
	camera := &scene.Camera{
		Projection: glm.IdentityMat4[float32](),
		View:       glm.IdentityMat4[float32](),
	}

	return &ScreenPass{
		quad:   quad,
		scene:  screen,
		camera: camera,
	}
}

// Draw renders the material into target, or into the bound target if target
// is nil. The previous binding is restored afterwards.
func (p *ScreenPass) Draw(backend Backend, material scene.Material, target RenderTarget) error {
	p.quad.Material = material
	defer func() { p.quad.Material = nil }()

	if target != nil {
		previous := backend.RenderTarget()
		backend.SetRenderTarget(target)
		defer backend.SetRenderTarget(previous)
	}

	if err := backend.Render(p.scene, p.camera); err != nil {
		return fmt.Errorf("draw screen pass: %w", err)
	}

	return nil
}
