package edl

import (
	"github.com/oliverbestmann/edlview/scene"
)

// Settings are the user tunable knobs of the shading.
type Settings struct {
	// Strength scales the depth response, larger values give darker edges.
	Strength float32 `toml:"strength"`

	// Radius of the neighbour sampling circle in pixels.
	Radius float32 `toml:"radius"`

	// Opacity blends the shaded color over the base scene.
	Opacity float32 `toml:"opacity"`
}

func DefaultSettings() Settings {
	return Settings{
		Strength: 1.0,
		Radius:   1.4,
		Opacity:  1.0,
	}
}

// Uniforms is the input of the composite shader for a single frame.
type Uniforms struct {
	ScreenWidth  float32
	ScreenHeight float32

	Near float32
	Far  float32

	ColorTexture Texture
	DepthTexture Texture

	// Proj holds the projection matrix in the element order of the camera.
	Proj [16]float32

	Strength float32
	Radius   float32
	Opacity  float32
}

// HasInputs reports whether the capture attachments are bound. Without them
// there is nothing to composite.
func (u Uniforms) HasInputs() bool {
	return u.ColorTexture != nil && u.DepthTexture != nil
}

// ComputeUniforms derives the shader input from the camera, the current
// capture target and the settings. A nil capture target yields uniforms
// without inputs and a zero screen size.
func ComputeUniforms(camera scene.Camera, capture RenderTarget, settings Settings) Uniforms {
	u := Uniforms{
		Near:     camera.Near,
		Far:      camera.Far,
		Proj:     camera.Projection,
		Strength: settings.Strength,
		Radius:   settings.Radius,
		Opacity:  settings.Opacity,
	}

	if capture != nil {
		u.ScreenWidth = float32(capture.Width())
		u.ScreenHeight = float32(capture.Height())
		u.ColorTexture = capture.Texture()
		u.DepthTexture = capture.DepthTexture()
	}

	return u
}

// Material is the composite material. It blends the shaded capture colors
// over the bound target and writes the reconstructed depth.
type Material struct {
	uniforms    Uniforms
	needsUpdate bool
}

func NewMaterial() *Material {
	return &Material{needsUpdate: true}
}

func (m *Material) Blend() scene.BlendMode {
	return scene.BlendAlpha
}

func (m *Material) DepthTest() bool {
	return true
}

func (m *Material) DepthWrite() bool {
	return true
}

func (m *Material) Transparent() bool {
	return true
}

func (m *Material) Uniforms() Uniforms {
	return m.uniforms
}

// SetUniforms stores the uniforms and flags the material for upload.
func (m *Material) SetUniforms(u Uniforms) {
	m.uniforms = u
	m.needsUpdate = true
}

func (m *Material) NeedsUpdate() bool {
	return m.needsUpdate
}

func (m *Material) MarkUploaded() {
	m.needsUpdate = false
}
