package edl

import "github.com/oliverbestmann/edlview/scene"

type ColorFormat int

const (
	// ColorFormatDefault is 8 bit rgba.
	ColorFormatDefault ColorFormat = iota
	ColorFormatHalfFloat
	ColorFormatFloat
)

type DepthFormat int

const (
	DepthNone DepthFormat = iota

	// DepthUint is an unsigned integer depth attachment that can be sampled.
	DepthUint
	DepthFloat
)

type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

// TargetOptions describe a render target. Targets are immutable, changing
// any option requires a new target.
type TargetOptions struct {
	Label string

	Width  uint32
	Height uint32

	ColorFormat ColorFormat
	DepthFormat DepthFormat

	MinFilter Filter
	MagFilter Filter

	GenerateMipmaps bool

	// Number of samples per pixel, 0 or 1 disable multisampling.
	Samples uint32
}

// Texture is an attachment of a render target that can be sampled by a
// later pass.
type Texture interface {
	Width() uint32
	Height() uint32
}

type RenderTarget interface {
	Options() TargetOptions
	Width() uint32
	Height() uint32

	// Texture returns the color attachment.
	Texture() Texture

	// DepthTexture returns the depth attachment or nil, if the target
	// has none.
	DepthTexture() Texture

	Release()
}

// Capabilities describe optional features of a backend.
type Capabilities struct {
	FloatColorTargets     bool
	HalfFloatColorTargets bool
	MaxTextureSize        uint32
}

// Backend is the graphics device the renderer issues its passes to. Exactly
// one target is bound at any time, nil is the presentable screen surface.
type Backend interface {
	// Size returns the size of the screen surface.
	Size() (width, height uint32)

	Capabilities() Capabilities

	RenderTarget() RenderTarget
	SetRenderTarget(target RenderTarget)

	ClearColor() scene.Color
	SetClearColor(color scene.Color)

	// Clear clears the selected buffers of the bound target.
	Clear(color, depth, stencil bool) error

	// ClearDepth clears the depth buffer of the bound target.
	ClearDepth() error

	// Render draws the scene into the bound target.
	Render(scene *scene.Scene, camera *scene.Camera) error

	NewRenderTarget(opts TargetOptions) (RenderTarget, error)

	// ReadPixels reads the color attachment of the target as rgba8 rows,
	// top row first.
	ReadPixels(target RenderTarget) ([]byte, error)
}
