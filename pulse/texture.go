package pulse

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Texture wraps a wgpu.Texture and an identity wgpu.TextureView.
// For multisample textures a Texture also holds the resolve target
// texture.
type Texture struct {
	texture     *wgpu.Texture
	textureView *wgpu.TextureView

	resolveTarget *Texture

	// equal to texture.GetFormat()
	format wgpu.TextureFormat

	// equal to texture.GetSampleCount()
	sampleCount uint32

	width  uint32
	height uint32

	// wrapped textures are owned by someone else
	owned bool
}

type NewTextureOptions struct {
	Format wgpu.TextureFormat
	Width  uint32
	Height uint32

	// Number of samples, zero or one for a single sampled texture
	SampleCount uint32

	// Additional usages, the texture can always be rendered to, sampled from and copied.
	Usage wgpu.TextureUsage

	Label string
}

func NewTexture(ctx *Context, opts NewTextureOptions) (*Texture, error) {
	sampleCount := max(opts.SampleCount, 1)

	desc := &wgpu.TextureDescriptor{
		Label:         opts.Label,
		Format:        opts.Format,
		SampleCount:   sampleCount,
		MipLevelCount: 1,

		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              opts.Width,
			Height:             opts.Height,
			DepthOrArrayLayers: 1,
		},

		Usage: opts.Usage |
			wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageRenderAttachment |
			wgpu.TextureUsageCopySrc,
	}

	return NewTextureFromDesc(ctx, desc)
}

// NewTextureFromDesc gives you full control and creates a texture directly from
// a texture descriptor
func NewTextureFromDesc(ctx *Context, desc *wgpu.TextureDescriptor) (*Texture, error) {
	texture, err := ctx.Device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}

	textureGuard := NewReleaseGuard(texture)
	defer textureGuard.Release()

	// now create a default texture view
	textureView, err := texture.CreateView(nil)
	if err != nil {
		return nil, err
	}

	viewGuard := NewReleaseGuard(textureView)
	defer viewGuard.Release()

	var resolveTarget *Texture

	// only sampled color textures are resolved, depth is never resolved
	resolve := desc.Usage&wgpu.TextureUsageTextureBinding != 0 && !isDepthFormat(desc.Format)

	if desc.SampleCount > 1 && resolve {
		descResolve := *desc
		descResolve.SampleCount = 1
		descResolve.Label = desc.Label + ".Resolve"

		resolveTarget, err = NewTextureFromDesc(ctx, &descResolve)
		if err != nil {
			return nil, fmt.Errorf("create resolveTarget texture: %w", err)
		}
	}

	textureGuard.Keep()
	viewGuard.Keep()

	return &Texture{
		texture:       texture,
		textureView:   textureView,
		resolveTarget: resolveTarget,

		format:      desc.Format,
		sampleCount: desc.SampleCount,
		width:       desc.Size.Width,
		height:      desc.Size.Height,
		owned:       true,
	}, nil
}

// WrapTexture creates a texture from an existing wgpu.Texture and wgpu.TextureView. If it is a
// multisample color texture, you also need to specify a resolve target. Releasing the
// returned texture does not release the wrapped objects.
func WrapTexture(texture *wgpu.Texture, textureView *wgpu.TextureView, resolveTarget *Texture) *Texture {
	multisample := texture.GetSampleCount() > 1 && !isDepthFormat(texture.GetFormat())

	if multisample && resolveTarget == nil {
		panic("no resolveTarget specified for multisample texture")
	}

	if !multisample && resolveTarget != nil {
		panic("resolveTarget specified for multisample texture")
	}

	return &Texture{
		texture:       texture,
		textureView:   textureView,
		resolveTarget: resolveTarget,
		format:        texture.GetFormat(),
		sampleCount:   texture.GetSampleCount(),
		width:         texture.GetWidth(),
		height:        texture.GetHeight(),
	}
}

// SourceView returns the view to sample from. This is the resolve target
// for multisample textures.
func (t *Texture) SourceView() *wgpu.TextureView {
	if t.resolveTarget != nil {
		return t.resolveTarget.textureView
	}

	return t.textureView
}

// SourceTexture returns the texture holding the final pixels.
func (t *Texture) SourceTexture() *wgpu.Texture {
	if t.resolveTarget != nil {
		return t.resolveTarget.texture
	}

	return t.texture
}

// RenderViews returns the attachment view and, for multisample textures,
// the view the samples are resolved into.
func (t *Texture) RenderViews() (view, resolveView *wgpu.TextureView) {
	view = t.textureView

	if t.resolveTarget != nil {
		resolveView = t.resolveTarget.textureView
	}

	return
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *Texture) SampleCount() uint32 {
	return t.sampleCount
}

// Release releases the texture and its resolve target. You must be sure
// to not use the texture after calling release.
func (t *Texture) Release() {
	if !t.owned {
		return
	}

	t.textureView.Release()
	t.texture.Release()

	if t.resolveTarget != nil {
		t.resolveTarget.Release()
	}
}
