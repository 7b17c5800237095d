package pulse

import (
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/edl"
)

// RenderTarget holds all the information of something that can be rendered to.
// This is normally either an offscreen Texture or the screen.
type RenderTarget struct {
	opts edl.TargetOptions

	color *Texture

	// nil if the target has no depth attachment
	depth *Texture

	// the screen target is owned by the view
	borrowed bool
	released bool
}

var _ edl.RenderTarget = (*RenderTarget)(nil)

// NewRenderTarget allocates the attachments described by opts.
func NewRenderTarget(ctx *Context, opts edl.TargetOptions) (*RenderTarget, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}

	if opts.Width > maxTextureSize || opts.Height > maxTextureSize {
		return nil, fmt.Errorf("target size %dx%d exceeds %d", opts.Width, opts.Height, maxTextureSize)
	}

	colorFormat, err := colorFormatOf(opts.ColorFormat)
	if err != nil {
		return nil, err
	}

	depthFormat, err := depthFormatOf(opts.DepthFormat)
	if err != nil {
		return nil, err
	}

	if opts.GenerateMipmaps {
		slog.Debug("Mipmaps are not generated for render targets", slog.String("target", opts.Label))
	}

	color, err := NewTexture(ctx, NewTextureOptions{
		Label:       opts.Label + ".Color",
		Format:      colorFormat,
		Width:       opts.Width,
		Height:      opts.Height,
		SampleCount: opts.Samples,
		Usage:       wgpu.TextureUsageCopyDst,
	})

	if err != nil {
		return nil, fmt.Errorf("create color attachment: %w", err)
	}

	colorGuard := NewReleaseGuard(color)
	defer colorGuard.Release()

	var depth *Texture

	if depthFormat != wgpu.TextureFormatUndefined {
		depth, err = NewTextureFromDesc(ctx, &wgpu.TextureDescriptor{
			Label:         opts.Label + ".Depth",
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
			Dimension:     wgpu.TextureDimension2D,
			Format:        depthFormat,
			MipLevelCount: 1,
			SampleCount:   max(opts.Samples, 1),
			Size: wgpu.Extent3D{
				Width:              opts.Width,
				Height:             opts.Height,
				DepthOrArrayLayers: 1,
			},
		})

		if err != nil {
			return nil, fmt.Errorf("create depth attachment: %w", err)
		}
	}

	colorGuard.Keep()

	return &RenderTarget{opts: opts, color: color, depth: depth}, nil
}

func (r *RenderTarget) Options() edl.TargetOptions {
	return r.opts
}

func (r *RenderTarget) Width() uint32 {
	return r.opts.Width
}

func (r *RenderTarget) Height() uint32 {
	return r.opts.Height
}

func (r *RenderTarget) Texture() edl.Texture {
	return r.color
}

func (r *RenderTarget) DepthTexture() edl.Texture {
	if r.depth == nil {
		return nil
	}

	return r.depth
}

// Format is the texture format of the color attachment.
func (r *RenderTarget) Format() wgpu.TextureFormat {
	return r.color.format
}

func (r *RenderTarget) DepthFormat() wgpu.TextureFormat {
	if r.depth == nil {
		return wgpu.TextureFormatUndefined
	}

	return r.depth.format
}

func (r *RenderTarget) SampleCount() uint32 {
	return r.color.sampleCount
}

func (r *RenderTarget) Released() bool {
	return r.released
}

func (r *RenderTarget) Release() {
	if r.released || r.borrowed {
		return
	}

	r.released = true

	r.color.Release()

	if r.depth != nil {
		r.depth.Release()
	}
}

// colorAttachment describes the color attachment of a pass. The existing
// content is kept unless clear is set.
func (r *RenderTarget) colorAttachment(clear bool, clearColor wgpu.Color) wgpu.RenderPassColorAttachment {
	view, resolveView := r.color.RenderViews()

	attachment := wgpu.RenderPassColorAttachment{
		View:          view,
		ResolveTarget: resolveView,
		LoadOp:        wgpu.LoadOpLoad,
		StoreOp:       wgpu.StoreOpStore,
	}

	if clear {
		attachment.LoadOp = wgpu.LoadOpClear
		attachment.ClearValue = clearColor
	}

	return attachment
}

// depthAttachment describes the depth attachment of a pass, nil if the
// target has no depth.
func (r *RenderTarget) depthAttachment(clearDepth, clearStencil bool) *wgpu.RenderPassDepthStencilAttachment {
	if r.depth == nil {
		return nil
	}

	attachment := &wgpu.RenderPassDepthStencilAttachment{
		View:            r.depth.textureView,
		DepthLoadOp:     wgpu.LoadOpLoad,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}

	if clearDepth {
		attachment.DepthLoadOp = wgpu.LoadOpClear
	}

	// formats without a stencil aspect must not specify stencil operations
	if hasStencil(r.depth.format) {
		attachment.StencilLoadOp = wgpu.LoadOpLoad
		attachment.StencilStoreOp = wgpu.StoreOpStore

		if clearStencil {
			attachment.StencilLoadOp = wgpu.LoadOpClear
			attachment.StencilClearValue = 0
		}
	}

	return attachment
}
