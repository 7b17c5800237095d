package soft

import (
	"github.com/oliverbestmann/edlview/edl"
)

// RenderTarget is a render target in main memory.
type RenderTarget struct {
	opts edl.TargetOptions

	color   *ColorTexture
	depth   *DepthTexture
	stencil []uint8

	released bool
}

func newRenderTarget(opts edl.TargetOptions) *RenderTarget {
	target := &RenderTarget{
		opts:    opts,
		color:   newColorTexture(opts.Width, opts.Height, opts.ColorFormat),
		stencil: make([]uint8, opts.Width*opts.Height),
	}

	if opts.DepthFormat != edl.DepthNone {
		target.depth = newDepthTexture(opts.Width, opts.Height)
		target.depth.Fill(^uint32(0))
	}

	return target
}

func (t *RenderTarget) Options() edl.TargetOptions {
	return t.opts
}

func (t *RenderTarget) Width() uint32 {
	return t.opts.Width
}

func (t *RenderTarget) Height() uint32 {
	return t.opts.Height
}

func (t *RenderTarget) Texture() edl.Texture {
	return t.color
}

func (t *RenderTarget) DepthTexture() edl.Texture {
	if t.depth == nil {
		return nil
	}

	return t.depth
}

func (t *RenderTarget) Color() *ColorTexture {
	return t.color
}

func (t *RenderTarget) Depth() *DepthTexture {
	return t.depth
}

func (t *RenderTarget) Released() bool {
	return t.released
}

func (t *RenderTarget) Release() {
	t.released = true
}

// depthTest compares the depth with the stored value, the test passes if
// the new value is less or equal with the given tolerance. Targets without
// depth buffer always pass.
func (t *RenderTarget) depthTest(x, y uint32, depth uint32, tolerance uint32) bool {
	if t.depth == nil {
		return true
	}

	stored := uint64(t.depth.At(x, y))
	return uint64(depth) <= stored+uint64(tolerance)
}

func (t *RenderTarget) writeDepth(x, y uint32, depth uint32) {
	if t.depth != nil {
		t.depth.pix[y*t.depth.width+x] = depth
	}
}
