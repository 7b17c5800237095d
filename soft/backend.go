// Package soft implements the renderer backend on the CPU. It renders points
// and the eye dome lighting composite into targets held in main memory and is
// used for headless rendering and tests.
package soft

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

const maxTextureSize = 16384

// Backend implements edl.Backend. The screen surface is a render target with
// 8 bit color and depth.
type Backend struct {
	screen *RenderTarget
	bound  *RenderTarget

	clearColor scene.Color

	// number of points written since the last clear of the screen
	pointsDrawn int
}

var _ edl.Backend = (*Backend)(nil)

func New(width, height uint32) *Backend {
	b := &Backend{clearColor: scene.ColorTransparent}
	b.Resize(width, height)
	return b
}

// Resize replaces the screen surface.
func (b *Backend) Resize(width, height uint32) {
	b.screen = newRenderTarget(edl.TargetOptions{
		Label:       "screen",
		Width:       width,
		Height:      height,
		DepthFormat: edl.DepthUint,
	})
}

// Screen returns the screen surface.
func (b *Backend) Screen() *RenderTarget {
	return b.screen
}

func (b *Backend) PointsDrawn() int {
	return b.pointsDrawn
}

func (b *Backend) Size() (width, height uint32) {
	return b.screen.Width(), b.screen.Height()
}

func (b *Backend) Capabilities() edl.Capabilities {
	return edl.Capabilities{
		FloatColorTargets:     true,
		HalfFloatColorTargets: true,
		MaxTextureSize:        maxTextureSize,
	}
}

func (b *Backend) RenderTarget() edl.RenderTarget {
	if b.bound == nil {
		return nil
	}

	return b.bound
}

func (b *Backend) SetRenderTarget(target edl.RenderTarget) {
	if target == nil {
		b.bound = nil
		return
	}

	b.bound = target.(*RenderTarget)
}

func (b *Backend) ClearColor() scene.Color {
	return b.clearColor
}

func (b *Backend) SetClearColor(color scene.Color) {
	b.clearColor = color
}

func (b *Backend) Clear(color, depth, stencil bool) error {
	target := b.active()

	if color {
		target.color.Fill(b.clearColor.ToVec())
	}

	if depth && target.depth != nil {
		target.depth.Fill(^uint32(0))
	}

	if stencil {
		clear(target.stencil)
	}

	if target == b.screen {
		b.pointsDrawn = 0
	}

	return nil
}

func (b *Backend) ClearDepth() error {
	return b.Clear(false, true, false)
}

func (b *Backend) Render(sc *scene.Scene, camera *scene.Camera) error {
	target := b.active()
	if target.released {
		return fmt.Errorf("render into released target %q", target.opts.Label)
	}

	var err error

	sc.Traverse(func(node scene.Node) {
		if err != nil {
			return
		}

		switch node := node.(type) {
		case *pointcloud.PointCloud:
			if node.Visible {
				b.pointsDrawn += drawPoints(target, node, camera)
			}

		case *scene.Quad:
			err = drawQuad(target, node)
		}
	})

	return err
}

func (b *Backend) NewRenderTarget(opts edl.TargetOptions) (edl.RenderTarget, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}

	if opts.Width > maxTextureSize || opts.Height > maxTextureSize {
		return nil, fmt.Errorf("target size %dx%d exceeds %d", opts.Width, opts.Height, maxTextureSize)
	}

	if opts.Samples > 1 {
		slog.Debug("Multisampling is not supported, rendering with one sample", slog.String("target", opts.Label))
	}

	return newRenderTarget(opts), nil
}

func (b *Backend) ReadPixels(target edl.RenderTarget) ([]byte, error) {
	source := b.screen
	if target != nil {
		source = target.(*RenderTarget)
	}

	if source.released {
		return nil, fmt.Errorf("read pixels of released target %q", source.opts.Label)
	}

	color := source.color

	pixels := make([]byte, 0, len(color.pix)*4)
	for _, value := range color.pix {
		for _, component := range value {
			pixels = append(pixels, uint8(quantize(edl.ColorFormatDefault, component)*255+0.5))
		}
	}

	return pixels, nil
}

func (b *Backend) active() *RenderTarget {
	if b.bound == nil {
		return b.screen
	}

	return b.bound
}
