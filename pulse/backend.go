// Package pulse implements the renderer backend on top of webgpu. It draws
// point clouds as instanced squares and the eye dome lighting composite as a
// full screen pass, either into the surface of a window or, for a headless
// context, into an offscreen screen target.
package pulse

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

var ErrScreenNotReadable = errors.New("the window surface can not be read")

type BackendOptions struct {
	// MSAA renders to the window surface with four samples per pixel.
	MSAA bool

	// MaxNodeBuffers limits the number of node vertex buffers kept on the gpu.
	MaxNodeBuffers int
}

// Backend implements edl.Backend. Each draw is submitted as its own pass,
// the queue keeps them in order.
type Backend struct {
	ctx *Context

	// nil for a headless context
	view *View

	// the offscreen screen of a headless backend, otherwise the target of
	// the current frame, nil between frames
	screen *RenderTarget
	bound  *RenderTarget

	clearColor scene.Color

	samplers *SamplerCache
	nodes    *NodeBuffers
	clear    *ClearCommand
	points   *PointsCommand
	edl      *EDLCommand

	pointsDrawn int
}

var _ edl.Backend = (*Backend)(nil)

func NewBackend(ctx *Context, opts BackendOptions) (b *Backend, err error) {
	if opts.MaxNodeBuffers == 0 {
		opts.MaxNodeBuffers = pointcloud.DefaultMaxLoadedNodes
	}

	b = &Backend{
		ctx:        ctx,
		clearColor: scene.ColorTransparent,
		samplers:   NewSamplerCache(ctx),
		clear:      NewClear(ctx),
	}

	defer func() {
		if err != nil {
			b.Release()
			b = nil
		}
	}()

	if !ctx.Headless() {
		b.view = NewView(ctx, opts.MSAA)
	}

	b.nodes, err = NewNodeBuffers(ctx, opts.MaxNodeBuffers)
	if err != nil {
		return b, err
	}

	b.points, err = NewPointsCommand(ctx, b.nodes)
	if err != nil {
		return b, fmt.Errorf("create points command: %w", err)
	}

	b.edl, err = NewEDLCommand(ctx, b.samplers)
	if err != nil {
		return b, fmt.Errorf("create edl command: %w", err)
	}

	return b, nil
}

// Resize reconfigures the surface or, when headless, replaces the
// offscreen screen.
func (b *Backend) Resize(width, height uint32) error {
	slog.Info("Resize screen", slog.Int("width", int(width)), slog.Int("height", int(height)))

	if b.view != nil {
		return b.view.Configure(width, height)
	}

	screen, err := NewRenderTarget(b.ctx, edl.TargetOptions{
		Label:       "Screen",
		Width:       width,
		Height:      height,
		ColorFormat: edl.ColorFormatDefault,
		DepthFormat: edl.DepthUint,
	})

	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}

	if b.screen != nil {
		b.screen.Release()
	}

	b.screen = screen

	return nil
}

// BeginFrame acquires the surface texture all draws to the screen go to.
// It does nothing for a headless backend.
func (b *Backend) BeginFrame() error {
	if b.view == nil {
		return nil
	}

	screen, err := b.view.Acquire()
	if err != nil {
		return err
	}

	b.screen = screen
	b.pointsDrawn = 0

	return nil
}

// EndFrame presents the frame started by BeginFrame.
func (b *Backend) EndFrame() error {
	if b.view == nil {
		return nil
	}

	b.screen = nil

	return b.view.Present()
}

// ForgetNode releases the vertex buffer of an unloaded octree node.
func (b *Backend) ForgetNode(node *pointcloud.Node) {
	b.nodes.Forget(node)
}

func (b *Backend) PointsDrawn() int {
	return b.pointsDrawn
}

func (b *Backend) Size() (width, height uint32) {
	if b.view != nil {
		return b.view.Size()
	}

	if b.screen == nil {
		return 0, 0
	}

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
	target, err := b.active()
	if err != nil {
		return err
	}

	if color && target == b.screen {
		b.pointsDrawn = 0
	}

	return b.clear.Clear(target, ClearOptions{
		Color:      color,
		Depth:      depth,
		Stencil:    stencil,
		ClearColor: b.clearColor,
	})
}

func (b *Backend) ClearDepth() error {
	return b.Clear(false, true, false)
}

func (b *Backend) Render(sc *scene.Scene, camera *scene.Camera) error {
	target, err := b.active()
	if err != nil {
		return err
	}

	sc.Traverse(func(node scene.Node) {
		if err != nil {
			return
		}

		switch node := node.(type) {
		case *pointcloud.PointCloud:
			if !node.Visible {
				return
			}

			var drawn int
			drawn, err = b.points.Draw(target, node, camera)
			b.pointsDrawn += drawn

		case *scene.Quad:
			err = b.drawQuad(target, node)
		}
	})

	return err
}

func (b *Backend) drawQuad(target *RenderTarget, quad *scene.Quad) error {
	switch material := quad.Material.(type) {
	case *edl.Material:
		return b.edl.Draw(target, material)

	case nil:
		return nil

	default:
		return fmt.Errorf("unsupported material %T", material)
	}
}

func (b *Backend) NewRenderTarget(opts edl.TargetOptions) (edl.RenderTarget, error) {
	target, err := NewRenderTarget(b.ctx, opts)
	if err != nil {
		return nil, err
	}

	return target, nil
}

func (b *Backend) ReadPixels(target edl.RenderTarget) ([]byte, error) {
	if target == nil {
		if b.view != nil {
			return nil, ErrScreenNotReadable
		}

		target = b.screen
	}

	source := target.(*RenderTarget)
	if source == nil || source.Released() {
		return nil, fmt.Errorf("read pixels of released target")
	}

	return readPixels(b.ctx, source)
}

func (b *Backend) Release() {
	if b.edl != nil {
		b.edl.Release()
	}

	if b.points != nil {
		b.points.Release()
	}

	if b.nodes != nil {
		b.nodes.Release()
	}

	if b.view != nil {
		b.view.ReleaseTexture()
	}

	if b.screen != nil {
		b.screen.Release()
	}

	b.samplers.Release()
}

func (b *Backend) active() (*RenderTarget, error) {
	target := b.bound
	if target == nil {
		target = b.screen
	}

	if target == nil {
		return nil, ErrNoFrame
	}

	if target.Released() {
		return nil, fmt.Errorf("render into released target %q", target.opts.Label)
	}

	return target, nil
}
