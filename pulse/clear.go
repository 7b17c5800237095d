package pulse

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/scene"
)

type ClearCommand struct {
	device *wgpu.Device
}

func NewClear(ctx *Context) *ClearCommand {
	return &ClearCommand{device: ctx.Device}
}

// ClearOptions select the aspects of a target to clear.
type ClearOptions struct {
	Color   bool
	Depth   bool
	Stencil bool

	ClearColor scene.Color
}

func (c *ClearCommand) Clear(target *RenderTarget, opts ClearOptions) error {
	if !opts.Color && !opts.Depth && !opts.Stencil {
		return nil
	}

	enc, err := c.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "ClearTexture",
	})

	if err != nil {
		return err
	}

	defer enc.Release()

	r, g, b, a := opts.ClearColor.Components()

	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "ClearTexture",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			target.colorAttachment(opts.Color, wgpu.Color{
				R: float64(r),
				G: float64(g),
				B: float64(b),
				A: float64(a),
			}),
		},
		DepthStencilAttachment: target.depthAttachment(opts.Depth, opts.Stencil),
	})

	passGuard := NewReleaseGuard(pass)
	defer passGuard.Release()

	if err := pass.End(); err != nil {
		return err
	}

	// must release pass before finishing the encoder
	passGuard.Release()

	// encode into a command buffer
	buf, err := enc.Finish(&wgpu.CommandBufferDescriptor{Label: "ClearTexture"})
	if err != nil {
		return err
	}

	defer buf.Release()

	queue := c.device.GetQueue()
	defer queue.Release()

	queue.Submit(buf)

	return nil
}

type Releaser interface {
	Release()
}

type ReleaseGuard struct {
	delegate Releaser
}

func NewReleaseGuard(delegate Releaser) ReleaseGuard {
	return ReleaseGuard{delegate: delegate}
}

func (r *ReleaseGuard) Keep() {
	r.delegate = nil
}

func (r *ReleaseGuard) Release() {
	if r.delegate != nil {
		r.delegate.Release()
		r.delegate = nil
	}
}
