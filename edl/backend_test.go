package edl

import (
	"errors"

	"github.com/oliverbestmann/edlview/scene"
)

type fakeTexture struct {
	width, height uint32
}

func (t fakeTexture) Width() uint32  { return t.width }
func (t fakeTexture) Height() uint32 { return t.height }

type fakeTarget struct {
	opts     TargetOptions
	released bool
}

func (t *fakeTarget) Options() TargetOptions { return t.opts }
func (t *fakeTarget) Width() uint32          { return t.opts.Width }
func (t *fakeTarget) Height() uint32         { return t.opts.Height }

func (t *fakeTarget) Texture() Texture {
	return fakeTexture{t.opts.Width, t.opts.Height}
}

func (t *fakeTarget) DepthTexture() Texture {
	if t.opts.DepthFormat == DepthNone {
		return nil
	}

	return fakeTexture{t.opts.Width, t.opts.Height}
}

func (t *fakeTarget) Release() {
	t.released = true
}

type call struct {
	op     string
	target RenderTarget

	// clear calls
	color      scene.Color
	clearColor bool
	clearDepth bool
	stencil    bool

	// render calls
	scene    *scene.Scene
	material scene.Material
}

// fakeBackend records every call issued by the renderer.
type fakeBackend struct {
	width, height uint32
	caps          Capabilities

	bound      RenderTarget
	clearColor scene.Color

	calls   []call
	targets []*fakeTarget

	renderErr error
}

func newFakeBackend(width, height uint32) *fakeBackend {
	return &fakeBackend{
		width:  width,
		height: height,
		caps:   Capabilities{FloatColorTargets: true, HalfFloatColorTargets: true, MaxTextureSize: 8192},
	}
}

func (b *fakeBackend) Size() (uint32, uint32) {
	return b.width, b.height
}

func (b *fakeBackend) Capabilities() Capabilities {
	return b.caps
}

func (b *fakeBackend) RenderTarget() RenderTarget {
	return b.bound
}

func (b *fakeBackend) SetRenderTarget(target RenderTarget) {
	b.bound = target
}

func (b *fakeBackend) ClearColor() scene.Color {
	return b.clearColor
}

func (b *fakeBackend) SetClearColor(color scene.Color) {
	b.clearColor = color
}

func (b *fakeBackend) Clear(color, depth, stencil bool) error {
	b.calls = append(b.calls, call{
		op:         "clear",
		target:     b.bound,
		color:      b.clearColor,
		clearColor: color,
		clearDepth: depth,
		stencil:    stencil,
	})

	return nil
}

func (b *fakeBackend) ClearDepth() error {
	b.calls = append(b.calls, call{op: "clearDepth", target: b.bound, clearDepth: true})
	return nil
}

func (b *fakeBackend) Render(sc *scene.Scene, camera *scene.Camera) error {
	if b.renderErr != nil {
		return b.renderErr
	}

	c := call{op: "render", target: b.bound, scene: sc}

	sc.Traverse(func(node scene.Node) {
		if quad, ok := node.(*scene.Quad); ok {
			c.material = quad.Material
		}
	})

	b.calls = append(b.calls, c)

	return nil
}

func (b *fakeBackend) NewRenderTarget(opts TargetOptions) (RenderTarget, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, errors.New("empty target")
	}

	target := &fakeTarget{opts: opts}
	b.targets = append(b.targets, target)

	return target, nil
}

func (b *fakeBackend) ReadPixels(target RenderTarget) ([]byte, error) {
	return make([]byte, target.Width()*target.Height()*4), nil
}

func (b *fakeBackend) callsOf(op string) []call {
	var result []call
	for _, c := range b.calls {
		if c.op == op {
			result = append(result, c)
		}
	}

	return result
}
