package pulse

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/edl"
)

var ErrNoFrame = errors.New("no frame acquired")

// View manages the surface of a window together with the depth and
// multisample textures rendering to the screen needs.
type View struct {
	*Context

	surfaceConfig *wgpu.SurfaceConfiguration

	// only configured if we have a multisample texture configured
	msaaTexture *Texture

	// depth texture to render to.
	// has the same sampleCount as the surface itself
	depthTexture *Texture

	sampleCount uint32

	// the surface texture of the current frame
	frame     *wgpu.Texture
	frameView *wgpu.TextureView
}

func NewView(dev *Context, msaa bool) *View {
	st := &View{Context: dev}

	if msaa {
		st.sampleCount = 4
	} else {
		st.sampleCount = 1
	}

	// Print the available render formats
	caps := dev.Surface.GetCapabilities(dev.Adapter)
	slog.Info("Available surface formats", slog.Any("formats", caps.Formats))

	st.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      wgpu.TextureFormatBGRA8Unorm,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}

	return st
}

func (vs *View) MSAA() bool {
	return vs.sampleCount > 1
}

func (vs *View) Size() (width, height uint32) {
	return vs.surfaceConfig.Width, vs.surfaceConfig.Height
}

func (vs *View) SurfaceAsTexture(screen *wgpu.Texture, screenView *wgpu.TextureView) *Texture {
	if vs.MSAA() {
		screenTexture := WrapTexture(screen, screenView, nil)

		return WrapTexture(
			vs.msaaTexture.texture,
			vs.msaaTexture.textureView,
			screenTexture,
		)
	} else {
		return WrapTexture(
			screen,
			screenView,
			nil,
		)
	}
}

func (vs *View) ReleaseTexture() {
	if vs.depthTexture != nil {
		vs.depthTexture.Release()
		vs.depthTexture = nil
	}

	if vs.msaaTexture != nil {
		vs.msaaTexture.Release()
		vs.msaaTexture = nil
	}
}

func (vs *View) Configure(width, height uint32) error {
	vs.surfaceConfig.Width = width
	vs.surfaceConfig.Height = height
	vs.Surface.Configure(vs.Adapter, vs.Device, vs.surfaceConfig)

	// release depth depth texture
	vs.ReleaseTexture()

	var err error

	// create depth texture
	vs.depthTexture, err = createDepthTexture(vs.Context, width, height, vs.sampleCount)
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}

	if vs.MSAA() {
		// create msaa render target texture
		vs.msaaTexture, err = createMultisampleTexture(vs.Context, vs.surfaceConfig, vs.sampleCount)
		if err != nil {
			return fmt.Errorf("create multisample texture: %w", err)
		}
	}

	return nil
}

// Acquire gets the surface texture of the next frame and returns it as a
// render target. The target is valid until Present is called.
func (vs *View) Acquire() (*RenderTarget, error) {
	if vs.frame != nil {
		return nil, fmt.Errorf("previous frame was not presented")
	}

	frame, err := vs.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("get current texture: %w", err)
	}

	frameView, err := frame.CreateView(nil)
	if err != nil {
		frame.Release()
		return nil, fmt.Errorf("create surface view: %w", err)
	}

	vs.frame = frame
	vs.frameView = frameView

	width, height := vs.Size()

	target := &RenderTarget{
		opts: edl.TargetOptions{
			Label:       "Screen",
			Width:       width,
			Height:      height,
			DepthFormat: edl.DepthUint,
			Samples:     vs.sampleCount,
		},

		color:    vs.SurfaceAsTexture(frame, frameView),
		depth:    WrapTexture(vs.depthTexture.texture, vs.depthTexture.textureView, nil),
		borrowed: true,
	}

	return target, nil
}

// Present shows the current frame on screen.
func (vs *View) Present() error {
	if vs.frame == nil {
		return ErrNoFrame
	}

	vs.Surface.Present()

	vs.frameView.Release()
	vs.frame.Release()

	vs.frameView = nil
	vs.frame = nil

	return nil
}

func createMultisampleTexture(ctx *Context, surfaceConfig *wgpu.SurfaceConfiguration, sampleCount uint32) (*Texture, error) {
	return NewTextureFromDesc(ctx, &wgpu.TextureDescriptor{
		Label: "MultisampleRenderTarget",
		Usage: wgpu.TextureUsageRenderAttachment,
		Size: wgpu.Extent3D{
			Width:              surfaceConfig.Width,
			Height:             surfaceConfig.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        surfaceConfig.Format,
		Dimension:     wgpu.TextureDimension2D,
		SampleCount:   sampleCount,
		MipLevelCount: 1,
	})
}

func createDepthTexture(ctx *Context, width, height, sampleCount uint32) (*Texture, error) {
	format, _ := depthFormatOf(edl.DepthUint)

	return NewTextureFromDesc(ctx, &wgpu.TextureDescriptor{
		Label:     "DepthTexture",
		Usage:     wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
	})
}
