package pulse

import (
	_ "embed"
	"fmt"
	"log/slog"
	"structs"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/glm"
)

//go:embed edl.wgsl
var edlShaderCode string

type edlUniforms struct {
	_ structs.HostLayout

	Projection glm.Mat4f

	// screen width, screen height, near, far
	Screen glm.Vec4f

	// strength, radius, opacity
	Params glm.Vec4f
}

// EDLCommand composites the shaded capture over the bound target.
type EDLCommand struct {
	ctx      *Context
	samplers *SamplerCache

	// float capture textures are unfilterable, which the automatic
	// layout can not express
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout

	pipelineCache *PipelineCache[edlPipelineConfig]

	bufUniforms *wgpu.Buffer
}

func NewEDLCommand(ctx *Context, samplers *SamplerCache) (*EDLCommand, error) {
	bindGroupLayout, err := ctx.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "EDL.BindGroupLayout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(unsafe.Sizeof(edlUniforms{})),
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeNonFiltering,
				},
			},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	layoutGuard := NewReleaseGuard(bindGroupLayout)
	defer layoutGuard.Release()

	pipelineLayout, err := ctx.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "EDL.PipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})

	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	pipelineLayoutGuard := NewReleaseGuard(pipelineLayout)
	defer pipelineLayoutGuard.Release()

	bufUniforms, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "EDL.Uniforms",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(edlUniforms{})),
	})

	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}

	layoutGuard.Keep()
	pipelineLayoutGuard.Keep()

	return &EDLCommand{
		ctx:             ctx,
		samplers:        samplers,
		bindGroupLayout: bindGroupLayout,
		pipelineLayout:  pipelineLayout,
		pipelineCache:   NewPipelineCache[edlPipelineConfig](ctx, 4),
		bufUniforms:     bufUniforms,
	}, nil
}

// Draw renders a full screen quad shading the capture texture of the material.
func (c *EDLCommand) Draw(target *RenderTarget, material *edl.Material) error {
	u := material.Uniforms()

	if !u.HasInputs() {
		material.MarkUploaded()
		return nil
	}

	source, ok := u.ColorTexture.(*Texture)
	if !ok {
		return fmt.Errorf("capture texture %T was not created by this backend", u.ColorTexture)
	}

	pipeline, err := c.pipelineCache.Get(edlPipelineConfig{
		Layout:            c.pipelineLayout,
		TargetFormat:      target.Format(),
		DepthFormat:       target.DepthFormat(),
		TargetSampleCount: target.SampleCount(),
	})

	if err != nil {
		return fmt.Errorf("get edl pipeline: %w", err)
	}

	sampler, err := c.samplers.Get(nearestClamp)
	if err != nil {
		return err
	}

	queue := c.ctx.GetQueue()
	defer queue.Release()

	uniforms := edlUniforms{
		Projection: u.Proj,
		Screen:     glm.Vec4f{u.ScreenWidth, u.ScreenHeight, u.Near, u.Far},
		Params:     glm.Vec4f{u.Strength, u.Radius, u.Opacity},
	}

	err = queue.WriteBuffer(c.bufUniforms, 0, uniformBytes(&uniforms))
	if err != nil {
		return fmt.Errorf("update uniform buffer: %w", err)
	}

	material.MarkUploaded()

	bindGroup, err := c.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "EDL.BindGroup",
		Layout: c.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  c.bufUniforms,
				Size:    wgpu.WholeSize,
			},
			{
				Binding:     1,
				TextureView: source.SourceView(),
			},
			{
				Binding: 2,
				Sampler: sampler,
			},
		},
	})

	if err != nil {
		return err
	}

	defer bindGroup.Release()

	encoder, err := c.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "RenderPassEDL",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			target.colorAttachment(false, wgpu.Color{}),
		},
		DepthStencilAttachment: target.depthAttachment(false, false),
	})

	defer func() {
		if pass != nil {
			pass.Release()
		}
	}()

	pass.SetPipeline(pipeline.Pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(6, 1, 0, 0)

	if err := pass.End(); err != nil {
		return err
	}

	// must release pass before finishing the encoder
	pass.Release()
	pass = nil

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}

	defer cmdBuffer.Release()

	queue.Submit(cmdBuffer)

	return nil
}

func (c *EDLCommand) Release() {
	c.pipelineCache.Release()
	c.bufUniforms.Release()
	c.pipelineLayout.Release()
	c.bindGroupLayout.Release()
}

type edlPipelineConfig struct {
	Layout            *wgpu.PipelineLayout
	TargetFormat      wgpu.TextureFormat
	DepthFormat       wgpu.TextureFormat
	TargetSampleCount uint32
}

func (conf edlPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for eye dome lighting",
		slog.Any("format", conf.TargetFormat),
		slog.Any("depthFormat", conf.DepthFormat),
		slog.Any("sampleCount", conf.TargetSampleCount),
	)

	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "EDL.ShaderSource",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: edlShaderCode},
	})
	if err != nil {
		return nil, fmt.Errorf("compile edl shader: %w", err)
	}

	defer shader.Release()

	blend := wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("EDL.%s", conf.TargetFormat),
		Layout: conf.Layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    conf.TargetFormat,
					Blend:     &blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthStencilState(conf.DepthFormat, true),
		Multisample: wgpu.MultisampleState{
			Count: max(conf.TargetSampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
	}

	pipeline, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("build edl pipeline: %w", err)
	}

	return pipeline, nil
}
