package pulse

import (
	_ "embed"
	"fmt"
	"log/slog"
	"structs"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

//go:embed points.wgsl
var pointsShaderCode string

type pointUniforms struct {
	_ structs.HostLayout

	View       glm.Mat4f
	Projection glm.Mat4f

	// screen width, screen height, point size, log depth flag
	Screen glm.Vec4f

	// octree size, spacing
	Octree glm.Vec4f
}

// PointsCommand draws the visible nodes of a point cloud as screen aligned
// squares, one instance per point.
type PointsCommand struct {
	ctx   *Context
	nodes *NodeBuffers

	pipelineCache *PipelineCache[pointsPipelineConfig]

	bufUniforms *wgpu.Buffer
}

func NewPointsCommand(ctx *Context, nodes *NodeBuffers) (*PointsCommand, error) {
	bufUniforms, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Points.Uniforms",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  uint64(unsafe.Sizeof(pointUniforms{})),
	})

	if err != nil {
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}

	return &PointsCommand{
		ctx:           ctx,
		nodes:         nodes,
		pipelineCache: NewPipelineCache[pointsPipelineConfig](ctx, 8),
		bufUniforms:   bufUniforms,
	}, nil
}

// Draw renders the cloud into the target and returns the number of points drawn.
func (p *PointsCommand) Draw(target *RenderTarget, cloud *pointcloud.PointCloud, camera *scene.Camera) (int, error) {
	material := cloud.Material

	pipelineConfig := pointsPipelineConfig{
		TargetFormat:      target.Format(),
		DepthFormat:       target.DepthFormat(),
		TargetSampleCount: target.SampleCount(),
		DepthWrite:        material.DepthWrite(),
	}

	pipeline, err := p.pipelineCache.Get(pipelineConfig)
	if err != nil {
		return 0, fmt.Errorf("get points pipeline: %w", err)
	}

	var logDepth float32
	if material.UseEDL && isFloatFormat(target.Format()) {
		logDepth = 1
	}

	uniforms := pointUniforms{
		View:       camera.View,
		Projection: camera.Projection,
		Screen: glm.Vec4f{
			float32(target.Width()),
			float32(target.Height()),
			max(material.PointSize, 1),
			logDepth,
		},
		Octree: glm.Vec4f{material.Uniforms.OctreeSize, material.Spacing},
	}

	queue := p.ctx.GetQueue()
	defer queue.Release()

	err = queue.WriteBuffer(p.bufUniforms, 0, uniformBytes(&uniforms))
	if err != nil {
		return 0, fmt.Errorf("update uniform buffer: %w", err)
	}

	material.MarkUploaded()

	bindGroup, err := p.ctx.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  p.bufUniforms,
				Size:    wgpu.WholeSize,
			},
		},
	})

	if err != nil {
		return 0, err
	}

	defer bindGroup.Release()

	encoder, err := p.ctx.CreateCommandEncoder(nil)
	if err != nil {
		return 0, err
	}

	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "RenderPassPoints",
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

	var drawn int

	for _, node := range cloud.VisibleNodes {
		buffer, err := p.nodes.Get(node)
		if err != nil {
			return 0, err
		}

		if buffer == nil {
			continue
		}

		pass.SetVertexBuffer(0, buffer, 0, wgpu.WholeSize)
		pass.Draw(6, uint32(len(node.Points)), 0, 0)

		drawn += len(node.Points)
	}

	if err := pass.End(); err != nil {
		return 0, err
	}

	// must release pass before finishing the encoder
	pass.Release()
	pass = nil

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return 0, err
	}

	defer cmdBuffer.Release()

	queue.Submit(cmdBuffer)

	return drawn, nil
}

func (p *PointsCommand) Release() {
	p.pipelineCache.Release()
	p.bufUniforms.Release()
}

type pointsPipelineConfig struct {
	TargetFormat      wgpu.TextureFormat
	DepthFormat       wgpu.TextureFormat
	TargetSampleCount uint32
	DepthWrite        bool
}

func (conf pointsPipelineConfig) Specialize(dev *wgpu.Device) (*wgpu.RenderPipeline, error) {
	slog.Info(
		"Create RenderPipeline for points",
		slog.Any("format", conf.TargetFormat),
		slog.Any("depthFormat", conf.DepthFormat),
		slog.Any("sampleCount", conf.TargetSampleCount),
	)

	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Points.ShaderSource",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: pointsShaderCode},
	})
	if err != nil {
		return nil, fmt.Errorf("compile points shader: %w", err)
	}

	defer shader.Release()

	desc := &wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("Points.%s", conf.TargetFormat),
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(pointcloud.Point{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{
							// position
							Format:         wgpu.VertexFormatFloat32x3,
							Offset:         uint64(unsafe.Offsetof(pointcloud.Point{}.Position)),
							ShaderLocation: 0,
						},
						{
							// color
							Format:         wgpu.VertexFormatUnorm8x4,
							Offset:         uint64(unsafe.Offsetof(pointcloud.Point{}.Color)),
							ShaderLocation: 1,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    conf.TargetFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthStencilState(conf.DepthFormat, conf.DepthWrite),
		Multisample: wgpu.MultisampleState{
			Count:                  max(conf.TargetSampleCount, 1),
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	}

	pipeline, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("build points pipeline: %w", err)
	}

	return pipeline, nil
}

// depthStencilState tests with less-equal, nil for targets without depth.
func depthStencilState(format wgpu.TextureFormat, depthWrite bool) *wgpu.DepthStencilState {
	if format == wgpu.TextureFormatUndefined {
		return nil
	}

	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: depthWrite,
		DepthCompare:      wgpu.CompareFunctionLessEqual,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilReadMask:  0xFFFFFFFF,
		StencilWriteMask: 0,
	}
}
