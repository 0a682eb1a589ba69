package vkng

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/triangle/frame"
	"golang.org/x/sync/errgroup"
)

const (
	VertexShaderFile   = "vert.spv"
	FragmentShaderFile = "frag.spv"

	spirvMagic = 0x07230203
)

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

// LoadShader reads a compiled SPIR-V module from disk.
func LoadShader(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", path)
	}
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("shader %s: size %d is not a positive multiple of 4", path, len(b))
	}

	code := bytesToBytecode(b)
	if code[0] != spirvMagic {
		return nil, errors.Newf("shader %s: not a SPIR-V module (magic 0x%08x)", path, code[0])
	}
	return code, nil
}

type PipelineInfo struct {
	RenderPass core1_0.RenderPass
	// ShaderDir holds VertexShaderFile and FragmentShaderFile.
	ShaderDir  string
	// Cache is optional.
	Cache      *PipelineCache
}

// Pipeline is the triangle's graphics pipeline. Viewport and scissor are
// dynamic, so it does not depend on the swapchain extent.
type Pipeline struct {
	ctx      *Context
	layout   core1_0.PipelineLayout
	pipeline core1_0.Pipeline
}

func (c *Context) CreatePipeline(info PipelineInfo) (*Pipeline, error) {
	var vertCode, fragCode []uint32
	var g errgroup.Group
	g.Go(func() (err error) {
		vertCode, err = LoadShader(filepath.Join(info.ShaderDir, VertexShaderFile))
		return err
	})
	g.Go(func() (err error) {
		fragCode, err = LoadShader(filepath.Join(info.ShaderDir, FragmentShaderFile))
		return err
	})
	err := g.Wait()
	if err != nil {
		return nil, err
	}

	vertShader, err := c.createShaderModule(vertCode)
	if err != nil {
		return nil, errors.Wrap(err, "creating vertex shader module")
	}
	defer c.deviceDriver.DestroyShaderModule(vertShader, nil)

	fragShader, err := c.createShaderModule(fragCode)
	if err != nil {
		return nil, errors.Wrap(err, "creating fragment shader module")
	}
	defer c.deviceDriver.DestroyShaderModule(fragShader, nil)

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	// Vertices are generated in the vertex shader.
	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	// One viewport and one scissor; their values are set while recording.
	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{{}},
		Scissors:  []core1_0.Rect2D{{}},
	}

	dynamicState := &core1_0.PipelineDynamicStateCreateInfo{
		DynamicStates: []core1_0.DynamicState{
			core1_0.DynamicStateViewport,
			core1_0.DynamicStateScissor,
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	p := &Pipeline{ctx: c}
	p.layout, _, err = c.deviceDriver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return nil, errors.Wrap(err, "creating pipeline layout")
	}

	var cache *core1_0.PipelineCache
	if info.Cache != nil {
		cache = &info.Cache.cache
	}

	start := hrtime.Now()
	pipelines, _, err := c.deviceDriver.CreateGraphicsPipelines(cache, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			DynamicState:       dynamicState,
			Layout:             p.layout,
			RenderPass:         info.RenderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "creating graphics pipeline")
	}
	p.pipeline = pipelines[0]

	frame.Logger().Debug("graphics pipeline created",
		"elapsed", hrtime.Since(start),
		"cached", info.Cache != nil && info.Cache.Primed(),
	)
	return p, nil
}

func (c *Context) createShaderModule(code []uint32) (core1_0.ShaderModule, error) {
	module, _, err := c.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	return module, err
}

// Handle is the pipeline as the frame recorder sees it.
func (p *Pipeline) Handle() core1_0.Pipeline {
	return p.pipeline
}

func (p *Pipeline) Destroy() {
	if p.pipeline.Initialized() {
		p.ctx.deviceDriver.DestroyPipeline(p.pipeline, nil)
		p.pipeline = core1_0.Pipeline{}
	}

	if p.layout.Initialized() {
		p.ctx.deviceDriver.DestroyPipelineLayout(p.layout, nil)
		p.layout = core1_0.PipelineLayout{}
	}
}
