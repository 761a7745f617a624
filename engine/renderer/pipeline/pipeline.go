package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Key identifies a render pipeline. Every distinct (shader, vertex layout, blend) triple the
// canvases draw with gets exactly one pipeline.
type Key struct {
	Shader gpu.ShaderID
	Layout gpu.LayoutID
	Blend  gpu.BlendState
}

// String returns a debug label for the key.
func (k Key) String() string {
	return fmt.Sprintf("shader=%d layout=%d blend=%t/%d/%d", k.Shader, k.Layout, k.Blend.Enabled, k.Blend.Src, k.Blend.Dst)
}

// pipeline is the implementation of the Pipeline interface.
// It holds the WebGPU render pipeline and the fixed-function state it was created with.
type pipeline struct {
	// key is the unique identifier for this pipeline, used for caching and lookups
	key Key

	// renderPipeline is nil until the backend creates it
	renderPipeline *wgpu.RenderPipeline

	// Fixed-function state. Only the sample count varies; 2D canvases never cull and always
	// draw triangle lists into every channel.

	cullMode    wgpu.CullMode
	topology    wgpu.PrimitiveTopology
	frontFace   wgpu.FrontFace
	writeMask   wgpu.ColorWriteMask
	sampleCount uint32
}

// Pipeline describes a 2D render pipeline: a shader module drawn over one vertex layout with one
// blend configuration. Depth testing is never used; draw order decides visibility.
type Pipeline interface {
	// Key returns the key this pipeline was created for.
	//
	// Returns:
	//   - Key: the (shader, layout, blend) triple
	Key() Key

	// Pipeline returns the underlying render pipeline, or nil if it has not been created yet.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the WebGPU render pipeline
	Pipeline() *wgpu.RenderPipeline

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// SampleCount returns the multisample count the pipeline targets.
	//
	// Returns:
	//   - uint32: 1 when multisampling is off
	SampleCount() uint32

	// BlendState returns the WebGPU blend state derived from the key.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil if blending is disabled
	BlendState() *wgpu.BlendState

	// SetRenderPipeline sets the render pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release frees the render pipeline if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates the description of a render pipeline. The backend creates the GPU object
// from it and stores it with SetRenderPipeline.
//
// Parameters:
//   - key: the (shader, layout, blend) triple
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the specified configuration
func NewPipeline(key Key, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:         key,
		cullMode:    wgpu.CullModeNone,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BlendEnabled() bool {
	return p.key.Blend.Enabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return BlendState(p.key.Blend)
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
