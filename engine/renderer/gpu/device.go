// package gpu defines the narrow, handle-based device contract the batching engine draws through.
// Canvases, caches and the layout registry only ever see these handles; the WebGPU backend in
// package renderer and the recording fake in gputest both implement Device.
package gpu

import (
	"errors"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
)

// BufferID identifies a GPU buffer. Zero is never a valid buffer.
type BufferID uint32

// LayoutID identifies a registered vertex layout. Zero is never a valid layout.
type LayoutID uint32

// ShaderID identifies a compiled shader module. Zero means "no shader".
type ShaderID uint32

// TextureID identifies an uploaded texture with its sampler. Zero means "no texture".
type TextureID uint32

// BufferKind selects the usage of a buffer created through Device.CreateBuffer.
type BufferKind int

const (
	// BufferVertex is a vertex buffer written from the vertex pool.
	BufferVertex BufferKind = iota
	// BufferIndex is a uint32 index buffer written from the index pool.
	BufferIndex
	// BufferUniform is a uniform buffer, used for the canvas projection.
	BufferUniform
)

// String returns the name of the buffer kind.
func (k BufferKind) String() string {
	switch k {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	case BufferUniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// BlendFactor is a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcColor
	BlendOneMinusSrcColor
)

// BlendState is the per-canvas color blending configuration. It is comparable so it can key pipelines.
type BlendState struct {
	Enabled bool
	Src     BlendFactor
	Dst     BlendFactor
}

var (
	// AlphaBlend is straight alpha blending, the default for canvases.
	AlphaBlend = BlendState{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha}
	// AdditiveBlend adds source color weighted by its alpha.
	AdditiveBlend = BlendState{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOne}
	// Opaque disables blending.
	Opaque = BlendState{}
)

var (
	// ErrReleased is returned by devices used after Release.
	ErrReleased = errors.New("gpu: device released")
	// ErrNoFrame is returned when a draw is issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("gpu: no frame in progress")
)

// Device is the GPU contract of the batching engine. Creation methods return errors; binding and
// drawing methods are fire-and-forget, and unknown handles are ignored with a warning.
type Device interface {
	// CreateBuffer allocates a buffer of the given kind.
	//
	// Parameters:
	//   - kind: the buffer usage
	//   - label: a debug label
	//   - size: size in bytes
	//
	// Returns:
	//   - BufferID: the new buffer handle
	//   - error: error if the buffer could not be created
	CreateBuffer(kind BufferKind, label string, size uint64) (BufferID, error)

	// WriteBuffer writes data into the buffer starting at offset bytes.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// ReleaseBuffer frees the buffer.
	ReleaseBuffer(id BufferID)

	// CreateVertexLayout registers the vertex attribute layout described by m.
	//
	// Parameters:
	//   - m: the batch model whose Attributes describe the layout
	//
	// Returns:
	//   - LayoutID: the layout handle
	//   - error: error if the layout is not representable
	CreateVertexLayout(m model.BatchModel) (LayoutID, error)

	// BindVertexLayout selects the layout and the vertex/index buffers for the next draw.
	BindVertexLayout(layout LayoutID, vbo, ibo BufferID)

	// UnbindVertexLayout clears the layout and buffer bindings.
	UnbindVertexLayout()

	// ReleaseVertexLayout forgets the layout.
	ReleaseVertexLayout(id LayoutID)

	// CreateShaderModule compiles WGSL source.
	//
	// Parameters:
	//   - key: a debug label, usually the shader cache key
	//   - source: the WGSL source
	//
	// Returns:
	//   - ShaderID: the module handle
	//   - error: error if compilation fails
	CreateShaderModule(key, source string) (ShaderID, error)

	// UseShader selects the shader for the next draw. Zero clears the selection.
	UseShader(id ShaderID)

	// ReleaseShader frees the module.
	ReleaseShader(id ShaderID)

	// CreateTexture uploads RGBA pixels and creates the matching sampler.
	//
	// Parameters:
	//   - label: a debug label
	//   - staging: the pixel data
	//   - sampler: the sampler configuration
	//
	// Returns:
	//   - TextureID: the texture handle
	//   - error: error if the texture could not be created
	CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (TextureID, error)

	// BindTexture binds the texture to a texture unit for the next draw.
	BindTexture(id TextureID, slot int)

	// ReleaseTexture frees the texture and its sampler.
	ReleaseTexture(id TextureID)

	// SetBlendState sets the blend state for subsequent draws.
	SetBlendState(state BlendState)

	// BindUniform selects the projection uniform buffer for subsequent draws.
	BindUniform(id BufferID)

	// DrawIndexed draws count indices with the currently bound shader, layout, buffers and textures.
	// Texture slot bindings are cleared after the draw.
	DrawIndexed(count int)

	// BeginFrame acquires the next frame target.
	BeginFrame() error

	// EndFrame finishes and submits the frame.
	EndFrame()

	// Present displays the finished frame.
	Present()

	// Resize reconfigures the frame target.
	Resize(width, height int)

	// Release frees every resource still held by the device.
	Release()
}
