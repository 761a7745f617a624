package pipeline

import (
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// float32 vertex formats indexed by component count - 1
var vertexFormats = [4]wgpu.VertexFormat{
	wgpu.VertexFormatFloat32,
	wgpu.VertexFormatFloat32x2,
	wgpu.VertexFormatFloat32x3,
	wgpu.VertexFormatFloat32x4,
}

// VertexBufferLayout converts a batch model into the interleaved vertex buffer layout a pipeline
// reads. Each active slot becomes the attribute at shader location equal to the slot number.
//
// Parameters:
//   - m: the batch model
//
// Returns:
//   - wgpu.VertexBufferLayout: per-vertex layout with byte stride and offsets
func VertexBufferLayout(m model.BatchModel) wgpu.VertexBufferLayout {
	attrs := m.Attributes()
	out := make([]wgpu.VertexAttribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, wgpu.VertexAttribute{
			Format:         vertexFormats[a.Components-1],
			Offset:         uint64(a.Offset * 4),
			ShaderLocation: uint32(a.Slot),
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(m.Stride() * 4),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  out,
	}
}

// BlendFactor maps a device blend factor to its WebGPU equivalent.
//
// Parameters:
//   - f: the device blend factor
//
// Returns:
//   - wgpu.BlendFactor: the WebGPU blend factor, BlendFactorOne for unknown values
func BlendFactor(f gpu.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gpu.BlendZero:
		return wgpu.BlendFactorZero
	case gpu.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gpu.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case gpu.BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case gpu.BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	case gpu.BlendSrcColor:
		return wgpu.BlendFactorSrc
	case gpu.BlendOneMinusSrcColor:
		return wgpu.BlendFactorOneMinusSrc
	case gpu.BlendOne:
		fallthrough
	default:
		return wgpu.BlendFactorOne
	}
}

// BlendState converts a canvas blend configuration. The color channel uses the canvas factors and
// the alpha channel accumulates coverage with (One, OneMinusSrcAlpha).
//
// Parameters:
//   - s: the device blend state
//
// Returns:
//   - *wgpu.BlendState: the WebGPU blend state, or nil when blending is disabled
func BlendState(s gpu.BlendState) *wgpu.BlendState {
	if !s.Enabled {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: BlendFactor(s.Src),
			DstFactor: BlendFactor(s.Dst),
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}
