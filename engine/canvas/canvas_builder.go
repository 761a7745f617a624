package canvas

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

const (
	// DefaultVertexPoolCapacity fits 1024 sprite quads (4 vertices of 9 floats).
	DefaultVertexPoolCapacity = 1024 * 4 * 9
	// DefaultIndexPoolCapacity fits 1024 sprite quads (6 indices).
	DefaultIndexPoolCapacity = 1024 * 6
)

// CanvasBuilderOption is a functional option for configuring a Canvas via NewCanvas.
type CanvasBuilderOption func(*canvas)

// WithLabel sets the debug label of the Canvas. The label prefixes its GPU buffer labels.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - CanvasBuilderOption: functional option to set the label
func WithLabel(label string) CanvasBuilderOption {
	return func(c *canvas) {
		c.label = label
	}
}

// WithBlend sets the blend state of the Canvas. Defaults to straight alpha blending.
//
// Parameters:
//   - enabled: false to draw opaque
//   - src: the source blend factor
//   - dst: the destination blend factor
//
// Returns:
//   - CanvasBuilderOption: functional option to set the blend state
func WithBlend(enabled bool, src, dst gpu.BlendFactor) CanvasBuilderOption {
	return func(c *canvas) {
		c.blend = gpu.BlendState{Enabled: enabled, Src: src, Dst: dst}
	}
}

// WithProjection sets the orthographic projection of the Canvas. Defaults to identity, so vertex
// positions are taken as clip space coordinates.
//
// Parameters:
//   - left, right: horizontal bounds in canvas units
//   - bottom, top: vertical bounds in canvas units
//
// Returns:
//   - CanvasBuilderOption: functional option to set the projection
func WithProjection(left, right, bottom, top float32) CanvasBuilderOption {
	return func(c *canvas) {
		common.Ortho(c.projection[:], left, right, bottom, top)
	}
}

// WithVertexPoolCapacity sets the vertex pool size in floats.
//
// Parameters:
//   - floats: pool capacity, must be positive
//
// Returns:
//   - CanvasBuilderOption: functional option to size the vertex pool
func WithVertexPoolCapacity(floats int) CanvasBuilderOption {
	return func(c *canvas) {
		c.vertexPool = make([]float32, max(floats, 0))
	}
}

// WithIndexPoolCapacity sets the index pool size in indices.
//
// Parameters:
//   - indices: pool capacity, must be positive
//
// Returns:
//   - CanvasBuilderOption: functional option to size the index pool
func WithIndexPoolCapacity(indices int) CanvasBuilderOption {
	return func(c *canvas) {
		c.indexPool = make([]uint32, max(indices, 0))
	}
}
