package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNullModel is returned when a renderable is built with the null model.
	ErrNullModel = errors.New("model: renderable has the null batch model")
	// ErrVertexStride is returned when the vertex data is not a whole number of vertices.
	ErrVertexStride = errors.New("model: vertex data is not a multiple of the stride")
	// ErrIndexRange is returned when an index points past the last vertex.
	ErrIndexRange = errors.New("model: index out of range")
)

// Renderable is the unit of drawable data: one model, one optional texture, and local vertex/index arrays.
// Indices are local to the unit (0 is its first vertex). The canvas rebases them when batching.
type Renderable struct {
	model    BatchModel
	texture  TextureRef
	vertices []float32
	indices  []uint32
}

// NewRenderable validates and copies its inputs into a new Renderable.
//
// Parameters:
//   - m: the batch model describing the vertex layout and shader
//   - tex: the texture handle, or NoTexture
//   - vertices: interleaved vertex data, len must be a multiple of m.Stride()
//   - indices: triangle indices local to vertices
//
// Returns:
//   - Renderable: the unit, owning copies of vertices and indices
//   - error: ErrNullModel, ErrVertexStride or ErrIndexRange
func NewRenderable(m BatchModel, tex TextureRef, vertices []float32, indices []uint32) (Renderable, error) {
	if m.IsNull() {
		return Renderable{}, ErrNullModel
	}
	stride := m.Stride()
	if stride == 0 || len(vertices)%stride != 0 {
		return Renderable{}, fmt.Errorf("%w: %d floats, stride %d", ErrVertexStride, len(vertices), stride)
	}
	total := uint32(len(vertices) / stride)
	for i, idx := range indices {
		if idx >= total {
			return Renderable{}, fmt.Errorf("%w: indices[%d] = %d, vertex count %d", ErrIndexRange, i, idx, total)
		}
	}

	return Renderable{
		model:    m,
		texture:  tex,
		vertices: append([]float32(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
	}, nil
}

// Model returns the batch model.
func (r *Renderable) Model() BatchModel {
	return r.model
}

// Texture returns the texture handle, NoTexture if the unit is untextured.
func (r *Renderable) Texture() TextureRef {
	return r.texture
}

// Vertices returns the interleaved vertex data. Callers may modify it in place
// but must not change its length.
func (r *Renderable) Vertices() []float32 {
	return r.vertices
}

// Indices returns the local index data.
func (r *Renderable) Indices() []uint32 {
	return r.indices
}

// VertexCount returns the number of floats in the vertex data.
func (r *Renderable) VertexCount() int {
	return len(r.vertices)
}

// IndexCount returns the number of indices.
func (r *Renderable) IndexCount() int {
	return len(r.indices)
}

// VertexTotal returns the number of whole vertices.
func (r *Renderable) VertexTotal() int {
	stride := r.model.Stride()
	if stride == 0 {
		return 0
	}
	return len(r.vertices) / stride
}

// Clone returns a deep copy of the unit.
func (r *Renderable) Clone() Renderable {
	return Renderable{
		model:    r.model,
		texture:  r.texture,
		vertices: append([]float32(nil), r.vertices...),
		indices:  append([]uint32(nil), r.indices...),
	}
}
