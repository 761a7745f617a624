// package model holds the value types the batching engine compares and copies on its hot path:
// the BatchModel that decides which renderables can share a draw call, and the Renderable unit itself.
package model

import (
	"encoding/binary"
	"hash/fnv"
)

// ShaderRef is an opaque handle into the shader cache. NoShader is the null shader.
type ShaderRef uint32

// TextureRef is an opaque handle into the texture cache. NoTexture means the renderable needs no texture slot.
type TextureRef uint32

const (
	// NoShader marks the null shader. A BatchModel carrying it is the null model.
	NoShader ShaderRef = 0
	// NoTexture marks a renderable that does not sample a texture.
	NoTexture TextureRef = 0
)

// MaxAttributes is the number of attribute slots a vertex layout can describe.
const MaxAttributes = 8

// Well-known attribute slots. Slots 4 through 7 are free for custom shaders.
const (
	AttrPosition = 0
	AttrColor    = 1
	AttrTexCoord = 2
	AttrTexIndex = 3
)

// BatchModel is the compatibility key of a renderable. Two renderables may share one draw call
// only when their models are equal, which for this comparable struct is plain ==.
//
// VertexLayout is a bit set of active attribute slots (bit i means slot i is present).
// LayoutMask packs one 2-bit field per slot, where a field value v means v+1 float components.
type BatchModel struct {
	Shader       ShaderRef
	VertexLayout uint8
	LayoutMask   uint16
}

// NullBatchModel is the sentinel meaning "no batch open". It never matches a real flush target.
var NullBatchModel = BatchModel{}

// Attribute describes one active slot of a vertex layout, with sizes and offsets in floats.
type Attribute struct {
	Slot       int
	Components int
	Offset     int
}

// NewBatchModel builds a model from a shader and a component count per slot.
// A count of 0 leaves the slot inactive. Counts are clamped to [0, 4].
//
// Parameters:
//   - shader: the shader handle the batch draws with
//   - components: float component count for slots 0.. in order
//
// Returns:
//   - BatchModel: the packed model
func NewBatchModel(shader ShaderRef, components ...int) BatchModel {
	m := BatchModel{Shader: shader}
	for slot, n := range components {
		if slot >= MaxAttributes {
			break
		}
		if n <= 0 {
			continue
		}
		if n > 4 {
			n = 4
		}
		m.VertexLayout |= 1 << slot
		m.LayoutMask |= uint16(n-1) << (slot * 2)
	}
	return m
}

// SpriteModel returns the model used by textured quads: position(2), color(4), uv(2), texture index(1).
// Stride is 9 floats.
func SpriteModel(shader ShaderRef) BatchModel {
	return NewBatchModel(shader, 2, 4, 2, 1)
}

// IsNull reports whether m is the null model.
func (m BatchModel) IsNull() bool {
	return m.Shader == NoShader
}

// Has reports whether the attribute slot is active.
func (m BatchModel) Has(slot int) bool {
	if slot < 0 || slot >= MaxAttributes {
		return false
	}
	return m.VertexLayout&(1<<slot) != 0
}

// Components returns the float component count of a slot, or 0 when the slot is inactive.
//
// Parameters:
//   - slot: the attribute slot, 0 to MaxAttributes-1
//
// Returns:
//   - int: 1 to 4 for active slots, 0 otherwise
func (m BatchModel) Components(slot int) int {
	if !m.Has(slot) {
		return 0
	}
	return int((m.LayoutMask>>(slot*2))&0b11) + 1
}

// Stride returns the size of one vertex in floats.
func (m BatchModel) Stride() int {
	stride := 0
	for slot := 0; slot < MaxAttributes; slot++ {
		stride += m.Components(slot)
	}
	return stride
}

// AttributeOffset returns the float offset of a slot inside one vertex,
// or -1 when the slot is inactive.
//
// Parameters:
//   - slot: the attribute slot
//
// Returns:
//   - int: sum of the components of all active lower slots, or -1
func (m BatchModel) AttributeOffset(slot int) int {
	if !m.Has(slot) {
		return -1
	}
	offset := 0
	for s := 0; s < slot; s++ {
		offset += m.Components(s)
	}
	return offset
}

// Attributes lists the active slots in ascending order, ready for vertex layout registration.
func (m BatchModel) Attributes() []Attribute {
	var attrs []Attribute
	offset := 0
	for slot := 0; slot < MaxAttributes; slot++ {
		n := m.Components(slot)
		if n == 0 {
			continue
		}
		attrs = append(attrs, Attribute{Slot: slot, Components: n, Offset: offset})
		offset += n
	}
	return attrs
}

// Hash returns an FNV-1a hash of the three fields. Equal models hash equally.
func (m BatchModel) Hash() uint64 {
	var buf [7]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Shader))
	buf[4] = m.VertexLayout
	binary.LittleEndian.PutUint16(buf[5:7], m.LayoutMask)

	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}
