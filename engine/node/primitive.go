// package node contains the drawable nodes a canvas holds references to: the single Primitive,
// the fixed-length Composite, the Ref tagged variant over both, and the Iterator used to walk them.
package node

import (
	"github.com/Carmen-Shannon/oxy2d/engine/model"
)

// Primitive is the smallest attachable drawable: one renderable plus its placement, depth and visibility.
// A canvas never owns a primitive; it holds a Ref to it.
type Primitive struct {
	renderable model.Renderable
	transform  Transform
	pivot      [2]float32
	depth      int
	visible    bool
	local      []float32
}

// NewPrimitive creates a Primitive from a copy of r. Positions are captured as local
// coordinates, so later transforms are applied from the original shape.
//
// Parameters:
//   - r: the renderable to copy
//   - options: functional options to configure the primitive
//
// Returns:
//   - *Primitive: the new primitive, visible at depth 0 unless configured otherwise
func NewPrimitive(r model.Renderable, options ...PrimitiveBuilderOption) *Primitive {
	p := &Primitive{
		renderable: r.Clone(),
		transform:  IdentityTransform(),
		visible:    true,
	}
	p.captureLocal()
	for _, opt := range options {
		opt(p)
	}
	p.applyTransform()
	return p
}

// captureLocal snapshots the first two position components of every vertex.
func (p *Primitive) captureLocal() {
	m := p.renderable.Model()
	if m.Components(model.AttrPosition) < 2 {
		return
	}
	stride := m.Stride()
	offset := m.AttributeOffset(model.AttrPosition)
	verts := p.renderable.Vertices()
	total := p.renderable.VertexTotal()

	p.local = make([]float32, 0, total*2)
	for v := 0; v < total; v++ {
		base := v*stride + offset
		p.local = append(p.local, verts[base], verts[base+1])
	}
}

// applyTransform rewrites the position attribute as T * R * S * (local - pivot).
func (p *Primitive) applyTransform() {
	if p.local == nil {
		return
	}
	m := p.renderable.Model()
	stride := m.Stride()
	offset := m.AttributeOffset(model.AttrPosition)
	verts := p.renderable.Vertices()
	mat := p.transform.Matrix()

	for v := 0; v < len(p.local)/2; v++ {
		x, y := mat.Apply(p.local[v*2]-p.pivot[0], p.local[v*2+1]-p.pivot[1])
		base := v*stride + offset
		verts[base] = x
		verts[base+1] = y
	}
}

// Renderable returns the primitive's renderable. The canvas reads vertex and index data through it.
func (p *Primitive) Renderable() *model.Renderable {
	return &p.renderable
}

// Model returns the batch model of the primitive's renderable.
func (p *Primitive) Model() model.BatchModel {
	return p.renderable.Model()
}

// Texture returns the texture handle of the primitive's renderable.
func (p *Primitive) Texture() model.TextureRef {
	return p.renderable.Texture()
}

// Depth returns the depth key used when the primitive is attached on its own.
func (p *Primitive) Depth() int {
	return p.depth
}

// SetDepth sets the depth key. When the primitive is attached, use Canvas.SetDepth instead
// so the canvas can move it between buckets.
func (p *Primitive) SetDepth(depth int) {
	p.depth = depth
}

// Visible reports whether the primitive is drawn.
func (p *Primitive) Visible() bool {
	return p.visible
}

// SetVisible shows or hides the primitive. Hidden primitives stay attached.
func (p *Primitive) SetVisible(visible bool) {
	p.visible = visible
}

// Transform returns the current transform.
func (p *Primitive) Transform() Transform {
	return p.transform
}

// SetTransform replaces the transform and re-derives vertex positions.
// It has no effect on models without a 2-component position attribute.
//
// Parameters:
//   - t: the new transform
func (p *Primitive) SetTransform(t Transform) {
	p.transform = t
	p.applyTransform()
}

// Pivot returns the local point that rotation and scale happen around.
func (p *Primitive) Pivot() (x, y float32) {
	return p.pivot[0], p.pivot[1]
}

// SetPivot moves the pivot and re-derives vertex positions.
func (p *Primitive) SetPivot(x, y float32) {
	p.pivot = [2]float32{x, y}
	p.applyTransform()
}

// SetColor writes an RGBA tint into every vertex. It has no effect on models without a 4-component color attribute.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
func (p *Primitive) SetColor(r, g, b, a float32) {
	m := p.renderable.Model()
	if m.Components(model.AttrColor) != 4 {
		return
	}
	stride := m.Stride()
	offset := m.AttributeOffset(model.AttrColor)
	verts := p.renderable.Vertices()
	for base := offset; base+3 < len(verts); base += stride {
		verts[base], verts[base+1], verts[base+2], verts[base+3] = r, g, b, a
	}
}

// clone deep-copies the primitive, including its renderable.
func (p *Primitive) clone() Primitive {
	c := *p
	c.renderable = p.renderable.Clone()
	c.local = append([]float32(nil), p.local...)
	return c
}
