package node

// Composite is a fixed-length group of primitives attached and ordered as one unit.
// Its own depth is the attachment key; the depth of each contained primitive is ignored while inside.
type Composite struct {
	primitives []Primitive
	depth      int
}

// NewComposite copies prims (including their renderables) into one contiguous owned slice.
// Nil entries are skipped.
//
// Parameters:
//   - depth: the depth key of the composite
//   - prims: the primitives to copy, in draw order
//
// Returns:
//   - *Composite: the new composite
func NewComposite(depth int, prims ...*Primitive) *Composite {
	c := &Composite{
		primitives: make([]Primitive, 0, len(prims)),
		depth:      depth,
	}
	for _, p := range prims {
		if p == nil {
			continue
		}
		c.primitives = append(c.primitives, p.clone())
	}
	return c
}

// Len returns the number of contained primitives.
func (c *Composite) Len() int {
	return len(c.primitives)
}

// At returns the i-th primitive. It panics when i is out of range, like a slice index.
func (c *Composite) At(i int) *Primitive {
	return &c.primitives[i]
}

// Depth returns the composite's depth key.
func (c *Composite) Depth() int {
	return c.depth
}

// SetDepth sets the depth key. When attached, use Canvas.SetDepth instead.
func (c *Composite) SetDepth(depth int) {
	c.depth = depth
}

// SetVisible shows or hides every contained primitive.
func (c *Composite) SetVisible(visible bool) {
	for i := range c.primitives {
		c.primitives[i].visible = visible
	}
}
