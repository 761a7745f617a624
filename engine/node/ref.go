package node

// Kind tags which node a Ref points at.
type Kind uint8

const (
	// KindNone is the zero Ref.
	KindNone Kind = iota
	// KindPrimitive marks a Ref to a single Primitive.
	KindPrimitive
	// KindComposite marks a Ref to a Composite.
	KindComposite
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindComposite:
		return "composite"
	default:
		return "none"
	}
}

// Ref is a non-owning handle to an attachable node. It is comparable, and two Refs are equal
// exactly when they point at the same node.
type Ref struct {
	kind      Kind
	primitive *Primitive
	composite *Composite
}

// PrimitiveRef returns a Ref to p, or the zero Ref when p is nil.
func PrimitiveRef(p *Primitive) Ref {
	if p == nil {
		return Ref{}
	}
	return Ref{kind: KindPrimitive, primitive: p}
}

// CompositeRef returns a Ref to c, or the zero Ref when c is nil.
func CompositeRef(c *Composite) Ref {
	if c == nil {
		return Ref{}
	}
	return Ref{kind: KindComposite, composite: c}
}

// Kind returns the tag.
func (r Ref) Kind() Kind {
	return r.kind
}

// IsZero reports whether r points at nothing.
func (r Ref) IsZero() bool {
	return r.kind == KindNone
}

// Primitive returns the referenced primitive, or nil for other kinds.
func (r Ref) Primitive() *Primitive {
	return r.primitive
}

// Composite returns the referenced composite, or nil for other kinds.
func (r Ref) Composite() *Composite {
	return r.composite
}

// Depth returns the depth key of the referenced node. The zero Ref reports 0.
func (r Ref) Depth() int {
	switch r.kind {
	case KindPrimitive:
		return r.primitive.Depth()
	case KindComposite:
		return r.composite.Depth()
	default:
		return 0
	}
}

// SetDepth sets the depth key of the referenced node.
func (r Ref) SetDepth(depth int) {
	switch r.kind {
	case KindPrimitive:
		r.primitive.SetDepth(depth)
	case KindComposite:
		r.composite.SetDepth(depth)
	}
}

// Len returns the number of primitives the node draws.
func (r Ref) Len() int {
	switch r.kind {
	case KindPrimitive:
		return 1
	case KindComposite:
		return r.composite.Len()
	default:
		return 0
	}
}

// Iterator returns an iterator positioned on the first primitive.
func (r Ref) Iterator() Iterator {
	switch r.kind {
	case KindPrimitive:
		return singleIterator(r.primitive, 0)
	case KindComposite:
		return spanIterator(r.composite.primitives, 0)
	default:
		return Iterator{}
	}
}

// ReverseIterator returns an iterator positioned on the last primitive.
func (r Ref) ReverseIterator() Iterator {
	switch r.kind {
	case KindPrimitive:
		return singleIterator(r.primitive, 0)
	case KindComposite:
		return spanIterator(r.composite.primitives, r.composite.Len()-1)
	default:
		return Iterator{pos: -1}
	}
}
