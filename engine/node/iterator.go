package node

// Iterator walks the primitives behind a Ref. Its position lives in [-1, n]:
// Next clamps at n and Prev clamps at -1, and Get returns nil at either end.
type Iterator struct {
	single *Primitive
	span   []Primitive
	n      int
	pos    int
}

func singleIterator(p *Primitive, pos int) Iterator {
	return Iterator{single: p, n: 1, pos: pos}
}

func spanIterator(span []Primitive, pos int) Iterator {
	return Iterator{span: span, n: len(span), pos: pos}
}

// Len returns the number of elements the iterator covers.
func (it *Iterator) Len() int {
	return it.n
}

// Get returns the current element, or nil when the position is past either end.
func (it *Iterator) Get() *Primitive {
	if it.pos < 0 || it.pos >= it.n {
		return nil
	}
	if it.single != nil {
		return it.single
	}
	return &it.span[it.pos]
}

// Next advances and returns the new current element.
func (it *Iterator) Next() *Primitive {
	if it.pos < it.n {
		it.pos++
	}
	return it.Get()
}

// Prev steps back and returns the new current element.
func (it *Iterator) Prev() *Primitive {
	if it.pos > -1 {
		it.pos--
	}
	return it.Get()
}
