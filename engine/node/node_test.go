package node

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/model"
)

func mustSprite(t *testing.T, w, h float32, options ...PrimitiveBuilderOption) *Primitive {
	t.Helper()
	p, err := NewSprite(1, 1, w, h, options...)
	if err != nil {
		t.Fatalf("NewSprite() error = %v", err)
	}
	return p
}

func position(p *Primitive, v int) (float32, float32) {
	m := p.Model()
	base := v*m.Stride() + m.AttributeOffset(model.AttrPosition)
	verts := p.Renderable().Vertices()
	return verts[base], verts[base+1]
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestNewSpriteCentersOnPivot(t *testing.T) {
	p := mustSprite(t, 10, 4)
	want := [][2]float32{{-5, -2}, {5, -2}, {5, 2}, {-5, 2}}
	for v, w := range want {
		x, y := position(p, v)
		if !near(x, w[0]) || !near(y, w[1]) {
			t.Errorf("vertex %d = (%v, %v), want (%v, %v)", v, x, y, w[0], w[1])
		}
	}
}

func TestSetTransformUsesLocalPositions(t *testing.T) {
	p := mustSprite(t, 2, 2, WithPivot(0, 0))

	p.SetTransform(Translate(10, 0))
	p.SetTransform(Translate(10, 0))
	if x, y := position(p, 0); !near(x, 10) || !near(y, 0) {
		t.Errorf("after repeated SetTransform vertex 0 = (%v, %v), want (10, 0)", x, y)
	}

	p.SetTransform(Transform{Rotation: math.Pi / 2, ScaleX: 2, ScaleY: 2})
	// local (2, 0) scaled to (4, 0) then rotated to (0, 4)
	if x, y := position(p, 1); !near(x, 0) || !near(y, 4) {
		t.Errorf("rotated vertex 1 = (%v, %v), want (0, 4)", x, y)
	}
}

func TestTransformIgnoredWithoutPosition(t *testing.T) {
	r, err := model.NewRenderable(model.NewBatchModel(1, 1), model.NoTexture, []float32{5, 6}, []uint32{0, 1})
	if err != nil {
		t.Fatalf("NewRenderable() error = %v", err)
	}
	p := NewPrimitive(r)
	p.SetTransform(Translate(100, 100))
	if got := p.Renderable().Vertices(); got[0] != 5 || got[1] != 6 {
		t.Errorf("vertices = %v, want unchanged [5 6]", got)
	}
}

func TestSetColor(t *testing.T) {
	p := mustSprite(t, 1, 1)
	p.SetColor(0.5, 0.25, 0, 1)
	m := p.Model()
	off := m.AttributeOffset(model.AttrColor)
	verts := p.Renderable().Vertices()
	for v := 0; v < 4; v++ {
		base := v*m.Stride() + off
		if verts[base] != 0.5 || verts[base+1] != 0.25 || verts[base+3] != 1 {
			t.Errorf("vertex %d color = %v, want [0.5 0.25 0 1]", v, verts[base:base+4])
		}
	}
}

func TestPrimitiveOptions(t *testing.T) {
	p := mustSprite(t, 1, 1, WithDepth(4), WithVisible(false))
	if p.Depth() != 4 {
		t.Errorf("Depth() = %d, want 4", p.Depth())
	}
	if p.Visible() {
		t.Error("Visible() = true, want false")
	}
}

func TestCompositeCopiesPrimitives(t *testing.T) {
	a := mustSprite(t, 1, 1)
	b := mustSprite(t, 2, 2)
	c := NewComposite(3, a, nil, b)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	a.SetTransform(Translate(50, 50))
	if x, _ := position(c.At(0), 0); near(x, 49.5) {
		t.Error("composite shares vertex storage with the source primitive")
	}
	if c.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", c.Depth())
	}
}

func TestCompositeAtPanics(t *testing.T) {
	c := NewComposite(0)
	defer func() {
		if recover() == nil {
			t.Error("At(0) on empty composite did not panic")
		}
	}()
	c.At(0)
}

func TestRefIdentity(t *testing.T) {
	a := mustSprite(t, 1, 1)
	b := mustSprite(t, 1, 1)
	if PrimitiveRef(a) != PrimitiveRef(a) {
		t.Error("refs to the same primitive are not equal")
	}
	if PrimitiveRef(a) == PrimitiveRef(b) {
		t.Error("refs to different primitives are equal")
	}
	if !PrimitiveRef(nil).IsZero() || !CompositeRef(nil).IsZero() {
		t.Error("ref to nil is not the zero Ref")
	}
}

func TestRefDepthDispatch(t *testing.T) {
	p := mustSprite(t, 1, 1, WithDepth(2))
	c := NewComposite(7, p)

	tests := []struct {
		name string
		ref  Ref
		want int
	}{
		{"primitive", PrimitiveRef(p), 2},
		{"composite", CompositeRef(c), 7},
		{"zero", Ref{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Depth(); got != tt.want {
				t.Errorf("Depth() = %d, want %d", got, tt.want)
			}
			tt.ref.SetDepth(tt.want + 1)
			if tt.ref.IsZero() {
				return
			}
			if got := tt.ref.Depth(); got != tt.want+1 {
				t.Errorf("Depth() after SetDepth = %d, want %d", got, tt.want+1)
			}
		})
	}
}

func TestIteratorSymmetricTermination(t *testing.T) {
	c := NewComposite(0, mustSprite(t, 1, 1), mustSprite(t, 2, 2), mustSprite(t, 3, 3))
	ref := CompositeRef(c)

	it := ref.Iterator()
	count := 0
	for p := it.Get(); p != nil; p = it.Next() {
		count++
	}
	if count != 3 {
		t.Errorf("forward walk visited %d, want 3", count)
	}
	if it.Next() != nil {
		t.Error("Next() past the end returned an element")
	}
	if p := it.Prev(); p != c.At(2) {
		t.Error("Prev() from the end did not return the last element")
	}

	rit := ref.ReverseIterator()
	count = 0
	for p := rit.Get(); p != nil; p = rit.Prev() {
		count++
	}
	if count != 3 {
		t.Errorf("reverse walk visited %d, want 3", count)
	}
	if rit.Prev() != nil {
		t.Error("Prev() past the start returned an element")
	}
	if p := rit.Next(); p != c.At(0) {
		t.Error("Next() from before the start did not return the first element")
	}
}

func TestIteratorSingle(t *testing.T) {
	p := mustSprite(t, 1, 1)
	it := PrimitiveRef(p).Iterator()
	if it.Get() != p {
		t.Fatal("Get() did not return the primitive")
	}
	if it.Next() != nil {
		t.Error("Next() on a single primitive returned an element")
	}
	if it.Prev() != p {
		t.Error("Prev() did not return to the primitive")
	}
	if it.Prev() != nil {
		t.Error("Prev() before the start returned an element")
	}
}

func TestIteratorEmptyComposite(t *testing.T) {
	ref := CompositeRef(NewComposite(0))
	it := ref.Iterator()
	if it.Get() != nil {
		t.Error("Get() on empty composite returned an element")
	}
	rit := ref.ReverseIterator()
	if rit.Get() != nil {
		t.Error("reverse Get() on empty composite returned an element")
	}
	var zero Iterator
	if zero.Get() != nil || zero.Next() != nil {
		t.Error("zero Iterator returned an element")
	}
}
