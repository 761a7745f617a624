package model

import (
	"reflect"
	"testing"
)

func TestSpriteModelPacking(t *testing.T) {
	m := SpriteModel(1)
	if m.VertexLayout != 0b1111 {
		t.Errorf("VertexLayout = %b, want 1111", m.VertexLayout)
	}
	if m.LayoutMask != 29 {
		t.Errorf("LayoutMask = %d, want 29", m.LayoutMask)
	}
	if got := m.Stride(); got != 9 {
		t.Errorf("Stride() = %d, want 9", got)
	}
}

func TestLayoutMath(t *testing.T) {
	tests := []struct {
		name       string
		model      BatchModel
		wantStride int
		wantOffset []int
		wantComps  []int
	}{
		{
			name:       "sprite",
			model:      SpriteModel(1),
			wantStride: 9,
			wantOffset: []int{0, 2, 6, 8, -1, -1, -1, -1},
			wantComps:  []int{2, 4, 2, 1, 0, 0, 0, 0},
		},
		{
			name:       "sparse slots",
			model:      NewBatchModel(2, 3, 0, 2, 0, 4),
			wantStride: 9,
			wantOffset: []int{0, -1, 3, -1, 5, -1, -1, -1},
			wantComps:  []int{3, 0, 2, 0, 4, 0, 0, 0},
		},
		{
			name:       "single float",
			model:      BatchModel{Shader: 1, VertexLayout: 0b1, LayoutMask: 0},
			wantStride: 1,
			wantOffset: []int{0, -1, -1, -1, -1, -1, -1, -1},
			wantComps:  []int{1, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:       "mask bits ignored for inactive slot",
			model:      BatchModel{Shader: 1, VertexLayout: 0b1, LayoutMask: 0xFFFF},
			wantStride: 4,
			wantOffset: []int{0, -1, -1, -1, -1, -1, -1, -1},
			wantComps:  []int{4, 0, 0, 0, 0, 0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.model.Stride(); got != tt.wantStride {
				t.Errorf("Stride() = %d, want %d", got, tt.wantStride)
			}
			for slot := 0; slot < MaxAttributes; slot++ {
				if got := tt.model.AttributeOffset(slot); got != tt.wantOffset[slot] {
					t.Errorf("AttributeOffset(%d) = %d, want %d", slot, got, tt.wantOffset[slot])
				}
				if got := tt.model.Components(slot); got != tt.wantComps[slot] {
					t.Errorf("Components(%d) = %d, want %d", slot, got, tt.wantComps[slot])
				}
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	got := NewBatchModel(1, 2, 0, 2).Attributes()
	want := []Attribute{
		{Slot: 0, Components: 2, Offset: 0},
		{Slot: 2, Components: 2, Offset: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Attributes() = %+v, want %+v", got, want)
	}
}

func TestOutOfRangeSlots(t *testing.T) {
	m := SpriteModel(1)
	for _, slot := range []int{-1, MaxAttributes, 100} {
		if m.Has(slot) {
			t.Errorf("Has(%d) = true, want false", slot)
		}
		if got := m.AttributeOffset(slot); got != -1 {
			t.Errorf("AttributeOffset(%d) = %d, want -1", slot, got)
		}
	}
}

func TestEqualityAndHash(t *testing.T) {
	a := SpriteModel(3)
	b := NewBatchModel(3, 2, 4, 2, 1)
	if a != b {
		t.Fatalf("SpriteModel(3) != NewBatchModel(3, 2, 4, 2, 1)")
	}
	if a.Hash() != b.Hash() {
		t.Errorf("equal models hash differently: %d vs %d", a.Hash(), b.Hash())
	}

	others := []BatchModel{
		SpriteModel(4),
		{Shader: 3, VertexLayout: a.VertexLayout, LayoutMask: a.LayoutMask + 1},
		{Shader: 3, VertexLayout: a.VertexLayout >> 1, LayoutMask: a.LayoutMask},
	}
	for _, o := range others {
		if o == a {
			t.Errorf("%+v == %+v, want different", o, a)
		}
		if o.Hash() == a.Hash() {
			t.Errorf("Hash(%+v) collides with Hash(%+v)", o, a)
		}
	}
}

func TestNullModel(t *testing.T) {
	if !NullBatchModel.IsNull() {
		t.Error("NullBatchModel.IsNull() = false")
	}
	if SpriteModel(1).IsNull() {
		t.Error("SpriteModel(1).IsNull() = true")
	}
	if NullBatchModel == SpriteModel(1) {
		t.Error("null model equals a real model")
	}
}
