package model

import (
	"errors"
	"testing"
)

func quad(m BatchModel) []float32 {
	return make([]float32, 4*m.Stride())
}

func TestNewRenderable(t *testing.T) {
	m := SpriteModel(1)
	tests := []struct {
		name     string
		model    BatchModel
		vertices []float32
		indices  []uint32
		wantErr  error
	}{
		{"valid quad", m, quad(m), []uint32{0, 1, 2, 2, 3, 0}, nil},
		{"null model", NullBatchModel, quad(m), nil, ErrNullModel},
		{"partial vertex", m, make([]float32, 10), nil, ErrVertexStride},
		{"index past end", m, quad(m), []uint32{0, 1, 4}, ErrIndexRange},
		{"empty", m, nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRenderable(tt.model, NoTexture, tt.vertices, tt.indices)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRenderable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderableAccessors(t *testing.T) {
	m := SpriteModel(1)
	r, err := NewRenderable(m, 7, quad(m), []uint32{0, 1, 2, 2, 3, 0})
	if err != nil {
		t.Fatalf("NewRenderable() error = %v", err)
	}
	if r.Model() != m {
		t.Errorf("Model() = %+v, want %+v", r.Model(), m)
	}
	if r.Texture() != 7 {
		t.Errorf("Texture() = %d, want 7", r.Texture())
	}
	if r.VertexCount() != 36 {
		t.Errorf("VertexCount() = %d, want 36", r.VertexCount())
	}
	if r.VertexTotal() != 4 {
		t.Errorf("VertexTotal() = %d, want 4", r.VertexTotal())
	}
	if r.IndexCount() != 6 {
		t.Errorf("IndexCount() = %d, want 6", r.IndexCount())
	}
}

func TestRenderableOwnsData(t *testing.T) {
	m := NewBatchModel(1, 2)
	verts := []float32{1, 2, 3, 4}
	idx := []uint32{0, 1}
	r, err := NewRenderable(m, NoTexture, verts, idx)
	if err != nil {
		t.Fatalf("NewRenderable() error = %v", err)
	}
	verts[0] = 99
	idx[0] = 1
	if r.Vertices()[0] != 1 || r.Indices()[0] != 0 {
		t.Error("NewRenderable() did not copy its inputs")
	}

	c := r.Clone()
	c.Vertices()[1] = 42
	if r.Vertices()[1] != 2 {
		t.Error("Clone() shares vertex storage with the original")
	}
}
