package common

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestOrtho(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, 0, 800, 0, 600)

	tests := []struct {
		name         string
		x, y         float32
		wantX, wantY float32
	}{
		{"bottom left", 0, 0, -1, -1},
		{"top right", 800, 600, 1, 1},
		{"center", 400, 300, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx := m[0]*tt.x + m[4]*tt.y + m[12]
			cy := m[1]*tt.x + m[5]*tt.y + m[13]
			if !approx(cx, tt.wantX) || !approx(cy, tt.wantY) {
				t.Errorf("Ortho maps (%v, %v) to (%v, %v), want (%v, %v)", tt.x, tt.y, cx, cy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestOrthoDegenerate(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, 5, 5, 0, 1)
	want := make([]float32, 16)
	Identity(want)
	for i := range m {
		if m[i] != want[i] {
			t.Fatalf("Ortho() with zero width = %v, want identity", m)
		}
	}
}

func TestMul4Identity(t *testing.T) {
	a := make([]float32, 16)
	Ortho(a, -1, 3, -2, 2)
	id := make([]float32, 16)
	Identity(id)
	out := make([]float32, 16)
	Mul4(out, a, id)
	for i := range out {
		if !approx(out[i], a[i]) {
			t.Fatalf("Mul4(a, I)[%d] = %v, want %v", i, out[i], a[i])
		}
	}
}

func TestTRSApply(t *testing.T) {
	tests := []struct {
		name         string
		m            Affine2D
		x, y         float32
		wantX, wantY float32
	}{
		{"identity", IdentityAffine(), 3, 4, 3, 4},
		{"translate", TRS(10, 20, 0, 1, 1), 1, 1, 11, 21},
		{"scale", TRS(0, 0, 0, 2, 3), 1, 1, 2, 3},
		{"rotate quarter turn", TRS(0, 0, math.Pi/2, 1, 1), 1, 0, 0, 1},
		{"scale then translate", TRS(5, 0, 0, 2, 2), 1, 1, 7, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.Apply(tt.x, tt.y)
			if !approx(x, tt.wantX) || !approx(y, tt.wantY) {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestAffineMul(t *testing.T) {
	translate := TRS(10, 0, 0, 1, 1)
	scale := TRS(0, 0, 0, 2, 2)

	// scale first, then translate
	x, y := translate.Mul(scale).Apply(1, 1)
	if !approx(x, 12) || !approx(y, 2) {
		t.Errorf("translate.Mul(scale).Apply(1, 1) = (%v, %v), want (12, 2)", x, y)
	}
}

func TestSliceToBytes(t *testing.T) {
	if got := SliceToBytes([]float32{}); got != nil {
		t.Errorf("SliceToBytes(empty) = %v, want nil", got)
	}
	if got := len(SliceToBytes([]float32{1, 2, 3})); got != 12 {
		t.Errorf("len(SliceToBytes(3 floats)) = %d, want 12", got)
	}
	if got := len(SliceToBytes([]uint32{1, 2})); got != 8 {
		t.Errorf("len(SliceToBytes(2 uint32)) = %d, want 8", got)
	}
}
