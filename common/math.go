package common

import (
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Ortho creates an orthographic projection matrix mapping the rectangle
// [left, right] x [bottom, top] onto clip space. Depth is fixed to the WebGPU
// [0, 1] range with z passed through, since 2D canvases order by draw sequence.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal bounds in world units
//   - bottom, top: vertical bounds in world units
func Ortho(out []float32, left, right, bottom, top float32) {
	Identity(out)
	w := right - left
	h := top - bottom
	if w == 0 || h == 0 {
		return
	}
	out[0] = 2 / w
	out[5] = 2 / h
	out[10] = 1
	out[12] = -(right + left) / w
	out[13] = -(top + bottom) / h
}

// Affine2D is a 2x3 affine transform stored row-major:
//
//	| A C E |
//	| B D F |
//
// It maps (x, y) to (A*x + C*y + E, B*x + D*y + F).
type Affine2D struct {
	A, B, C, D, E, F float32
}

// IdentityAffine returns the identity affine transform.
func IdentityAffine() Affine2D {
	return Affine2D{A: 1, D: 1}
}

// TRS builds an affine transform that applies scale, then rotation, then translation.
//
// Parameters:
//   - tx, ty: translation
//   - rot: rotation in radians (counter-clockwise)
//   - sx, sy: scale factors
//
// Returns:
//   - Affine2D: the composed transform T * R * S
func TRS(tx, ty, rot, sx, sy float32) Affine2D {
	c := float32(math.Cos(float64(rot)))
	s := float32(math.Sin(float64(rot)))
	return Affine2D{
		A: c * sx,
		B: s * sx,
		C: -s * sy,
		D: c * sy,
		E: tx,
		F: ty,
	}
}

// Apply transforms a point.
//
// Parameters:
//   - x, y: the point to transform
//
// Returns:
//   - float32, float32: the transformed point
func (m Affine2D) Apply(x, y float32) (float32, float32) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Mul returns m * n, the transform that applies n first and then m.
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}
