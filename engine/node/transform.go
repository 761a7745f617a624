package node

import "github.com/Carmen-Shannon/oxy2d/common"

// Transform is the placement of a primitive in canvas space: translation, rotation (radians) and scale.
type Transform struct {
	X, Y     float32
	Rotation float32
	ScaleX   float32
	ScaleY   float32
}

// IdentityTransform returns a transform that leaves positions unchanged.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Translate returns an unrotated, unscaled transform at (x, y).
func Translate(x, y float32) Transform {
	return Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

// Matrix composes the transform as T * R * S.
func (t Transform) Matrix() common.Affine2D {
	return common.TRS(t.X, t.Y, t.Rotation, t.ScaleX, t.ScaleY)
}
