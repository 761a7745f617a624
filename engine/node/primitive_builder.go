package node

// PrimitiveBuilderOption is a functional option for configuring a Primitive via NewPrimitive.
type PrimitiveBuilderOption func(*Primitive)

// WithDepth sets the depth key of the Primitive.
//
// Parameters:
//   - depth: the depth bucket, drawn in ascending order
//
// Returns:
//   - PrimitiveBuilderOption: functional option to set the depth
func WithDepth(depth int) PrimitiveBuilderOption {
	return func(p *Primitive) {
		p.depth = depth
	}
}

// WithVisible sets the initial visibility of the Primitive.
//
// Parameters:
//   - visible: false to keep the primitive attached but undrawn
//
// Returns:
//   - PrimitiveBuilderOption: functional option to set the visibility
func WithVisible(visible bool) PrimitiveBuilderOption {
	return func(p *Primitive) {
		p.visible = visible
	}
}

// WithTransform sets the initial transform of the Primitive.
//
// Parameters:
//   - t: the transform applied to the captured local positions
//
// Returns:
//   - PrimitiveBuilderOption: functional option to set the transform
func WithTransform(t Transform) PrimitiveBuilderOption {
	return func(p *Primitive) {
		p.transform = t
	}
}

// WithPivot sets the local point that rotation and scale happen around.
//
// Parameters:
//   - x: the pivot x in local coordinates
//   - y: the pivot y in local coordinates
//
// Returns:
//   - PrimitiveBuilderOption: functional option to set the pivot
func WithPivot(x, y float32) PrimitiveBuilderOption {
	return func(p *Primitive) {
		p.pivot = [2]float32{x, y}
	}
}
