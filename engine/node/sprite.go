package node

import "github.com/Carmen-Shannon/oxy2d/engine/model"

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color [4]float32

// White is the untinted sprite color.
var White = Color{1, 1, 1, 1}

// UVRect is a texture sub-region: (U0, V0) is the top-left corner and (U1, V1) the bottom-right.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// FullUV covers the whole texture.
var FullUV = UVRect{0, 0, 1, 1}

// quadIndices is the two-triangle winding shared by every sprite quad.
var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// SpriteRenderable builds a textured quad in the sprite layout, with its bottom-left corner at the origin.
//
// Parameters:
//   - shader: the shader handle to draw with
//   - tex: the texture handle, or model.NoTexture for a flat colored quad
//   - width, height: quad size in canvas units
//   - tint: vertex color
//   - uv: the texture region mapped onto the quad
//
// Returns:
//   - model.Renderable: four vertices and six indices
//   - error: error if shader is model.NoShader
func SpriteRenderable(shader model.ShaderRef, tex model.TextureRef, width, height float32, tint Color, uv UVRect) (model.Renderable, error) {
	r, g, b, a := tint[0], tint[1], tint[2], tint[3]
	vertices := []float32{
		// x, y, r, g, b, a, u, v, texture index
		0, 0, r, g, b, a, uv.U0, uv.V1, 0,
		width, 0, r, g, b, a, uv.U1, uv.V1, 0,
		width, height, r, g, b, a, uv.U1, uv.V0, 0,
		0, height, r, g, b, a, uv.U0, uv.V0, 0,
	}
	return model.NewRenderable(model.SpriteModel(shader), tex, vertices, quadIndices)
}

// NewSprite creates a textured quad Primitive pivoting around its center.
// WithPivot overrides the default pivot.
//
// Parameters:
//   - shader: the shader handle to draw with
//   - tex: the texture handle
//   - width, height: quad size in canvas units
//   - options: functional options to configure the primitive
//
// Returns:
//   - *Primitive: the sprite
//   - error: error if the renderable cannot be built
func NewSprite(shader model.ShaderRef, tex model.TextureRef, width, height float32, options ...PrimitiveBuilderOption) (*Primitive, error) {
	r, err := SpriteRenderable(shader, tex, width, height, White, FullUV)
	if err != nil {
		return nil, err
	}
	opts := append([]PrimitiveBuilderOption{WithPivot(width/2, height/2)}, options...)
	return NewPrimitive(r, opts...), nil
}
