package canvas

import (
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

// ShaderBinder selects shaders at flush time. *shader.Cache implements it.
type ShaderBinder interface {
	Bind(ref model.ShaderRef)
	Unbind()
}

// TextureBinder binds textures to slots at flush time. *texture.Cache implements it.
type TextureBinder interface {
	Bind(ref model.TextureRef, slot int)
}

// Context carries the renderer-owned collaborators a canvas draws through.
type Context struct {
	Device   gpu.Device
	Shaders  ShaderBinder
	Textures TextureBinder
	Layouts  *gpu.LayoutRegistry
	// MaxTextureSlots is the texture unit budget shared by every canvas.
	MaxTextureSlots int
}

func (ctx Context) validate() {
	switch {
	case ctx.Device == nil:
		panic("canvas: context has no device")
	case ctx.Shaders == nil:
		panic("canvas: context has no shader cache")
	case ctx.Textures == nil:
		panic("canvas: context has no texture cache")
	case ctx.Layouts == nil:
		panic("canvas: context has no layout registry")
	}
}
