package canvas

import (
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/node"
)

func (c *canvas) Draw() Stats {
	c.checkLive()
	c.stats = Stats{}
	c.current = model.NullBatchModel
	c.layout = 0
	c.cursor = cursor{}
	c.slots = c.slots[:0]
	c.warnedSlots = false

	dev := c.ctx.Device
	if c.projectionDirty {
		dev.WriteBuffer(c.ubo, 0, common.SliceToBytes(c.projection[:]))
		c.projectionDirty = false
	}
	dev.SetBlendState(c.blend)
	dev.BindUniform(c.ubo)

	for _, depth := range c.depths {
		for _, ref := range c.depthMap[depth] {
			it := ref.Iterator()
			for p := it.Get(); p != nil; p = it.Next() {
				c.submit(p)
			}
		}
	}
	c.flush(FlushEndOfFrame)
	return c.stats
}

// submit copies one primitive into the open batch, flushing first when it cannot join it.
func (c *canvas) submit(p *node.Primitive) {
	if !p.Visible() {
		c.stats.Hidden++
		return
	}
	r := p.Renderable()
	m := r.Model()
	if m.IsNull() {
		common.Logger().Warn("canvas: primitive has the null model", "canvas", c.label)
		c.stats.Skipped++
		return
	}
	if r.VertexCount() > len(c.vertexPool) || r.IndexCount() > len(c.indexPool) {
		common.Logger().Warn("canvas: primitive larger than the pools",
			"canvas", c.label, "vertices", r.VertexCount(), "indices", r.IndexCount(),
			"vertex_pool", len(c.vertexPool), "index_pool", len(c.indexPool))
		c.stats.Skipped++
		return
	}

	if m != c.current {
		c.flush(FlushModelChange)
		layout, err := c.ctx.Layouts.Ensure(m)
		if err != nil {
			common.Logger().Warn("canvas: vertex layout unavailable", "canvas", c.label, "error", err)
			c.current = model.NullBatchModel
			c.stats.Skipped++
			return
		}
		c.current = m
		c.layout = layout
	} else if c.cursor.vertex+r.VertexCount() > len(c.vertexPool) || c.cursor.index+r.IndexCount() > len(c.indexPool) {
		c.flush(FlushPoolExhausted)
	}

	slot := c.resolveSlot(r.Texture())

	stride := m.Stride()
	base := uint32(c.cursor.vertex / stride)

	dst := c.vertexPool[c.cursor.vertex : c.cursor.vertex+r.VertexCount()]
	copy(dst, r.Vertices())
	if offset := m.AttributeOffset(model.AttrTexIndex); offset >= 0 {
		for i := offset; i < len(dst); i += stride {
			dst[i] = float32(slot)
		}
	}

	idst := c.indexPool[c.cursor.index : c.cursor.index+r.IndexCount()]
	for i, idx := range r.Indices() {
		idst[i] = idx + base
	}

	c.cursor.vertex += r.VertexCount()
	c.cursor.index += r.IndexCount()
	c.stats.Primitives++
}

// resolveSlot returns the texture unit for tex, flushing when a new texture finds every slot taken.
// NoTexture resolves to -1.
func (c *canvas) resolveSlot(tex model.TextureRef) int {
	if tex == model.NoTexture {
		return -1
	}
	maxSlots := c.ctx.MaxTextureSlots
	if maxSlots <= 0 {
		if !c.warnedSlots {
			common.Logger().Warn("canvas: no texture slots available", "canvas", c.label, "max_texture_slots", maxSlots)
			c.warnedSlots = true
		}
		return -1
	}
	for i, s := range c.slots {
		if s == tex {
			return i
		}
	}
	if len(c.slots) >= maxSlots {
		c.flush(FlushTextureSlots)
	}
	c.slots = append(c.slots, tex)
	return len(c.slots) - 1
}

// flush submits the open batch and resets the cursor and texture slots. The current model is kept.
func (c *canvas) flush(reason FlushReason) {
	if c.current.IsNull() {
		return
	}
	if c.cursor.index == 0 {
		c.cursor = cursor{}
		c.slots = c.slots[:0]
		return
	}

	dev := c.ctx.Device
	dev.BindVertexLayout(c.layout, c.vbo, c.ibo)
	dev.WriteBuffer(c.vbo, 0, common.SliceToBytes(c.vertexPool[:c.cursor.vertex]))
	dev.WriteBuffer(c.ibo, 0, common.SliceToBytes(c.indexPool[:c.cursor.index]))
	for slot, tex := range c.slots {
		c.ctx.Textures.Bind(tex, slot)
	}
	c.ctx.Shaders.Bind(c.current.Shader)
	dev.DrawIndexed(c.cursor.index)
	c.ctx.Shaders.Unbind()
	dev.UnbindVertexLayout()

	vertices := c.cursor.vertex / c.current.Stride()
	c.stats.Draws++
	c.stats.Flushes[reason]++
	c.stats.Vertices += vertices
	c.stats.Indices += c.cursor.index
	common.Logger().Debug("canvas: flush",
		"canvas", c.label, "reason", reason, "vertices", vertices,
		"indices", c.cursor.index, "textures", len(c.slots))

	c.cursor = cursor{}
	c.slots = c.slots[:0]
}
