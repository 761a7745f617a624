// package canvas implements the z-ordered canvas layer: it holds references to attached nodes in
// depth buckets and, once per frame, batches their renderables into as few draw calls as the batch
// models, pool capacities and texture slot budget allow.
package canvas

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/node"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

// cursor is the write position in the pools, in floats and indices.
type cursor struct {
	vertex int
	index  int
}

// canvas is the implementation of the Canvas interface.
type canvas struct {
	label string
	ctx   Context

	depthMap map[int][]node.Ref
	depths   []int
	attached map[node.Ref]int

	vertexPool []float32
	indexPool  []uint32
	cursor     cursor

	current model.BatchModel
	layout  gpu.LayoutID
	slots   []model.TextureRef

	blend           gpu.BlendState
	projection      [16]float32
	projectionDirty bool

	vbo, ibo, ubo gpu.BufferID

	stats       Stats
	warnedSlots bool
	released    bool
}

// Canvas is a z-ordered layer of attached nodes. Nodes are drawn by ascending depth, and in
// attachment order within a depth. A canvas holds references only; it never owns or frees a node.
type Canvas interface {
	// Label returns the debug label of the canvas.
	Label() string

	// Attach adds ref under its current depth.
	//
	// Parameters:
	//   - ref: the node to attach
	//
	// Returns:
	//   - bool: false if ref is the zero Ref or is already attached
	Attach(ref node.Ref) bool

	// Detach removes ref from the bucket of its current depth, keeping the order of the others.
	//
	// Parameters:
	//   - ref: the node to detach
	//
	// Returns:
	//   - bool: false if no bucket exists at ref's depth or ref is not in it
	Detach(ref node.Ref) bool

	// SetDepth moves an attached node to a new depth, appending it to the end of that bucket.
	//
	// Parameters:
	//   - ref: the attached node
	//   - depth: the new depth
	//
	// Returns:
	//   - bool: false if ref could not be detached, in which case its depth is unchanged
	SetDepth(ref node.Ref, depth int) bool

	// Contains reports whether ref is attached.
	Contains(ref node.Ref) bool

	// Len returns the number of attached nodes.
	Len() int

	// Depths returns the occupied depths in ascending order.
	Depths() []int

	// Refs returns the nodes attached at depth in draw order.
	Refs(depth int) []node.Ref

	// Draw batches and submits every visible attached primitive.
	//
	// Returns:
	//   - Stats: what the frame submitted
	Draw() Stats

	// Stats returns the result of the most recent Draw.
	Stats() Stats

	// SetProjection replaces the orthographic projection. It is uploaded on the next Draw.
	//
	// Parameters:
	//   - left, right: horizontal bounds in canvas units
	//   - bottom, top: vertical bounds in canvas units
	SetProjection(left, right, bottom, top float32)

	// Blend returns the blend state the canvas draws with.
	Blend() gpu.BlendState

	// VertexPoolCapacity returns the vertex pool size in floats.
	VertexPoolCapacity() int

	// IndexPoolCapacity returns the index pool size in indices.
	IndexPoolCapacity() int

	// Release frees the canvas's GPU buffers. Any later use panics.
	Release()
}

var _ Canvas = &canvas{}

// NewCanvas creates a canvas and its fixed GPU buffers. Failing to create a buffer is a
// configuration error and panics.
//
// Parameters:
//   - ctx: the renderer-owned collaborators
//   - options: functional options to configure the canvas
//
// Returns:
//   - Canvas: the new canvas
func NewCanvas(ctx Context, options ...CanvasBuilderOption) Canvas {
	ctx.validate()
	c := &canvas{
		label:    "canvas",
		ctx:      ctx,
		depthMap: make(map[int][]node.Ref),
		attached: make(map[node.Ref]int),
		blend:    gpu.AlphaBlend,
		current:  model.NullBatchModel,

		vertexPool: make([]float32, DefaultVertexPoolCapacity),
		indexPool:  make([]uint32, DefaultIndexPoolCapacity),
	}
	common.Identity(c.projection[:])
	c.projectionDirty = true

	for _, opt := range options {
		opt(c)
	}
	if len(c.vertexPool) == 0 || len(c.indexPool) == 0 {
		panic(fmt.Sprintf("canvas: %s must have positive pool capacities", c.label))
	}
	c.slots = make([]model.TextureRef, 0, max(ctx.MaxTextureSlots, 0))

	var err error
	if c.vbo, err = ctx.Device.CreateBuffer(gpu.BufferVertex, c.label+" vertices", uint64(len(c.vertexPool))*4); err != nil {
		panic(fmt.Sprintf("canvas: %s failed to create vertex buffer: %v", c.label, err))
	}
	if c.ibo, err = ctx.Device.CreateBuffer(gpu.BufferIndex, c.label+" indices", uint64(len(c.indexPool))*4); err != nil {
		panic(fmt.Sprintf("canvas: %s failed to create index buffer: %v", c.label, err))
	}
	if c.ubo, err = ctx.Device.CreateBuffer(gpu.BufferUniform, c.label+" projection", uint64(len(c.projection))*4); err != nil {
		panic(fmt.Sprintf("canvas: %s failed to create projection buffer: %v", c.label, err))
	}
	return c
}

func (c *canvas) checkLive() {
	if c.released {
		panic(fmt.Sprintf("canvas: %s used after Release", c.label))
	}
}

func (c *canvas) Label() string {
	return c.label
}

func (c *canvas) Attach(ref node.Ref) bool {
	c.checkLive()
	if ref.IsZero() {
		common.Logger().Warn("canvas: attach of zero ref", "canvas", c.label)
		return false
	}
	if d, ok := c.attached[ref]; ok {
		common.Logger().Warn("canvas: node already attached", "canvas", c.label, "kind", ref.Kind(), "depth", d)
		return false
	}

	depth := ref.Depth()
	bucket, ok := c.depthMap[depth]
	if !ok {
		i, _ := slices.BinarySearch(c.depths, depth)
		c.depths = slices.Insert(c.depths, i, depth)
	}
	c.depthMap[depth] = append(bucket, ref)
	c.attached[ref] = depth
	return true
}

func (c *canvas) Detach(ref node.Ref) bool {
	c.checkLive()
	depth := ref.Depth()
	bucket, ok := c.depthMap[depth]
	if !ok {
		common.Logger().Warn("canvas: detach from empty depth", "canvas", c.label, "kind", ref.Kind(), "depth", depth)
		return false
	}
	i := slices.Index(bucket, ref)
	if i < 0 {
		common.Logger().Warn("canvas: detach of node not at its depth", "canvas", c.label, "kind", ref.Kind(), "depth", depth)
		return false
	}

	bucket = slices.Delete(bucket, i, i+1)
	if len(bucket) == 0 {
		delete(c.depthMap, depth)
		if j, found := slices.BinarySearch(c.depths, depth); found {
			c.depths = slices.Delete(c.depths, j, j+1)
		}
	} else {
		c.depthMap[depth] = bucket
	}
	delete(c.attached, ref)
	return true
}

func (c *canvas) SetDepth(ref node.Ref, depth int) bool {
	if !c.Detach(ref) {
		return false
	}
	ref.SetDepth(depth)
	return c.Attach(ref)
}

func (c *canvas) Contains(ref node.Ref) bool {
	_, ok := c.attached[ref]
	return ok
}

func (c *canvas) Len() int {
	return len(c.attached)
}

func (c *canvas) Depths() []int {
	return slices.Clone(c.depths)
}

func (c *canvas) Refs(depth int) []node.Ref {
	return slices.Clone(c.depthMap[depth])
}

func (c *canvas) Stats() Stats {
	return c.stats
}

func (c *canvas) SetProjection(left, right, bottom, top float32) {
	common.Ortho(c.projection[:], left, right, bottom, top)
	c.projectionDirty = true
}

func (c *canvas) Blend() gpu.BlendState {
	return c.blend
}

func (c *canvas) VertexPoolCapacity() int {
	return len(c.vertexPool)
}

func (c *canvas) IndexPoolCapacity() int {
	return len(c.indexPool)
}

func (c *canvas) Release() {
	if c.released {
		return
	}
	c.ctx.Device.ReleaseBuffer(c.vbo)
	c.ctx.Device.ReleaseBuffer(c.ibo)
	c.ctx.Device.ReleaseBuffer(c.ubo)
	c.depthMap = nil
	c.depths = nil
	c.attached = nil
	c.released = true
}
