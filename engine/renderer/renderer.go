package renderer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/canvas"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// DefaultMaxTextureSlots is the texture unit budget used when none is configured.
	DefaultMaxTextureSlots = 8

	// MaxTextureSlotsLimit is the largest budget accepted. WebGPU's default limits guarantee 16
	// sampled textures and 16 samplers per shader stage.
	MaxTextureSlotsLimit = 16

	// SpriteShaderKey is the key the built-in sprite shader is registered under.
	SpriteShaderKey = "sprite"
)

// FrameStats aggregates the canvas statistics of one Renderer.Draw.
type FrameStats struct {
	canvas.Stats
	// Canvases is the number of canvases drawn.
	Canvases int
	// Skipped is true when the device could not begin the frame and nothing was drawn.
	Skipped bool
}

// renderer is the implementation of the Renderer interface.
// It owns the device, the shader and texture caches, the layout registry and the canvases.
type renderer struct {
	mu          *sync.Mutex
	backendType RendererBackendType
	device      gpu.Device
	shaders     *shader.Cache
	textures    *texture.Cache
	layouts     *gpu.LayoutRegistry
	canvases    map[int]canvas.Canvas
	order       []int

	maxTextureSlots int
	spriteShader    model.ShaderRef

	// construction-time configuration, consumed by NewRenderer
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	forceFallbackAdapter bool
	clearColor           wgpu.Color

	released bool
}

// Renderer draws an ordered set of canvases into one device frame per Draw call.
// Canvases are keyed by an integer index and drawn in ascending index order.
type Renderer interface {
	// AddCanvas creates a canvas at the given index. Adding to an index that is already used panics.
	//
	// Parameters:
	//   - index: the draw order key of the canvas
	//   - options: canvas configuration
	//
	// Returns:
	//   - canvas.Canvas: the new canvas
	AddCanvas(index int, options ...canvas.CanvasBuilderOption) canvas.Canvas

	// RemoveCanvas releases and removes the canvas at index. A missing index panics.
	//
	// Parameters:
	//   - index: the canvas index
	RemoveCanvas(index int)

	// Canvas returns the canvas at index. A missing index panics.
	//
	// Parameters:
	//   - index: the canvas index
	//
	// Returns:
	//   - canvas.Canvas: the canvas
	Canvas(index int) canvas.Canvas

	// HasCanvas reports whether a canvas exists at index.
	//
	// Parameters:
	//   - index: the canvas index
	//
	// Returns:
	//   - bool: true if the index is in use
	HasCanvas(index int) bool

	// CanvasIndices returns the used canvas indices in ascending order.
	//
	// Returns:
	//   - []int: a fresh slice of indices
	CanvasIndices() []int

	// Draw renders one frame: every canvas in ascending index order, then presents.
	// A device that cannot begin the frame skips it and reports FrameStats.Skipped.
	//
	// Returns:
	//   - FrameStats: the aggregated statistics of the frame
	Draw() FrameStats

	// Resize reconfigures the device frame target.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode when the device supports it.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// Shaders returns the renderer's shader cache.
	Shaders() *shader.Cache

	// Textures returns the renderer's texture cache.
	Textures() *texture.Cache

	// Layouts returns the renderer's vertex layout registry.
	Layouts() *gpu.LayoutRegistry

	// MaxTextureSlots returns the texture unit budget shared by every canvas.
	MaxTextureSlots() int

	// SpriteShader returns the handle of the built-in sprite shader.
	SpriteShader() model.ShaderRef

	// Device returns the underlying device.
	Device() gpu.Device

	// Release frees every canvas, both caches, the layout registry and the device.
	// Calling it more than once has no effect.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer. Unless WithDevice supplies a device, a backend of the given
// type is created on the surface, which is typically a window.Window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the presentation surface, may be nil when WithDevice is used
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:              &sync.Mutex{},
		backendType:     backendType,
		canvases:        make(map[int]canvas.Canvas),
		maxTextureSlots: DefaultMaxTextureSlots,
		clearColor:      wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}

	// Options first, so adapter flags are set before the backend requests a GPU.
	for _, opt := range options {
		opt(r)
	}

	if r.device == nil {
		if surface == nil {
			panic("renderer: a surface is required when no device is supplied")
		}
		msaa := MSAAOff
		if r.pendingMSAA != nil {
			msaa = *r.pendingMSAA
		}

		var backend RendererBackend
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			backend = newWGPURendererBackend(surface, r.forceFallbackAdapter, msaa, r.maxTextureSlots, r.clearColor)
		}
		r.device = backend
	}

	if r.pendingPresentMode != nil {
		r.setPresentMode(*r.pendingPresentMode)
	}

	r.shaders = shader.NewCache(r.device, r.maxTextureSlots)
	r.textures = texture.NewCache(r.device)
	r.layouts = gpu.NewLayoutRegistry(r.device)

	ref, err := r.shaders.Register(SpriteShaderKey, shader.SpriteTemplate())
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to register sprite shader: %v", err))
	}
	r.spriteShader = ref

	common.Logger().Info("renderer created", "max_texture_slots", r.maxTextureSlots)
	return r
}

func (r *renderer) checkLive() {
	if r.released {
		panic("renderer: used after Release")
	}
}

func (r *renderer) AddCanvas(index int, options ...canvas.CanvasBuilderOption) canvas.Canvas {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLive()

	if _, ok := r.canvases[index]; ok {
		panic(fmt.Sprintf("renderer: canvas index %d already in use", index))
	}

	opts := append([]canvas.CanvasBuilderOption{canvas.WithLabel(fmt.Sprintf("canvas %d", index))}, options...)
	c := canvas.NewCanvas(canvas.Context{
		Device:          r.device,
		Shaders:         r.shaders,
		Textures:        r.textures,
		Layouts:         r.layouts,
		MaxTextureSlots: r.maxTextureSlots,
	}, opts...)

	r.canvases[index] = c
	pos, _ := slices.BinarySearch(r.order, index)
	r.order = slices.Insert(r.order, pos, index)
	common.Logger().Debug("canvas added", "index", index, "label", c.Label())
	return c
}

func (r *renderer) RemoveCanvas(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLive()

	c, ok := r.canvases[index]
	if !ok {
		panic(fmt.Sprintf("renderer: no canvas at index %d", index))
	}
	c.Release()
	delete(r.canvases, index)
	if pos, found := slices.BinarySearch(r.order, index); found {
		r.order = slices.Delete(r.order, pos, pos+1)
	}
	common.Logger().Debug("canvas removed", "index", index)
}

func (r *renderer) Canvas(index int) canvas.Canvas {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLive()

	c, ok := r.canvases[index]
	if !ok {
		panic(fmt.Sprintf("renderer: no canvas at index %d", index))
	}
	return c
}

func (r *renderer) HasCanvas(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.canvases[index]
	return ok
}

func (r *renderer) CanvasIndices() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.order)
}

func (r *renderer) Draw() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLive()

	if err := r.device.BeginFrame(); err != nil {
		common.Logger().Warn("renderer: frame skipped", "error", err)
		return FrameStats{Skipped: true}
	}

	var stats FrameStats
	for _, index := range r.order {
		stats.Add(r.canvases[index].Draw())
		stats.Canvases++
	}

	r.device.EndFrame()
	r.device.Present()
	return stats
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLive()

	r.device.Resize(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLive()

	r.setPresentMode(mode)
}

func (r *renderer) setPresentMode(mode PresentMode) {
	if backend, ok := r.device.(RendererBackend); ok {
		backend.SetPresentMode(mode)
	}
}

func (r *renderer) Shaders() *shader.Cache {
	return r.shaders
}

func (r *renderer) Textures() *texture.Cache {
	return r.textures
}

func (r *renderer) Layouts() *gpu.LayoutRegistry {
	return r.layouts
}

func (r *renderer) MaxTextureSlots() int {
	return r.maxTextureSlots
}

func (r *renderer) SpriteShader() model.ShaderRef {
	return r.spriteShader
}

func (r *renderer) Device() gpu.Device {
	return r.device
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	for _, index := range r.order {
		r.canvases[index].Release()
	}
	clear(r.canvases)
	r.order = nil

	r.shaders.Terminate()
	r.textures.Terminate()
	r.layouts.Release()
	r.device.Release()
	common.Logger().Info("renderer released")
}
