package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	kind   gpu.BufferKind
	buffer *wgpu.Buffer
	size   uint64
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

func (t *wgpuTexture) release() {
	if t.sampler != nil {
		t.sampler.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

// wgpuRendererBackendImpl implements gpu.Device on WebGPU. Every DrawIndexed records and submits
// its own render pass so that the canvas pools can be rewritten between flushes; the first pass
// of a frame clears the target and later passes load it.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat   *wgpu.TextureFormat
	msaaTexture     *wgpu.Texture
	msaaTextureView *wgpu.TextureView
	width, height   int

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color
	slots       int

	// group 0: projection uniform plus one sampler/texture pair per slot
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	placeholder     *wgpuTexture

	next      uint32
	buffers   map[gpu.BufferID]*wgpuBuffer
	layouts   map[gpu.LayoutID]wgpu.VertexBufferLayout
	shaders   map[gpu.ShaderID]*wgpu.ShaderModule
	textures  map[gpu.TextureID]*wgpuTexture
	pipelines map[pipeline.Key]pipeline.Pipeline

	// Draw state set by the Bind* calls and consumed by DrawIndexed.
	layout  gpu.LayoutID
	vbo     gpu.BufferID
	ibo     gpu.BufferID
	shader  gpu.ShaderID
	uniform gpu.BufferID
	blend   gpu.BlendState
	bound   []gpu.TextureID

	// Frame state.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	cleared      bool

	released bool
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surface Surface, forceFallbackAdapter bool, sampleCount MSAASampleCount, slots int, clearColor wgpu.Color) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	if slots < 1 {
		slots = 1
	}
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		clearColor:  clearColor,
		slots:       slots,
		buffers:     make(map[gpu.BufferID]*wgpuBuffer),
		layouts:     make(map[gpu.LayoutID]wgpu.VertexBufferLayout),
		shaders:     make(map[gpu.ShaderID]*wgpu.ShaderModule),
		textures:    make(map[gpu.TextureID]*wgpuTexture),
		pipelines:   make(map[pipeline.Key]pipeline.Pipeline),
		bound:       make([]gpu.TextureID, slots),
		blend:       gpu.AlphaBlend,
	}
	b.surface = b.instance.CreateSurface(surface.SurfaceDescriptor())

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request adapter: %v", err))
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request device: %v", err))
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.createBindingLayouts(); err != nil {
		panic(fmt.Sprintf("renderer: %v", err))
	}
	placeholder, err := b.createTexture("Placeholder", common.TextureStagingData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	}, common.DefaultSampler())
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create placeholder texture: %v", err))
	}
	b.placeholder = placeholder

	b.configureSurface(surface.Width(), surface.Height())
	common.Logger().Info("renderer: webgpu device ready", "slots", slots, "msaa", uint32(sampleCount))
	return b
}

// createBindingLayouts builds the single bind group layout shared by every canvas shader.
func (b *wgpuRendererBackendImpl) createBindingLayouts() error {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, 1+2*b.slots)
	entries = append(entries, wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: 64,
		},
	})
	for i := 0; i < b.slots; i++ {
		base := uint32(shader.TextureBindingBase + 2*i)
		entries = append(entries,
			wgpu.BindGroupLayoutEntry{
				Binding:    base,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
			wgpu.BindGroupLayoutEntry{
				Binding:    base + 1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		)
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Canvas Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}
	b.bindGroupLayout = layout

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Canvas Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	b.pipelineLayout = pipelineLayout
	return nil
}

func (b *wgpuRendererBackendImpl) id() uint32 {
	b.next++
	return b.next
}

func (b *wgpuRendererBackendImpl) checkLive() {
	if b.released {
		panic(gpu.ErrReleased.Error())
	}
}

// configureSurface must be called with b.mu held or before the backend is shared.
func (b *wgpuRendererBackendImpl) configureSurface(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
		b.msaaTextureView = nil
		b.msaaTexture = nil
	}

	count := uint32(b.sampleCount)
	if count <= 1 {
		return
	}

	// The render passes draw into the MSAA texture and resolve into the swapchain view.
	msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "MSAA Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        *b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create msaa texture: %v", err))
	}
	view, err := msaaTexture.CreateView(nil)
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create msaa view: %v", err))
	}
	b.msaaTexture = msaaTexture
	b.msaaTextureView = view
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
	b.configureSurface(b.width, b.height)
}

func (b *wgpuRendererBackendImpl) CreateBuffer(kind gpu.BufferKind, label string, size uint64) (gpu.BufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkLive()

	var usage wgpu.BufferUsage
	switch kind {
	case gpu.BufferVertex:
		usage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case gpu.BufferIndex:
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	case gpu.BufferUniform:
		usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	default:
		return 0, fmt.Errorf("unknown buffer kind %d", kind)
	}

	// WriteBuffer requires sizes aligned to 4 bytes.
	size = (size + 3) &^ 3
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create %s buffer %q: %w", kind, label, err)
	}

	id := gpu.BufferID(b.id())
	b.buffers[id] = &wgpuBuffer{kind: kind, buffer: buf, size: size}
	return id, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(id gpu.BufferID, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[id]
	if !ok {
		common.Logger().Warn("renderer: write to unknown buffer", "buffer", id)
		return
	}
	if len(data) == 0 {
		return
	}
	if offset+uint64(len(data)) > buf.size {
		common.Logger().Warn("renderer: buffer write out of range", "buffer", id, "offset", offset, "bytes", len(data), "size", buf.size)
		return
	}
	b.queue.WriteBuffer(buf.buffer, offset, data)
}

func (b *wgpuRendererBackendImpl) ReleaseBuffer(id gpu.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[id]
	if !ok {
		return
	}
	buf.buffer.Release()
	delete(b.buffers, id)
}

func (b *wgpuRendererBackendImpl) CreateVertexLayout(m model.BatchModel) (gpu.LayoutID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkLive()

	if m.Stride() == 0 {
		return 0, fmt.Errorf("vertex layout for shader %d has no attributes", m.Shader)
	}
	id := gpu.LayoutID(b.id())
	b.layouts[id] = pipeline.VertexBufferLayout(m)
	return id, nil
}

func (b *wgpuRendererBackendImpl) BindVertexLayout(layout gpu.LayoutID, vbo, ibo gpu.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.layout, b.vbo, b.ibo = layout, vbo, ibo
}

func (b *wgpuRendererBackendImpl) UnbindVertexLayout() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.layout, b.vbo, b.ibo = 0, 0, 0
}

func (b *wgpuRendererBackendImpl) ReleaseVertexLayout(id gpu.LayoutID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.layouts, id)
	for key, p := range b.pipelines {
		if key.Layout == id {
			p.Release()
			delete(b.pipelines, key)
		}
	}
}

func (b *wgpuRendererBackendImpl) CreateShaderModule(key, source string) (gpu.ShaderID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkLive()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to compile shader %q: %w", key, err)
	}
	id := gpu.ShaderID(b.id())
	b.shaders[id] = module
	return id, nil
}

func (b *wgpuRendererBackendImpl) UseShader(id gpu.ShaderID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shader = id
}

func (b *wgpuRendererBackendImpl) ReleaseShader(id gpu.ShaderID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, ok := b.shaders[id]
	if !ok {
		return
	}
	for key, p := range b.pipelines {
		if key.Shader == id {
			p.Release()
			delete(b.pipelines, key)
		}
	}
	module.Release()
	delete(b.shaders, id)
}

func (b *wgpuRendererBackendImpl) CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (gpu.TextureID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkLive()

	tex, err := b.createTexture(label, staging, sampler)
	if err != nil {
		return 0, err
	}
	id := gpu.TextureID(b.id())
	b.textures[id] = tex
	return id, nil
}

func (b *wgpuRendererBackendImpl) createTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (*wgpuTexture, error) {
	if staging.Width == 0 || staging.Height == 0 {
		return nil, common.ErrEmptyImage
	}
	size := wgpu.Extent3D{
		Width:              staging.Width,
		Height:             staging.Height,
		DepthOrArrayLayers: 1,
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view for texture %q: %w", label, err)
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  sampler.AddressModeU,
		AddressModeV:  sampler.AddressModeV,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     sampler.MagFilter,
		MinFilter:     sampler.MinFilter,
		MipmapFilter:  sampler.MipmapFilter,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: max(sampler.MaxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("failed to create sampler for texture %q: %w", label, err)
	}

	return &wgpuTexture{texture: tex, view: view, sampler: samp}, nil
}

func (b *wgpuRendererBackendImpl) BindTexture(id gpu.TextureID, slot int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slot < 0 || slot >= len(b.bound) {
		common.Logger().Warn("renderer: texture slot out of range", "slot", slot, "slots", len(b.bound))
		return
	}
	b.bound[slot] = id
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(id gpu.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, ok := b.textures[id]
	if !ok {
		return
	}
	tex.release()
	delete(b.textures, id)
}

func (b *wgpuRendererBackendImpl) SetBlendState(state gpu.BlendState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.blend = state
}

func (b *wgpuRendererBackendImpl) BindUniform(id gpu.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.uniform = id
}

// ensurePipeline returns the pipeline for key, creating it on first use. Caller holds b.mu.
func (b *wgpuRendererBackendImpl) ensurePipeline(key pipeline.Key) (pipeline.Pipeline, error) {
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	module, ok := b.shaders[key.Shader]
	if !ok {
		return nil, fmt.Errorf("unknown shader %d", key.Shader)
	}
	layout, ok := b.layouts[key.Layout]
	if !ok {
		return nil, fmt.Errorf("unknown vertex layout %d", key.Layout)
	}

	p := pipeline.NewPipeline(key, pipeline.WithSampleCount(uint32(b.sampleCount)))
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Canvas Render Pipeline " + key.String(),
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{layout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					Blend:     p.BlendState(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: p.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline %s: %w", key, err)
	}
	p.SetRenderPipeline(created)
	b.pipelines[key] = p
	common.Logger().Debug("renderer: pipeline created", "key", key.String())
	return p, nil
}

// bindGroup assembles group 0 from the bound uniform and textures. Caller holds b.mu.
func (b *wgpuRendererBackendImpl) bindGroup(uniform *wgpuBuffer) (*wgpu.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, 0, 1+2*b.slots)
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: 0,
		Buffer:  uniform.buffer,
		Offset:  0,
		Size:    wgpu.WholeSize,
	})
	for i, id := range b.bound {
		tex, ok := b.textures[id]
		if !ok {
			tex = b.placeholder
		}
		base := uint32(shader.TextureBindingBase + 2*i)
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: base, Sampler: tex.sampler},
			wgpu.BindGroupEntry{Binding: base + 1, TextureView: tex.view},
		)
	}
	return b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Canvas Bind Group",
		Layout:  b.bindGroupLayout,
		Entries: entries,
	})
}

// colorAttachment targets the frame, clearing it on the first pass only. Caller holds b.mu.
func (b *wgpuRendererBackendImpl) colorAttachment() wgpu.RenderPassColorAttachment {
	attachment := wgpu.RenderPassColorAttachment{
		View:       b.frameView,
		LoadOp:     wgpu.LoadOpLoad,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if !b.cleared {
		attachment.LoadOp = wgpu.LoadOpClear
	}
	if b.msaaTextureView != nil {
		attachment.View = b.msaaTextureView
		attachment.ResolveTarget = b.frameView
	}
	return attachment
}

// submitPass records one render pass, optionally drawing into it, and submits it. Caller holds b.mu.
func (b *wgpuRendererBackendImpl) submitPass(draw func(pass *wgpu.RenderPassEncoder)) error {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{b.colorAttachment()},
	})
	if draw != nil {
		draw(pass)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.cleared = true
	return nil
}

func (b *wgpuRendererBackendImpl) DrawIndexed(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer clear(b.bound)

	if b.frameView == nil {
		common.Logger().Warn("renderer: draw skipped", "error", gpu.ErrNoFrame)
		return
	}
	if count <= 0 {
		return
	}

	vbo, okV := b.buffers[b.vbo]
	ibo, okI := b.buffers[b.ibo]
	uniform, okU := b.buffers[b.uniform]
	if !okV || !okI || !okU {
		common.Logger().Warn("renderer: draw skipped, buffers not bound", "vbo", b.vbo, "ibo", b.ibo, "uniform", b.uniform)
		return
	}

	p, err := b.ensurePipeline(pipeline.Key{Shader: b.shader, Layout: b.layout, Blend: b.blend})
	if err != nil {
		common.Logger().Warn("renderer: draw skipped", "error", err)
		return
	}

	bindGroup, err := b.bindGroup(uniform)
	if err != nil {
		common.Logger().Warn("renderer: draw skipped, bind group failed", "error", err)
		return
	}
	defer bindGroup.Release()

	err = b.submitPass(func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(p.Pipeline())
		pass.SetBindGroup(0, bindGroup, nil)
		pass.SetVertexBuffer(0, vbo.buffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(ibo.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	})
	if err != nil {
		common.Logger().Warn("renderer: draw submission failed", "error", err)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return gpu.ErrReleased
	}
	// A held surface texture means the previous frame was never presented.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.surfaceFormat == nil {
		return fmt.Errorf("surface not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	b.cleared = false
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameView == nil || b.cleared {
		return
	}
	// Nothing was drawn; still clear the target.
	if err := b.submitPass(nil); err != nil {
		common.Logger().Warn("renderer: clear pass failed", "error", err)
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.configureSurface(width, height)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true

	for key, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, key)
	}
	for id, buf := range b.buffers {
		buf.buffer.Release()
		delete(b.buffers, id)
	}
	for id, tex := range b.textures {
		tex.release()
		delete(b.textures, id)
	}
	for id, module := range b.shaders {
		module.Release()
		delete(b.shaders, id)
	}
	clear(b.layouts)

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTexture.Release()
	}
	b.placeholder.release()
	b.pipelineLayout.Release()
	b.bindGroupLayout.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
	common.Logger().Info("renderer: webgpu device released")
}
