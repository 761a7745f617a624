// package gputest provides a recording gpu.Device for tests, in the manner of net/http/httptest.
// It keeps buffer contents in memory and captures every draw with a copy of the data it consumed.
package gputest

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

// Draw is one recorded DrawIndexed call.
type Draw struct {
	Shader   gpu.ShaderID
	Layout   gpu.LayoutID
	Model    model.BatchModel
	Blend    gpu.BlendState
	Uniform  gpu.BufferID
	Textures map[int]gpu.TextureID
	// Vertices holds the floats of the most recent write to the bound vertex buffer.
	Vertices []float32
	// Indices holds the first count indices of the bound index buffer.
	Indices []uint32
}

// Texture is a recorded texture upload.
type Texture struct {
	Label   string
	Staging common.TextureStagingData
	Sampler common.SamplerStagingData
}

// Shader is a recorded shader module.
type Shader struct {
	Key    string
	Source string
}

type buffer struct {
	kind    gpu.BufferKind
	label   string
	data    []byte
	lastLen int
}

// Device is an in-memory gpu.Device. The zero value is not usable; call NewDevice.
type Device struct {
	mu sync.Mutex

	// FailBeginFrame, when set, is returned by BeginFrame.
	FailBeginFrame error
	// FailCreateBuffer, when set, is returned by CreateBuffer.
	FailCreateBuffer error
	// FailCreateTexture, when set, is returned by CreateTexture.
	FailCreateTexture error

	nextID   uint32
	buffers  map[gpu.BufferID]*buffer
	layouts  map[gpu.LayoutID]model.BatchModel
	shaders  map[gpu.ShaderID]Shader
	textures map[gpu.TextureID]Texture

	shader  gpu.ShaderID
	layout  gpu.LayoutID
	vbo     gpu.BufferID
	ibo     gpu.BufferID
	uniform gpu.BufferID
	blend   gpu.BlendState
	slots   map[int]gpu.TextureID
	inFrame bool

	draws         []Draw
	layoutCreates int
	frames        int
	presents      int
	width, height int
	released      bool
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{
		buffers:  make(map[gpu.BufferID]*buffer),
		layouts:  make(map[gpu.LayoutID]model.BatchModel),
		shaders:  make(map[gpu.ShaderID]Shader),
		textures: make(map[gpu.TextureID]Texture),
		slots:    make(map[int]gpu.TextureID),
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) CreateBuffer(kind gpu.BufferKind, label string, size uint64) (gpu.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return 0, gpu.ErrReleased
	}
	if d.FailCreateBuffer != nil {
		return 0, d.FailCreateBuffer
	}
	id := gpu.BufferID(d.id())
	d.buffers[id] = &buffer{kind: kind, label: label, data: make([]byte, size)}
	return id, nil
}

func (d *Device) WriteBuffer(id gpu.BufferID, offset uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	n := copy(b.data[offset:], data)
	b.lastLen = int(offset) + n
}

func (d *Device) ReleaseBuffer(id gpu.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, id)
}

func (d *Device) CreateVertexLayout(m model.BatchModel) (gpu.LayoutID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return 0, gpu.ErrReleased
	}
	if m.Stride() == 0 {
		return 0, errors.New("gputest: empty vertex layout")
	}
	id := gpu.LayoutID(d.id())
	d.layouts[id] = m
	d.layoutCreates++
	return id, nil
}

func (d *Device) BindVertexLayout(layout gpu.LayoutID, vbo, ibo gpu.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout, d.vbo, d.ibo = layout, vbo, ibo
}

func (d *Device) UnbindVertexLayout() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout, d.vbo, d.ibo = 0, 0, 0
}

func (d *Device) ReleaseVertexLayout(id gpu.LayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.layouts, id)
}

func (d *Device) CreateShaderModule(key, source string) (gpu.ShaderID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return 0, gpu.ErrReleased
	}
	if source == "" {
		return 0, errors.New("gputest: empty shader source")
	}
	id := gpu.ShaderID(d.id())
	d.shaders[id] = Shader{Key: key, Source: source}
	return id, nil
}

func (d *Device) UseShader(id gpu.ShaderID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shader = id
}

func (d *Device) ReleaseShader(id gpu.ShaderID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.shaders, id)
}

func (d *Device) CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (gpu.TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return 0, gpu.ErrReleased
	}
	if d.FailCreateTexture != nil {
		return 0, d.FailCreateTexture
	}
	id := gpu.TextureID(d.id())
	d.textures[id] = Texture{Label: label, Staging: staging, Sampler: sampler}
	return id, nil
}

func (d *Device) BindTexture(id gpu.TextureID, slot int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slots[slot] = id
}

func (d *Device) ReleaseTexture(id gpu.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, id)
}

func (d *Device) SetBlendState(state gpu.BlendState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blend = state
}

func (d *Device) BindUniform(id gpu.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uniform = id
}

func (d *Device) DrawIndexed(count int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	draw := Draw{
		Shader:   d.shader,
		Layout:   d.layout,
		Model:    d.layouts[d.layout],
		Blend:    d.blend,
		Uniform:  d.uniform,
		Textures: make(map[int]gpu.TextureID, len(d.slots)),
	}
	for slot, id := range d.slots {
		draw.Textures[slot] = id
	}
	if vb, ok := d.buffers[d.vbo]; ok {
		draw.Vertices = floats(vb.data[:vb.lastLen])
	}
	if ib, ok := d.buffers[d.ibo]; ok {
		all := uints(ib.data)
		if count > len(all) {
			count = len(all)
		}
		draw.Indices = all[:count]
	}
	d.draws = append(d.draws, draw)
	clear(d.slots)
}

func (d *Device) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBeginFrame != nil {
		return d.FailBeginFrame
	}
	d.inFrame = true
	d.frames++
	return nil
}

func (d *Device) EndFrame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFrame = false
}

func (d *Device) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
}

func (d *Device) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
}

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
}

// Draws returns a copy of the recorded draws.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// Reset forgets recorded draws and frame counters, keeping created resources.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = nil
	d.frames = 0
	d.presents = 0
}

// LayoutCreates returns how many vertex layouts have been created.
func (d *Device) LayoutCreates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layoutCreates
}

// LiveBuffers returns the number of buffers not yet released.
func (d *Device) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

// LiveLayouts returns the number of vertex layouts not yet released.
func (d *Device) LiveLayouts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.layouts)
}

// Texture returns the recorded upload for id.
func (d *Device) Texture(id gpu.TextureID) (Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	return t, ok
}

// LiveTextures returns the number of textures not yet released.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

// Shader returns the recorded module for id.
func (d *Device) Shader(id gpu.ShaderID) (Shader, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.shaders[id]
	return s, ok
}

// LiveShaders returns the number of shader modules not yet released.
func (d *Device) LiveShaders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.shaders)
}

// BufferBytes returns a copy of a buffer's contents.
func (d *Device) BufferBytes(id gpu.BufferID) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return nil
	}
	return append([]byte(nil), b.data...)
}

// Frames returns the number of successful BeginFrame calls.
func (d *Device) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Presents returns the number of Present calls.
func (d *Device) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// Size returns the last size passed to Resize.
func (d *Device) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// Released reports whether Release was called.
func (d *Device) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func uints(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}
