// package texture owns uploaded textures. The Cache deduplicates uploads on their full key
// (path, sampler settings, level of detail), hands out model.TextureRef handles, and binds them to
// texture slots at flush time.
package texture

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"golang.org/x/image/draw"
)

// MaxLOD is the highest level of detail accepted. Level n halves each dimension n times.
const MaxLOD = 15

// Key identifies an upload. Two loads share a texture only when all three fields are equal.
type Key struct {
	Path    string
	Sampler common.SamplerStagingData
	LOD     int
}

type entry struct {
	key    Key
	id     gpu.TextureID
	width  uint32
	height uint32
}

// Cache maps texture keys to uploaded textures. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	device     gpu.Device
	byKey      map[Key]model.TextureRef
	entries    map[model.TextureRef]entry
	next       model.TextureRef
	terminated bool
}

// NewCache creates an empty cache uploading onto device.
//
// Parameters:
//   - device: the device textures are created on
//
// Returns:
//   - *Cache: the cache
func NewCache(device gpu.Device) *Cache {
	return &Cache{
		device:  device,
		byKey:   make(map[Key]model.TextureRef),
		entries: make(map[model.TextureRef]entry),
	}
}

func (c *Cache) checkLive() {
	if c.terminated {
		panic("texture: cache used after Terminate")
	}
}

// Load decodes the image at path and uploads it, unless the same key is already cached.
//
// Parameters:
//   - path: file system path of a PNG, JPEG, BMP or WebP image
//   - sampler: the sampler settings
//   - lod: level of detail, 0 for full resolution
//
// Returns:
//   - model.TextureRef: the texture handle
//   - error: error if the file cannot be decoded or uploaded
func (c *Cache) Load(path string, sampler common.SamplerStagingData, lod int) (model.TextureRef, error) {
	key := Key{Path: path, Sampler: sampler, LOD: lod}
	if ref, ok := c.Lookup(key); ok {
		return ref, nil
	}
	staging, err := common.DecodeImageFile(path)
	if err != nil {
		return model.NoTexture, err
	}
	return c.Upload(key, staging)
}

// Upload uploads already decoded pixels under key, unless the key is already cached.
// The pixels are downscaled according to key.LOD first.
//
// Parameters:
//   - key: the cache key
//   - staging: full resolution RGBA pixels
//
// Returns:
//   - model.TextureRef: the texture handle
//   - error: error if the LOD is out of range or the device rejects the upload
func (c *Cache) Upload(key Key, staging common.TextureStagingData) (model.TextureRef, error) {
	if key.LOD < 0 || key.LOD > MaxLOD {
		return model.NoTexture, fmt.Errorf("texture: lod %d out of range [0, %d]", key.LOD, MaxLOD)
	}
	if len(staging.Pixels) < int(staging.Width)*int(staging.Height)*4 {
		return model.NoTexture, fmt.Errorf("texture: %s has %d bytes for %dx%d pixels", key.Path, len(staging.Pixels), staging.Width, staging.Height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLive()

	if ref, ok := c.byKey[key]; ok {
		return ref, nil
	}

	scaled := Downscale(staging, key.LOD)
	id, err := c.device.CreateTexture(key.Path, scaled, key.Sampler)
	if err != nil {
		return model.NoTexture, fmt.Errorf("texture: failed to upload %s: %w", key.Path, err)
	}

	c.next++
	ref := c.next
	c.byKey[key] = ref
	c.entries[ref] = entry{key: key, id: id, width: scaled.Width, height: scaled.Height}
	common.Logger().Info("texture uploaded", "path", key.Path, "lod", key.LOD, "width", scaled.Width, "height", scaled.Height, "ref", ref)
	return ref, nil
}

// Lookup returns the handle cached under key.
func (c *Cache) Lookup(key Key) (model.TextureRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.checkLive()
	ref, ok := c.byKey[key]
	return ref, ok
}

// Size returns the uploaded dimensions of a texture.
func (c *Cache) Size(ref model.TextureRef) (width, height uint32, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ref]
	return e.width, e.height, ok
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Bind binds the texture behind ref to a texture slot. An unknown ref logs a warning and binds nothing.
//
// Parameters:
//   - ref: the texture handle
//   - slot: the texture unit, 0 to the renderer's slot budget - 1
func (c *Cache) Bind(ref model.TextureRef, slot int) {
	c.mu.RLock()
	c.checkLive()
	e, ok := c.entries[ref]
	c.mu.RUnlock()
	if !ok {
		common.Logger().Warn("texture: bind of unknown texture", "ref", ref, "slot", slot)
		return
	}
	c.device.BindTexture(e.id, slot)
}

// Terminate releases every texture. Any later use of the cache panics. Terminate itself may be called again.
func (c *Cache) Terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return
	}
	for _, e := range c.entries {
		c.device.ReleaseTexture(e.id)
	}
	c.byKey = nil
	c.entries = nil
	c.terminated = true
}

// Downscale halves each dimension lod times with bilinear filtering, never going below 1 pixel.
// Level 0 returns staging unchanged.
//
// Parameters:
//   - staging: RGBA pixels
//   - lod: level of detail
//
// Returns:
//   - common.TextureStagingData: the scaled pixels
func Downscale(staging common.TextureStagingData, lod int) common.TextureStagingData {
	if lod <= 0 {
		return staging
	}
	w := max(int(staging.Width)>>lod, 1)
	h := max(int(staging.Height)>>lod, 1)
	if w == int(staging.Width) && h == int(staging.Height) {
		return staging
	}

	src := staging.Image()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return common.TextureStagingData{
		Pixels: dst.Pix,
		Width:  uint32(w),
		Height: uint32(h),
	}
}
