// package shader owns compiled shader modules. The Cache hands out model.ShaderRef handles that
// batch models carry, deduplicates registrations by key, and binds modules on the device at flush time.
package shader

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
)

var (
	// ErrEmptySource is returned when a shader is registered without source.
	ErrEmptySource = errors.New("shader: empty source")
	// ErrUnknownShader is returned for a handle the cache never issued.
	ErrUnknownShader = errors.New("shader: unknown shader")
)

type entry struct {
	key     string
	module  gpu.ShaderID
	reflect Reflection
}

// Cache maps shader keys to compiled modules. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	device     gpu.Device
	pp         PreProcessor
	byKey      map[string]model.ShaderRef
	entries    map[model.ShaderRef]entry
	next       model.ShaderRef
	terminated bool
}

// NewCache creates an empty cache compiling onto device. Sources are pre-processed with the
// given texture slot count.
//
// Parameters:
//   - device: the device modules are created on
//   - slots: the texture slot budget @oxy:textures expands to
//
// Returns:
//   - *Cache: the cache
func NewCache(device gpu.Device, slots int) *Cache {
	return &Cache{
		device:  device,
		pp:      NewPreProcessor(slots),
		byKey:   make(map[string]model.ShaderRef),
		entries: make(map[model.ShaderRef]entry),
	}
}

func (c *Cache) checkLive() {
	if c.terminated {
		panic("shader: cache used after Terminate")
	}
}

// Register compiles source under key. A key that is already registered returns its existing
// handle without recompiling.
//
// Parameters:
//   - key: unique shader key
//   - source: WGSL source, may contain @oxy: directives
//
// Returns:
//   - model.ShaderRef: the shader handle
//   - error: error if the source is empty, malformed, lacks vs_main or fs_main, or fails to compile
func (c *Cache) Register(key, source string) (model.ShaderRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLive()

	if ref, ok := c.byKey[key]; ok {
		return ref, nil
	}
	if source == "" {
		return model.NoShader, fmt.Errorf("%w: %s", ErrEmptySource, key)
	}
	processed, err := c.pp.Process(source)
	if err != nil {
		return model.NoShader, fmt.Errorf("shader: failed to pre-process %s: %w", key, err)
	}
	refl, err := Reflect(processed)
	if err != nil {
		return model.NoShader, fmt.Errorf("shader: %s: %w", key, err)
	}
	module, err := c.device.CreateShaderModule(key, processed)
	if err != nil {
		return model.NoShader, fmt.Errorf("shader: failed to compile %s: %w", key, err)
	}

	c.next++
	ref := c.next
	c.byKey[key] = ref
	c.entries[ref] = entry{key: key, module: module, reflect: refl}
	common.Logger().Info("shader registered", "key", key, "ref", ref, "inputs", len(refl.Inputs))
	return ref, nil
}

// RegisterFile reads WGSL source from path and registers it under key.
//
// Parameters:
//   - key: unique shader key
//   - path: file system path of the WGSL source
//
// Returns:
//   - model.ShaderRef: the shader handle
//   - error: error if the file cannot be read or the source fails to register
func (c *Cache) RegisterFile(key, path string) (model.ShaderRef, error) {
	if ref, ok := c.Lookup(key); ok {
		return ref, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.NoShader, fmt.Errorf("shader: failed to read source file %q: %w", path, err)
	}
	return c.Register(key, string(data))
}

// Lookup returns the handle registered under key.
func (c *Cache) Lookup(key string) (model.ShaderRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.checkLive()
	ref, ok := c.byKey[key]
	return ref, ok
}

// Key returns the key a handle was registered under.
func (c *Cache) Key(ref model.ShaderRef) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ref]
	return e.key, ok
}

// Reflection returns the entry points and vertex inputs of the shader behind ref.
func (c *Cache) Reflection(ref model.ShaderRef) (Reflection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ref]
	return e.reflect, ok
}

// Accepts reports whether m can feed the vertex inputs of the shader behind ref.
//
// Parameters:
//   - ref: the shader handle
//   - m: the batch model geometry will be written with
//
// Returns:
//   - error: ErrUnknownShader for an unregistered ref, an error wrapping ErrLayoutMismatch, or nil
func (c *Cache) Accepts(ref model.ShaderRef, m model.BatchModel) error {
	refl, ok := c.Reflection(ref)
	if !ok {
		return fmt.Errorf("%w: ref %d", ErrUnknownShader, ref)
	}
	return refl.Accepts(m)
}

// Keys returns every registered key in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bind selects the module behind ref on the device. An unknown ref logs a warning and binds nothing.
//
// Parameters:
//   - ref: the shader handle
func (c *Cache) Bind(ref model.ShaderRef) {
	c.mu.RLock()
	c.checkLive()
	e, ok := c.entries[ref]
	c.mu.RUnlock()
	if !ok {
		common.Logger().Warn("shader: bind of unknown shader", "ref", ref)
		return
	}
	c.device.UseShader(e.module)
}

// Unbind clears the device's shader selection.
func (c *Cache) Unbind() {
	c.mu.RLock()
	c.checkLive()
	c.mu.RUnlock()
	c.device.UseShader(0)
}

// Terminate releases every module. Any later use of the cache panics. Terminate itself may be called again.
func (c *Cache) Terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return
	}
	for _, e := range c.entries {
		c.device.ReleaseShader(e.module)
	}
	c.byKey = nil
	c.entries = nil
	c.terminated = true
}
