package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/node"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/texture"
)

// LoaderBackendType identifies the descriptor file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeYAML selects the YAML descriptor backend.
	BackendTypeYAML LoaderBackendType = iota
)

// ProgressFunc reports that done of total descriptors have finished loading.
type ProgressFunc func(done, total int)

// ShaderLookup resolves shader keys and checks mesh layouts against them. *shader.Cache implements it.
type ShaderLookup interface {
	Lookup(key string) (model.ShaderRef, bool)
	Accepts(ref model.ShaderRef, m model.BatchModel) error
}

// TextureStore deduplicates and uploads textures. *texture.Cache implements it.
type TextureStore interface {
	Lookup(key texture.Key) (model.TextureRef, bool)
	Upload(key texture.Key, staging common.TextureStagingData) (model.TextureRef, error)
	Size(ref model.TextureRef) (width, height uint32, ok bool)
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	shaders  ShaderLookup
	textures TextureStore

	cache map[string]model.Renderable

	backend loaderBackend
	workers int
	pool    worker.DynamicWorkerPool
	closed  bool
}

// Loader reads renderable descriptors from disk. Parsing and image decoding may run on worker
// goroutines; texture uploads always happen on the calling goroutine. A failed load returns an
// *Error and has no effect on anything already loaded or attached.
type Loader interface {
	// Load reads one descriptor and builds its renderable. Results are cached by path.
	//
	// Parameters:
	//   - path: the file path to the descriptor
	//
	// Returns:
	//   - model.Renderable: the renderable
	//   - error: an *Error if loading fails
	Load(path string) (model.Renderable, error)

	// LoadAll loads many descriptors, parsing and decoding them in parallel.
	// The result has one entry per path, in order; failed entries are zero Renderables and their
	// errors are joined into the returned error.
	//
	// Parameters:
	//   - paths: descriptor file paths
	//   - progress: called on the calling goroutine after each descriptor finishes, may be nil
	//
	// Returns:
	//   - []model.Renderable: the renderables in path order
	//   - error: the joined *Error values of every failed path, or nil
	LoadAll(paths []string, progress ProgressFunc) ([]model.Renderable, error)

	// Get retrieves a cached renderable by path.
	//
	// Parameters:
	//   - path: the descriptor path
	//
	// Returns:
	//   - model.Renderable: a copy of the cached renderable, safe to modify
	//   - bool: true if the path has been loaded
	Get(path string) (model.Renderable, bool)

	// Paths returns the loaded descriptor paths in sorted order.
	Paths() []string

	// Close stops the worker pool. Later loads fail.
	Close()
}

var _ Loader = &loader{}

// errClosed is wrapped by loads issued after Close.
var errClosed = errors.New("loader closed")

// NewLoader creates a new Loader with the specified backend type and options applied.
// A shader lookup and a texture store are required, usually through WithRenderer.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeYAML)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache:   make(map[string]model.Renderable),
		workers: max(runtime.NumCPU()-1, 1),
	}

	switch backendType {
	case BackendTypeYAML:
		fallthrough
	default:
		l.backend = newYAMLLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	if l.shaders == nil || l.textures == nil {
		panic("loader: a shader lookup and a texture store are required")
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	return l
}

// job is a descriptor that has been parsed and, if needed, had its image decoded.
type job struct {
	path    string
	desc    *Descriptor
	key     texture.Key
	staging *common.TextureStagingData
	cached  *model.Renderable
}

func (l *loader) Load(path string) (model.Renderable, error) {
	j, err := l.prepare(path)
	if err != nil {
		return model.Renderable{}, err
	}
	return l.finish(j)
}

func (l *loader) LoadAll(paths []string, progress ProgressFunc) ([]model.Renderable, error) {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()

	jobs := make([]*job, len(paths))
	errs := make([]error, len(paths))

	if closed {
		for i, path := range paths {
			errs[i] = newError(path, StatusUnreadable, errClosed)
		}
		return make([]model.Renderable, len(paths)), errors.Join(errs...)
	}

	// Workers write only their own index; wg.Wait orders those writes before the reads below.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				jobs[i], errs[i] = l.prepare(path)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	out := make([]model.Renderable, len(paths))
	for i := range paths {
		if errs[i] == nil {
			out[i], errs[i] = l.finish(jobs[i])
		}
		if errs[i] != nil {
			common.Logger().Warn("loader: descriptor failed", "path", paths[i], "error", errs[i])
		}
		if progress != nil {
			progress(i+1, len(paths))
		}
	}
	return out, errors.Join(errs...)
}

// prepare does everything that is safe off the calling goroutine: reading, parsing, validating
// and decoding the texture image when it is not already uploaded.
func (l *loader) prepare(path string) (*job, error) {
	l.mu.RLock()
	cached, ok := l.cache[path]
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return nil, newError(path, StatusUnreadable, errClosed)
	}
	if ok {
		return &job{path: path, cached: &cached}, nil
	}

	if !slices.Contains(l.backend.Extensions(), strings.ToLower(filepath.Ext(path))) {
		return nil, newError(path, StatusUnsupported, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(path, StatusUnreadable, err)
	}
	desc, err := l.backend.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, newError(path, StatusMalformed, err)
	}
	desc.normalize()
	if err := desc.validate(); err != nil {
		return nil, newError(path, StatusMalformed, err)
	}

	j := &job{path: path, desc: desc}
	if desc.Texture == nil {
		return j, nil
	}

	sampler, err := desc.Texture.Sampler.staging()
	if err != nil {
		return nil, newError(path, StatusMalformed, err)
	}
	texPath := desc.Texture.Path
	if !filepath.IsAbs(texPath) {
		texPath = filepath.Join(filepath.Dir(path), texPath)
	}
	j.key = texture.Key{Path: texPath, Sampler: sampler, LOD: desc.Texture.LOD}

	if _, ok := l.textures.Lookup(j.key); ok {
		return j, nil
	}
	staging, err := common.DecodeImageFile(texPath)
	if err != nil {
		return nil, newError(path, StatusTextureFailed, err)
	}
	j.staging = &staging
	return j, nil
}

// finish resolves handles, uploads the texture and builds the renderable. It runs on the calling goroutine.
func (l *loader) finish(j *job) (model.Renderable, error) {
	if j.cached != nil {
		return j.cached.Clone(), nil
	}
	desc := j.desc

	shaderRef, ok := l.shaders.Lookup(desc.Shader)
	if !ok {
		return model.Renderable{}, newError(j.path, StatusUnknownShader, fmt.Errorf("%w: %q", ErrUnknownShader, desc.Shader))
	}

	texRef := model.NoTexture
	if desc.Texture != nil {
		var err error
		if j.staging != nil {
			texRef, err = l.textures.Upload(j.key, *j.staging)
		} else if ref, found := l.textures.Lookup(j.key); found {
			texRef = ref
		} else {
			err = fmt.Errorf("texture %s evicted before upload", j.key.Path)
		}
		if err != nil {
			return model.Renderable{}, newError(j.path, StatusTextureFailed, err)
		}
	}

	r, err := l.build(desc, shaderRef, texRef)
	if err != nil {
		return model.Renderable{}, newError(j.path, StatusMalformed, err)
	}

	l.mu.Lock()
	l.cache[j.path] = r.Clone()
	l.mu.Unlock()
	common.Logger().Debug("loader: descriptor loaded", "path", j.path, "vertices", r.VertexCount(), "texture", texRef)
	return r, nil
}

func (l *loader) build(desc *Descriptor, shaderRef model.ShaderRef, texRef model.TextureRef) (model.Renderable, error) {
	if desc.Mesh != nil {
		m := model.NewBatchModel(shaderRef, desc.Mesh.Attributes...)
		if err := l.shaders.Accepts(shaderRef, m); err != nil {
			return model.Renderable{}, err
		}
		return model.NewRenderable(m, texRef, desc.Mesh.Vertices, desc.Mesh.Indices)
	}

	var width, height float32
	if len(desc.Size) == 2 {
		width, height = desc.Size[0], desc.Size[1]
	} else {
		w, h, ok := l.textures.Size(texRef)
		if !ok {
			return model.Renderable{}, errors.New("sprite size unknown")
		}
		width, height = float32(w), float32(h)
	}

	tint := node.Color{desc.Color[0], desc.Color[1], desc.Color[2], desc.Color[3]}
	uv := node.UVRect{U0: desc.UV[0], V0: desc.UV[1], U1: desc.UV[2], V1: desc.UV[3]}
	return node.SpriteRenderable(shaderRef, texRef, width, height, tint, uv)
}

func (l *loader) Get(path string) (model.Renderable, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.cache[path]
	if !ok {
		return model.Renderable{}, false
	}
	return r.Clone(), true
}

func (l *loader) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	paths := make([]string, 0, len(l.cache))
	for path := range l.cache {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
}
