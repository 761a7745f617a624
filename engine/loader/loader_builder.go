package loader

import (
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRenderer is an option builder that resolves shaders and uploads textures through the
// renderer's caches.
//
// Parameters:
//   - r: the renderer instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.shaders = r.Shaders()
		l.textures = r.Textures()
	}
}

// WithShaders sets the shader lookup directly.
func WithShaders(s ShaderLookup) LoaderBuilderOption {
	return func(l *loader) {
		l.shaders = s
	}
}

// WithTextures sets the texture store directly.
func WithTextures(t TextureStore) LoaderBuilderOption {
	return func(l *loader) {
		l.textures = t
	}
}

// WithWorkers sets the number of goroutines LoadAll parses and decodes on. Values below 1 use 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithRenderable is an option builder that pre-populates the cache with a renderable.
//
// Parameters:
//   - path: the cache key for the renderable
//   - r: the renderable to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderable option to a loader
func WithRenderable(path string, r model.Renderable) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[path] = r.Clone()
	}
}
