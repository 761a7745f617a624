package renderer

import (
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithDevice supplies the device directly instead of creating a backend on a surface.
// Used by headless tools and tests.
//
// Parameters:
//   - device: the device to draw through
//
// Returns:
//   - RendererBuilderOption: a function that applies the device option to a renderer
func WithDevice(device gpu.Device) RendererBuilderOption {
	return func(r *renderer) {
		r.device = device
	}
}

// WithMaxTextureSlots sets the texture unit budget shared by every canvas. Values are clamped
// to [1, MaxTextureSlotsLimit], matching the slot bindings the GPU backend declares.
//
// Parameters:
//   - slots: the number of texture units a batch may bind
//
// Returns:
//   - RendererBuilderOption: a function that applies the slot budget to a renderer
func WithMaxTextureSlots(slots int) RendererBuilderOption {
	return func(r *renderer) {
		r.maxTextureSlots = max(1, min(slots, MaxTextureSlotsLimit))
	}
}

// WithPresentMode sets the initial presentation mode for the renderer's surface.
// The mode is applied after the backend is created, before the surface is first presented.
//
// Parameters:
//   - mode: the PresentMode to use (PresentModeVSync or PresentModeUncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// Defaults to MSAAOff when not specified.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces the use of a software (fallback) GPU adapter
// instead of a hardware GPU. Useful for headless environments, CI pipelines,
// or systems without a compatible GPU. Performance will be significantly lower.
//
// Returns:
//   - RendererBuilderOption: a function that enables the fallback adapter option
func WithForceSoftwareRenderer() RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = true
	}
}

// WithClearColor sets the color the frame is cleared to before the first canvas draws.
//
// Parameters:
//   - red, green, blue, alpha: color components in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color to a renderer
func WithClearColor(red, green, blue, alpha float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = wgpu.Color{R: red, G: green, B: blue, A: alpha}
	}
}
