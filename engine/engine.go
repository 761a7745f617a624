package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/profiler"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
)

// maxTicksPerFrame bounds catch-up ticks after a long frame so a stall cannot snowball.
const maxTicksPerFrame = 5

// engine implements the Engine interface.
// Everything runs on the window's goroutine: ticks, the render callback, Draw and profiling.
type engine struct {
	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	now        func() time.Time
	sleep      func(time.Duration)
	lastFrame  time.Time
	lastTick   time.Time
	tickDebt   time.Duration
	lastStats  renderer.FrameStats
	started    bool
	quitting   bool
	quitOnce   sync.Once
	frameCount uint64
}

// Engine is the main entry point for the engine.
// It drives fixed-rate ticks and renderer draws from the window message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawn each frame.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for scene updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic and scene mutation: attach, detach, reorder and transforms.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each frame just before the renderer draws.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the frame delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// LastFrame returns the statistics of the most recent draw.
	LastFrame() renderer.FrameStats

	// Run starts the main engine loop (blocks until the window closes or Quit is called).
	Run()

	// Quit stops the loop at the next frame and closes the window.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A window and a renderer are required before Run.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler:       profiler.NewProfiler(time.Second),
		engineTickRate: time.Second / 60,
		now:            time.Now,
		sleep:          time.Sleep,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() {
	if e.window == nil || e.renderer == nil {
		panic("engine: Run needs a window and a renderer")
	}
	e.window.SetUpdateCallback(e.frame)
	common.Logger().Info("engine started", "tick_rate", e.engineTickRate, "frame_limit", e.renderFrameLimit)
	e.window.ProcessMessages()
	common.Logger().Info("engine stopped", "frames", e.frameCount)
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.quitting = true
	})
}

// frame is one iteration of the message loop: due ticks, the render callback, Draw, then profiling.
func (e *engine) frame() {
	if e.quitting {
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("engine: close window", "error", err)
		}
		return
	}

	now := e.now()
	if !e.started {
		e.started = true
		e.lastFrame = now
		e.lastTick = now
	}
	dt := now.Sub(e.lastFrame)
	e.lastFrame = now

	e.runTicks(now)

	if e.renderCallback != nil {
		e.renderCallback(float32(dt.Seconds()))
	}

	e.lastStats = e.renderer.Draw()
	e.frameCount++

	if e.profilingEnabled {
		e.profiler.Tick(e.lastStats.Stats)
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(now); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

// runTicks fires the tick callback once per elapsed tick period, at most maxTicksPerFrame times.
func (e *engine) runTicks(now time.Time) {
	e.tickDebt += now.Sub(e.lastTick)
	e.lastTick = now

	ticks := 0
	for e.tickDebt >= e.engineTickRate {
		e.tickDebt -= e.engineTickRate
		if ticks == maxTicksPerFrame {
			common.Logger().Debug("engine: dropping ticks", "behind", e.tickDebt+e.engineTickRate)
			e.tickDebt = 0
			break
		}
		ticks++
		if e.tickCallback != nil {
			e.tickCallback(float32(e.engineTickRate.Seconds()))
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.engineTickRate = tickDuration(fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameLimit(fps)
}

func (e *engine) LastFrame() renderer.FrameStats {
	return e.lastStats
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
