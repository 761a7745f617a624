package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/oxy2d/engine"
	"github.com/Carmen-Shannon/oxy2d/engine/canvas"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
)

// Config is the TOML-backed configuration of a canvas application.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   EngineConfig   `toml:"engine"`
	Log      LogConfig      `toml:"log"`
	Canvases []CanvasConfig `toml:"canvas"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	MinWidth  int    `toml:"min_width"`
	MinHeight int    `toml:"min_height"`
	MaxWidth  int    `toml:"max_width"`
	MaxHeight int    `toml:"max_height"`
	Resizable bool   `toml:"resizable"`
}

// RendererConfig configures the GPU backend.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the sample count: 1, 4, 8 or 16.
	MSAA             int        `toml:"msaa"`
	MaxTextureSlots  int        `toml:"max_texture_slots"`
	SoftwareRenderer bool       `toml:"software_renderer"`
	ClearColor       [4]float64 `toml:"clear_color"`
}

// EngineConfig configures the main loop.
type EngineConfig struct {
	TickRate   float64 `toml:"tick_rate"`
	FrameLimit float64 `toml:"frame_limit"`
	Profiling  bool    `toml:"profiling"`
	// ProfileInterval is a time.ParseDuration string.
	ProfileInterval string `toml:"profile_interval"`
}

// LogConfig configures the engine logger.
type LogConfig struct {
	// Level is "off", "debug", "info", "warn" or "error".
	Level string `toml:"level"`
}

// CanvasConfig configures one canvas layer.
type CanvasConfig struct {
	Index int    `toml:"index"`
	Label string `toml:"label"`
	// Blend is "alpha", "additive" or "opaque".
	Blend string `toml:"blend"`
	// Projection is left, right, bottom, top in canvas units. All zero maps one unit to one pixel
	// with the origin at the bottom-left of the window.
	Projection [4]float32 `toml:"projection"`
	VertexPool int        `toml:"vertex_pool"`
	IndexPool  int        `toml:"index_pool"`
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Default returns the configuration used when no file is given: one pixel-space alpha-blended canvas at index 0.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy2d",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 240,
			Resizable: true,
		},
		Renderer: RendererConfig{
			PresentMode:     "vsync",
			MSAA:            1,
			MaxTextureSlots: renderer.DefaultMaxTextureSlots,
			ClearColor:      [4]float64{0, 0, 0, 1},
		},
		Engine: EngineConfig{
			TickRate:        60,
			ProfileInterval: "1s",
		},
		Log: LogConfig{Level: "info"},
		Canvases: []CanvasConfig{
			{Index: 0, Label: "main", Blend: "alpha"},
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Keys that match no field are rejected.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, is not valid TOML, or fails validation
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads TOML from r over the defaults and validates the result.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the decoded configuration
//   - error: error if the data is not valid TOML or fails validation
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	// A file that lists canvases replaces the default canvas rather than appending to it.
	cfg.Canvases = nil

	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if len(cfg.Canvases) == 0 {
		cfg.Canvases = Default().Canvases
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML to path.
//
// Parameters:
//   - path: the file path
//   - cfg: the configuration to write
//
// Returns:
//   - error: error if encoding or writing fails
func Write(path string, cfg Config) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks every value that would otherwise fail later when building the window,
// renderer or canvases.
//
// Returns:
//   - error: an error wrapping ErrInvalid, or nil
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		invalid("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, err := c.presentMode(); err != nil {
		invalid("%v", err)
	}
	switch renderer.MSAASampleCount(c.Renderer.MSAA) {
	case renderer.MSAAOff, renderer.MSAA4x, renderer.MSAA8x, renderer.MSAA16x:
	default:
		invalid("msaa %d must be 1, 4, 8 or 16", c.Renderer.MSAA)
	}
	if c.Renderer.MaxTextureSlots < 1 || c.Renderer.MaxTextureSlots > renderer.MaxTextureSlotsLimit {
		invalid("max_texture_slots %d must be in [1, %d]", c.Renderer.MaxTextureSlots, renderer.MaxTextureSlotsLimit)
	}
	if c.Engine.TickRate < 0 || c.Engine.FrameLimit < 0 {
		invalid("tick_rate and frame_limit must not be negative")
	}
	if _, err := c.profileInterval(); err != nil {
		invalid("profile_interval: %v", err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		invalid("%v", err)
	}

	seen := make(map[int]bool, len(c.Canvases))
	for _, cc := range c.Canvases {
		if seen[cc.Index] {
			invalid("canvas index %d is duplicated", cc.Index)
		}
		seen[cc.Index] = true
		if _, err := parseBlend(cc.Blend); err != nil {
			invalid("canvas %d: %v", cc.Index, err)
		}
		if cc.VertexPool < 0 || cc.IndexPool < 0 {
			invalid("canvas %d: pool capacities must not be negative", cc.Index)
		}
		p := cc.Projection
		if p != [4]float32{} && (p[0] == p[1] || p[2] == p[3]) {
			invalid("canvas %d: projection %v has zero extent", cc.Index, p)
		}
	}
	return errors.Join(errs...)
}

// WindowOptions translates the window section into window options.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	w := c.Window
	return []window.WindowBuilderOption{
		window.WithTitle(w.Title),
		window.WithSize(w.Width, w.Height),
		window.WithMinSize(w.MinWidth, w.MinHeight),
		window.WithMaxSize(w.MaxWidth, w.MaxHeight),
		window.WithResizable(w.Resizable),
	}
}

// RendererOptions translates the renderer section into renderer options. The config must be valid.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	r := c.Renderer
	mode, _ := c.presentMode()
	opts := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(r.MSAA)),
		renderer.WithMaxTextureSlots(r.MaxTextureSlots),
		renderer.WithClearColor(r.ClearColor[0], r.ClearColor[1], r.ClearColor[2], r.ClearColor[3]),
	}
	if r.SoftwareRenderer {
		opts = append(opts, renderer.WithForceSoftwareRenderer())
	}
	return opts
}

// EngineOptions translates the engine section into engine options. The config must be valid.
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	interval, _ := c.profileInterval()
	return []engine.EngineBuilderOption{
		engine.WithTickRate(c.Engine.TickRate),
		engine.WithRenderFrameLimit(c.Engine.FrameLimit),
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithProfileInterval(interval),
	}
}

// CanvasOptions translates one canvas section into canvas options. The config must be valid.
//
// Parameters:
//   - cc: the canvas section
//   - width, height: the framebuffer size used for pixel projections
//
// Returns:
//   - []canvas.CanvasBuilderOption: the options to pass to Renderer.AddCanvas
func (c Config) CanvasOptions(cc CanvasConfig, width, height int) []canvas.CanvasBuilderOption {
	blend, _ := parseBlend(cc.Blend)
	opts := []canvas.CanvasBuilderOption{
		canvas.WithBlend(blend.Enabled, blend.Src, blend.Dst),
	}
	if cc.Label != "" {
		opts = append(opts, canvas.WithLabel(cc.Label))
	}
	if p := cc.Projection; p != [4]float32{} {
		opts = append(opts, canvas.WithProjection(p[0], p[1], p[2], p[3]))
	} else {
		opts = append(opts, canvas.WithProjection(0, float32(width), 0, float32(height)))
	}
	if cc.VertexPool > 0 {
		opts = append(opts, canvas.WithVertexPoolCapacity(cc.VertexPool))
	}
	if cc.IndexPool > 0 {
		opts = append(opts, canvas.WithIndexPoolCapacity(cc.IndexPool))
	}
	return opts
}

// Logger builds a text logger on w at the configured level, or nil when logging is off.
// Pass the result to common.SetLogger.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: the logger, nil for level "off"
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil || level == levelOff {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c Config) presentMode() (renderer.PresentMode, error) {
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "", "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("present_mode %q must be vsync or uncapped", c.Renderer.PresentMode)
	}
}

func (c Config) profileInterval() (time.Duration, error) {
	if c.Engine.ProfileInterval == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.Engine.ProfileInterval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", d)
	}
	return d, nil
}

func parseBlend(name string) (gpu.BlendState, error) {
	switch strings.ToLower(name) {
	case "", "alpha":
		return gpu.AlphaBlend, nil
	case "additive":
		return gpu.AdditiveBlend, nil
	case "opaque":
		return gpu.Opaque, nil
	default:
		return gpu.BlendState{}, fmt.Errorf("blend %q must be alpha, additive or opaque", name)
	}
}

const levelOff = slog.Level(100)

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "off":
		return levelOff, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log level %q must be off, debug, info, warn or error", name)
	}
}
