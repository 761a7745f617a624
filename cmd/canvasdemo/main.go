// Command canvasdemo loads YAML sprite descriptors and scatters them over two canvas layers.
//
// Keys: Space toggles the glow layer group, Up/Down moves the group between depths,
// R detaches or re-attaches the group, Escape quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine"
	"github.com/Carmen-Shannon/oxy2d/engine/canvas"
	"github.com/Carmen-Shannon/oxy2d/engine/config"
	"github.com/Carmen-Shannon/oxy2d/engine/loader"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/node"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
	"github.com/schollz/progressbar/v3"
)

type spinner struct {
	prim  *node.Primitive
	x, y  float32
	speed float32
}

func main() {
	configPath := flag.String("config", "", "TOML config file (defaults are used when empty)")
	spriteDir := flag.String("sprites", "cmd/canvasdemo/assets/sprites", "directory of YAML sprite descriptors")
	count := flag.Int("count", 2000, "number of sprites to scatter")
	writeConfig := flag.String("write-config", "", "write the default config to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.Write(*writeConfig, config.Default()); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	common.SetLogger(cfg.Logger(os.Stderr))

	// ── Engine + Window + Renderer ──────────────────────────────────
	win := window.NewWindow(cfg.WindowOptions()...)
	defer win.Close()
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win, cfg.RendererOptions()...)
	defer r.Release()

	eng := engine.NewEngine(append(cfg.EngineOptions(),
		engine.WithWindow(win),
		engine.WithRenderer(r),
	)...)

	for _, cc := range cfg.Canvases {
		r.AddCanvas(cc.Index, cfg.CanvasOptions(cc, win.Width(), win.Height())...)
	}
	indices := r.CanvasIndices()
	world := r.Canvas(indices[0])
	top := r.Canvas(indices[len(indices)-1])

	// ── Sprites ─────────────────────────────────────────────────────
	paths, err := filepath.Glob(filepath.Join(*spriteDir, "*.yaml"))
	if err != nil {
		log.Fatal(err)
	}
	if len(paths) == 0 {
		log.Fatalf("no sprite descriptors in %s", *spriteDir)
	}

	ld := loader.NewLoader(loader.BackendTypeYAML, loader.WithRenderer(r))
	defer ld.Close()

	bar := progressbar.Default(int64(len(paths)), "loading sprites")
	loaded, err := ld.LoadAll(paths, func(done, _ int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	renderables := slices.DeleteFunc(loaded, func(rd model.Renderable) bool {
		return rd.VertexCount() == 0
	})
	if len(renderables) == 0 {
		log.Fatal("no sprite descriptor loaded")
	}

	spinners := scatter(world, renderables, *count, win.Width(), win.Height())

	// A group of glow sprites sharing one depth on the top canvas.
	group := make([]*node.Primitive, 8)
	for i := range group {
		group[i] = node.NewPrimitive(renderables[i%len(renderables)],
			node.WithTransform(node.Translate(float32(80+i*40), 80)),
		)
	}
	glow := node.NewComposite(0, group...)
	glowRef := node.CompositeRef(glow)
	top.Attach(glowRef)

	// ── Input ───────────────────────────────────────────────────────
	glowVisible, glowAttached := true, true
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeySpace:
			glowVisible = !glowVisible
			glow.SetVisible(glowVisible)
		case common.KeyUp:
			top.SetDepth(glowRef, glowRef.Depth()+1)
		case common.KeyDown:
			top.SetDepth(glowRef, glowRef.Depth()-1)
		case common.KeyR:
			if glowAttached {
				top.Detach(glowRef)
			} else {
				top.Attach(glowRef)
			}
			glowAttached = !glowAttached
		}
	})

	// ── Loop ────────────────────────────────────────────────────────
	var elapsed float32
	eng.SetTickCallback(func(dt float32) {
		elapsed += dt
		for _, s := range spinners {
			s.prim.SetTransform(node.Transform{
				X:        s.x,
				Y:        s.y,
				Rotation: elapsed * s.speed,
				ScaleX:   1,
				ScaleY:   1,
			})
		}
		// the composite owns copies, so pulse those rather than the originals
		for i := range glow.Len() {
			pulse := 0.5 + 0.5*float32(math.Sin(float64(elapsed*3+float32(i))))
			glow.At(i).SetColor(1, pulse, 1-pulse, 1)
		}
	})

	width, height := win.Width(), win.Height()
	frames := 0
	eng.SetRenderCallback(func(float32) {
		if win.Width() != width || win.Height() != height {
			width, height = win.Width(), win.Height()
			for _, cc := range cfg.Canvases {
				if cc.Projection == [4]float32{} {
					r.Canvas(cc.Index).SetProjection(0, float32(width), 0, float32(height))
				}
			}
		}
		frames++
		if frames%120 == 0 {
			s := eng.LastFrame()
			win.SetTitle(fmt.Sprintf("%s | %d sprites | %d draws", cfg.Window.Title, s.Primitives, s.Draws))
		}
	})

	eng.Run()
}

// scatter attaches count primitives at random positions and depths and returns them for animation.
func scatter(c canvas.Canvas, renderables []model.Renderable, count, width, height int) []spinner {
	spinners := make([]spinner, 0, count)
	for i := range count {
		x := rand.Float32() * float32(width)
		y := rand.Float32() * float32(height)
		p := node.NewPrimitive(renderables[i%len(renderables)],
			node.WithDepth(rand.IntN(16)),
			node.WithTransform(node.Translate(x, y)),
		)
		c.Attach(node.PrimitiveRef(p))
		spinners = append(spinners, spinner{prim: p, x: x, y: y, speed: rand.Float32()*4 - 2})
	}
	return spinners
}
