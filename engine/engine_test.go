package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeWindow runs the update callback until closed, at most maxFrames times.
type fakeWindow struct {
	onUpdate  func()
	onResize  func(width, height int)
	running   bool
	closes    int
	maxFrames int
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) SetKeyDownCallback(func(keyCode uint32))            {}
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))              {}
func (w *fakeWindow) SetTitle(string)                                    {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor         { return nil }
func (w *fakeWindow) IsRunning() bool                                    { return w.running }
func (w *fakeWindow) Width() int                                         { return 640 }
func (w *fakeWindow) Height() int                                        { return 480 }

func (w *fakeWindow) Close() error {
	w.closes++
	w.running = false
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; w.running && i < w.maxFrames; i++ {
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) sleep(d time.Duration)   { c.slept = append(c.slept, d) }

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *fakeWindow, *gputest.Device, *fakeClock) {
	t.Helper()
	dev := gputest.NewDevice()
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, nil, renderer.WithDevice(dev))
	t.Cleanup(r.Release)

	w := &fakeWindow{running: true, maxFrames: 100}
	e := NewEngine(append([]EngineBuilderOption{WithWindow(w), WithRenderer(r)}, options...)...).(*engine)
	clock := &fakeClock{t: time.Unix(0, 0)}
	e.now = clock.now
	e.sleep = clock.sleep
	return e, w, dev, clock
}

func TestTicksAccumulate(t *testing.T) {
	e, _, dev, clock := newTestEngine(t, WithTickRate(10))

	var dts []float32
	e.SetTickCallback(func(dt float32) { dts = append(dts, dt) })

	e.frame()
	if len(dts) != 0 {
		t.Fatalf("first frame ran %d ticks, want 0", len(dts))
	}

	clock.advance(250 * time.Millisecond)
	e.frame()
	if len(dts) != 2 {
		t.Fatalf("after 250ms ran %d ticks, want 2", len(dts))
	}

	clock.advance(50 * time.Millisecond)
	e.frame()
	if len(dts) != 3 {
		t.Fatalf("carried debt ran %d ticks total, want 3", len(dts))
	}
	for _, dt := range dts {
		if dt < 0.0999 || dt > 0.1001 {
			t.Errorf("tick dt = %v, want 0.1", dt)
		}
	}
	if dev.Frames() != 3 || dev.Presents() != 3 {
		t.Errorf("frames/presents = %d/%d, want 3/3", dev.Frames(), dev.Presents())
	}
}

func TestTicksCapped(t *testing.T) {
	e, _, _, clock := newTestEngine(t, WithTickRate(10))

	ticks := 0
	e.SetTickCallback(func(float32) { ticks++ })

	e.frame()
	clock.advance(2 * time.Second)
	e.frame()
	if ticks != maxTicksPerFrame {
		t.Errorf("ticks = %d, want %d", ticks, maxTicksPerFrame)
	}

	clock.advance(100 * time.Millisecond)
	e.frame()
	if ticks != maxTicksPerFrame+1 {
		t.Errorf("debt should be dropped after a capped frame, ticks = %d", ticks)
	}
}

func TestRenderCallbackRunsBeforeDraw(t *testing.T) {
	e, _, dev, clock := newTestEngine(t)

	var framesSeen []int
	var dt float32
	e.SetRenderCallback(func(d float32) {
		framesSeen = append(framesSeen, dev.Frames())
		dt = d
	})

	e.frame()
	clock.advance(20 * time.Millisecond)
	e.frame()

	if len(framesSeen) != 2 || framesSeen[0] != 0 || framesSeen[1] != 1 {
		t.Errorf("render callback saw frames %v, want [0 1]", framesSeen)
	}
	if dt < 0.0199 || dt > 0.0201 {
		t.Errorf("frame dt = %v, want 0.02", dt)
	}
}

func TestFrameLimitSleeps(t *testing.T) {
	e, _, _, clock := newTestEngine(t, WithRenderFrameLimit(50))

	e.frame()
	if len(clock.slept) != 1 || clock.slept[0] != 20*time.Millisecond {
		t.Errorf("slept = %v, want [20ms]", clock.slept)
	}

	e.SetRenderFrameLimit(0)
	e.frame()
	if len(clock.slept) != 1 {
		t.Errorf("uncapped frame slept: %v", clock.slept)
	}
}

func TestRunAndQuit(t *testing.T) {
	e, w, dev, clock := newTestEngine(t)

	frames := 0
	e.SetRenderCallback(func(float32) {
		frames++
		clock.advance(time.Millisecond)
		if frames == 3 {
			e.Quit()
			e.Quit()
		}
	})
	e.Run()

	if dev.Frames() != 3 {
		t.Errorf("drawn frames = %d, want 3", dev.Frames())
	}
	if w.closes != 1 {
		t.Errorf("window closed %d times, want 1", w.closes)
	}
	if e.LastFrame().Skipped {
		t.Error("LastFrame() reports a skipped frame")
	}
}

func TestResizeForwarded(t *testing.T) {
	_, w, dev, _ := newTestEngine(t)

	w.onResize(800, 600)
	if width, height := dev.Size(); width != 800 || height != 600 {
		t.Errorf("device size = %dx%d, want 800x600", width, height)
	}
}

func TestRunRequiresRenderer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Run without a renderer did not panic")
		}
	}()
	NewEngine(WithWindow(&fakeWindow{})).Run()
}

func TestTickDuration(t *testing.T) {
	if got := tickDuration(0); got != time.Second/60 {
		t.Errorf("tickDuration(0) = %v, want 60Hz", got)
	}
	if got := tickDuration(144); got != time.Duration(float64(time.Second)/144) {
		t.Errorf("tickDuration(144) = %v", got)
	}
	if got := frameLimit(-1); got != 0 {
		t.Errorf("frameLimit(-1) = %v, want 0", got)
	}
}
