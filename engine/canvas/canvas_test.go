package canvas

import (
	"reflect"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/node"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/texture"
)

const quadFloats = 4 * 9

type fixture struct {
	dev      *gputest.Device
	shaders  *shader.Cache
	textures *texture.Cache
	layouts  *gpu.LayoutRegistry
	spriteA  model.ShaderRef
	spriteB  model.ShaderRef
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gputest.NewDevice()
	f := &fixture{
		dev:      dev,
		shaders:  shader.NewCache(dev, 4),
		textures: texture.NewCache(dev),
		layouts:  gpu.NewLayoutRegistry(dev),
	}
	var err error
	if f.spriteA, err = f.shaders.Register("sprite-a", shader.SpriteTemplate()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if f.spriteB, err = f.shaders.Register("sprite-b", shader.SpriteTemplate()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return f
}

func (f *fixture) canvas(slots int, options ...CanvasBuilderOption) Canvas {
	return NewCanvas(Context{
		Device:          f.dev,
		Shaders:         f.shaders,
		Textures:        f.textures,
		Layouts:         f.layouts,
		MaxTextureSlots: slots,
	}, options...)
}

func (f *fixture) texture(t *testing.T, name string) model.TextureRef {
	t.Helper()
	ref, err := f.textures.Upload(texture.Key{Path: name}, common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	return ref
}

// textureName maps a recorded device texture back to the path it was uploaded under.
func (f *fixture) textureName(id gpu.TextureID) string {
	tex, ok := f.dev.Texture(id)
	if !ok {
		return ""
	}
	return tex.Label
}

func sprite(t *testing.T, shaderRef model.ShaderRef, tex model.TextureRef, x float32, depth int) *node.Primitive {
	t.Helper()
	p, err := node.NewSprite(shaderRef, tex, 2, 2, node.WithDepth(depth), node.WithTransform(node.Translate(x, 0)))
	if err != nil {
		t.Fatalf("NewSprite() error = %v", err)
	}
	return p
}

// quadXs returns the x of the first vertex of every quad in a draw, which is the sprite x - 1.
func quadXs(d gputest.Draw) []float32 {
	var xs []float32
	for i := 0; i+quadFloats <= len(d.Vertices); i += quadFloats {
		xs = append(xs, d.Vertices[i]+1)
	}
	return xs
}

// texIndices returns the texture index stamped into the first vertex of every quad in a draw.
func texIndices(d gputest.Draw) []float32 {
	var idx []float32
	for i := 0; i+quadFloats <= len(d.Vertices); i += quadFloats {
		idx = append(idx, d.Vertices[i+8])
	}
	return idx
}

func attach(t *testing.T, c Canvas, prims ...*node.Primitive) {
	t.Helper()
	for _, p := range prims {
		if !c.Attach(node.PrimitiveRef(p)) {
			t.Fatalf("Attach() = false")
		}
	}
}

func TestDrawDepthOrdering(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	attach(t, c,
		sprite(t, f.spriteA, model.NoTexture, 20, 2),
		sprite(t, f.spriteA, model.NoTexture, 0, 0),
		sprite(t, f.spriteA, model.NoTexture, 10, 1),
		sprite(t, f.spriteA, model.NoTexture, 11, 1),
		sprite(t, f.spriteA, model.NoTexture, -5, -3),
	)

	stats := c.Draw()
	draws := f.dev.Draws()
	if len(draws) != 1 || stats.Draws != 1 {
		t.Fatalf("draws = %d, stats.Draws = %d, want 1", len(draws), stats.Draws)
	}
	want := []float32{-5, 0, 10, 11, 20}
	if got := quadXs(draws[0]); !reflect.DeepEqual(got, want) {
		t.Errorf("quad order = %v, want %v", got, want)
	}
	if got := c.Depths(); !reflect.DeepEqual(got, []int{-3, 0, 1, 2}) {
		t.Errorf("Depths() = %v, want [-3 0 1 2]", got)
	}
}

func TestDrawModelBoundaryFlushes(t *testing.T) {
	tests := []struct {
		name        string
		shaders     []int
		wantDraws   int
		wantChanges int
	}{
		{"single model", []int{0, 0, 0}, 1, 0},
		{"one transition", []int{0, 0, 1, 1}, 2, 1},
		{"alternating", []int{0, 1, 0, 1}, 4, 3},
		{"return to first", []int{0, 0, 1, 1, 0}, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			refs := []model.ShaderRef{f.spriteA, f.spriteB}
			c := f.canvas(4)
			for i, s := range tt.shaders {
				attach(t, c, sprite(t, refs[s], model.NoTexture, float32(i), i))
			}
			stats := c.Draw()
			if stats.Draws != tt.wantDraws || len(f.dev.Draws()) != tt.wantDraws {
				t.Errorf("draws = %d, want %d", stats.Draws, tt.wantDraws)
			}
			if got := stats.Flushes[FlushModelChange]; got != tt.wantChanges {
				t.Errorf("model change flushes = %d, want %d", got, tt.wantChanges)
			}
			if got := stats.Flushes[FlushEndOfFrame]; got != 1 {
				t.Errorf("end of frame flushes = %d, want 1", got)
			}
		})
	}
}

func TestDrawRebasesIndices(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	attach(t, c,
		sprite(t, f.spriteA, model.NoTexture, 0, 0),
		sprite(t, f.spriteA, model.NoTexture, 1, 0),
		sprite(t, f.spriteA, model.NoTexture, 2, 0),
	)
	c.Draw()

	want := []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4, 8, 9, 10, 10, 11, 8}
	if got := f.dev.Draws()[0].Indices; !reflect.DeepEqual(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
}

func TestDrawRespectsPoolCapacity(t *testing.T) {
	tests := []struct {
		name      string
		options   []CanvasBuilderOption
		quads     int
		wantSizes []int
	}{
		{"vertex pool of two quads", []CanvasBuilderOption{WithVertexPoolCapacity(2 * quadFloats)}, 5, []int{2, 2, 1}},
		{"index pool of one quad", []CanvasBuilderOption{WithIndexPoolCapacity(6)}, 3, []int{1, 1, 1}},
		{"vertex pool with slack", []CanvasBuilderOption{WithVertexPoolCapacity(3*quadFloats - 1)}, 4, []int{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c := f.canvas(4, tt.options...)
			for i := 0; i < tt.quads; i++ {
				attach(t, c, sprite(t, f.spriteA, model.NoTexture, float32(i), 0))
			}
			stats := c.Draw()

			var sizes []int
			for _, d := range f.dev.Draws() {
				if len(d.Vertices) > c.VertexPoolCapacity() || len(d.Indices) > c.IndexPoolCapacity() {
					t.Errorf("draw of %d floats / %d indices exceeds pools %d / %d",
						len(d.Vertices), len(d.Indices), c.VertexPoolCapacity(), c.IndexPoolCapacity())
				}
				sizes = append(sizes, len(d.Indices)/6)
			}
			if !reflect.DeepEqual(sizes, tt.wantSizes) {
				t.Errorf("quads per draw = %v, want %v", sizes, tt.wantSizes)
			}
			if got := stats.Flushes[FlushPoolExhausted]; got != len(tt.wantSizes)-1 {
				t.Errorf("pool flushes = %d, want %d", got, len(tt.wantSizes)-1)
			}
			if stats.Primitives != tt.quads {
				t.Errorf("Primitives = %d, want %d", stats.Primitives, tt.quads)
			}
		})
	}
}

func TestDrawSkipsOversizedPrimitive(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4, WithVertexPoolCapacity(quadFloats-1))
	attach(t, c, sprite(t, f.spriteA, model.NoTexture, 0, 0))

	stats := c.Draw()
	if stats.Skipped != 1 || stats.Draws != 0 {
		t.Errorf("Skipped = %d, Draws = %d, want 1, 0", stats.Skipped, stats.Draws)
	}
}

func TestDrawTextureSlotBound(t *testing.T) {
	f := newFixture(t)
	t1, t2, t3 := f.texture(t, "t1"), f.texture(t, "t2"), f.texture(t, "t3")
	c := f.canvas(2)
	attach(t, c,
		sprite(t, f.spriteA, t1, 0, 0),
		sprite(t, f.spriteA, t2, 1, 0),
		sprite(t, f.spriteA, t1, 2, 0),
		sprite(t, f.spriteA, t3, 3, 0),
	)

	stats := c.Draw()
	draws := f.dev.Draws()
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(draws))
	}
	if got := stats.Flushes[FlushTextureSlots]; got != 1 {
		t.Errorf("texture slot flushes = %d, want 1", got)
	}
	for i, d := range draws {
		if len(d.Textures) > 2 {
			t.Errorf("draw %d bound %d textures, want at most 2", i, len(d.Textures))
		}
	}
	if got := texIndices(draws[0]); !reflect.DeepEqual(got, []float32{0, 1, 0}) {
		t.Errorf("first draw texture indices = %v, want [0 1 0]", got)
	}
	if f.textureName(draws[0].Textures[0]) != "t1" || f.textureName(draws[0].Textures[1]) != "t2" {
		t.Errorf("first draw slots = %v, want t1, t2", draws[0].Textures)
	}
	if got := texIndices(draws[1]); !reflect.DeepEqual(got, []float32{0}) {
		t.Errorf("second draw texture indices = %v, want [0]", got)
	}
	if f.textureName(draws[1].Textures[0]) != "t3" {
		t.Errorf("second draw slot 0 = %q, want t3", f.textureName(draws[1].Textures[0]))
	}
}

func TestDrawTextureThenOtherWithSingleSlot(t *testing.T) {
	f := newFixture(t)
	tt, u := f.texture(t, "T"), f.texture(t, "U")
	c := f.canvas(1)
	attach(t, c, sprite(t, f.spriteA, tt, 0, 0), sprite(t, f.spriteA, u, 1, 0))

	stats := c.Draw()
	draws := f.dev.Draws()
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(draws))
	}
	if stats.Flushes[FlushTextureSlots] != 1 || stats.Flushes[FlushEndOfFrame] != 1 {
		t.Errorf("flushes = %v, want one texture slot flush and one end of frame flush", stats.Flushes)
	}
	if f.textureName(draws[0].Textures[0]) != "T" {
		t.Errorf("first draw slot 0 = %q, want T", f.textureName(draws[0].Textures[0]))
	}
	if f.textureName(draws[1].Textures[0]) != "U" {
		t.Errorf("second draw slot 0 = %q, want U", f.textureName(draws[1].Textures[0]))
	}
}

func TestDrawUntexturedAndNoSlots(t *testing.T) {
	tests := []struct {
		name  string
		slots int
		tex   bool
	}{
		{"untextured", 4, false},
		{"zero slot budget", 0, true},
		{"negative slot budget", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tex := model.NoTexture
			if tt.tex {
				tex = f.texture(t, "t")
			}
			c := f.canvas(tt.slots)
			attach(t, c, sprite(t, f.spriteA, tex, 0, 0), sprite(t, f.spriteA, tex, 1, 0))

			stats := c.Draw()
			draws := f.dev.Draws()
			if len(draws) != 1 || stats.Draws != 1 {
				t.Fatalf("draws = %d, want 1", len(draws))
			}
			if got := texIndices(draws[0]); !reflect.DeepEqual(got, []float32{-1, -1}) {
				t.Errorf("texture indices = %v, want [-1 -1]", got)
			}
			if len(draws[0].Textures) != 0 {
				t.Errorf("bound textures = %v, want none", draws[0].Textures)
			}
		})
	}
}

func TestDrawSameModelAcrossDepthsIsOneFlush(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	attach(t, c,
		sprite(t, f.spriteA, model.NoTexture, 0, 0),
		sprite(t, f.spriteA, model.NoTexture, 1, 0),
		sprite(t, f.spriteA, model.NoTexture, 2, 1),
	)

	stats := c.Draw()
	if stats.Draws != 1 {
		t.Errorf("Draws = %d, want 1", stats.Draws)
	}
	want := [NumFlushReasons]int{FlushEndOfFrame: 1}
	if stats.Flushes != want {
		t.Errorf("Flushes = %v, want %v", stats.Flushes, want)
	}
}

func TestDrawHiddenAndEmpty(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	if stats := c.Draw(); stats.Draws != 0 {
		t.Errorf("empty canvas Draws = %d, want 0", stats.Draws)
	}

	p := sprite(t, f.spriteA, model.NoTexture, 0, 0)
	p.SetVisible(false)
	attach(t, c, p)
	stats := c.Draw()
	if stats.Draws != 0 || stats.Hidden != 1 {
		t.Errorf("Draws = %d, Hidden = %d, want 0, 1", stats.Draws, stats.Hidden)
	}
	if len(f.dev.Draws()) != 0 {
		t.Errorf("device draws = %d, want 0", len(f.dev.Draws()))
	}
	if c.Stats() != stats {
		t.Errorf("Stats() = %+v, want %+v", c.Stats(), stats)
	}
}

func TestDrawComposite(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	comp := node.NewComposite(1,
		sprite(t, f.spriteA, model.NoTexture, 5, 99),
		sprite(t, f.spriteA, model.NoTexture, 6, -99),
	)
	attach(t, c, sprite(t, f.spriteA, model.NoTexture, 7, 2))
	if !c.Attach(node.CompositeRef(comp)) {
		t.Fatal("Attach(composite) = false")
	}
	c.Draw()

	want := []float32{5, 6, 7}
	if got := quadXs(f.dev.Draws()[0]); !reflect.DeepEqual(got, want) {
		t.Errorf("quad order = %v, want %v", got, want)
	}
}

func TestDrawBindsCanvasState(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4, WithBlend(true, gpu.BlendSrcAlpha, gpu.BlendOne), WithProjection(0, 100, 0, 50))
	attach(t, c, sprite(t, f.spriteA, model.NoTexture, 0, 0))
	c.Draw()

	d := f.dev.Draws()[0]
	if d.Blend != gpu.AdditiveBlend {
		t.Errorf("blend = %+v, want %+v", d.Blend, gpu.AdditiveBlend)
	}
	if d.Uniform == 0 {
		t.Fatal("no projection uniform bound")
	}
	if d.Shader == 0 || d.Layout == 0 {
		t.Errorf("shader = %d, layout = %d, want both bound", d.Shader, d.Layout)
	}
	if d.Model != model.SpriteModel(f.spriteA) {
		t.Errorf("layout model = %+v, want sprite model", d.Model)
	}
	if got := len(f.dev.BufferBytes(d.Uniform)); got != 64 {
		t.Errorf("projection buffer size = %d, want 64", got)
	}
}

func TestDrawRegistersLayoutOncePerModel(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	for i := 0; i < 4; i++ {
		s := f.spriteA
		if i%2 == 1 {
			s = f.spriteB
		}
		attach(t, c, sprite(t, s, model.NoTexture, float32(i), i))
	}
	c.Draw()
	c.Draw()
	if got := f.dev.LayoutCreates(); got != 2 {
		t.Errorf("layouts created = %d, want 2", got)
	}
}

func TestAttachDetach(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	a := sprite(t, f.spriteA, model.NoTexture, 0, 3)
	b := sprite(t, f.spriteA, model.NoTexture, 0, 3)

	if !c.Attach(node.PrimitiveRef(a)) || !c.Attach(node.PrimitiveRef(b)) {
		t.Fatal("Attach() = false")
	}
	if c.Attach(node.PrimitiveRef(a)) {
		t.Error("second Attach() of the same node = true")
	}
	if c.Attach(node.Ref{}) {
		t.Error("Attach(zero Ref) = true")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	if !c.Detach(node.PrimitiveRef(a)) {
		t.Fatal("Detach() = false")
	}
	if c.Detach(node.PrimitiveRef(a)) {
		t.Error("second Detach() = true")
	}
	if got := c.Refs(3); !slices.Equal(got, []node.Ref{node.PrimitiveRef(b)}) {
		t.Errorf("Refs(3) = %v, want [b]", got)
	}

	if !c.Detach(node.PrimitiveRef(b)) {
		t.Fatal("Detach() = false")
	}
	if len(c.Depths()) != 0 {
		t.Errorf("Depths() = %v, want empty after last detach", c.Depths())
	}
	if c.Detach(node.PrimitiveRef(b)) {
		t.Error("Detach() from a removed bucket = true")
	}
}

func TestSetDepthRoundTrip(t *testing.T) {
	f := newFixture(t)
	c := f.canvas(4)
	a := sprite(t, f.spriteA, model.NoTexture, 0, 0)
	b := sprite(t, f.spriteA, model.NoTexture, 1, 0)
	attach(t, c, a, b)
	ref := node.PrimitiveRef(a)

	if !c.SetDepth(ref, 5) {
		t.Fatal("SetDepth() = false")
	}
	if a.Depth() != 5 || !reflect.DeepEqual(c.Depths(), []int{0, 5}) {
		t.Errorf("after SetDepth(5): depth = %d, Depths() = %v", a.Depth(), c.Depths())
	}
	if !c.SetDepth(ref, 0) {
		t.Fatal("SetDepth() back = false")
	}
	if c.Len() != 2 || !reflect.DeepEqual(c.Depths(), []int{0}) {
		t.Errorf("after round trip: Len() = %d, Depths() = %v", c.Len(), c.Depths())
	}
	// re-attached nodes go to the end of their bucket
	want := []node.Ref{node.PrimitiveRef(b), ref}
	if got := c.Refs(0); !slices.Equal(got, want) {
		t.Errorf("Refs(0) order changed unexpectedly")
	}

	loose := sprite(t, f.spriteA, model.NoTexture, 0, 7)
	if c.SetDepth(node.PrimitiveRef(loose), 1) {
		t.Error("SetDepth() of an unattached node = true")
	}
	if loose.Depth() != 7 {
		t.Errorf("unattached depth = %d, want unchanged 7", loose.Depth())
	}
}

func TestRelease(t *testing.T) {
	f := newFixture(t)
	before := f.dev.LiveBuffers()
	c := f.canvas(4)
	if got := f.dev.LiveBuffers() - before; got != 3 {
		t.Errorf("canvas created %d buffers, want 3", got)
	}
	c.Release()
	c.Release()
	if got := f.dev.LiveBuffers(); got != before {
		t.Errorf("live buffers after Release = %d, want %d", got, before)
	}
	defer func() {
		if recover() == nil {
			t.Error("Draw() after Release did not panic")
		}
	}()
	c.Draw()
}

func TestNewCanvasPanicsOnBufferFailure(t *testing.T) {
	f := newFixture(t)
	f.dev.FailCreateBuffer = gpu.ErrReleased
	defer func() {
		if recover() == nil {
			t.Error("NewCanvas() with a failing device did not panic")
		}
	}()
	f.canvas(4)
}

func TestStatsAdd(t *testing.T) {
	var total Stats
	total.Add(Stats{Draws: 2, Primitives: 3, Flushes: [NumFlushReasons]int{FlushModelChange: 1, FlushEndOfFrame: 1}})
	total.Add(Stats{Draws: 1, Skipped: 1, Flushes: [NumFlushReasons]int{FlushEndOfFrame: 1}})
	if total.Draws != 3 || total.Primitives != 3 || total.Skipped != 1 {
		t.Errorf("Add() = %+v", total)
	}
	if total.Flushes[FlushEndOfFrame] != 2 || total.Flushes[FlushModelChange] != 1 {
		t.Errorf("Add() flushes = %v", total.Flushes)
	}
}
