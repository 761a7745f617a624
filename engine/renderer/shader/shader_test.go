package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/model"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
)

func TestRegisterDeduplicatesByKey(t *testing.T) {
	dev := gputest.NewDevice()
	c := NewCache(dev, 2)

	a, err := c.Register("sprite", SpriteTemplate())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	b, err := c.Register("sprite", "ignored")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if a != b {
		t.Errorf("Register() returned %d then %d for the same key", a, b)
	}
	if a == model.NoShader {
		t.Error("Register() returned NoShader")
	}
	if got := dev.LiveShaders(); got != 1 {
		t.Errorf("compiled modules = %d, want 1", got)
	}
	if ref, ok := c.Lookup("sprite"); !ok || ref != a {
		t.Errorf("Lookup() = %d, %v, want %d, true", ref, ok, a)
	}
	if key, ok := c.Key(a); !ok || key != "sprite" {
		t.Errorf("Key() = %q, %v, want sprite, true", key, ok)
	}
}

func TestRegisterErrors(t *testing.T) {
	c := NewCache(gputest.NewDevice(), 1)
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"unknown include", "// @oxy:include nope"},
		{"unknown directive", "// @oxy:bogus"},
		{"no entry points", "// @oxy:include projection\n"},
		{"integer input", "struct In { @location(0) id: u32 }\n@vertex fn vs_main(in: In) -> @builtin(position) vec4f { return vec4f(); }\n@fragment fn fs_main() -> @location(0) vec4f { return vec4f(); }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Register(tt.name, tt.source); err == nil {
				t.Error("Register() error = nil, want error")
			}
		})
	}
	if _, err := c.Register("x", ""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Register(empty) error = %v, want ErrEmptySource", err)
	}
	if _, err := c.Register("y", "// @oxy:include sprite_vertex\n"); !errors.Is(err, ErrEntryPoint) {
		t.Errorf("Register(no entry points) error = %v, want ErrEntryPoint", err)
	}
}

func TestRegisterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.wgsl")
	if err := os.WriteFile(path, []byte(SpriteTemplate()), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	dev := gputest.NewDevice()
	c := NewCache(dev, 1)
	if _, err := c.RegisterFile("flat", path); err != nil {
		t.Fatalf("RegisterFile() error = %v", err)
	}
	if _, err := c.RegisterFile("missing", path+".nope"); err == nil {
		t.Error("RegisterFile(missing) error = nil, want error")
	}
}

func TestBindUnknownIsIgnored(t *testing.T) {
	dev := gputest.NewDevice()
	c := NewCache(dev, 1)
	c.Bind(42)
	dev.DrawIndexed(0)
	if got := dev.Draws()[0].Shader; got != 0 {
		t.Errorf("shader after Bind(unknown) = %d, want 0", got)
	}
}

func TestBindAndUnbind(t *testing.T) {
	dev := gputest.NewDevice()
	c := NewCache(dev, 1)
	ref, err := c.Register("sprite", SpriteTemplate())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	c.Bind(ref)
	dev.DrawIndexed(0)
	c.Unbind()
	dev.DrawIndexed(0)

	draws := dev.Draws()
	if draws[0].Shader == 0 {
		t.Error("Bind() did not select a module")
	}
	if draws[1].Shader != 0 {
		t.Error("Unbind() did not clear the module")
	}
}

func TestTerminate(t *testing.T) {
	dev := gputest.NewDevice()
	c := NewCache(dev, 1)
	if _, err := c.Register("sprite", SpriteTemplate()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	c.Terminate()
	c.Terminate()
	if got := dev.LiveShaders(); got != 0 {
		t.Errorf("live modules after Terminate = %d, want 0", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("Lookup() after Terminate did not panic")
		}
	}()
	c.Lookup("sprite")
}

func TestSpriteSourceExpandsSlots(t *testing.T) {
	src := SpriteSource(3)
	for _, want := range []string{
		"struct Projection",
		"struct VertexInput",
		"@group(0) @binding(1) var slot_sampler_0: sampler;",
		"@group(0) @binding(6) var slot_texture_2: texture_2d<f32>;",
		"case 2: { return textureSampleLevel(slot_texture_2, slot_sampler_2, uv, 0.0); }",
		"fn vs_main",
		"fn fs_main",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("SpriteSource(3) missing %q", want)
		}
	}
	if strings.Contains(src, "@oxy:") {
		t.Error("SpriteSource(3) still contains directives")
	}
	if strings.Contains(src, "slot_texture_3") {
		t.Error("SpriteSource(3) declares a fourth slot")
	}
}

func TestPreProcessorClampsSlots(t *testing.T) {
	if got := NewPreProcessor(0).Slots(); got != 1 {
		t.Errorf("Slots() = %d, want 1", got)
	}
}

func TestReflectSprite(t *testing.T) {
	r, err := Reflect(SpriteSource(2))
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	if r.VertexEntry != VertexEntryPoint || r.FragmentEntry != FragmentEntryPoint {
		t.Errorf("entry points = %q, %q", r.VertexEntry, r.FragmentEntry)
	}
	want := map[int]int{0: 2, 1: 4, 2: 2, 3: 1}
	if len(r.Inputs) != len(want) {
		t.Fatalf("Inputs = %v, want %v", r.Inputs, want)
	}
	for loc, n := range want {
		if r.Inputs[loc] != n {
			t.Errorf("Inputs[%d] = %d, want %d", loc, r.Inputs[loc], n)
		}
	}
}

func TestReflectIgnoresComments(t *testing.T) {
	src := `
/* @vertex fn not_this() {} /* nested */ */
struct In {
    @location(0) pos: vec2<f32>, // @location(5) ghost: vec3f
    @location(2) w: f32,
}
@vertex
fn vs_main(in: In) -> @builtin(position) vec4f { return vec4f(in.pos, 0.0, 1.0); }
@fragment
fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }
`
	r, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	if len(r.Inputs) != 2 || r.Inputs[0] != 2 || r.Inputs[2] != 1 {
		t.Errorf("Inputs = %v, want map[0:2 2:1]", r.Inputs)
	}
}

func TestAccepts(t *testing.T) {
	dev := gputest.NewDevice()
	c := NewCache(dev, 1)
	ref, err := c.Register("sprite", SpriteTemplate())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name string
		m    model.BatchModel
		ok   bool
	}{
		{"sprite layout", model.SpriteModel(ref), true},
		{"extra slot", model.NewBatchModel(ref, 2, 4, 2, 1, 3), true},
		{"missing slot", model.NewBatchModel(ref, 2, 4), false},
		{"wrong width", model.NewBatchModel(ref, 3, 4, 2, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Accepts(ref, tt.m)
			if (err == nil) != tt.ok {
				t.Fatalf("Accepts() error = %v, want ok %v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrLayoutMismatch) {
				t.Errorf("Accepts() error = %v, want ErrLayoutMismatch", err)
			}
		})
	}

	if err := c.Accepts(ref+1, model.SpriteModel(ref)); !errors.Is(err, ErrUnknownShader) {
		t.Errorf("Accepts(unknown) error = %v, want ErrUnknownShader", err)
	}
}
