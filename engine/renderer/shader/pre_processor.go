// pre_processor.go implements the WGSL pre-processor. It scans shader source for @oxy: directives
// and replaces them with engine-provided struct sources or with texture slot bindings sized to the
// renderer's texture slot budget.
package shader

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed assets/projection.wgsl
var projectionSource string

//go:embed assets/sprite_vertex.wgsl
var spriteVertexSource string

//go:embed assets/sprite.wgsl
var spriteSource string

// TextureBindingBase is the first binding in group 0 used by texture slots. Slot i uses a sampler
// at TextureBindingBase+2i and a texture at TextureBindingBase+2i+1. Binding 0 is the projection uniform.
const TextureBindingBase = 1

const (
	// VertexEntryPoint is the vertex stage entry point every canvas shader exposes.
	VertexEntryPoint = "vs_main"
	// FragmentEntryPoint is the fragment stage entry point every canvas shader exposes.
	FragmentEntryPoint = "fs_main"
)

// PreProcessor expands @oxy: directives in WGSL source.
type PreProcessor interface {
	// Process expands every directive in source.
	//
	// Parameters:
	//   - source: WGSL source that may contain @oxy: directives
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: error if a directive is malformed or names an unknown struct
	Process(source string) (string, error)

	// Slots returns the number of texture slots @oxy:textures expands to.
	Slots() int
}

type preProcessor struct {
	slots          int
	structRegistry map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor that expands @oxy:textures to the given slot count.
//
// Parameters:
//   - slots: number of texture slots, at least 1
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(slots int) PreProcessor {
	if slots < 1 {
		slots = 1
	}
	return &preProcessor{
		slots: slots,
		structRegistry: map[string]string{
			"projection":    projectionSource,
			"sprite_vertex": spriteVertexSource,
		},
	}
}

func (p *preProcessor) Slots() int {
	return p.slots
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			src, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", a.Line, a.Args[0])
			}
			out = append(out, strings.TrimRight(src, "\n"))
		case AnnotationTypeTextures:
			out = append(out, textureSlotSource(p.slots))
		}
	}
	return strings.Join(out, "\n"), nil
}

// textureSlotSource declares a sampler and texture per slot and a sample_slot helper that switches
// on the slot index. textureSampleLevel keeps the call valid outside uniform control flow.
func textureSlotSource(slots int) string {
	var b strings.Builder
	for i := 0; i < slots; i++ {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var slot_sampler_%d: sampler;\n", TextureBindingBase+2*i, i)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var slot_texture_%d: texture_2d<f32>;\n", TextureBindingBase+2*i+1, i)
	}
	b.WriteString("\nfn sample_slot(index: i32, uv: vec2<f32>) -> vec4<f32> {\n")
	b.WriteString("    switch index {\n")
	for i := 0; i < slots; i++ {
		fmt.Fprintf(&b, "        case %d: { return textureSampleLevel(slot_texture_%d, slot_sampler_%d, uv, 0.0); }\n", i, i, i)
	}
	b.WriteString("        default: {}\n")
	b.WriteString("    }\n")
	b.WriteString("    return vec4<f32>(1.0, 1.0, 1.0, 1.0);\n")
	b.WriteString("}")
	return b.String()
}

// SpriteSource returns the built-in sprite shader expanded for the given texture slot count.
// It expects the sprite vertex layout (model.SpriteModel) and exposes vs_main and fs_main.
//
// Parameters:
//   - slots: the renderer's texture slot budget
//
// Returns:
//   - string: WGSL source
func SpriteSource(slots int) string {
	src, err := NewPreProcessor(slots).Process(spriteSource)
	if err != nil {
		panic(fmt.Sprintf("shader: built-in sprite shader failed to expand: %v", err))
	}
	return src
}

// SpriteTemplate returns the unexpanded sprite shader, for use with Cache.Register.
func SpriteTemplate() string {
	return spriteSource
}
