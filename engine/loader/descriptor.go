package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// Descriptor is the on-disk description of one renderable. Without a Mesh it describes a sprite
// quad; with a Mesh it describes arbitrary geometry in the given attribute layout.
type Descriptor struct {
	// Shader is the shader cache key. Defaults to the built-in sprite shader.
	Shader  string             `yaml:"shader,omitempty"`
	Texture *TextureDescriptor `yaml:"texture,omitempty"`

	// Size is the sprite quad size. Defaults to the texture size in pixels.
	Size []float32 `yaml:"size,omitempty"`
	// Color is the RGBA sprite tint.
	Color []float32 `yaml:"color,omitempty"`
	// UV is the texture region as u0, v0, u1, v1.
	UV []float32 `yaml:"uv,omitempty"`

	Mesh *MeshDescriptor `yaml:"mesh,omitempty"`
}

// TextureDescriptor names the image a renderable samples.
type TextureDescriptor struct {
	// Path is resolved relative to the descriptor file.
	Path    string            `yaml:"path"`
	LOD     int               `yaml:"lod,omitempty"`
	Sampler SamplerDescriptor `yaml:"sampler,omitempty"`
}

// SamplerDescriptor holds sampler settings by name. Empty fields use the backend defaults.
type SamplerDescriptor struct {
	AddressU      string `yaml:"addressU,omitempty"`
	AddressV      string `yaml:"addressV,omitempty"`
	MagFilter     string `yaml:"magFilter,omitempty"`
	MinFilter     string `yaml:"minFilter,omitempty"`
	MipmapFilter  string `yaml:"mipmapFilter,omitempty"`
	MaxAnisotropy uint16 `yaml:"maxAnisotropy,omitempty"`
}

// MeshDescriptor is explicit geometry. Attributes lists the float component count of each
// attribute slot in order, 0 for an unused slot.
type MeshDescriptor struct {
	Attributes []int     `yaml:"attributes"`
	Vertices   []float32 `yaml:"vertices"`
	Indices    []uint32  `yaml:"indices"`
}

func (d *Descriptor) normalize() {
	if d.Shader == "" {
		d.Shader = renderer.SpriteShaderKey
	}
	if len(d.Color) == 0 {
		d.Color = []float32{1, 1, 1, 1}
	}
	if len(d.UV) == 0 {
		d.UV = []float32{0, 0, 1, 1}
	}
}

func (d *Descriptor) validate() error {
	if d.Texture != nil && d.Texture.Path == "" {
		return errors.New("texture has no path")
	}
	if d.Mesh != nil {
		if len(d.Mesh.Attributes) == 0 {
			return errors.New("mesh has no attributes")
		}
		return nil
	}
	switch len(d.Size) {
	case 0:
		if d.Texture == nil {
			return errors.New("untextured sprite needs a size")
		}
	case 2:
		if d.Size[0] <= 0 || d.Size[1] <= 0 {
			return fmt.Errorf("size %v must be positive", d.Size)
		}
	default:
		return fmt.Errorf("size has %d components, want 2", len(d.Size))
	}
	if len(d.Color) != 4 {
		return fmt.Errorf("color has %d components, want 4", len(d.Color))
	}
	if len(d.UV) != 4 {
		return fmt.Errorf("uv has %d components, want 4", len(d.UV))
	}
	return nil
}

// staging converts the named settings to sampler staging data. Unset names keep the
// common.DefaultSampler value.
func (s SamplerDescriptor) staging() (common.SamplerStagingData, error) {
	out := common.DefaultSampler()
	var err error
	if out.AddressModeU, err = addressMode(s.AddressU, out.AddressModeU); err != nil {
		return out, err
	}
	if out.AddressModeV, err = addressMode(s.AddressV, out.AddressModeV); err != nil {
		return out, err
	}
	if out.MagFilter, err = filterMode(s.MagFilter, out.MagFilter); err != nil {
		return out, err
	}
	if out.MinFilter, err = filterMode(s.MinFilter, out.MinFilter); err != nil {
		return out, err
	}
	if out.MipmapFilter, err = mipmapFilterMode(s.MipmapFilter, out.MipmapFilter); err != nil {
		return out, err
	}
	if s.MaxAnisotropy > 0 {
		out.MaxAnisotropy = s.MaxAnisotropy
	}
	return out, nil
}

func addressMode(name string, def wgpu.AddressMode) (wgpu.AddressMode, error) {
	switch name {
	case "":
		return def, nil
	case "clamp":
		return wgpu.AddressModeClampToEdge, nil
	case "repeat":
		return wgpu.AddressModeRepeat, nil
	case "mirror":
		return wgpu.AddressModeMirrorRepeat, nil
	default:
		return 0, fmt.Errorf("unknown address mode %q", name)
	}
}

func filterMode(name string, def wgpu.FilterMode) (wgpu.FilterMode, error) {
	switch name {
	case "":
		return def, nil
	case "linear":
		return wgpu.FilterModeLinear, nil
	case "nearest":
		return wgpu.FilterModeNearest, nil
	default:
		return 0, fmt.Errorf("unknown filter mode %q", name)
	}
}

func mipmapFilterMode(name string, def wgpu.MipmapFilterMode) (wgpu.MipmapFilterMode, error) {
	switch name {
	case "":
		return def, nil
	case "linear":
		return wgpu.MipmapFilterModeLinear, nil
	case "nearest":
		return wgpu.MipmapFilterModeNearest, nil
	default:
		return 0, fmt.Errorf("unknown mipmap filter mode %q", name)
	}
}
