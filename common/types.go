// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// GL enumerants used by glTF sampler and texture definitions.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/specification/1.0#reference-sampler
const (
	GLNearest              = 9728
	GLLinear               = 9729
	GLNearestMipmapNearest = 9984
	GLLinearMipmapNearest  = 9985
	GLNearestMipmapLinear  = 9986
	GLLinearMipmapLinear   = 9987

	GLClampToEdge    = 33071
	GLMirroredRepeat = 33648
	GLRepeat         = 10497

	GLRGBA         = 6408
	GLUnsignedByte = 5121
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It is in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// NewTextureStagingData converts a decoded image to tightly packed RGBA rows.
//
// Parameters:
//   - img: the decoded image
//   - flipY: reverse the row order, for consumers whose texture origin is bottom-left
//
// Returns:
//   - TextureStagingData: the pixel data with its dimensions
func NewTextureStagingData(img image.Image, flipY bool) TextureStagingData {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	if flipY {
		row := make([]byte, rgba.Stride)
		for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
			a := rgba.Pix[top*rgba.Stride : (top+1)*rgba.Stride]
			b := rgba.Pix[bottom*rgba.Stride : (bottom+1)*rgba.Stride]
			copy(row, a)
			copy(a, b)
			copy(b, row)
		}
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Renderers consuming the scene graph build their GPU samplers from this.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// SamplerConfig is the renderer-agnostic sampler description attached to a texture input.
// Values are GL enumerants exactly as they appear in the document, with defaults applied.
type SamplerConfig struct {
	WrapS          int
	WrapT          int
	MinFilter      int
	MagFilter      int
	FlipY          bool
	GenerateMipMap bool
}

// NewSamplerConfig applies the document defaults to raw sampler values, where zero means unset.
// Wrap modes default to REPEAT, the minification filter to NEAREST_MIPMAP_LINEAR and the
// magnification filter to LINEAR. Mip-maps are generated unless both filters are non-mipmapped.
//
// Parameters:
//   - wrapS, wrapT: the wrap modes, or 0
//   - minFilter, magFilter: the filters, or 0
//
// Returns:
//   - SamplerConfig: the sampler configuration with defaults applied
func NewSamplerConfig(wrapS, wrapT, minFilter, magFilter int) SamplerConfig {
	return SamplerConfig{
		WrapS:          Coalesce(wrapS, GLRepeat),
		WrapT:          Coalesce(wrapT, GLRepeat),
		MinFilter:      Coalesce(minFilter, GLNearestMipmapLinear),
		MagFilter:      Coalesce(magFilter, GLLinear),
		FlipY:          false,
		GenerateMipMap: ShouldGenerateMipMaps(minFilter, magFilter),
	}
}

// ShouldGenerateMipMaps reports whether a sampler needs mip-maps.
// Only when both filters are plain NEAREST or LINEAR are mip-maps skipped; an unset filter counts as mipmapped.
//
// Parameters:
//   - minFilter: the raw minification filter
//   - magFilter: the raw magnification filter
//
// Returns:
//   - bool: true if mip-maps should be generated
func ShouldGenerateMipMaps(minFilter, magFilter int) bool {
	return !isPlainFilter(minFilter) || !isPlainFilter(magFilter)
}

func isPlainFilter(f int) bool {
	return f == GLNearest || f == GLLinear
}

// StagingData converts the sampler configuration into wgpu sampler staging data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Returns:
//   - SamplerStagingData: the converted sampler staging data
func (c SamplerConfig) StagingData() SamplerStagingData {
	result := SamplerStagingData{
		AddressModeU:  wrapToAddressMode(c.WrapS),
		AddressModeV:  wrapToAddressMode(c.WrapT),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}

	if c.MagFilter == GLNearest {
		result.MagFilter = wgpu.FilterModeNearest
	}

	switch c.MinFilter {
	case GLNearest, GLNearestMipmapNearest, GLNearestMipmapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	}

	switch c.MinFilter {
	case GLNearestMipmapNearest, GLLinearMipmapNearest:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case GLNearest, GLLinear:
		// Non-mipmapped filters: set mipmap to nearest as a conservative default
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	}

	if !c.GenerateMipMap {
		result.LodMaxClamp = 0
	}

	return result
}

// wrapToAddressMode converts a GL wrap mode constant to a wgpu AddressMode.
func wrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case GLClampToEdge:
		return wgpu.AddressModeClampToEdge
	case GLMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
