// Package material compiles glTF 1.0 materials into renderer-agnostic phong descriptors.
// Each material value becomes a named input on a data node: literals become typed buffer
// entries and texture bindings become lazily loaded texture entries.
package material

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// Common errors returned by Compile
var (
	ErrNoMaterial           = errors.New("no material given")
	ErrMissingTechnique     = errors.New("material has no technique")
	ErrMissingParameter     = errors.New("technique does not declare parameter")
	ErrMissingTexture       = errors.New("texture value is not linked to a texture")
	ErrMissingImageLocation = errors.New("texture source has no resolved location")
)

// ShadingModel identifies the shading model a descriptor is rendered with.
type ShadingModel struct {
	Type   string
	Scheme string
	Path   string
}

// PhongModel is the shading model every compiled material uses.
var PhongModel = ShadingModel{Type: "urn", Scheme: "urn", Path: "xml3d:material:phong"}

// Descriptor is a compiled material.
type Descriptor struct {
	// ID is unique among the descriptors produced by one compiler.
	ID int

	Model ShadingModel

	// Data holds one input per supported material value.
	Data dataflow.DataNode
}

// Textures returns the texture inputs of the descriptor in input order.
func (d *Descriptor) Textures() []*dataflow.TextureEntry {
	var out []*dataflow.TextureEntry
	for _, in := range d.Data.Inputs() {
		if tex, ok := in.Entry.(*dataflow.TextureEntry); ok {
			out = append(out, tex)
		}
	}
	return out
}

// Realize starts loading every texture input of the descriptor. It does not wait for the loads.
//
// Parameters:
//   - ctx: the context handed to the image loader
func (d *Descriptor) Realize(ctx context.Context) {
	for _, tex := range d.Textures() {
		tex.Load(ctx)
	}
}

// ImageLoader fetches and decodes the image at an absolute location.
type ImageLoader interface {
	// LoadImage loads the image at location.
	//
	// Parameters:
	//   - ctx: bounds the load
	//   - location: the absolute image location
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if fetching or decoding fails
	LoadImage(ctx context.Context, location string) (image.Image, error)
}

// compiler is the implementation of the Compiler interface.
type compiler struct {
	logger      *log.Logger
	sink        dataflow.Sink
	imageLoader ImageLoader
	eager       bool

	nextID int
}

// Compiler converts document materials into descriptors.
// A compiler numbers its descriptors from zero, so use one compiler per compiled document.
type Compiler interface {
	// Compile builds the descriptor for a linked material.
	// Values are visited in name order. Unsupported texture layouts and parameter types are skipped
	// with a warning; a value without a parameter declaration aborts the material.
	//
	// Parameters:
	//   - mat: the linked material
	//
	// Returns:
	//   - *Descriptor: the compiled descriptor
	//   - error: error if the material cannot be compiled
	Compile(mat *document.Material) (*Descriptor, error)
}

var _ Compiler = &compiler{}

// NewCompiler creates a new Compiler with the given options applied.
// Without options it logs nothing, builds in-memory data nodes and leaves texture entries unloadable.
//
// Parameters:
//   - options: a variadic list of CompilerBuilderOption functions
//
// Returns:
//   - Compiler: the compiler
func NewCompiler(options ...CompilerBuilderOption) Compiler {
	c := &compiler{
		logger: log.NewNop(),
		sink:   dataflow.NewSink(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *compiler) Compile(mat *document.Material) (*Descriptor, error) {
	if mat == nil {
		return nil, ErrNoMaterial
	}

	data := c.sink.CreateNode()
	for _, name := range common.SortedKeys(mat.Values) {
		var (
			inputName string
			entry     dataflow.Entry
			err       error
		)
		switch v := mat.Values[name].(type) {
		case document.TextureValue:
			inputName, entry, err = c.textureInput(mat, name, v)
		case document.NumericValue:
			inputName, entry, err = c.numericInput(mat, name, v)
		}
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", mat.ID, err)
		}
		if entry == nil {
			continue
		}
		if err := data.AppendInput(inputName, entry); err != nil {
			return nil, fmt.Errorf("material %q: value %q: %w", mat.ID, name, err)
		}
	}

	d := &Descriptor{
		ID:    c.nextID,
		Model: PhongModel,
		Data:  data,
	}
	c.nextID++
	return d, nil
}

// textureInput builds a texture entry for a texture binding.
// A nil entry with a nil error means the value was skipped.
func (c *compiler) textureInput(mat *document.Material, name string, v document.TextureValue) (string, dataflow.Entry, error) {
	tex := v.Texture
	if tex == nil {
		return "", nil, fmt.Errorf("value %q: texture %q: %w", name, v.TextureID, ErrMissingTexture)
	}

	format := common.Coalesce(tex.Format, common.GLRGBA)
	texelType := common.Coalesce(tex.Type, common.GLUnsignedByte)
	if format != common.GLRGBA || texelType != common.GLUnsignedByte {
		c.logger.Warnw("GLTF-Plugin: Unsupported texture layout, skipping value",
			"material", mat.ID, "value", name, "texture", tex.ID, "format", format, "type", texelType)
		return "", nil, nil
	}

	if tex.Source == nil || tex.Source.Location == "" {
		return "", nil, fmt.Errorf("value %q: texture %q: %w", name, tex.ID, ErrMissingImageLocation)
	}

	var s document.Sampler
	if tex.Sampler != nil {
		s = *tex.Sampler
	}
	sampler := common.NewSamplerConfig(s.WrapS, s.WrapT, s.MinFilter, s.MagFilter)

	location := tex.Source.Location
	var load dataflow.ImageLoadFunc
	if c.imageLoader != nil {
		load = func(ctx context.Context) (image.Image, error) {
			return c.imageLoader.LoadImage(ctx, location)
		}
	}

	entry := dataflow.NewTextureEntry(location, sampler, load)
	if c.eager {
		entry.Load(context.Background())
	}

	inputName := name
	if name == "diffuse" {
		inputName = "diffuseTexture"
	}
	return inputName, entry, nil
}

// numericInput builds a float buffer entry for a literal value, typed by the technique parameter.
// A nil entry with a nil error means the value was skipped.
func (c *compiler) numericInput(mat *document.Material, name string, v document.NumericValue) (string, dataflow.Entry, error) {
	if mat.Technique == nil {
		return "", nil, fmt.Errorf("value %q: %w", name, ErrMissingTechnique)
	}
	param, ok := mat.Technique.Parameters[name]
	if !ok || param == nil {
		return "", nil, fmt.Errorf("value %q: technique %q: %w", name, mat.Technique.ID, ErrMissingParameter)
	}

	t := ParameterLogicalType(param.Type)
	if t == dataflow.TypeUnknown {
		c.logger.Warnw("GLTF-Plugin: Type of uniform is not yet supported",
			"material", mat.ID, "value", name, "type", param.Type)
		return "", nil, nil
	}

	switch name {
	case "specular":
		return "specularColor", dataflow.NewFloat32Entry(dataflow.TypeFloat3, firstN(v.Values, 3)), nil
	case "diffuse":
		return "diffuseColor", dataflow.NewFloat32Entry(dataflow.TypeFloat3, firstN(v.Values, 3)), nil
	case "shininess":
		var shininess float32
		if len(v.Values) > 0 {
			shininess = v.Values[0] / 256
		}
		return "shininess", dataflow.NewFloat32Entry(dataflow.TypeFloat, []float32{shininess}), nil
	default:
		values := make([]float32, len(v.Values))
		copy(values, v.Values)
		return name, dataflow.NewFloat32Entry(t, values), nil
	}
}

// ParameterLogicalType maps a technique parameter type to the logical type of its literal value.
// Types without a literal representation, such as samplers, map to dataflow.TypeUnknown.
//
// Parameters:
//   - paramType: the GL parameter type
//
// Returns:
//   - dataflow.LogicalType: the logical type
func ParameterLogicalType(paramType int) dataflow.LogicalType {
	switch paramType {
	case document.ParameterTypeByte, document.ParameterTypeUnsignedByte,
		document.ParameterTypeShort, document.ParameterTypeUnsignedShort,
		document.ParameterTypeInt, document.ParameterTypeUnsignedInt,
		document.ParameterTypeFloat:
		return dataflow.TypeFloat
	case document.ParameterTypeFloatVec2:
		return dataflow.TypeFloat2
	case document.ParameterTypeFloatVec3:
		return dataflow.TypeFloat3
	case document.ParameterTypeFloatVec4:
		return dataflow.TypeFloat4
	case document.ParameterTypeIntVec2, document.ParameterTypeIntVec3, document.ParameterTypeIntVec4,
		document.ParameterTypeBool, document.ParameterTypeBoolVec2, document.ParameterTypeBoolVec3, document.ParameterTypeBoolVec4,
		document.ParameterTypeFloatMat2:
		return dataflow.TypeFloat4
	case document.ParameterTypeFloatMat3:
		return dataflow.TypeFloat3x3
	case document.ParameterTypeFloatMat4:
		return dataflow.TypeFloat4x4
	default:
		return dataflow.TypeUnknown
	}
}

func firstN(values []float32, n int) []float32 {
	out := make([]float32, min(n, len(values)))
	copy(out, values)
	return out
}
