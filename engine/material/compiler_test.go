package material

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeImageLoader struct {
	calls atomic.Int32
	err   error
}

func (f *fakeImageLoader) LoadImage(_ context.Context, location string) (image.Image, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	return img, nil
}

func phongTechnique() *document.Technique {
	return &document.Technique{
		ID: "technique1",
		Parameters: map[string]*document.TechniqueParameter{
			"ambient":   {Type: document.ParameterTypeFloatVec4},
			"diffuse":   {Type: document.ParameterTypeSampler2D},
			"emission":  {Type: document.ParameterTypeFloatVec4},
			"shininess": {Type: document.ParameterTypeFloat},
			"specular":  {Type: document.ParameterTypeFloatVec4},
			"transform": {Type: document.ParameterTypeFloatMat4},
			"light":     {Type: document.ParameterTypeSampler2D},
		},
	}
}

func texturedMaterial(sampler *document.Sampler) *document.Material {
	tex := &document.Texture{
		ID:      "texture1",
		Sampler: sampler,
		Source:  &document.Image{ID: "image1", Location: "http://example.com/models/duck.png"},
	}
	return &document.Material{
		ID:        "material1",
		Technique: phongTechnique(),
		Values: map[string]document.MaterialValue{
			"diffuse":   document.TextureValue{TextureID: "texture1", Texture: tex},
			"specular":  document.NumericValue{Values: []float32{0.2, 0.3, 0.4, 1}},
			"shininess": document.NumericValue{Values: []float32{128}, Scalar: true},
			"emission":  document.NumericValue{Values: []float32{0, 0, 0, 1}},
		},
	}
}

func observedLogger() (*log.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return log.FromZap(zap.New(core)), logs
}

func TestCompileRenamesAndConvertsValues(t *testing.T) {
	c := NewCompiler()

	d, err := c.Compile(texturedMaterial(nil))
	require.NoError(t, err)

	assert.Equal(t, 0, d.ID)
	assert.Equal(t, PhongModel, d.Model)

	names := make([]string, 0)
	for _, in := range d.Data.Inputs() {
		names = append(names, in.Name)
	}
	assert.Equal(t, []string{"diffuseTexture", "emission", "shininess", "specularColor"}, names)

	specular, ok := d.Data.Input("specularColor")
	require.True(t, ok)
	entry := specular.Entry.(*dataflow.BufferEntry)
	assert.Equal(t, dataflow.TypeFloat3, entry.Type)
	assert.Equal(t, []float32{0.2, 0.3, 0.4}, entry.Float32)

	shininess, ok := d.Data.Input("shininess")
	require.True(t, ok)
	entry = shininess.Entry.(*dataflow.BufferEntry)
	assert.Equal(t, dataflow.TypeFloat, entry.Type)
	assert.Equal(t, []float32{0.5}, entry.Float32)

	emission, ok := d.Data.Input("emission")
	require.True(t, ok)
	entry = emission.Entry.(*dataflow.BufferEntry)
	assert.Equal(t, dataflow.TypeFloat4, entry.Type)
	assert.Equal(t, []float32{0, 0, 0, 1}, entry.Float32)
}

func TestCompileDiffuseColor(t *testing.T) {
	mat := &document.Material{
		ID:        "flat",
		Technique: &document.Technique{Parameters: map[string]*document.TechniqueParameter{"diffuse": {Type: document.ParameterTypeFloatVec4}}},
		Values:    map[string]document.MaterialValue{"diffuse": document.NumericValue{Values: []float32{1, 0, 0, 1}}},
	}

	d, err := NewCompiler().Compile(mat)
	require.NoError(t, err)

	in, ok := d.Data.Input("diffuseColor")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0, 0}, in.Entry.(*dataflow.BufferEntry).Float32)
}

func TestCompileTextureSamplerDefaults(t *testing.T) {
	d, err := NewCompiler().Compile(texturedMaterial(nil))
	require.NoError(t, err)

	textures := d.Textures()
	require.Len(t, textures, 1)
	tex := textures[0]
	assert.Equal(t, "http://example.com/models/duck.png", tex.Location)
	assert.Equal(t, common.SamplerConfig{
		WrapS:          common.GLRepeat,
		WrapT:          common.GLRepeat,
		MinFilter:      common.GLNearestMipmapLinear,
		MagFilter:      common.GLLinear,
		FlipY:          false,
		GenerateMipMap: true,
	}, tex.Sampler)
}

func TestCompileTextureWithoutMipMaps(t *testing.T) {
	sampler := &document.Sampler{MinFilter: common.GLNearest, MagFilter: common.GLLinear, WrapS: common.GLClampToEdge}

	d, err := NewCompiler().Compile(texturedMaterial(sampler))
	require.NoError(t, err)

	tex := d.Textures()[0]
	assert.False(t, tex.Sampler.GenerateMipMap)
	assert.Equal(t, common.GLClampToEdge, tex.Sampler.WrapS)
	assert.Equal(t, common.GLRepeat, tex.Sampler.WrapT)
}

func TestCompileSkipsUnsupportedTextureLayout(t *testing.T) {
	logger, logs := observedLogger()
	mat := texturedMaterial(nil)
	mat.Values["diffuse"].(document.TextureValue).Texture.Format = 6407

	d, err := NewCompiler(WithLogger(logger)).Compile(mat)
	require.NoError(t, err)

	_, ok := d.Data.Input("diffuseTexture")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessageSnippet("Unsupported texture layout").Len())
}

func TestCompileSkipsUnsupportedParameterType(t *testing.T) {
	logger, logs := observedLogger()
	mat := texturedMaterial(nil)
	mat.Values["light"] = document.NumericValue{Values: []float32{0}, Scalar: true}

	d, err := NewCompiler(WithLogger(logger)).Compile(mat)
	require.NoError(t, err)

	_, ok := d.Data.Input("light")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessageSnippet("not yet supported").Len())
}

func TestCompileErrors(t *testing.T) {
	t.Run("nil material", func(t *testing.T) {
		_, err := NewCompiler().Compile(nil)
		assert.ErrorIs(t, err, ErrNoMaterial)
	})

	t.Run("undeclared parameter", func(t *testing.T) {
		mat := texturedMaterial(nil)
		mat.Values["roughness"] = document.NumericValue{Values: []float32{1}, Scalar: true}
		_, err := NewCompiler().Compile(mat)
		assert.ErrorIs(t, err, ErrMissingParameter)
	})

	t.Run("no technique", func(t *testing.T) {
		mat := texturedMaterial(nil)
		mat.Technique = nil
		_, err := NewCompiler().Compile(mat)
		assert.ErrorIs(t, err, ErrMissingTechnique)
	})

	t.Run("unresolved image", func(t *testing.T) {
		mat := texturedMaterial(nil)
		mat.Values["diffuse"].(document.TextureValue).Texture.Source.Location = ""
		_, err := NewCompiler().Compile(mat)
		assert.ErrorIs(t, err, ErrMissingImageLocation)
	})
}

func TestCompileNumbersDescriptorsPerCompiler(t *testing.T) {
	c := NewCompiler()
	for want := 0; want < 3; want++ {
		d, err := c.Compile(texturedMaterial(nil))
		require.NoError(t, err)
		assert.Equal(t, want, d.ID)
	}

	d, err := NewCompiler().Compile(texturedMaterial(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, d.ID)
}

func TestRealizeLoadsTexturesOnce(t *testing.T) {
	il := &fakeImageLoader{}
	d, err := NewCompiler(WithImageLoader(il)).Compile(texturedMaterial(nil))
	require.NoError(t, err)

	tex := d.Textures()[0]
	assert.False(t, tex.Ready())
	assert.Equal(t, int32(0), il.calls.Load())

	d.Realize(context.Background())
	d.Realize(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	img, err := tex.Wait(ctx)
	require.NoError(t, err)
	assert.NotNil(t, img)
	assert.Equal(t, int32(1), il.calls.Load())
	assert.False(t, tex.Resolve(nil, nil))
}

func TestEagerTexturesReportLoadErrors(t *testing.T) {
	loadErr := errors.New("404 Not Found")
	il := &fakeImageLoader{err: loadErr}
	d, err := NewCompiler(WithImageLoader(il), WithEagerTextures(true)).Compile(texturedMaterial(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = d.Textures()[0].Wait(ctx)
	assert.ErrorIs(t, err, loadErr)
}

func TestParameterLogicalType(t *testing.T) {
	tests := map[int]dataflow.LogicalType{
		document.ParameterTypeFloat:     dataflow.TypeFloat,
		document.ParameterTypeInt:       dataflow.TypeFloat,
		document.ParameterTypeFloatVec2: dataflow.TypeFloat2,
		document.ParameterTypeFloatVec3: dataflow.TypeFloat3,
		document.ParameterTypeFloatVec4: dataflow.TypeFloat4,
		document.ParameterTypeBoolVec2:  dataflow.TypeFloat4,
		document.ParameterTypeFloatMat2: dataflow.TypeFloat4,
		document.ParameterTypeFloatMat3: dataflow.TypeFloat3x3,
		document.ParameterTypeFloatMat4: dataflow.TypeFloat4x4,
		document.ParameterTypeSampler2D: dataflow.TypeUnknown,
		0:                               dataflow.TypeUnknown,
	}
	for paramType, want := range tests {
		assert.Equal(t, want, ParameterLogicalType(paramType), paramType)
	}
}
