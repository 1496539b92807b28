package dataflow

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/common"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameFilterString(t *testing.T) {
	f := NewRenameFilter(Rename{To: "position", From: "POSITION"}, Rename{To: "normal", From: "NORMAL"})
	assert.Equal(t, "rename( { position: POSITION,normal: NORMAL})", f.String())
	assert.Equal(t, "rename( { })", NewRenameFilter().String())
}

func TestDataNodeInputs(t *testing.T) {
	n := NewSink().CreateNode()

	_, ok := n.Filter()
	assert.False(t, ok)

	require.NoError(t, n.AppendInput("index", NewInt32Entry(TypeInt, []int32{0, 1, 2})))
	require.NoError(t, n.AppendInput("POSITION", NewFloat32Entry(TypeFloat3, make([]float32, 9))))
	assert.ErrorIs(t, n.AppendInput("", NewInt8Entry(nil)), ErrUnnamedInput)

	inputs := n.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "index", inputs[0].Name)
	assert.Equal(t, "POSITION", inputs[1].Name)

	in, ok := n.Input("POSITION")
	require.True(t, ok)
	assert.Equal(t, 3, in.Entry.(*BufferEntry).Count())

	_, ok = n.Input("NORMAL")
	assert.False(t, ok)

	n.SetFilter(NewRenameFilter(Rename{To: "position", From: "POSITION"}))
	f, ok := n.Filter()
	require.True(t, ok)
	assert.Equal(t, "rename", f.Op)
}

func TestBufferEntryShape(t *testing.T) {
	tests := []struct {
		name  string
		entry *BufferEntry
		len   int
		count int
	}{
		{"float3", NewFloat32Entry(TypeFloat3, make([]float32, 12)), 12, 4},
		{"float4x4", NewFloat32Entry(TypeFloat4x4, make([]float32, 32)), 32, 2},
		{"int scalar", NewInt32Entry(TypeInt, []int32{1, 2, 3}), 3, 3},
		{"int4", NewInt32Entry(TypeInt4, make([]int32, 8)), 8, 2},
		{"byte", NewInt8Entry([]int8{-1, 1}), 2, 2},
		{"ubyte vec2", NewUint8Entry(2, []uint8{1, 2, 3, 4}), 4, 2},
		{"unknown", NewFloat32Entry(TypeUnknown, []float32{1}), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.len, tt.entry.Len())
			assert.Equal(t, tt.count, tt.entry.Count())
		})
	}
}

func TestLogicalTypes(t *testing.T) {
	assert.Equal(t, "float3", TypeFloat3.String())
	assert.Equal(t, "LogicalType(99)", LogicalType(99).String())
	assert.Equal(t, 9, TypeFloat3x3.TupleSize())
	assert.Equal(t, TypeFloat2, FloatTypeForTupleSize(2))
	assert.Equal(t, TypeUnknown, FloatTypeForTupleSize(9))
}

func TestTextureEntryResolvesOnce(t *testing.T) {
	entry := NewTextureEntry("http://example.com/a.png", common.NewSamplerConfig(0, 0, 0, 0), nil)
	assert.False(t, entry.Ready())
	assert.Nil(t, entry.Image())

	first := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.True(t, entry.Resolve(first, nil))
	assert.False(t, entry.Resolve(second, nil))

	assert.True(t, entry.Ready())
	assert.Same(t, first, entry.Image())

	img, err := entry.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, img)
}

func TestTextureEntryLoadRunsOnce(t *testing.T) {
	var calls atomic.Int32
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	entry := NewTextureEntry("a.png", common.SamplerConfig{}, func(ctx context.Context) (image.Image, error) {
		calls.Add(1)
		return img, nil
	})

	entry.Load(context.Background())
	entry.Load(context.Background())

	got, err := entry.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, img, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTextureEntryLoadError(t *testing.T) {
	boom := errors.New("boom")
	entry := NewTextureEntry("a.png", common.SamplerConfig{}, func(ctx context.Context) (image.Image, error) {
		return nil, boom
	})
	entry.Load(context.Background())

	_, err := entry.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, entry.Image())

	_, ok := entry.StagingData()
	assert.False(t, ok)
}

func TestTextureEntryWaitHonorsContext(t *testing.T) {
	entry := NewTextureEntry("a.png", common.SamplerConfig{}, nil)
	entry.Load(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := entry.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, entry.Ready())
}

func TestTextureEntryStagingDataFlipsRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{G: 255, A: 255})

	upright := NewTextureEntry("a.png", common.SamplerConfig{}, nil)
	upright.Resolve(img, nil)
	data, ok := upright.StagingData()
	require.True(t, ok)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, data.Pixels)

	flipped := NewTextureEntry("a.png", common.SamplerConfig{FlipY: true}, nil)
	flipped.Resolve(img, nil)
	data, ok = flipped.StagingData()
	require.True(t, ok)
	assert.Equal(t, uint32(1), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Equal(t, []byte{0, 255, 0, 255, 255, 0, 0, 255}, data.Pixels)
}

func TestTextureEntryEquivalent(t *testing.T) {
	sampler := common.NewSamplerConfig(0, 0, 0, 0)
	a := NewTextureEntry("http://example.com/wood.png", sampler, nil)
	b := NewTextureEntry("http://example.com/wood.png", sampler, nil)
	require.True(t, a.Resolve(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil))

	assert.False(t, assert.ObjectsAreEqual(a, b))
	assert.True(t, a.Equivalent(b), "load state is not part of equivalence")

	other := NewTextureEntry("http://example.com/stone.png", sampler, nil)
	assert.False(t, a.Equivalent(other))

	clamped := NewTextureEntry("http://example.com/wood.png", common.NewSamplerConfig(common.GLClampToEdge, 0, 0, 0), nil)
	assert.False(t, a.Equivalent(clamped))

	var none *TextureEntry
	assert.False(t, a.Equivalent(none))
	assert.True(t, none.Equivalent(nil))
}

func TestTextureEntrySamplerStagingData(t *testing.T) {
	entry := NewTextureEntry("wood.png", common.NewSamplerConfig(common.GLClampToEdge, 0, common.GLNearest, common.GLNearest), nil)

	staging := entry.SamplerStagingData()
	assert.Equal(t, wgpu.AddressModeClampToEdge, staging.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, staging.AddressModeV)
	assert.Equal(t, wgpu.FilterModeNearest, staging.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, staging.MinFilter)
	assert.Equal(t, float32(0), staging.LodMaxClamp)
}
