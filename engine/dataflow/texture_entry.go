package dataflow

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// ImageLoadFunc fetches and decodes the image behind a texture entry.
type ImageLoadFunc func(ctx context.Context) (image.Image, error)

// TextureEntry is a texture input whose image arrives asynchronously.
// The image slot is a single-assignment future: the first Resolve wins and every later one is rejected.
type TextureEntry struct {
	// Location is the absolute location of the source image.
	Location string

	// Sampler holds the sampling configuration with document defaults applied.
	Sampler common.SamplerConfig

	load      ImageLoadFunc
	startOnce sync.Once

	resolved atomic.Bool
	done     chan struct{}
	img      image.Image
	err      error
}

// NewTextureEntry creates a pending texture entry.
//
// Parameters:
//   - location: the absolute image location
//   - sampler: the sampler configuration
//   - load: the function used by Load to produce the image, may be nil when the image is resolved externally
//
// Returns:
//   - *TextureEntry: the pending entry
func NewTextureEntry(location string, sampler common.SamplerConfig, load ImageLoadFunc) *TextureEntry {
	return &TextureEntry{
		Location: location,
		Sampler:  sampler,
		load:     load,
		done:     make(chan struct{}),
	}
}

// Load starts loading the image in the background. Only the first call has an effect and it never blocks.
//
// Parameters:
//   - ctx: the context passed to the load function
func (t *TextureEntry) Load(ctx context.Context) {
	if t.load == nil {
		return
	}
	t.startOnce.Do(func() {
		go func() {
			img, err := t.load(ctx)
			t.Resolve(img, err)
		}()
	})
}

// Resolve assigns the image (or the load error) to the entry.
//
// Parameters:
//   - img: the decoded image
//   - err: the load error, if any
//
// Returns:
//   - bool: false if the entry was already resolved and this assignment was dropped
func (t *TextureEntry) Resolve(img image.Image, err error) bool {
	if !t.resolved.CompareAndSwap(false, true) {
		return false
	}
	t.img = img
	t.err = err
	close(t.done)
	return true
}

// Done returns a channel closed once the entry is resolved.
func (t *TextureEntry) Done() <-chan struct{} {
	return t.done
}

// Ready reports whether the entry has been resolved.
func (t *TextureEntry) Ready() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Image returns the resolved image without blocking, or nil when it is not available yet or failed to load.
func (t *TextureEntry) Image() image.Image {
	if !t.Ready() {
		return nil
	}
	return t.img
}

// Wait blocks until the entry is resolved or ctx is done.
//
// Parameters:
//   - ctx: bounds the wait
//
// Returns:
//   - image.Image: the image
//   - error: the load error, or ctx.Err() when the wait was abandoned
func (t *TextureEntry) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-t.done:
		return t.img, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StagingData converts the resolved image into RGBA pixel data for GPU upload, honoring the sampler's FlipY.
//
// Returns:
//   - common.TextureStagingData: the pixel data
//   - bool: false if no image is available yet or the load failed
func (t *TextureEntry) StagingData() (common.TextureStagingData, bool) {
	img := t.Image()
	if img == nil {
		return common.TextureStagingData{}, false
	}
	return common.NewTextureStagingData(img, t.Sampler.FlipY), true
}

// SamplerStagingData converts the entry's sampler configuration into wgpu sampler staging data.
func (t *TextureEntry) SamplerStagingData() common.SamplerStagingData {
	return t.Sampler.StagingData()
}

// Equivalent reports whether two entries describe the same texture, comparing location and sampler
// but not load state.
//
// Parameters:
//   - other: the entry to compare against
//
// Returns:
//   - bool: true if both entries sample the same image the same way
func (t *TextureEntry) Equivalent(other *TextureEntry) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Location == other.Location && t.Sampler == other.Sampler
}

func (*TextureEntry) isEntry() {}
