package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Registered image formats. glTF 1.0 names PNG, JPEG, GIF and BMP; TIFF and WebP are accepted as well.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Carmen-Shannon/oxy-gltf/engine/fetch"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
)

// ImageLoader is the collaborator texture entries use to load their images.
type ImageLoader = material.ImageLoader

// imageLoader is the default ImageLoader: it fetches the image bytes and decodes them with the registered formats.
type imageLoader struct {
	fetcher fetch.Fetcher
}

var _ ImageLoader = &imageLoader{}

// NewImageLoader creates the default ImageLoader.
//
// Parameters:
//   - fetcher: the transport used to retrieve image bytes
//
// Returns:
//   - ImageLoader: the image loader
func NewImageLoader(fetcher fetch.Fetcher) ImageLoader {
	return &imageLoader{fetcher: fetcher}
}

func (l *imageLoader) LoadImage(ctx context.Context, location string) (image.Image, error) {
	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", location, err)
	}
	return img, nil
}
