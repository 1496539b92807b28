package scene

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// SceneBuilderOption is a functional option for configuring a SceneBuilder.
// Use the With* functions to create options.
type SceneBuilderOption func(b *sceneBuilder)

// WithLogger sets the logger used for skipped-primitive warnings.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(l *log.Logger) SceneBuilderOption {
	return func(b *sceneBuilder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSink sets the sink that creates the sub-graphs' mesh data nodes.
//
// Parameters:
//   - s: the sink
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSink(s dataflow.Sink) SceneBuilderOption {
	return func(b *sceneBuilder) {
		if s != nil {
			b.sink = s
		}
	}
}

// WithDecoder replaces the accessor decoder. Defaults to accessor.Decode.
//
// Parameters:
//   - decode: the decode function
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDecoder(decode DecodeFunc) SceneBuilderOption {
	return func(b *sceneBuilder) {
		if decode != nil {
			b.decode = decode
		}
	}
}
