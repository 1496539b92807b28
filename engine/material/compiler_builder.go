package material

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// CompilerBuilderOption is a functional option for configuring a Compiler via NewCompiler.
type CompilerBuilderOption func(*compiler)

// WithLogger sets the logger used for skipped-value warnings.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - CompilerBuilderOption: a function that applies the logger option to a compiler
func WithLogger(l *log.Logger) CompilerBuilderOption {
	return func(c *compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSink sets the sink that creates the descriptors' data nodes.
//
// Parameters:
//   - s: the sink
//
// Returns:
//   - CompilerBuilderOption: a function that applies the sink option to a compiler
func WithSink(s dataflow.Sink) CompilerBuilderOption {
	return func(c *compiler) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithImageLoader sets the loader texture entries use to produce their images.
//
// Parameters:
//   - il: the image loader
//
// Returns:
//   - CompilerBuilderOption: a function that applies the image loader option to a compiler
func WithImageLoader(il ImageLoader) CompilerBuilderOption {
	return func(c *compiler) {
		c.imageLoader = il
	}
}

// WithEagerTextures starts texture loads during compilation instead of on Descriptor.Realize.
//
// Parameters:
//   - eager: true to start loads immediately
//
// Returns:
//   - CompilerBuilderOption: a function that applies the eager option to a compiler
func WithEagerTextures(eager bool) CompilerBuilderOption {
	return func(c *compiler) {
		c.eager = eager
	}
}
