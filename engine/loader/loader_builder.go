package loader

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/config"
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/fetch"
	"github.com/Carmen-Shannon/oxy-gltf/engine/scene"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithConfig is an option builder that sets the configuration the Loader derives its defaults from.
//
// Parameters:
//   - cfg: the validated configuration
//
// Returns:
//   - LoaderBuilderOption: a function that applies the config option to a loader
func WithConfig(cfg config.Config) LoaderBuilderOption {
	return func(l *loader) {
		l.cfg = cfg
	}
}

// WithLogger is an option builder that sets the logger used by the Loader and everything it creates.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFetcher is an option builder that sets the transport used for documents, buffers and images.
//
// Parameters:
//   - f: the fetcher instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f fetch.Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		l.fetcher = f
	}
}

// WithSink is an option builder that sets the sink material and mesh data nodes are created from.
//
// Parameters:
//   - s: the sink instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the sink option to a loader
func WithSink(s dataflow.Sink) LoaderBuilderOption {
	return func(l *loader) {
		if s != nil {
			l.sink = s
		}
	}
}

// WithImageLoader is an option builder that sets the loader texture entries use to fetch their images.
//
// Parameters:
//   - il: the image loader instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the image loader option to a loader
func WithImageLoader(il ImageLoader) LoaderBuilderOption {
	return func(l *loader) {
		l.imageLoader = il
	}
}

// WithGraph is an option builder that pre-populates the graph cache with a graph.
//
// Parameters:
//   - key: the cache key for the graph, usually its location
//   - graph: the graph to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the graph option to a loader
func WithGraph(key string, graph *scene.Graph) LoaderBuilderOption {
	return func(l *loader) {
		l.graphCache[key] = graph
	}
}
