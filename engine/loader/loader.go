package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/config"
	"github.com/Carmen-Shannon/oxy-gltf/engine/dataflow"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/fetch"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gltf/engine/scene"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// Common errors returned by the Loader
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoBufferURI       = errors.New("buffer has neither bytes nor a uri")
	ErrNoDocument        = errors.New("no document given")
	ErrLoaderClosed      = errors.New("loader is closed")
	ErrNotLoaded         = errors.New("document is not loaded")
)

// LocationError is a compile failure annotated with the location of the document being compiled.
type LocationError struct {
	Location string
	Err      error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	// lifecycle is held for reading by every in-flight load so Close waits for them before stopping the pool.
	lifecycle sync.RWMutex

	cfg         config.Config
	logger      *log.Logger
	fetcher     fetch.Fetcher
	sink        dataflow.Sink
	imageLoader ImageLoader

	graphCache map[string]*scene.Graph

	backend  loaderBackend
	pool     worker.DynamicWorkerPool
	resolver *resolver
	closed   bool
}

// Loader loads glTF documents and compiles them into scene graphs, caching the result per location.
// Compilation runs in two phases: every external buffer is fetched concurrently, then materials and
// scenes are compiled synchronously. A document either compiles completely or not at all.
type Loader interface {
	// Load fetches the document at uri, resolves its buffers and compiles it.
	// If a graph for uri is already cached, the cached graph is returned.
	//
	// Parameters:
	//   - ctx: cancels the fetches
	//   - uri: the document location; relative references in the document resolve against it
	//
	// Returns:
	//   - *scene.Graph: the compiled graph
	//   - error: a *LocationError if fetching, parsing, resolving or compiling fails
	Load(ctx context.Context, uri string) (*scene.Graph, error)

	// LoadDocument resolves the buffers of an already parsed document and compiles it.
	// The graph is cached under base.
	//
	// Parameters:
	//   - ctx: cancels the fetches
	//   - doc: the linked document
	//   - base: the document location
	//
	// Returns:
	//   - *scene.Graph: the compiled graph
	//   - error: a *LocationError if resolving or compiling fails
	LoadDocument(ctx context.Context, doc *document.Document, base string) (*scene.Graph, error)

	// Compile runs only the second phase on a document whose buffers are already resolved.
	// The result is not cached; compiling the same document twice yields equivalent graphs.
	//
	// Parameters:
	//   - doc: the resolved document
	//   - base: the document location
	//
	// Returns:
	//   - *scene.Graph: the compiled graph
	//   - error: error if any material or scene fails to compile
	Compile(doc *document.Document, base string) (*scene.Graph, error)

	// Get retrieves a cached graph by location. Returns nil if not found.
	//
	// Parameters:
	//   - uri: the document location
	//
	// Returns:
	//   - *scene.Graph: the cached graph or nil
	Get(uri string) *scene.Graph

	// Graphs returns the full graph cache.
	//
	// Returns:
	//   - map[string]*scene.Graph: all cached graphs keyed by location
	Graphs() map[string]*scene.Graph

	// Fragment resolves a fragment of a loaded document. An empty id resolves to the root asset.
	//
	// Parameters:
	//   - uri: the document location
	//   - id: the fragment identifier
	//
	// Returns:
	//   - scene.Entity: the resolved entity
	//   - error: ErrNotLoaded if the document is not cached; a miss returns (nil, nil) and is logged
	Fragment(uri, id string) (scene.Entity, error)

	// Close waits for in-flight loads, then stops the fetch workers. The loader cannot load documents afterwards.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the options applied.
// Options are applied in order; WithConfig should come first so later options can override
// the collaborators it derives.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		lifecycle:  sync.RWMutex{},
		cfg:        config.Default(),
		logger:     log.NewNop(),
		sink:       dataflow.NewSink(),
		graphCache: make(map[string]*scene.Graph),
		backend:    newGLTFLoaderBackend(),
	}

	for _, option := range options {
		option(l)
	}

	if l.fetcher == nil {
		l.fetcher = fetch.NewFetcher(
			fetch.WithRootDir(l.cfg.RootDir),
			fetch.WithTimeout(time.Duration(l.cfg.FetchTimeout)),
		)
	}
	if l.imageLoader == nil {
		l.imageLoader = NewImageLoader(l.fetcher)
	}

	// Initialize the fetch pool after options so WithConfig can override the worker count.
	l.pool = worker.NewDynamicWorkerPool(l.cfg.FetchWorkers, l.cfg.FetchQueueSize, 1*time.Second)
	l.resolver = newResolver(l.fetcher, l.pool, l.logger)
	return l
}

func (l *loader) Load(ctx context.Context, uri string) (*scene.Graph, error) {
	if g := l.Get(uri); g != nil {
		return g, nil
	}

	backend, err := l.resolveBackend(uri)
	if err != nil {
		return nil, &LocationError{Location: uri, Err: err}
	}

	data, err := l.fetcher.Fetch(ctx, uri)
	if err != nil {
		l.logger.Errorw("GLTF-Plugin: Failed to process glTF file", "uri", uri, "error", err)
		return nil, &LocationError{Location: uri, Err: err}
	}

	doc, err := backend.Parse(data)
	if err != nil {
		l.logger.Errorw("GLTF-Plugin: Failed to process glTF file", "uri", uri, "error", err)
		return nil, &LocationError{Location: uri, Err: err}
	}

	return l.LoadDocument(ctx, doc, uri)
}

func (l *loader) LoadDocument(ctx context.Context, doc *document.Document, base string) (*scene.Graph, error) {
	if doc == nil {
		return nil, &LocationError{Location: base, Err: ErrNoDocument}
	}

	l.lifecycle.RLock()
	defer l.lifecycle.RUnlock()
	if l.closed {
		return nil, &LocationError{Location: base, Err: ErrLoaderClosed}
	}

	prof := profiler.NewProfiler(l.logger, l.cfg.Profile)

	stop := prof.Begin("resolve")
	err := l.resolver.Resolve(ctx, doc, base)
	stop()
	if err != nil {
		l.logger.Errorw("GLTF-Plugin: Failed to process glTF file", "uri", base, "error", err)
		return nil, &LocationError{Location: base, Err: err}
	}
	l.logger.Info("GLTF-Plugin: All secondary glTF resources have been loaded.")

	stop = prof.Begin("compile")
	g, err := l.Compile(doc, base)
	stop()
	if err != nil {
		l.logger.Errorw("GLTF-Plugin: Failed to process glTF file", "uri", base, "error", err)
		return nil, &LocationError{Location: base, Err: err}
	}
	prof.Report(base)

	l.mu.Lock()
	l.graphCache[base] = g
	l.mu.Unlock()

	return g, nil
}

func (l *loader) Compile(doc *document.Document, base string) (*scene.Graph, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	l.logger.Infof("GLTF-Plugin: Creating scene graph from %s", base)

	resources := scene.NewResourceMap()

	compiler := material.NewCompiler(
		material.WithLogger(l.logger),
		material.WithSink(l.sink),
		material.WithImageLoader(l.imageLoader),
		material.WithEagerTextures(l.cfg.EagerTextures),
	)
	for _, id := range common.SortedKeys(doc.Materials) {
		d, err := compiler.Compile(doc.Materials[id])
		if err != nil {
			return nil, err
		}
		resources.SetFragment(id, scene.MaterialEntity{Descriptor: d})
	}

	builder := scene.NewSceneBuilder(resources,
		scene.WithLogger(l.logger),
		scene.WithSink(l.sink),
	)
	var root *scene.Asset
	for _, id := range common.SortedKeys(doc.Scenes) {
		asset, err := builder.BuildScene(doc.Scenes[id])
		if err != nil {
			return nil, err
		}
		if resources.SetFragment(id, asset) {
			l.logger.Warnw("GLTF-Plugin: Scene id shadows a material of the same name", "id", id)
		}
		if id == doc.Scene {
			root = asset
		}
	}
	if root == nil && doc.Scene != "" {
		l.logger.Warnw("GLTF-Plugin: Default scene not found, root asset is empty", "scene", doc.Scene)
	}

	return scene.NewGraph(base, root, resources, l.logger), nil
}

func (l *loader) Get(uri string) *scene.Graph {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.graphCache[uri]
}

func (l *loader) Graphs() map[string]*scene.Graph {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*scene.Graph, len(l.graphCache))
	for k, v := range l.graphCache {
		result[k] = v
	}
	return result
}

func (l *loader) Fragment(uri, id string) (scene.Entity, error) {
	g := l.Get(uri)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, uri)
	}
	e, ok := g.Resolve(id)
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (l *loader) Close() {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
}

// resolveBackend selects an appropriate loader backend based on the location's extension.
// Currently only glTF JSON documents are supported.
func (l *loader) resolveBackend(uri string) (loaderBackend, error) {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".gltf", ".json":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
