package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/fetch"
	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// resolver is the first compile phase: it fetches every unloaded buffer of a document concurrently
// and assigns absolute locations to buffers, images and materials.
type resolver struct {
	fetcher fetch.Fetcher
	pool    worker.DynamicWorkerPool
	logger  *log.Logger
}

// fetchResult is the outcome of fetching one distinct buffer location.
type fetchResult struct {
	location string
	data     []byte
	err      error
}

// newResolver creates a resolver that submits its fetches to pool.
func newResolver(fetcher fetch.Fetcher, pool worker.DynamicWorkerPool, logger *log.Logger) *resolver {
	return &resolver{
		fetcher: fetcher,
		pool:    pool,
		logger:  logger,
	}
}

// Resolve fetches every buffer that has no bytes yet, one fetch per distinct location.
// Bytes are attached only after every fetch succeeded; on failure no buffer is modified and the
// first error is returned. Images and materials only receive their absolute locations.
//
// Parameters:
//   - ctx: cancels outstanding fetches
//   - doc: the linked document
//   - base: the document location relative references resolve against
//
// Returns:
//   - error: the first fetch error
func (r *resolver) Resolve(ctx context.Context, doc *document.Document, base string) error {
	pending := make(map[string][]*document.Buffer)
	for _, id := range common.SortedKeys(doc.Buffers) {
		buf := doc.Buffers[id]
		if buf.Loaded() {
			continue
		}
		loc := fetch.ResolveReference(base, buf.URI)
		if loc == "" {
			return fmt.Errorf("buffer %q: %w", id, ErrNoBufferURI)
		}
		pending[loc] = append(pending[loc], buf)
	}

	results, err := r.fetchAll(ctx, common.SortedKeys(pending))
	if err != nil {
		return err
	}

	for loc, buffers := range pending {
		for _, buf := range buffers {
			buf.Location = loc
			if err := buf.Attach(results[loc]); err != nil {
				return fmt.Errorf("buffer %q: %w", buf.ID, err)
			}
		}
	}

	for _, img := range doc.Images {
		img.Location = fetch.ResolveReference(base, img.URI)
	}
	for id, m := range doc.Materials {
		m.Location = base + "#" + id
	}
	return nil
}

// fetchAll fetches the locations on the worker pool and waits for all of them to settle.
// The first failure cancels the fetches that have not started or are still running.
func (r *resolver) fetchAll(ctx context.Context, locations []string) (map[string][]byte, error) {
	if len(locations) == 0 {
		return map[string][]byte{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]fetchResult, len(locations))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	// pool.Wait() only returns once workers go idle, so a WaitGroup is the barrier for this batch.
	for i, loc := range locations {
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: loc,
			Do: func() (any, error) {
				defer wg.Done()

				res := fetchResult{location: loc}
				if err := ctx.Err(); err != nil {
					res.err = err
				} else {
					res.data, res.err = r.fetcher.Fetch(ctx, loc)
				}
				if res.err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("failed to fetch buffer %q: %w", loc, res.err)
						cancel()
					})
				} else {
					r.logger.Debugw("GLTF-Plugin: Fetched buffer", "location", loc, "bytes", len(res.data))
				}
				results[i] = res
				return res.data, res.err
			},
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	out := make(map[string][]byte, len(results))
	for _, res := range results {
		out[res.location] = res.data
	}
	return out, nil
}
