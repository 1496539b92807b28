// Package fetch is the transport used to retrieve glTF documents, buffers and images.
// The default Fetcher understands data: URIs, http(s) URLs, file: URLs and plain filesystem paths.
package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Common errors returned by Fetch
var (
	ErrInvalidDataURI    = errors.New("invalid data URI")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
)

// fetcher is the implementation of the Fetcher interface.
type fetcher struct {
	client  *http.Client
	rootDir string
	timeout time.Duration
}

// Fetcher retrieves the payload behind a location.
type Fetcher interface {
	// Fetch returns the bytes at uri.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - uri: an absolute location, a data: URI or a filesystem path
	//
	// Returns:
	//   - []byte: the payload
	//   - error: error if the payload cannot be retrieved
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

var _ Fetcher = &fetcher{}

// NewFetcher creates the default Fetcher with the given options applied.
//
// Parameters:
//   - options: a variadic list of FetcherBuilderOption functions
//
// Returns:
//   - Fetcher: the fetcher
func NewFetcher(options ...FetcherBuilderOption) Fetcher {
	f := &fetcher{
		client: http.DefaultClient,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if strings.HasPrefix(uri, "data:") {
		return DecodeDataURI(uri)
	}

	scheme, ok := urlScheme(uri)
	if !ok {
		return f.readFile(uri)
	}

	switch scheme {
	case "http", "https":
		return f.get(ctx, uri)
	case "file":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", uri, err)
		}
		return f.readFile(filepath.FromSlash(u.Path))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

func (f *fetcher) get(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %q: %w", uri, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %q: %w: %s", uri, ErrHTTPStatus, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", uri, err)
	}
	return data, nil
}

func (f *fetcher) readFile(path string) ([]byte, error) {
	if f.rootDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.rootDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return data, nil
}

// DecodeDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
//
// Parameters:
//   - uri: the data URI
//
// Returns:
//   - []byte: the decoded payload
//   - error: error if the URI is malformed or not base64 encoded
func DecodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing ','", ErrInvalidDataURI)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidDataURI, header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64: %w", ErrInvalidDataURI, err)
	}
	return data, nil
}
