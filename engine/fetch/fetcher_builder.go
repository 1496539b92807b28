package fetch

import (
	"net/http"
	"time"
)

// FetcherBuilderOption is a functional option for configuring a Fetcher via NewFetcher.
type FetcherBuilderOption func(*fetcher)

// WithHTTPClient sets the client used for http and https locations. Defaults to http.DefaultClient.
//
// Parameters:
//   - c: the HTTP client
//
// Returns:
//   - FetcherBuilderOption: a function that applies the client option to a fetcher
func WithHTTPClient(c *http.Client) FetcherBuilderOption {
	return func(f *fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithRootDir sets the directory relative filesystem paths are read from.
//
// Parameters:
//   - dir: the root directory
//
// Returns:
//   - FetcherBuilderOption: a function that applies the root directory option to a fetcher
func WithRootDir(dir string) FetcherBuilderOption {
	return func(f *fetcher) {
		f.rootDir = dir
	}
}

// WithTimeout bounds every single fetch. Zero disables the bound.
//
// Parameters:
//   - d: the timeout
//
// Returns:
//   - FetcherBuilderOption: a function that applies the timeout option to a fetcher
func WithTimeout(d time.Duration) FetcherBuilderOption {
	return func(f *fetcher) {
		f.timeout = d
	}
}
