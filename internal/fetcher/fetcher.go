// Package fetcher downloads remote resources over HTTP with per-host rate
// limiting and retry. All pipeline network traffic goes through it.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// FetchText fetches the URL and returns the response body as a string.
	// Redirects are followed transparently.
	FetchText(ctx context.Context, url string) (string, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
