// Package fetch retrieves reference files over HTTP, FTP, or from the
// local filesystem. The disk catalog VOTable and the binary catalog are
// not served over TAP, so adapters go through this package for them.
package fetch

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a URL and returns the body. file:// URLs and bare
// paths read from disk.
type Fetcher interface {
	Download(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Client routes by URL scheme: http(s), ftp, or local file.
type Client struct {
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// New creates a Client with default HTTP and FTP fetchers.
func New() *Client {
	return &Client{
		http: NewHTTPFetcher(HTTPOptions{}),
		ftp:  NewFTPFetcher(FTPOptions{}),
	}
}

// Download implements Fetcher.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse url %q", rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		return c.http.Download(ctx, rawURL)
	case "ftp":
		return c.ftp.Download(ctx, rawURL)
	case "", "file":
		path := u.Path
		if u.Scheme == "" {
			path = rawURL
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: open %s", path)
		}
		return f, nil
	default:
		return nil, eris.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
}
