package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RPS        float64
}

// HTTPFetcher downloads files over HTTP with rate limiting and retries on
// transient status codes.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a fetcher with sane defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RPS == 0 {
		opts.RPS = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "targetdb-cli (life-td)"
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), 1),
	}
}

// Download fetches the URL and returns the response body. Responses with
// status 429 or 5xx are retried with doubling backoff.
func (f *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: build request %s", url)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		switch {
		case err != nil:
			lastErr = eris.Wrapf(err, "fetch: GET %s", url)
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
			lastErr = eris.Errorf("fetch: GET %s: HTTP %d", url, resp.StatusCode)
		default:
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
			return nil, eris.Errorf("fetch: GET %s: HTTP %d", url, resp.StatusCode)
		}

		if attempt < f.opts.MaxRetries {
			zap.L().Warn("fetch: retrying download",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, eris.Wrap(ctx.Err(), "fetch: cancelled")
			case <-timer.C:
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}
