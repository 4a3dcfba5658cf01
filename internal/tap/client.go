// Package tap provides a client for IVOA Table Access Protocol services.
// Queries are ADQL; results come back as VOTable documents. Large queries
// go through the asynchronous UWS endpoint with polling; table uploads use
// inline multipart VOTables, which is how the identifier resolver joins
// foreign rows against the canonical service.
package tap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/life-td/targetdb-cli/internal/votable"
)

// Querier is the minimal query interface adapters depend on, so tests can
// substitute a fake service.
type Querier interface {
	// Query runs an ADQL statement, optionally uploading tables referenced
	// as TAP_UPLOAD.<name>, and returns the result table.
	Query(ctx context.Context, adql string, uploads map[string]*votable.Table) (*votable.Table, error)
}

const (
	// DefaultMaxRec bounds result size per query.
	DefaultMaxRec = 1_600_000

	defaultPollInitial = 1 * time.Second
	defaultPollCap     = 20 * time.Second
)

// Client talks to a single TAP service base URL.
type Client struct {
	base    string
	hc      *http.Client
	limiter *rate.Limiter
	maxRec  int
	sync    bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithMaxRec overrides the per-query row limit.
func WithMaxRec(n int) Option {
	return func(c *Client) { c.maxRec = n }
}

// WithRateLimit caps outgoing queries per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithSync forces the synchronous endpoint, used by tests and for small
// metadata queries.
func WithSync() Option {
	return func(c *Client) { c.sync = true }
}

// NewClient creates a TAP client for the given service base URL
// (e.g. "https://simbad.cds.unistra.fr/simbad/sim-tap").
func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 10 * time.Minute},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		maxRec:  DefaultMaxRec,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Query implements Querier. The asynchronous path submits a UWS job, polls
// its phase with capped exponential backoff, and fetches the result.
func (c *Client) Query(ctx context.Context, adql string, uploads map[string]*votable.Table) (*votable.Table, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "tap: rate limiter")
	}

	if c.sync {
		return c.querySync(ctx, adql, uploads)
	}
	return c.queryAsync(ctx, adql, uploads)
}

func (c *Client) querySync(ctx context.Context, adql string, uploads map[string]*votable.Table) (*votable.Table, error) {
	resp, err := c.submit(ctx, c.base+"/sync", adql, uploads)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError("tap: sync query", resp)
	}
	return parseResult(resp.Body)
}

func (c *Client) queryAsync(ctx context.Context, adql string, uploads map[string]*votable.Table) (*votable.Table, error) {
	resp, err := c.submit(ctx, c.base+"/async", adql, uploads)
	if err != nil {
		return nil, err
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	// UWS redirects to the job URL on creation.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusSeeOther {
		return nil, httpError("tap: submit job", resp)
	}
	jobURL := resp.Request.URL.String()
	if loc := resp.Header.Get("Location"); loc != "" {
		jobURL = loc
	}

	if err := c.awaitJob(ctx, jobURL); err != nil {
		return nil, err
	}

	res, err := c.get(ctx, jobURL+"/results/result")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, httpError("tap: fetch result", res)
	}
	return parseResult(res.Body)
}

// submit posts the query. With uploads it uses multipart/form-data and
// inline VOTable parts; without it uses a plain form post.
func (c *Client) submit(ctx context.Context, endpoint, adql string, uploads map[string]*votable.Table) (*http.Response, error) {
	var body bytes.Buffer
	var contentType string

	params := map[string]string{
		"REQUEST": "doQuery",
		"LANG":    "ADQL",
		"FORMAT":  "votable",
		"MAXREC":  strconv.Itoa(c.maxRec),
		"QUERY":   adql,
	}
	if strings.HasSuffix(endpoint, "/async") {
		params["PHASE"] = "RUN"
	}

	if len(uploads) > 0 {
		mw := multipart.NewWriter(&body)
		var uploadSpec []string
		for name := range uploads {
			uploadSpec = append(uploadSpec, fmt.Sprintf("%s,param:%s", name, name))
		}
		params["UPLOAD"] = strings.Join(uploadSpec, ";")

		for k, v := range params {
			if err := mw.WriteField(k, v); err != nil {
				return nil, eris.Wrap(err, "tap: write form field")
			}
		}
		for name, table := range uploads {
			part, err := mw.CreateFormFile(name, name+".xml")
			if err != nil {
				return nil, eris.Wrap(err, "tap: create upload part")
			}
			doc := &votable.Document{Resource: votable.Resource{Tables: []votable.Table{*table}}}
			if err := votable.Write(part, doc); err != nil {
				return nil, eris.Wrap(err, "tap: write upload table")
			}
		}
		if err := mw.Close(); err != nil {
			return nil, eris.Wrap(err, "tap: close multipart writer")
		}
		contentType = mw.FormDataContentType()
	} else {
		form := url.Values{}
		for k, v := range params {
			form.Set(k, v)
		}
		body.WriteString(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, eris.Wrap(err, "tap: build request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "tap: POST %s", endpoint)
	}
	return resp, nil
}

// awaitJob polls the UWS phase endpoint until the job completes.
func (c *Client) awaitJob(ctx context.Context, jobURL string) error {
	interval := defaultPollInitial
	for {
		resp, err := c.get(ctx, jobURL+"/phase")
		if err != nil {
			return err
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return eris.Wrap(err, "tap: read job phase")
		}

		phase := strings.TrimSpace(string(raw))
		switch phase {
		case "COMPLETED":
			return nil
		case "ERROR", "ABORTED":
			return eris.Errorf("tap: job ended in phase %s", phase)
		case "PENDING", "QUEUED", "EXECUTING", "RUN":
			zap.L().Debug("tap: job still running", zap.String("phase", phase))
		default:
			zap.L().Warn("tap: unexpected job phase", zap.String("phase", phase))
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return eris.Wrap(ctx.Err(), "tap: await job")
		case <-timer.C:
		}
		interval *= 2
		if interval > defaultPollCap {
			interval = defaultPollCap
		}
	}
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "tap: build request")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "tap: GET %s", u)
	}
	return resp, nil
}

func parseResult(r io.Reader) (*votable.Table, error) {
	doc, err := votable.Parse(r)
	if err != nil {
		return nil, err
	}
	return doc.First()
}

func httpError(action string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return eris.Errorf("%s: HTTP %d: %s", action, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
