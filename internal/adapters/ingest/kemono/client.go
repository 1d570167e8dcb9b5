// Package kemono is a small client for the kemono.cr / coomer.st post API.
// Errors carry perr codes: transport failures and 5xx are Unavailable, 404 is NotFound,
// 429 is TooManyRequests and undecodable bodies are JSON
package kemono

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "mediarelay"
	defaultMaxBody = 8 << 20
)

// Options configures the Client
type Options struct {
	// BaseURL replaces https://{domain} for every domain; empty means the real hosts
	BaseURL   string
	UserAgent string

	// Timeout bounds metadata calls; file downloads are bounded by ctx only
	Timeout time.Duration

	// MaxBody caps decoded JSON bodies
	MaxBody int64
}

// Client talks to the remote content API
type Client struct {
	meta *http.Client
	data *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return &Client{
		meta: &http.Client{Timeout: o.Timeout},
		data: &http.Client{},
		opts: o,
		log:  *logger.Named("kemono"),
		now:  time.Now,
	}
}

func (c *Client) base(domain string) string {
	if c.opts.BaseURL != "" {
		return c.opts.BaseURL
	}
	return "https://" + domain
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "build request %s", url)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	return req, nil
}

// getJSON issues a GET and decodes the body into out
func (c *Client) getJSON(ctx context.Context, url, what string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.meta.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s", what)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("url", url).Msg("close body failed")
		}
	}()

	c.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("kemono http response")

	if err := perr.FromStatus(resp.StatusCode, what); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
		return err
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.opts.MaxBody)).Decode(out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s", what)
	}
	return nil
}

// Probe issues a HEAD for url and returns the advertised content length.
// known is false when the server does not send a usable Content-Length
func (c *Client) Probe(ctx context.Context, url string) (size int64, known bool, err error) {
	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return 0, false, err
	}
	resp, err := c.meta.Do(req)
	if err != nil {
		return 0, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "probe %s", url)
	}
	_ = resp.Body.Close()
	if err := perr.FromStatus(resp.StatusCode, "probe"); err != nil {
		return 0, false, err
	}
	if resp.ContentLength >= 0 {
		return resp.ContentLength, true, nil
	}
	n, convErr := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if convErr != nil || n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}

// Open starts a GET for url; the caller must close the returned body
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	resp, err := c.data.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "download %s", url)
	}
	if err := perr.FromStatus(resp.StatusCode, "download"); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}
