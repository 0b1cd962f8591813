// Package kaggle is a client for the public Kaggle REST API (v1). Competitions
// are addressed by slug, notebooks ("kernels") by "owner/slug" refs.
package kaggle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/pkg/log"
	"github.com/sandevgo/kagglebot/pkg/retry"
)

const (
	DefaultBaseURL  = "https://www.kaggle.com/api/v1"
	DefaultScan     = 20
	DefaultCacheTTL = 6 * time.Hour

	maxBody = 8 << 20
)

type Option func(*Client)

// WithCache stores successful GET responses for ttl.
func WithCache(repo core.CacheRepository, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = repo
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithScanLimit sets how many top-voted notebooks code search and tech
// stack analysis read.
func WithScanLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.scan = n
		}
	}
}

func WithRetrier(r *retry.Retrier) Option {
	return func(c *Client) {
		c.retrier = r
	}
}

type Client struct {
	baseURL    string
	username   string
	key        string
	httpClient *http.Client
	retrier    *retry.Retrier
	cache      core.CacheRepository
	cacheTTL   time.Duration
	scan       int
}

func New(baseURL, username, key string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		key:        key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retrier:    retry.NewDefaultRetrier(),
		cacheTTL:   DefaultCacheTTL,
		scan:       DefaultScan,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get fetches path and decodes the JSON body into out. Responses are served
// from the cache when present.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	if data, ok := c.cached(ctx, endpoint); ok {
		if err := json.Unmarshal(data, out); err == nil {
			return nil
		}
	}

	var data []byte
	err := c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", core.AppUserAgent)
		if c.username != "" {
			req.SetBasicAuth(c.username, c.key)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return fmt.Errorf("kaggle request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			data = body
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return retry.Permanent(fmt.Errorf("%w: %s", core.ErrNotFound, path))
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return retry.Permanent(fmt.Errorf("kaggle http %d: check KAGGLE_USERNAME and KAGGLE_KEY", resp.StatusCode))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("kaggle http %d", resp.StatusCode)
		default:
			return retry.Permanent(fmt.Errorf("kaggle http %d: %s", resp.StatusCode, clip(body)))
		}
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	c.store(ctx, endpoint, data)
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	val, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("key", key).Msg("kaggle cache read failed")
		return nil, false
	}
	return []byte(val), ok
}

func (c *Client) store(ctx context.Context, key string, data []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, key, string(data), c.cacheTTL); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("key", key).Msg("kaggle cache write failed")
	}
}

// IsNotFound reports whether err means the competition or notebook does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

func clip(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
