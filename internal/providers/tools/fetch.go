package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/pkg/retry"
)

const (
	maxResponseSize     = 1 << 20 // 1MB limit
	DefaultFetchTimeout = 10 * time.Second
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

var errUnreachable = errors.New("unreachable")

// Blocked reports whether the page refused us (401, 403, 429) or could not be
// reached at all. Callers fall back to a web search in that case.
func Blocked(err error) bool {
	if errors.Is(err, errUnreachable) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return true
		}
	}
	return false
}

type Fetch struct {
	client  *http.Client
	retrier *retry.Retrier
	policy  *bluemonday.Policy
}

func NewFetchWithTimeout(timeout time.Duration, retryCfg *retry.Config) *Fetch {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetch{
		client: &http.Client{
			Timeout: timeout,
		},
		retrier: retry.NewRetrier(retryCfg),
		policy:  readablePolicy(),
	}
}

// readablePolicy keeps the article markup and drops page chrome with its content.
func readablePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.SkipElementsContent("script", "style", "header", "footer", "nav", "noscript", "svg")
	return p
}

// Text fetches rawURL and returns its readable text. HTML is sanitized and
// converted to text; other content types are returned as is.
func (f *Fetch) Text(ctx context.Context, rawURL string) (string, error) {
	var text string
	err := f.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("%w: %v", core.ErrInvalidArguments, err))
		}
		req.Header.Set("User-Agent", core.BrowserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			return fmt.Errorf("%w: %v", errUnreachable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			se := &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
			if resp.StatusCode >= 500 {
				return se
			}
			return retry.Permanent(se)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("%w: read body: %v", errUnreachable, err)
		}

		text, err = f.convert(resp.Header.Get("Content-Type"), body)
		if err != nil {
			return retry.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (f *Fetch) convert(contentType string, body []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "" && mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		return strings.TrimSpace(string(body)), nil
	}

	clean := f.policy.SanitizeBytes(body)
	text, err := html2text.FromReader(bytes.NewReader(clean), html2text.Options{
		OmitLinks:    false,
		PrettyTables: true,
	})
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return compactLines(text), nil
}

// compactLines trims every line and drops the empty ones.
func compactLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
