package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/providers/search"
)

// MaxPageChars bounds the page text handed back to the model.
const MaxPageChars = 10000

// Searcher is satisfied by *search.Manager.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// extractURL accepts a bare URL or free text containing one.
func extractURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if m := urlPattern.FindString(s); m != "" {
		return strings.TrimRight(m, ".,;)"), nil
	}
	if s != "" && !strings.ContainsAny(s, " \t\n") && strings.Contains(s, ".") {
		return "https://" + s, nil
	}
	return "", fmt.Errorf("%w: no valid URL found in %q", core.ErrInvalidArguments, s)
}

func capRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type webSearchArgs struct {
	Query string `json:"query" jsonschema:"Search query"`
	Count int    `json:"count,omitempty" jsonschema:"Number of results (default 5)"`
}

type webFetchArgs struct {
	URL string `json:"url" jsonschema:"URL of the page to read"`
}

// WebTools returns web_search and web_fetch. Either dependency may be nil,
// in which case its tool is left out.
func WebTools(searcher Searcher, fetch *Fetch) []Tool {
	var out []Tool
	if searcher != nil {
		out = append(out, MustFunc("web_search",
			"Search the web. Returns numbered results with title, URL and snippet.",
			func(ctx context.Context, args webSearchArgs) (string, error) {
				results, err := searcher.Search(ctx, args.Query, search.Options{Count: args.Count})
				if err != nil {
					return "", err
				}
				if len(results) == 0 {
					return fmt.Sprintf("No results found for query: %s", args.Query), nil
				}
				return search.FormatResults(results), nil
			}))
	}
	if fetch != nil {
		out = append(out, MustFunc("web_fetch",
			"Fetch a web page and return its readable text (scripts, styles and navigation removed, first 10000 characters).",
			func(ctx context.Context, args webFetchArgs) (string, error) {
				u, err := extractURL(args.URL)
				if err != nil {
					return "", err
				}
				text, err := fetch.Text(ctx, u)
				if err != nil {
					return "", fmt.Errorf("fetch %s: %w", u, err)
				}
				return capRunes(text, MaxPageChars), nil
			}))
	}
	return out
}
