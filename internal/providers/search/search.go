// Package search provides web search backends behind one Provider interface.
//
// Each backend is registered with a Manager by name; the Manager routes
// queries to the configured primary backend.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const DefaultCount = 5

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Options are optional parameters for a search query.
type Options struct {
	// Count is the maximum number of results. Zero means DefaultCount.
	Count int `json:"count,omitempty"`
}

func (o Options) count() int {
	if o.Count <= 0 {
		return DefaultCount
	}
	return o.Count
}

type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

type Manager struct {
	providers map[string]Provider
	primary   string
}

func NewManager(primary string) *Manager {
	return &Manager{
		providers: make(map[string]Provider),
		primary:   primary,
	}
}

func (m *Manager) Register(p Provider) {
	m.providers[p.Name()] = p
}

// Search runs a query against the primary provider.
func (m *Manager) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	return m.SearchWith(ctx, m.primary, query, opts)
}

func (m *Manager) SearchWith(ctx context.Context, provider, query string, opts Options) ([]Result, error) {
	p, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("search provider %q not configured", provider)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	return p.Search(ctx, query, opts)
}

func (m *Manager) Primary() string {
	return m.primary
}

// FormatResults renders results as a numbered list.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(r.Title)
		b.WriteString("\n   URL: ")
		b.WriteString(r.URL)
		if r.Snippet != "" {
			b.WriteString("\n   Snippet: ")
			b.WriteString(r.Snippet)
		}
	}
	return b.String()
}
