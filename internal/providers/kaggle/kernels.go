package kaggle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/pkg/log"
)

const (
	maxKernels     = 5
	maxSnippets    = 5
	snippetContext = 2
	pullWorkers    = 4
)

var sortKeys = map[string]string{
	"votes":  "voteCount",
	"score":  "scoreDescending",
	"recent": "dateRun",
}

var languages = map[string]string{
	"python": "python",
	"r":      "r",
	"all":    "all",
}

type Kernel struct {
	Ref      string    `json:"ref"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Votes    int       `json:"votes"`
	Language string    `json:"language,omitempty"`
	LastRun  time.Time `json:"last_run,omitzero"`
	URL      string    `json:"url"`
}

type Snippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type LibraryUsage struct {
	Library   string  `json:"library"`
	Frequency float64 `json:"frequency"`
}

type apiKernel struct {
	Ref         string    `json:"ref"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	TotalVotes  int       `json:"totalVotes"`
	Language    string    `json:"language"`
	LastRunTime time.Time `json:"lastRunTime"`
}

func KernelURL(ref string) string {
	return "https://www.kaggle.com/code/" + ref
}

func (c *Client) listKernels(ctx context.Context, slug, language, sortBy string, size int) ([]Kernel, error) {
	params := url.Values{
		"language": {language},
		"sortBy":   {sortBy},
		"pageSize": {strconv.Itoa(size)},
		"page":     {"1"},
	}
	if slug != "" {
		params.Set("competition", slug)
	}

	var raw []apiKernel
	if err := c.get(ctx, "/kernels/list", params, &raw); err != nil {
		return nil, fmt.Errorf("list kernels: %w", err)
	}

	out := make([]Kernel, 0, len(raw))
	for _, k := range raw {
		out = append(out, Kernel{
			Ref:      k.Ref,
			Title:    k.Title,
			Author:   k.Author,
			Votes:    k.TotalVotes,
			Language: k.Language,
			LastRun:  k.LastRunTime,
			URL:      KernelURL(k.Ref),
		})
	}
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

// TopKernels lists the best public notebooks of a competition. language is
// python (default), r or all; sortBy is votes (default), score or recent.
func (c *Client) TopKernels(ctx context.Context, slug, language, sortBy string) ([]Kernel, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("%w: empty competition id", core.ErrInvalidArguments)
	}

	lang, ok := languages[strings.ToLower(strings.TrimSpace(language))]
	if language == "" {
		lang, ok = "python", true
	}
	if !ok {
		return nil, fmt.Errorf("%w: unsupported language %q (python, r, all)", core.ErrInvalidArguments, language)
	}

	key, ok := sortKeys[strings.ToLower(strings.TrimSpace(sortBy))]
	if sortBy == "" {
		key, ok = sortKeys["votes"], true
	}
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort key %q (votes, score, recent)", core.ErrInvalidArguments, sortBy)
	}

	return c.listKernels(ctx, slug, lang, key, maxKernels)
}

type kernelPull struct {
	Blob struct {
		Source     string `json:"source"`
		Language   string `json:"language"`
		KernelType string `json:"kernelType"`
	} `json:"blob"`
}

// KernelSource returns the code of a notebook. Notebooks are reduced to the
// concatenated source of their code cells.
func (c *Client) KernelSource(ctx context.Context, ref string) (string, error) {
	owner, slug, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || slug == "" {
		return "", fmt.Errorf("%w: kernel ref %q", core.ErrInvalidArguments, ref)
	}

	var pull kernelPull
	params := url.Values{"userName": {owner}, "kernelSlug": {slug}}
	if err := c.get(ctx, "/kernels/pull", params, &pull); err != nil {
		return "", fmt.Errorf("pull kernel %s: %w", ref, err)
	}

	if pull.Blob.KernelType == "notebook" {
		if code, ok := notebookCode(pull.Blob.Source); ok {
			return code, nil
		}
	}
	return pull.Blob.Source, nil
}

func notebookCode(source string) (string, bool) {
	var nb struct {
		Cells []struct {
			CellType string          `json:"cell_type"`
			Source   json.RawMessage `json:"source"`
		} `json:"cells"`
	}
	if err := json.Unmarshal([]byte(source), &nb); err != nil {
		return "", false
	}

	var b strings.Builder
	for _, cell := range nb.Cells {
		if cell.CellType != "code" {
			continue
		}
		// source is either one string or a list of lines
		var lines []string
		if err := json.Unmarshal(cell.Source, &lines); err != nil {
			var s string
			if err := json.Unmarshal(cell.Source, &s); err != nil {
				continue
			}
			lines = []string{s}
		}
		for _, l := range lines {
			b.WriteString(l)
		}
		b.WriteString("\n")
	}
	return b.String(), true
}

type kernelSource struct {
	kernel Kernel
	code   string
	ok     bool
}

// scanSources pulls the sources of the top voted notebooks with bounded
// concurrency. Notebooks that cannot be pulled are skipped; order is kept.
func (c *Client) scanSources(ctx context.Context, slug string) ([]kernelSource, error) {
	kernels, err := c.listKernels(ctx, slug, "all", sortKeys["votes"], c.scan)
	if err != nil {
		return nil, err
	}

	sources := make([]kernelSource, len(kernels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pullWorkers)
	for i, k := range kernels {
		g.Go(func() error {
			code, err := c.KernelSource(gctx, k.Ref)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.FromCtx(ctx).Debug().Err(err).Str("kernel", k.Ref).Msg("skipping kernel")
				return nil
			}
			sources[i] = kernelSource{kernel: k, code: code, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// SearchCode finds keywords in the sources of top voted notebooks, one
// snippet per notebook with two lines of context on each side.
func (c *Client) SearchCode(ctx context.Context, keywords, slug string) ([]Snippet, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, fmt.Errorf("%w: empty keywords", core.ErrInvalidArguments)
	}

	sources, err := c.scanSources(ctx, slug)
	if err != nil {
		return nil, err
	}

	var out []Snippet
	for _, src := range sources {
		if !src.ok {
			continue
		}
		snippet, found := extractSnippet(src.code, keywords)
		if !found {
			continue
		}
		out = append(out, Snippet{
			Title:   src.kernel.Title,
			URL:     src.kernel.URL,
			Snippet: snippet,
		})
		if len(out) >= maxSnippets {
			break
		}
	}
	return out, nil
}

func extractSnippet(code, keywords string) (string, bool) {
	if !strings.Contains(code, keywords) {
		return "", false
	}
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if !strings.Contains(line, keywords) {
			continue
		}
		lo := max(0, i-snippetContext)
		hi := min(len(lines), i+snippetContext+1)
		return strings.Join(lines[lo:hi], "\n"), true
	}
	// keywords span several lines
	return "", false
}

var importPattern = regexp.MustCompile(`(?m)^(?:import\s+(\w+)|from\s+(\w+)|library\(([\w.]+)\)|require\(([\w.]+)\))`)

// TechStack reports, for each imported library, the share of the scanned
// notebooks that import it. Each notebook counts a library once.
func (c *Client) TechStack(ctx context.Context, slug string) ([]LibraryUsage, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("%w: empty competition id", core.ErrInvalidArguments)
	}

	sources, err := c.scanSources(ctx, slug)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	total := 0
	for _, src := range sources {
		if !src.ok {
			continue
		}
		total++
		for lib := range importedLibraries(src.code) {
			counts[lib]++
		}
	}
	if total == 0 {
		return nil, nil
	}

	out := make([]LibraryUsage, 0, len(counts))
	for lib, n := range counts {
		out = append(out, LibraryUsage{Library: lib, Frequency: float64(n) / float64(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Library < out[j].Library
	})
	return out, nil
}

func importedLibraries(code string) map[string]struct{} {
	libs := make(map[string]struct{})
	for _, m := range importPattern.FindAllStringSubmatch(code, -1) {
		for _, g := range m[1:] {
			if g != "" {
				libs[g] = struct{}{}
			}
		}
	}
	return libs
}
