package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/kagglebot/internal/providers/kaggle"
	"github.com/sandevgo/kagglebot/internal/providers/search"
	"github.com/sandevgo/kagglebot/pkg/log"
)

// KaggleAPI is the part of *kaggle.Client the tools use.
type KaggleAPI interface {
	SearchCompetitions(ctx context.Context, query, metric string) ([]kaggle.Competition, error)
	Competition(ctx context.Context, slug string) (kaggle.Competition, error)
	CompetitionExists(ctx context.Context, slug string) (bool, error)
	TopKernels(ctx context.Context, slug, language, sortBy string) ([]kaggle.Kernel, error)
	SearchCode(ctx context.Context, keywords, slug string) ([]kaggle.Snippet, error)
	TechStack(ctx context.Context, slug string) ([]kaggle.LibraryUsage, error)
}

var solutionKeywords = []string{"solution", "1st place", "gold", "winning", "approach", "write-up", "writeup"}

const (
	maxWriteups       = 5
	writeupCandidates = 10
	summaryLibraries  = 10
)

type Writeup struct {
	Title string `json:"title"`
	Score int    `json:"score"`
	URL   string `json:"url"`
}

type similarArgs struct {
	Query  string `json:"query" jsonschema:"Free text describing the problem, e.g. 'loan default prediction'"`
	Metric string `json:"metric,omitempty" jsonschema:"Optional evaluation metric filter, e.g. 'AUC' or 'RMSE'"`
}

type competitionArgs struct {
	CompetitionID string `json:"competition_id" jsonschema:"Competition slug, e.g. 'titanic'"`
}

type kernelsArgs struct {
	CompetitionID string `json:"competition_id" jsonschema:"Competition slug, e.g. 'titanic'"`
	Language      string `json:"language,omitempty" jsonschema:"python (default), r or all"`
	SortBy        string `json:"sort_by,omitempty" jsonschema:"votes (default), score or recent"`
}

type codeArgs struct {
	Keywords      string `json:"keywords" jsonschema:"Code fragment to look for, e.g. 'LGBMClassifier'"`
	CompetitionID string `json:"competition_id,omitempty" jsonschema:"Optional competition slug to restrict the search"`
}

type urlArgs struct {
	URL string `json:"url" jsonschema:"Kaggle competition URL, e.g. https://www.kaggle.com/competitions/titanic"`
}

type summaryArgs struct {
	URL string `json:"url" jsonschema:"Any URL; Kaggle competition URLs get a full competition summary"`
}

// Kaggle wires the Kaggle operations. search and fetch are optional and only
// used for writeups and URL summaries.
type Kaggle struct {
	api    KaggleAPI
	search Searcher
	fetch  *Fetch
}

func NewKaggle(api KaggleAPI, searcher Searcher, fetch *Fetch) *Kaggle {
	return &Kaggle{api: api, search: searcher, fetch: fetch}
}

func (k *Kaggle) Tools() []Tool {
	return []Tool{
		MustFunc("find_similar_competitions",
			"Find past Kaggle competitions similar to a problem description, optionally filtered by evaluation metric. Ranked by number of teams.",
			k.findSimilar),
		MustFunc("get_winning_solution_writeups",
			"Find write-ups of winning solutions (1st place, gold, approach posts) for a competition.",
			k.writeups),
		MustFunc("get_top_scoring_kernels",
			"List the best public notebooks of a competition.",
			k.topKernels),
		MustFunc("search_code_snippets",
			"Search the source code of top public notebooks for a keyword and return matching snippets.",
			k.searchCode),
		MustFunc("analyze_tech_stack",
			"Report which libraries top notebooks of a competition import, as usage frequency between 0 and 1.",
			k.techStack),
		MustFunc("get_competition_id_from_url",
			"Resolve a Kaggle competition URL to its competition id (slug).",
			k.competitionID),
		MustFunc("analyze_competition_by_url",
			"Summarize the page at a URL. Kaggle competition URLs get a summary of the competition, its top notebooks, tech stack and winning write-ups.",
			k.summarizeURL),
	}
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func (k *Kaggle) findSimilar(ctx context.Context, args similarArgs) (string, error) {
	comps, err := k.api.SearchCompetitions(ctx, args.Query, args.Metric)
	if err != nil {
		return "", err
	}
	if len(comps) == 0 {
		return fmt.Sprintf("No similar competitions found for query: '%s'", args.Query), nil
	}

	type row struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Metric    string `json:"metric"`
		TeamCount int    `json:"team_count"`
		URL       string `json:"url"`
	}
	rows := make([]row, 0, len(comps))
	for _, c := range comps {
		rows = append(rows, row{ID: c.Slug, Title: c.Title, Metric: c.Metric, TeamCount: c.TeamCount, URL: c.URL})
	}
	return "Found similar competitions: " + toJSON(rows), nil
}

func (k *Kaggle) writeups(ctx context.Context, args competitionArgs) (string, error) {
	found, err := k.findWriteups(ctx, args.CompetitionID)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return fmt.Sprintf("No winning solution write-ups found for competition ID: %s", args.CompetitionID), nil
	}
	return "Found winning solution write-ups: " + toJSON(found), nil
}

// findWriteups searches the competition's discussion pages and keeps kaggle.com
// results whose title or snippet mentions a solution keyword.
func (k *Kaggle) findWriteups(ctx context.Context, slug string) ([]Writeup, error) {
	if k.search == nil {
		return nil, errors.New("web search is not configured")
	}
	slug = strings.TrimSpace(slug)
	query := fmt.Sprintf("site:kaggle.com %s competition winning solution write-up", slug)
	results, err := k.search.Search(ctx, query, search.Options{Count: writeupCandidates})
	if err != nil {
		return nil, err
	}
	return rankWriteups(results, slug), nil
}

func rankWriteups(results []search.Result, slug string) []Writeup {
	var out []Writeup
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host != "kaggle.com" && !strings.HasSuffix(host, ".kaggle.com") {
			continue
		}

		title := strings.ToLower(r.Title)
		snippet := strings.ToLower(r.Snippet)
		score := 0
		for _, kw := range solutionKeywords {
			if strings.Contains(title, kw) {
				score += 2
			}
			if strings.Contains(snippet, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if slug != "" && strings.Contains(u.Path, "/"+slug) {
			score += 3
		}
		out = append(out, Writeup{Title: r.Title, Score: score, URL: r.URL})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxWriteups {
		out = out[:maxWriteups]
	}
	return out
}

func (k *Kaggle) topKernels(ctx context.Context, args kernelsArgs) (string, error) {
	kernels, err := k.api.TopKernels(ctx, args.CompetitionID, args.Language, args.SortBy)
	if err != nil {
		return "", err
	}
	if len(kernels) == 0 {
		return fmt.Sprintf("No top scoring kernels found for competition ID: %s", args.CompetitionID), nil
	}

	type row struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Votes  int    `json:"votes"`
		URL    string `json:"url"`
	}
	rows := make([]row, 0, len(kernels))
	for _, kn := range kernels {
		rows = append(rows, row{Title: kn.Title, Author: kn.Author, Votes: kn.Votes, URL: kn.URL})
	}
	return "Found top scoring kernels: " + toJSON(rows), nil
}

func (k *Kaggle) searchCode(ctx context.Context, args codeArgs) (string, error) {
	snippets, err := k.api.SearchCode(ctx, args.Keywords, args.CompetitionID)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return fmt.Sprintf("No code snippets found for keywords: '%s'", args.Keywords), nil
	}
	return "Found code snippets: " + toJSON(snippets), nil
}

func (k *Kaggle) techStack(ctx context.Context, args competitionArgs) (string, error) {
	usage, err := k.api.TechStack(ctx, args.CompetitionID)
	if err != nil {
		return "", err
	}
	if len(usage) == 0 {
		return fmt.Sprintf("Could not analyze tech stack for competition ID: %s", args.CompetitionID), nil
	}
	return "Tech stack analysis (library: usage_frequency): " + formatUsage(usage), nil
}

func formatUsage(usage []kaggle.LibraryUsage) string {
	parts := make([]string, 0, len(usage))
	for _, u := range usage {
		parts = append(parts, fmt.Sprintf("%s: %.2f", u.Library, u.Frequency))
	}
	return strings.Join(parts, ", ")
}

func (k *Kaggle) competitionID(ctx context.Context, args urlArgs) (string, error) {
	slug, err := kaggle.ParseCompetitionURL(args.URL)
	if err != nil {
		return "", err
	}
	ok, err := k.api.CompetitionExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("Could not find a competition ID for slug: %s.", slug), nil
	}
	return fmt.Sprintf("The competition ID for %s is %s.", args.URL, slug), nil
}

func (k *Kaggle) summarizeURL(ctx context.Context, args summaryArgs) (string, error) {
	u, err := extractURL(args.URL)
	if err != nil {
		return "", err
	}
	if slug, err := kaggle.ParseCompetitionURL(u); err == nil {
		return k.competitionSummary(ctx, slug), nil
	}
	return k.pageSummary(ctx, u)
}

// competitionSummary gathers every section concurrently. A failing section
// is reported in place and does not fail the summary.
func (k *Kaggle) competitionSummary(ctx context.Context, slug string) string {
	sections := []struct {
		title string
		build func(ctx context.Context) (string, error)
	}{
		{"Competition", func(ctx context.Context) (string, error) {
			c, err := k.api.Competition(ctx, slug)
			if err != nil {
				return "", err
			}
			return formatCompetition(c), nil
		}},
		{"Top notebooks", func(ctx context.Context) (string, error) {
			return k.topKernels(ctx, kernelsArgs{CompetitionID: slug})
		}},
		{"Tech stack", func(ctx context.Context) (string, error) {
			usage, err := k.api.TechStack(ctx, slug)
			if err != nil {
				return "", err
			}
			if len(usage) == 0 {
				return "No notebooks could be analyzed.", nil
			}
			return formatUsage(usage[:min(len(usage), summaryLibraries)]), nil
		}},
		{"Winning write-ups", func(ctx context.Context) (string, error) {
			return k.writeups(ctx, competitionArgs{CompetitionID: slug})
		}},
	}

	bodies := make([]string, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sections {
		g.Go(func() error {
			body, err := s.build(gctx)
			if err != nil {
				log.FromCtx(ctx).Debug().Err(err).Str("section", s.title).Str("competition", slug).Msg("summary section failed")
				body = "Unavailable: " + err.Error()
			}
			bodies[i] = body
			return nil
		})
	}
	_ = g.Wait()

	var b strings.Builder
	fmt.Fprintf(&b, "Summary of Kaggle competition %s (%s)", slug, kaggle.CompetitionURL(slug))
	for i, s := range sections {
		fmt.Fprintf(&b, "\n\n## %s\n%s", s.title, bodies[i])
	}
	return b.String()
}

func formatCompetition(c kaggle.Competition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nMetric: %s\nTeams: %d", c.Title, c.Metric, c.TeamCount)
	if c.Category != "" {
		fmt.Fprintf(&b, "\nCategory: %s", c.Category)
	}
	if c.Reward != "" {
		fmt.Fprintf(&b, "\nReward: %s", c.Reward)
	}
	if !c.Deadline.IsZero() {
		fmt.Fprintf(&b, "\nDeadline: %s", c.Deadline.Format("2006-01-02"))
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s", c.Description)
	}
	return b.String()
}

// pageSummary returns the fetched page text, or web search results about the
// URL when the site blocks direct fetches.
func (k *Kaggle) pageSummary(ctx context.Context, u string) (string, error) {
	if k.fetch == nil {
		return "", errors.New("page fetch is not configured")
	}
	text, err := k.fetch.Text(ctx, u)
	if err == nil {
		return fmt.Sprintf("Content of %s:\n\n%s", u, capRunes(text, MaxPageChars)), nil
	}
	if !Blocked(err) || k.search == nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}

	log.FromCtx(ctx).Debug().Err(err).Str("url", u).Msg("direct fetch blocked, falling back to web search")
	results, serr := k.search.Search(ctx, u, search.Options{})
	if serr != nil {
		return "", errors.Join(fmt.Errorf("fetch %s: %w", u, err), serr)
	}
	return fmt.Sprintf("Direct fetch of %s was blocked (%v). Web search results about it:\n\n%s",
		u, err, search.FormatResults(results)), nil
}
