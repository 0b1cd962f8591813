package kaggle

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/kagglebot/internal/core"
)

const maxCompetitions = 5

type Competition struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Metric      string    `json:"metric"`
	TeamCount   int       `json:"team_count"`
	Category    string    `json:"category,omitempty"`
	Reward      string    `json:"reward,omitempty"`
	Deadline    time.Time `json:"deadline,omitzero"`
	URL         string    `json:"url"`
}

type apiCompetition struct {
	Ref              string    `json:"ref"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	EvaluationMetric string    `json:"evaluationMetric"`
	TeamCount        int       `json:"teamCount"`
	Category         string    `json:"category"`
	Reward           string    `json:"reward"`
	Deadline         time.Time `json:"deadline"`
	URL              string    `json:"url"`
}

func (a apiCompetition) competition() Competition {
	slug := slugFromRef(a.Ref)
	u := a.URL
	if u == "" {
		u = CompetitionURL(slug)
	}
	return Competition{
		Slug:        slug,
		Title:       a.Title,
		Description: a.Description,
		Metric:      a.EvaluationMetric,
		TeamCount:   a.TeamCount,
		Category:    a.Category,
		Reward:      a.Reward,
		Deadline:    a.Deadline,
		URL:         u,
	}
}

// slugFromRef accepts both "titanic" and "https://www.kaggle.com/competitions/titanic".
func slugFromRef(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func CompetitionURL(slug string) string {
	return "https://www.kaggle.com/competitions/" + slug
}

func (c *Client) listCompetitions(ctx context.Context, search string) ([]Competition, error) {
	params := url.Values{
		"search": {search},
		"page":   {"1"},
	}
	var raw []apiCompetition
	if err := c.get(ctx, "/competitions/list", params, &raw); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	out := make([]Competition, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.competition())
	}
	return out, nil
}

// SearchCompetitions finds competitions matching query, optionally filtered
// by a case-insensitive metric substring, ranked by team count.
func (c *Client) SearchCompetitions(ctx context.Context, query, metric string) ([]Competition, error) {
	all, err := c.listCompetitions(ctx, query)
	if err != nil {
		return nil, err
	}

	metric = strings.ToLower(strings.TrimSpace(metric))
	matched := make([]Competition, 0, len(all))
	for _, comp := range all {
		if metric != "" && !strings.Contains(strings.ToLower(comp.Metric), metric) {
			continue
		}
		matched = append(matched, comp)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TeamCount > matched[j].TeamCount
	})
	if len(matched) > maxCompetitions {
		matched = matched[:maxCompetitions]
	}
	return matched, nil
}

// Competition looks up one competition by exact slug.
func (c *Client) Competition(ctx context.Context, slug string) (Competition, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Competition{}, fmt.Errorf("%w: empty competition id", core.ErrInvalidArguments)
	}
	all, err := c.listCompetitions(ctx, slug)
	if err != nil {
		return Competition{}, err
	}
	for _, comp := range all {
		if strings.EqualFold(comp.Slug, slug) {
			return comp, nil
		}
	}
	return Competition{}, fmt.Errorf("%w: competition %q", core.ErrNotFound, slug)
}

func (c *Client) CompetitionExists(ctx context.Context, slug string) (bool, error) {
	_, err := c.Competition(ctx, slug)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// ParseCompetitionURL extracts the slug from a kaggle.com/c/<slug> or
// kaggle.com/competitions/<slug> URL.
func ParseCompetitionURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidArguments, err)
	}

	host := strings.ToLower(u.Hostname())
	if host != "kaggle.com" && !strings.HasSuffix(host, ".kaggle.com") {
		return "", fmt.Errorf("%w: not a Kaggle URL: %s", core.ErrInvalidArguments, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || (parts[0] != "c" && parts[0] != "competitions") || parts[1] == "" {
		return "", fmt.Errorf("%w: invalid Kaggle competition URL format: %s", core.ErrInvalidArguments, raw)
	}
	return parts[1], nil
}
