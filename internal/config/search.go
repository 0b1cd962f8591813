package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/kagglebot/pkg/log"
)

type SearchConfig struct {
	Provider     string        `env:"SEARCH_PROVIDER" envDefault:"duckduckgo"`
	SearXNGURL   string        `env:"SEARXNG_URL"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
}

func ParseSearchConfig() (*SearchConfig, error) {
	c := &SearchConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	switch c.Provider {
	case "duckduckgo":
	case "searxng":
		if c.SearXNGURL == "" {
			return nil, fmt.Errorf("SEARXNG_URL is required when SEARCH_PROVIDER=searxng")
		}
	default:
		return nil, fmt.Errorf("unknown SEARCH_PROVIDER %q", c.Provider)
	}
	return c, nil
}

func NewSearchConfig(ctx context.Context) *SearchConfig {
	c, err := ParseSearchConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Search config")
	}
	return c
}
