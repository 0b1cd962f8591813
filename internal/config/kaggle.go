package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/kagglebot/pkg/log"
)

type KaggleConfig struct {
	Username string        `env:"KAGGLE_USERNAME"`
	Key      string        `env:"KAGGLE_KEY"`
	APIURL   string        `env:"KAGGLE_API_URL" envDefault:"https://www.kaggle.com/api/v1"`
	CacheTTL time.Duration `env:"KAGGLE_CACHE_TTL" envDefault:"6h"`
	// ScanKernels is how many top-voted notebooks code search and tech stack
	// analysis read.
	ScanKernels int `env:"KAGGLE_SCAN_KERNELS" envDefault:"20"`
}

func ParseKaggleConfig() (*KaggleConfig, error) {
	c := &KaggleConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewKaggleConfig(ctx context.Context) *KaggleConfig {
	c, err := ParseKaggleConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Kaggle config")
	}
	if c.Username == "" || c.Key == "" {
		log.FromCtx(ctx).Warn().Msg("KAGGLE_USERNAME or KAGGLE_KEY not set, Kaggle API calls will be anonymous")
	}
	return c
}
