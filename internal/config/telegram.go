package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/kagglebot/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	// OwnerID restricts the bot to one user; 0 serves everyone.
	OwnerID int64 `env:"TELEGRAM_OWNER_ID" envDefault:"0"`
}

func ParseTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c, err := ParseTelegramConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
