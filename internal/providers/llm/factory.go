package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.AppConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.GoogleAPIKey, cfg.Model)
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIFamily(cfg.Provider, "", cfg.OpenAIAPIKey, cfg.Model)
	case "openrouter":
		return NewOpenAIFamily(cfg.Provider, "", cfg.OpenRouterAPIKey, cfg.Model)
	case "ollama":
		return NewOpenAIFamily(cfg.Provider, cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model)
	case "custom":
		return NewOpenAIFamily(cfg.Provider, cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
