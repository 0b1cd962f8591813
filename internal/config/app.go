package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/kagglebot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"KAGGLEBOT_RUNTIME_PATH" envDefault:".kagglebot"`

	// Reasoning backend
	Provider            string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model               string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	GoogleAPIKey        string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey    string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL       string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey        string `env:"OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`

	// Agent loop
	MaxIterations      int `env:"AGENT_MAX_ITERATIONS" envDefault:"8"`
	MemoryCapacity     int `env:"MEMORY_CAPACITY" envDefault:"20"`
	ContextWindowSize  int `env:"CONTEXT_WINDOW_SIZE" envDefault:"5"`
	ToolResultMaxBytes int `env:"TOOL_RESULT_MAX_BYTES" envDefault:"4000"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
}

// ParseAppConfig reads the environment and checks that the selected provider
// has its credentials.
func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be at least 1, got %d", c.MaxIterations)
	}
	if c.MemoryCapacity < 1 {
		return fmt.Errorf("MEMORY_CAPACITY must be at least 1, got %d", c.MemoryCapacity)
	}
	if c.ContextWindowSize < 1 {
		return fmt.Errorf("CONTEXT_WINDOW_SIZE must be at least 1, got %d", c.ContextWindowSize)
	}

	missing := func(key string) error {
		return fmt.Errorf("%s not found. Please set it in your environment or %s", key, filepath.Join(c.RuntimePath, ".env"))
	}
	switch c.Provider {
	case "gemini":
		if c.GoogleAPIKey == "" {
			return missing("GOOGLE_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return missing("OPENAI_API_KEY")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return missing("ANTHROPIC_API_KEY")
		}
	case "openrouter":
		if c.OpenRouterAPIKey == "" {
			return missing("OPENROUTER_API_KEY")
		}
	case "ollama":
		if c.OllamaBaseURL == "" {
			return missing("OLLAMA_BASE_URL")
		}
	case "custom":
		if c.CustomOpenAIBaseURL == "" {
			return missing("CUSTOM_OPENAI_BASE_URL")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "kagglebot.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
