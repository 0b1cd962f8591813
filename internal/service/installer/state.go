package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/kagglebot/pkg/env"
)

// Settings is what the wizard writes to <runtime>/.env. Tags match the
// config package so the file is read back without translation.
type Settings struct {
	Provider            string `env:"LLM_PROVIDER"`
	Model               string `env:"LLM_MODEL"`
	GoogleAPIKey        string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey    string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL       string `env:"OLLAMA_BASE_URL"`
	OllamaAPIKey        string `env:"OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`

	KaggleUsername string `env:"KAGGLE_USERNAME"`
	KaggleKey      string `env:"KAGGLE_KEY"`

	EnableTelegram  bool   `env:"ENABLE_TELEGRAM"`
	TelegramToken   string `env:"TELEGRAM_TOKEN"`
	TelegramOwnerID int64  `env:"TELEGRAM_OWNER_ID"`
}

// provider ids accepted by LLM_PROVIDER, in menu order.
var providers = []string{"gemini", "openai", "anthropic", "openrouter", "ollama", "custom"}

var defaultModels = map[string]string{
	"gemini":     "gemini-2.5-flash",
	"openai":     "gpt-4o-mini",
	"anthropic":  "claude-sonnet-4-5",
	"openrouter": "google/gemini-2.5-flash",
	"ollama":     "llama3.1",
	"custom":     "",
}

// setAPIKey stores key in the field the selected provider reads.
func (s *Settings) setAPIKey(key string) {
	switch s.Provider {
	case "gemini":
		s.GoogleAPIKey = key
	case "openai":
		s.OpenAIAPIKey = key
	case "anthropic":
		s.AnthropicAPIKey = key
	case "openrouter":
		s.OpenRouterAPIKey = key
	case "ollama":
		s.OllamaAPIKey = key
	case "custom":
		s.CustomOpenAIAPIKey = key
	}
}

func (s *Settings) setOwnerID(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		s.TelegramOwnerID = 0
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("owner id must be a number, got %q", v)
	}
	s.TelegramOwnerID = id
	return nil
}

// Env renders the settings as .env content. Empty values are left out.
func (s *Settings) Env() (string, error) {
	return env.MarshalEnv(s)
}
