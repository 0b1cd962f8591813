package llm

import (
	"fmt"
	"strings"

	"github.com/sandevgo/kagglebot/internal/core"
)

// preset holds what differs between chat-completions backends.
type preset struct {
	baseURL string
	headers map[string]string
	// urlRequired backends have no public endpoint.
	urlRequired bool
}

var presets = map[string]preset{
	"openai": {baseURL: "https://api.openai.com"},
	"openrouter": {
		baseURL: "https://openrouter.ai/api",
		headers: map[string]string{
			"HTTP-Referer": core.AppRepositoryURL,
			"X-Title":      core.AppName,
		},
	},
	"ollama": {baseURL: "http://localhost:11434"},
	"custom": {urlRequired: true},
}

// NewOpenAIFamily returns a client for one of the OpenAI-compatible backends.
// baseURL overrides the preset endpoint; a trailing /v1 is accepted.
func NewOpenAIFamily(name, baseURL, apiKey, model string) (*OpenAICompatible, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown openai-compatible backend: %s", name)
	}
	if baseURL == "" {
		if p.urlRequired {
			return nil, fmt.Errorf("%s backend needs a base URL", name)
		}
		baseURL = p.baseURL
	}
	if model == "" {
		return nil, fmt.Errorf("%s backend needs a model name", name)
	}

	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      normalizeBaseURL(baseURL),
		APIKey:       apiKey,
		Model:        model,
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ExtraHeaders: p.headers,
	}), nil
}

// normalizeBaseURL strips the trailing slash and /v1; requests add /v1 themselves.
func normalizeBaseURL(u string) string {
	u = strings.TrimRight(u, "/")
	return strings.TrimSuffix(u, "/v1")
}
