package agent

import (
	"fmt"
	"os"
	"strings"
)

// DefaultSystemPrompt is used when no SYSTEM.md is present in the runtime directory.
const DefaultSystemPrompt = `You are KaggleBot, an assistant for Kaggle competitions.
Answer questions about competitions, winning solutions, public notebooks and the libraries they use.
Use the available operations to look facts up instead of guessing. Competitions are identified by their slug
(for example "titanic" or "home-credit-default-risk"); resolve URLs to slugs first.
When an operation fails, decide whether another operation can answer the question or explain what is missing.
Keep answers concise and cite the URLs returned by the operations.`

// LoadSystemPrompt returns the contents of path, or the built-in instruction
// when the file is missing or empty.
func LoadSystemPrompt(path string) string {
	if path == "" {
		return DefaultSystemPrompt
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return DefaultSystemPrompt
	}
	if s := strings.TrimSpace(string(content)); s != "" {
		return s
	}
	return DefaultSystemPrompt
}

func initialPrompt(window, query string) string {
	return fmt.Sprintf("Based on the conversation so far: %s, process the following query: %s", window, query)
}

func observationPrompt(name, result string) string {
	return fmt.Sprintf("Operation `%s` returned: `%s`. Decide the next step; if you already have a final answer, state it directly.", name, result)
}
