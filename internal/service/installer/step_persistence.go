package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/kagglebot/internal/service/agent"
)

var ErrEnvExists = errors.New(".env file already exists")

// writeRuntime creates the runtime directory, the .env file and a SYSTEM.md
// seeded with the built-in instruction. An existing .env is never overwritten;
// an existing SYSTEM.md is kept.
func writeRuntime(dir string, s *Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf("%w at %s", ErrEnvExists, envPath)
	}

	content, err := s.Env()
	if err != nil {
		return fmt.Errorf("failed to render settings: %w", err)
	}
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		return err
	}

	systemPath := filepath.Join(dir, "SYSTEM.md")
	if _, err := os.Stat(systemPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(systemPath, []byte(agent.DefaultSystemPrompt+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", systemPath, err)
		}
	}
	return nil
}

// SaveStep writes the collected configuration to the runtime directory.
type SaveStep struct {
	dir   string
	saved bool
}

func NewSaveStep(dir string) Step {
	return &SaveStep{dir: dir}
}

func (s *SaveStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveStep) Update(msg tea.Msg, state *Settings, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return s, nil
	}
	if err := writeRuntime(s.dir, state); err != nil {
		return s, func() tea.Msg { return errMsg(err) }
	}
	s.saved = true
	return nil, nil
}

func (s *SaveStep) View(state *Settings) string {
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}
