package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputStep collects one text value. The prompt and placeholder may depend
// on earlier answers, so the input is built lazily on first use.
type inputStep struct {
	input textinput.Model
	ready bool
	err   error

	title       func(s *Settings) string
	placeholder func(s *Settings) string
	secret      bool
	optional    bool
	optionalIf  func(s *Settings) bool
	// skip leaves the step without asking.
	skip  func(s *Settings) bool
	apply func(s *Settings, v string) error
}

func (s *inputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *inputStep) prepare(state *Settings) {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	if s.placeholder != nil {
		ti.Placeholder = s.placeholder(state)
	}
	if s.secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	s.input = ti
	s.ready = true
}

func (s *inputStep) Update(msg tea.Msg, state *Settings, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}
	if !s.ready {
		s.prepare(state)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && !s.isOptional(state) {
			s.err = fmt.Errorf("a value is required")
			return s, cmd
		}
		if err := s.apply(state, val); err != nil {
			s.err = err
			return s, cmd
		}
		return nil, nil
	}
	return s, cmd
}

func (s *inputStep) View(state *Settings) string {
	if !s.ready {
		s.prepare(state)
	}
	var b strings.Builder
	b.WriteString(s.title(state))
	if s.isOptional(state) {
		b.WriteString(" (optional - press Enter to skip)")
	}
	b.WriteString(":\n\n" + s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}

func (s *inputStep) isOptional(state *Settings) bool {
	return s.optional || (s.optionalIf != nil && s.optionalIf(state))
}

func static(v string) func(*Settings) string {
	return func(*Settings) string { return v }
}

func NewCustomURLStep() Step {
	return &inputStep{
		title:       static("Enter the OpenAI-compatible base URL"),
		placeholder: static("https://api.example.com/v1"),
		skip:        func(s *Settings) bool { return s.Provider != "custom" },
		apply: func(s *Settings, v string) error {
			s.CustomOpenAIBaseURL = v
			return nil
		},
	}
}

func NewAPIKeyStep() Step {
	return &inputStep{
		title: func(s *Settings) string {
			return fmt.Sprintf("Enter your %s API key", s.Provider)
		},
		placeholder: func(s *Settings) string {
			switch s.Provider {
			case "anthropic":
				return "sk-ant-..."
			case "openai":
				return "sk-..."
			case "openrouter":
				return "sk-or-v1-..."
			case "gemini":
				return "AIza..."
			}
			return ""
		},
		secret:     true,
		optionalIf: func(s *Settings) bool { return s.Provider == "ollama" || s.Provider == "custom" },
		apply: func(s *Settings, v string) error {
			s.setAPIKey(v)
			return nil
		},
	}
}

func NewModelStep() Step {
	return &inputStep{
		title: static("Enter the model name"),
		placeholder: func(s *Settings) string {
			if m := defaultModels[s.Provider]; m != "" {
				return m + " (default)"
			}
			return "model-name"
		},
		optional: true,
		apply: func(s *Settings, v string) error {
			if v == "" {
				v = defaultModels[s.Provider]
			}
			s.Model = v
			return nil
		},
	}
}

func NewKaggleUsernameStep() Step {
	return &inputStep{
		title:       static("Enter your Kaggle username"),
		placeholder: static("see kaggle.com/settings > API"),
		apply: func(s *Settings, v string) error {
			s.KaggleUsername = v
			return nil
		},
	}
}

func NewKaggleKeyStep() Step {
	return &inputStep{
		title:  static("Enter your Kaggle API key"),
		secret: true,
		apply: func(s *Settings, v string) error {
			s.KaggleKey = v
			return nil
		},
	}
}

func NewTelegramTokenStep() Step {
	return &inputStep{
		title:       static("Enter your Telegram bot token"),
		placeholder: static("123456789:ABCDEF..."),
		secret:      true,
		skip:        func(s *Settings) bool { return !s.EnableTelegram },
		apply: func(s *Settings, v string) error {
			s.TelegramToken = v
			return nil
		},
	}
}

func NewTelegramOwnerStep() Step {
	return &inputStep{
		title:       static("Enter your Telegram user id (only this user may chat)"),
		placeholder: static("123456789"),
		optional:    true,
		skip:        func(s *Settings) bool { return !s.EnableTelegram },
		apply:       (*Settings).setOwnerID,
	}
}
