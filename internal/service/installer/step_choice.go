package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// choiceStep is a single-select menu.
type choiceStep struct {
	title   string
	choices []string
	cursor  int
	apply   func(s *Settings, choice string)
}

func (s *choiceStep) Init() tea.Cmd {
	return nil
}

func (s *choiceStep) Update(msg tea.Msg, state *Settings, width, height int) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.choices)-1 {
			s.cursor++
		}
	case "enter":
		s.apply(state, s.choices[s.cursor])
		return nil, nil
	}
	return s, nil
}

func (s *choiceStep) View(state *Settings) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", choice)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", choice)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}

func NewProviderStep() Step {
	return &choiceStep{
		title:   "Select your reasoning backend:",
		choices: providers,
		apply: func(s *Settings, choice string) {
			s.Provider = choice
			if choice == "ollama" && s.OllamaBaseURL == "" {
				s.OllamaBaseURL = "http://localhost:11434"
			}
		},
	}
}

func NewTelegramChoiceStep() Step {
	return &choiceStep{
		title:   "Run the Telegram bot (kagglebot serve)?",
		choices: []string{"No", "Yes"},
		apply: func(s *Settings, choice string) {
			s.EnableTelegram = choice == "Yes"
		},
	}
}
