package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the wizard. Update returns nil once the step is done.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *Settings, width, height int) (Step, tea.Cmd)
	View(state *Settings) string
}

func getSteps(runtimePath string) []Step {
	return []Step{
		NewProviderStep(),
		NewCustomURLStep(),
		NewAPIKeyStep(),
		NewModelStep(),
		NewKaggleUsernameStep(),
		NewKaggleKeyStep(),
		NewTelegramChoiceStep(),
		NewTelegramTokenStep(),
		NewTelegramOwnerStep(),
		NewSaveStep(runtimePath),
	}
}

type errMsg error
type nextMsg struct{}

type model struct {
	steps       []Step
	currentStep int
	state       *Settings
	// visited holds the steps the user answered, for going back with esc
	visited     []int
	quitting    bool
	err         error
	width       int
	height      int
}

func initialModel(runtimePath string) model {
	return model{
		steps:       getSteps(runtimePath),
		currentStep: 0,
		state:       &Settings{},
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case errMsg:
		m.err = msg
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if n := len(m.visited); n > 0 {
				m.currentStep = m.visited[n-1]
				m.visited = m.visited[:n-1]
				return m, m.steps[m.currentStep].Init()
			}
			return m, nil
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)

	if nextStep == nil {
		// Step indicated completion, move to next
		if _, answered := msg.(tea.KeyMsg); answered {
			m.visited = append(m.visited, m.currentStep)
		}
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			// All steps completed
			return m, tea.Quit
		}
		// Steps act on their first message, so kick the next one
		return m, tea.Batch(m.steps[m.currentStep].Init(), next)
	}

	// If the step returned a different step (e.g., for branching), update current
	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}

	progress := itemStyle.Render(fmt.Sprintf("step %d of %d, esc goes back", m.currentStep+1, len(m.steps)))
	return titleStyle.Render("KaggleBot setup") + "\n" + progress + "\n\n" + m.steps[m.currentStep].View(m.state)
}

func next() tea.Msg {
	return nextMsg{}
}

// RunWizard collects the settings and writes them under runtimePath.
func RunWizard(runtimePath string) (*Settings, error) {
	p := tea.NewProgram(initialModel(runtimePath), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.err != nil {
		return nil, finalModel.err
	}
	if finalModel.quitting {
		return nil, fmt.Errorf("setup interrupted")
	}

	return finalModel.state, nil
}
