package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	menuTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginLeft(2)

	menuOptionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	menuActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	menuHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginLeft(2)
)

const pickerQuit = -1

type pickerModel struct {
	title   string
	options []string
	cursor  int
	chosen  int
	done    bool
}

func newPickerModel(title string, options []string) pickerModel {
	return pickerModel{title: title, options: options, chosen: pickerQuit}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if len(m.options) == 0 {
		m.done = true
		return m, tea.Quit
	}

	k := km.String()
	switch k {
	case "q", "esc", "ctrl+c":
		m.chosen = pickerQuit
		m.done = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.options)
	case "enter":
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	default:
		// Digits pick an option directly, matching the numbers shown.
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if i := int(k[0] - '1'); i < len(m.options) {
				m.cursor, m.chosen, m.done = i, i, true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n" + menuTitleStyle.Render(m.title) + "\n\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		if i == m.cursor {
			b.WriteString("  > " + menuActiveStyle.Render(line) + "\n")
		} else {
			b.WriteString("    " + menuOptionStyle.Render(line) + "\n")
		}
	}
	b.WriteString("\n" + menuHelpStyle.Render("↑/↓ or number to choose · enter select · q quit") + "\n")
	return b.String()
}

// RunPicker asks the user to choose one of options and returns its index,
// or -1 when they quit without choosing.
func RunPicker(title string, options []string) (int, error) {
	result, err := tea.NewProgram(newPickerModel(title, options)).Run()
	if err != nil {
		return pickerQuit, err
	}
	return result.(pickerModel).chosen, nil
}
