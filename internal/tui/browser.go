package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/vacancydb/internal/model"
)

// Lines per vacancy in the list (title + subtitle + blank separator).
const vacancyItemHeight = 3

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))
)

type browserModel struct {
	title    string
	rows     []model.VacancyRow
	viewport viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	wantQuit bool
	openFn   func(url string)
}

func newBrowserModel(title string, rows []model.VacancyRow) browserModel {
	return browserModel{
		title:  title,
		rows:   rows,
		openFn: openURL,
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Header (1) + border (2) + status bar (1).
		w, h := max(m.width-2, 20), max(m.height-4, 5)
		if !m.ready {
			m.viewport = viewport.New(w, h)
			m.ready = true
		} else {
			m.viewport.Width = w
			m.viewport.Height = h
		}
		m.viewport.SetContent(renderVacancies(m.rows, m.cursor))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.wantQuit = true
			return m, tea.Quit
		case "esc", "b":
			m.wantQuit = false
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case "enter", "o":
			if len(m.rows) > 0 && m.rows[m.cursor].URL != "" {
				m.openFn(m.rows[m.cursor].URL)
			}
			return m, nil
		}
		// Forward other keys (pgup/pgdn/home/end) to the viewport.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.rows)-1, 0))
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderVacancies(m.rows, m.cursor))

	top := m.cursor * vacancyItemHeight
	bottom := top + vacancyItemHeight - 1
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height + 1)
	}
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	header := headerStyle.Render(fmt.Sprintf("%s (%d)", m.title, len(m.rows)))
	body := borderStyle.Width(m.viewport.Width).Render(m.viewport.View())
	status := statusBarStyle.Width(m.width).Render(" ↑/↓ move  enter/o open link  esc back  q quit")
	return header + "\n" + body + "\n" + status
}

func renderVacancies(rows []model.VacancyRow, cursor int) string {
	if len(rows) == 0 {
		return "  (no vacancies)"
	}

	var b strings.Builder
	for i, r := range rows {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Title))
		b.WriteByte('\n')
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(r.Employer + " · " + salaryText(r)))
		b.WriteByte('\n')
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func salaryText(r model.VacancyRow) string {
	var s string
	switch {
	case r.SalaryFrom != nil && r.SalaryTo != nil:
		s = fmt.Sprintf("%d–%d", *r.SalaryFrom, *r.SalaryTo)
	case r.SalaryFrom != nil:
		s = fmt.Sprintf("from %d", *r.SalaryFrom)
	case r.SalaryTo != nil:
		s = fmt.Sprintf("up to %d", *r.SalaryTo)
	default:
		return "salary not specified"
	}
	if r.Currency != nil {
		s += " " + *r.Currency
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunBrowser shows rows in a full-screen scrollable list.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to go back.
func RunBrowser(title string, rows []model.VacancyRow) (bool, error) {
	p := tea.NewProgram(newBrowserModel(title, rows), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(browserModel).wantQuit, nil
}
