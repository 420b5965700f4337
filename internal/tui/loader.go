package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

type workDoneMsg struct {
	err error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	ctx     context.Context
	cancel  context.CancelFunc
	workFn  func(ctx context.Context) error
	frame   int
	started time.Time
	elapsed time.Duration
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doWork(), m.tick())
}

func (m loaderModel) doWork() tea.Cmd {
	ctx, workFn := m.ctx, m.workFn
	return func() tea.Msg {
		return workDoneMsg{err: workFn(ctx)}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		m.elapsed = time.Since(m.started)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// Cancel the work and wait for it to report back.
			m.cancel()
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s... %s\n", spinnerStyle.Render(spinnerFrames[m.frame]), m.label, m.elapsed.Truncate(time.Second))
}

// RunLoader shows an inline spinner labelled label while workFn runs, and
// returns workFn's error. ctrl+c cancels the context passed to workFn.
func RunLoader(ctx context.Context, label string, workFn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:   label,
		ctx:     ctx,
		cancel:  cancel,
		workFn:  workFn,
		started: time.Now(),
	}
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	return result.(loaderModel).err
}
