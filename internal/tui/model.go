// Package tui is the default ripsession.UI adapter: a bubbletea program
// that renders live rip progress and blocks for yes/no device-swap and
// Datel-acknowledgement prompts, grounded on internal/scraper/progress.go's
// spinner+progress-bar model.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/discripper/discripper/internal/ripsession"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	crcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Model is the bubbletea model backing Adapter. It only renders what
// Adapter feeds it through progressMsg/promptMsg/clearPromptMsg; it never
// reaches back into ripsession directly.
type Model struct {
	startTime time.Time
	quitting  bool

	last     ripsession.Progress
	haveLast bool

	prompting   bool
	promptTitle string
	promptSub   string

	spinner  spinner.Model
	progress progress.Model

	shared *shared
}

// NewModel builds the Model for a fresh rip. shared is the Adapter's
// synchronization point for button state and prompt responses.
func NewModel(shared *shared) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		startTime: time.Now(),
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient()),
		shared:    shared,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

type progressMsg ripsession.Progress

type promptMsg struct {
	title, sub string
}

type clearPromptMsg struct{}

type quitMsg struct{}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompting {
			switch msg.String() {
			case "y", "Y", "enter":
				m.shared.answerPrompt(true)
				m.prompting = false
			case "n", "N", "esc":
				m.shared.answerPrompt(false)
				m.prompting = false
			}
			return m, nil
		}
		switch msg.String() {
		case "b":
			m.shared.setButton(func(b *ripsession.Buttons) { b.B = true })
		case "y":
			m.shared.setButton(func(b *ripsession.Buttons) { b.Y = true })
		case "ctrl+c":
			m.shared.setButton(func(b *ripsession.Buttons) { b.B = true })
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case progressMsg:
		m.last = ripsession.Progress(msg)
		m.haveLast = true
		return m, nil

	case promptMsg:
		m.prompting = true
		m.promptTitle = msg.title
		m.promptSub = msg.sub
		return m, nil

	case clearPromptMsg:
		m.prompting = false
		return m, nil

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.prompting {
		b.WriteString(promptStyle.Render(" " + m.promptTitle))
		b.WriteString("\n ")
		b.WriteString(m.promptSub)
		b.WriteString(dimStyle.Render("  [y/n]\n\n"))
	}

	if !m.haveLast {
		b.WriteString(fmt.Sprintf(" %s identifying disc...\n", m.spinner.View()))
		return b.String()
	}

	b.WriteString(fmt.Sprintf(" %s %-10s ", m.spinner.View(), m.last.DiscKindStr))
	b.WriteString(m.progress.ViewAs(m.last.Percent / 100))
	b.WriteString(fmt.Sprintf("  %.1f/%.1f MiB  %s\n", m.last.MBDone, m.last.MBTotal, m.last.RateText))

	if m.last.ShowChecksums {
		b.WriteString(crcStyle.Render(" (checksums shown per Y toggle)\n"))
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(" elapsed %s    [b] cancel  [y] toggle checksums\n",
		time.Since(m.startTime).Round(time.Second))))

	return b.String()
}
