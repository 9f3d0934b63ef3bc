package watch

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// CheckResult is one validation pass over the tasks file.
type CheckResult struct {
	Snap   *task.Snapshot
	Issues []task.Issue
	Err    error
	At     time.Time
}

// CheckFunc reloads the tasks file and validates it.
type CheckFunc func() CheckResult

type tickMsg time.Time
type changeMsg struct{}

// Model is the Bubbletea model for live validation of a tasks file.
type Model struct {
	path    string
	check   CheckFunc
	changes <-chan struct{}

	res    CheckResult
	checks int
	frame  int
	width  int
	height int
}

// NewModel creates the watch model and runs the first check so the initial
// frame already shows a verdict.
func NewModel(path string, check CheckFunc, changes <-chan struct{}) Model {
	return Model{
		path:    path,
		check:   check,
		changes: changes,
		res:     check(),
		checks:  1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForChange())
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return changeMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.res = m.check()
			m.checks++
		}

	case changeMsg:
		m.res = m.check()
		m.checks++
		return m, m.waitForChange()

	case tickMsg:
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	spinner := spinnerChars[m.frame%len(spinnerChars)]
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s taskdeps watch — %s", spinner, m.path)))
	b.WriteString("\n")

	checked := "never"
	if !m.res.At.IsZero() {
		checked = m.res.At.Format("15:04:05")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  checks: %d  last: %s", m.checks, checked)))
	b.WriteString("\n\n")

	switch {
	case m.res.Err != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("  ✗ load failed: %v", m.res.Err)))
		b.WriteString("\n")
	case m.res.Snap == nil:
		b.WriteString(dimStyle.Render("  waiting for first check"))
		b.WriteString("\n")
	case len(m.res.Issues) == 0:
		tasks, subtasks := m.res.Snap.Counts()
		b.WriteString(okStyle.Render(fmt.Sprintf("  ✓ %d tasks, %d subtasks, no dependency issues", tasks, subtasks)))
		b.WriteString("\n")
	default:
		for _, is := range m.res.Issues {
			b.WriteString(issueLine(is))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("  %d issues", len(m.res.Issues))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  r: re-check  q: quit"))
	return b.String()
}

func issueLine(is task.Issue) string {
	style := errStyle
	icon := "✗"
	if is.Kind == task.IssueSelf {
		style = warnStyle
		icon = "⚠"
	}
	return style.Render(fmt.Sprintf("  %s %-10s %-8s %s", icon, string(is.Kind), is.Owner.String(), is.Message))
}
