// Package ui renders task listings and the optional terminal viewer.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/task-cli/internal/todo"
)

// DefaultRefreshInterval is how often the viewer reloads the task file.
const DefaultRefreshInterval = 2 * time.Second

// TaskStore is the subset of *todo.Store the viewer needs.
type TaskStore interface {
	Path() string
	List(status todo.Status) ([]todo.Task, error)
	SetStatus(id int, status todo.Status) error
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	refreshInterval time.Duration
}

// WithRefreshInterval sets how often the task file is reloaded.
// Zero disables periodic reloads.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		c.refreshInterval = d
	}
}

// RunTUI starts the interactive viewer over store.
func RunTUI(ctx context.Context, store TaskStore, opts ...TUIOption) error {
	c := &tuiConfig{
		refreshInterval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(store, c.refreshInterval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

type tuiModel struct {
	store        TaskStore
	tasks        []todo.Task
	cursor       int
	filter       todo.Status
	loadErr      error
	fatalErr     error
	message      string
	showHelp     bool
	tickInterval time.Duration
	styles       tuiStyles
}

type tuiStyles struct {
	title    lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	errText  lipgloss.Style
	status   statusStyles
}

type tickMsg time.Time

func newTUIModel(store TaskStore, interval time.Duration) *tuiModel {
	r := lipgloss.DefaultRenderer()
	return &tuiModel{
		store:        store,
		tickInterval: interval,
		styles: tuiStyles{
			title:    r.NewStyle().Bold(true),
			selected: r.NewStyle().Reverse(true),
			muted:    r.NewStyle().Faint(true),
			errText:  r.NewStyle().Foreground(lipgloss.Color("9")),
			status:   newStatusStyles(r),
		},
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "1":
			m.setFilter(todo.StatusTodo)
		case "2":
			m.setFilter(todo.StatusInProgress)
		case "3":
			m.setFilter(todo.StatusDone)
		case "0":
			m.setFilter("")
		case "t":
			m.markSelected(todo.StatusTodo)
		case "i":
			m.markSelected(todo.StatusInProgress)
		case "d":
			m.markSelected(todo.StatusDone)
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Tasks") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	}

	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}

	if m.loadErr != nil {
		b.WriteString(m.styles.errText.Render("Error loading task file:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		m.writeFooter(&b)
		return b.String()
	}

	if len(m.tasks) == 0 {
		b.WriteString("  " + NoTasksMessage + "\n\n")
	} else {
		for i, t := range m.tasks {
			line := fmt.Sprintf("%s %d: %s", m.styles.status.render(t.Status, StatusLabel(t.Status)), t.ID, t.Description)
			if i == m.cursor {
				b.WriteString("> " + m.styles.selected.Render(line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(m.message + "\n\n")
	}
	m.writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	if d <= 0 {
		return nil
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh reloads tasks from the store and keeps the cursor in range.
func (m *tuiModel) refresh() {
	tasks, err := m.store.List(m.filter)
	if err != nil {
		m.loadErr = err
		m.tasks = nil
		m.cursor = 0
		return
	}
	m.loadErr = nil
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) setFilter(status todo.Status) {
	m.filter = status
	m.cursor = 0
	m.refresh()
}

// markSelected sets the status of the task under the cursor.
func (m *tuiModel) markSelected(status todo.Status) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return
	}
	id := m.tasks[m.cursor].ID
	if err := m.store.SetStatus(id, status); err != nil {
		m.message = m.styles.errText.Render(fmt.Sprintf("Task %d: %v", id, err))
		m.refresh()
		return
	}
	m.message = fmt.Sprintf("Task %d marked as %s.", id, status)
	m.refresh()
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, esc, ctrl+c  Quit\n")
	b.WriteString("  j/k, arrows     Move selection\n")
	b.WriteString("  r, F5           Reload task file\n")
	b.WriteString("  h, ?            Toggle this help screen\n")
	b.WriteString("  1               Filter by todo\n")
	b.WriteString("  2               Filter by in-progress\n")
	b.WriteString("  3               Filter by done\n")
	b.WriteString("  0               Clear filter\n")
	b.WriteString("  t               Mark selected as todo\n")
	b.WriteString("  i               Mark selected as in-progress\n")
	b.WriteString("  d               Mark selected as done\n\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	footer := "Press h for help | q to quit"
	if m.tickInterval > 0 {
		footer += fmt.Sprintf(" | Refreshing every %s", m.tickInterval)
	}
	footer += " | " + m.store.Path()
	b.WriteString(m.styles.muted.Render(footer) + "\n")
}
