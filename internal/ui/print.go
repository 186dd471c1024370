package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/task-cli/internal/todo"
)

// Output formats accepted by PrintTasks.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NoTasksMessage is printed by the text format for an empty listing.
const NoTasksMessage = "No tasks found."

// PrintOptions controls list rendering.
type PrintOptions struct {
	Format string
	// Color styles status labels; only meaningful for the text format.
	Color bool
}

// PrintTasks writes tasks to w in the requested format.
func PrintTasks(w io.Writer, tasks []todo.Task, opts PrintOptions) error {
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return printText(w, tasks, opts.Color)
	case FormatJSON:
		data, err := todo.Marshal(tasks)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		if tasks == nil {
			tasks = []todo.Task{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (expected text|json|yaml)", opts.Format)
	}
}

// printText writes one "[STATUS] id: description" line per task.
func printText(w io.Writer, tasks []todo.Task, color bool) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, NoTasksMessage)
		return err
	}

	var styles statusStyles
	if color {
		styles = newStatusStyles(lipgloss.NewRenderer(w))
	}
	for _, t := range tasks {
		label := StatusLabel(t.Status)
		if color {
			label = styles.render(t.Status, label)
		}
		if _, err := fmt.Fprintf(w, "%s %d: %s\n", label, t.ID, t.Description); err != nil {
			return err
		}
	}
	return nil
}

// StatusLabel returns the bracketed, upper-cased status, e.g. "[IN-PROGRESS]".
func StatusLabel(s todo.Status) string {
	return "[" + strings.ToUpper(string(s)) + "]"
}

type statusStyles struct {
	todo       lipgloss.Style
	inProgress lipgloss.Style
	done       lipgloss.Style
	other      lipgloss.Style
}

func newStatusStyles(r *lipgloss.Renderer) statusStyles {
	return statusStyles{
		todo:       r.NewStyle().Foreground(lipgloss.Color("12")),
		inProgress: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		done:       r.NewStyle().Foreground(lipgloss.Color("10")),
		other:      r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s statusStyles) render(status todo.Status, text string) string {
	switch status {
	case todo.StatusTodo:
		return s.todo.Render(text)
	case todo.StatusInProgress:
		return s.inProgress.Render(text)
	case todo.StatusDone:
		return s.done.Render(text)
	default:
		return s.other.Render(text)
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
