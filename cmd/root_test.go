// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/task-cli/internal/config"
	"github.com/nibzard/task-cli/internal/todo"
)

// setupProject isolates config lookup and changes into an empty project
// directory. It returns the default task file path.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	project := filepath.Join(root, "project")
	for _, dir := range []string{home, project} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		"TASK_CLI_FILE",
		"TASK_CLI_LIST_FORMAT",
		"TASK_CLI_LOG_LEVEL",
		"TASK_CLI_LOG_FORMAT",
		"TASK_CLI_LOG_TIMESTAMPS",
		"TASK_CLI_LOG_CALLER",
	} {
		t.Setenv(key, "")
	}
	if wd, err := os.Getwd(); err != nil {
		t.Fatalf("getwd: %v", err)
	} else {
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	if err := os.Chdir(project); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	return filepath.Join(project, todo.DefaultFile)
}

// run executes the CLI and returns what it wrote.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := RunWithIO(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// mustRun executes the CLI and fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := run(t, args...)
	if err != nil {
		t.Fatalf("Run(%v) error = %v (stderr: %s)", args, err, stderr)
	}
	return stdout
}

func loadTasks(t *testing.T, path string) []todo.Task {
	t.Helper()
	tasks, err := todo.NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}
	return tasks
}

// TestRun tests the global flags and dispatching.
func TestRun(t *testing.T) {
	setupProject(t)

	t.Run("shows help with --help flag", func(t *testing.T) {
		out := mustRun(t, "--help")
		if !strings.Contains(out, "Commands:") {
			t.Errorf("help output missing commands:\n%s", out)
		}
	})

	t.Run("shows help with -h flag", func(t *testing.T) {
		mustRun(t, "-h")
	})

	t.Run("shows help with help command", func(t *testing.T) {
		out := mustRun(t, "help")
		if !strings.Contains(out, "mark-in-progress") {
			t.Errorf("help output missing mark-in-progress:\n%s", out)
		}
	})

	t.Run("shows version", func(t *testing.T) {
		for _, arg := range []string{"--version", "-v", "version"} {
			out := mustRun(t, arg)
			if out != "task-cli version "+Version+"\n" {
				t.Errorf("%s: output = %q", arg, out)
			}
		}
	})

	t.Run("no arguments prints usage", func(t *testing.T) {
		out := mustRun(t)
		if !strings.HasPrefix(out, "Usage: task-cli <command> [options]") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("unknown command returns usage error", func(t *testing.T) {
		_, stderr, err := run(t, "unknown-command")
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			t.Fatalf("expected *UsageError, got %v", err)
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("error = %v", err)
		}
		if !strings.Contains(stderr, "Unknown command: unknown-command") {
			t.Errorf("stderr = %q", stderr)
		}
	})
}

func TestTaskLifecycle(t *testing.T) {
	path := setupProject(t)

	if out := mustRun(t, "add", "Buy", "milk"); out != "Task added successfully (ID: 1)\n" {
		t.Errorf("add output = %q", out)
	}
	if out := mustRun(t, "add", "Walk dog"); out != "Task added successfully (ID: 2)\n" {
		t.Errorf("add output = %q", out)
	}
	if out := mustRun(t, "mark-in-progress", "2"); out != "Task marked as in-progress.\n" {
		t.Errorf("mark-in-progress output = %q", out)
	}
	if out := mustRun(t, "list", "in-progress"); out != "[IN-PROGRESS] 2: Walk dog\n" {
		t.Errorf("list in-progress output = %q", out)
	}
	if out := mustRun(t, "delete", "1"); out != "Task deleted successfully.\n" {
		t.Errorf("delete output = %q", out)
	}
	if out := mustRun(t, "list"); out != "[IN-PROGRESS] 2: Walk dog\n" {
		t.Errorf("list output = %q", out)
	}
	if out := mustRun(t, "add", "Call mom"); out != "Task added successfully (ID: 3)\n" {
		t.Errorf("add output = %q", out)
	}
	if out := mustRun(t, "update", "3", "Call", "dad"); out != "Task updated successfully.\n" {
		t.Errorf("update output = %q", out)
	}
	if out := mustRun(t, "mark-done", "3"); out != "Task marked as done.\n" {
		t.Errorf("mark-done output = %q", out)
	}

	tasks := loadTasks(t, path)
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].ID != 2 || tasks[1].ID != 3 {
		t.Errorf("ids = %d, %d; want 2, 3", tasks[0].ID, tasks[1].ID)
	}
	if tasks[1].Description != "Call dad" || tasks[1].Status != todo.StatusDone {
		t.Errorf("task 3 = %+v", tasks[1])
	}
	if tasks[0].UpdatedAt.Before(tasks[0].CreatedAt.Time) {
		t.Errorf("updatedAt before createdAt: %+v", tasks[0])
	}
}

func TestNotFoundPrintsMessage(t *testing.T) {
	path := setupProject(t)

	for _, args := range [][]string{
		{"update", "99", "Nothing"},
		{"delete", "99"},
		{"mark-in-progress", "99"},
		{"mark-done", "99"},
	} {
		out, _, err := run(t, args...)
		if err != nil {
			t.Errorf("%v: error = %v, want nil", args, err)
		}
		if out != NotFoundMessage+"\n" {
			t.Errorf("%v: output = %q, want %q", args, out, NotFoundMessage+"\n")
		}
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed lookups should not create the task file: %v", err)
	}
}

func TestNotFoundLeavesDocumentUnchanged(t *testing.T) {
	path := setupProject(t)
	mustRun(t, "add", "Keep me")

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	mustRun(t, "delete", "7")
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("document changed:\nbefore: %s\nafter: %s", before, after)
	}
}

func TestUsageErrors(t *testing.T) {
	setupProject(t)
	mustRun(t, "add", "Existing")

	tests := []struct {
		name string
		args []string
	}{
		{"add without description", []string{"add"}},
		{"update without description", []string{"update", "1"}},
		{"update with non-numeric id", []string{"update", "one", "text"}},
		{"delete without id", []string{"delete"}},
		{"delete with non-numeric id", []string{"delete", "abc"}},
		{"delete with extra args", []string{"delete", "1", "2"}},
		{"mark-done without id", []string{"mark-done"}},
		{"mark-in-progress with non-numeric id", []string{"mark-in-progress", "x"}},
		{"list unknown status", []string{"list", "blocked"}},
		{"list extra args", []string{"list", "todo", "done"}},
		{"list unknown format", []string{"list", "-format", "xml"}},
		{"unknown global flag", []string{"-nope", "list"}},
		{"config extra args", []string{"config", "bogus"}},
		{"doctor extra args", []string{"doctor", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			var usageErr *UsageError
			if !errors.As(err, &usageErr) {
				t.Errorf("Run(%v) error = %v, want *UsageError", tt.args, err)
			}
		})
	}
}

func TestListFormats(t *testing.T) {
	setupProject(t)

	if out := mustRun(t, "list"); out != "No tasks found.\n" {
		t.Errorf("empty list output = %q", out)
	}
	if out := mustRun(t, "list", "-format", "json"); out != "[]\n" {
		t.Errorf("empty json output = %q", out)
	}

	mustRun(t, "add", "Buy milk")
	mustRun(t, "add", "Walk dog")
	mustRun(t, "mark-done", "1")

	t.Run("status filter", func(t *testing.T) {
		if out := mustRun(t, "list", "todo"); out != "[TODO] 2: Walk dog\n" {
			t.Errorf("output = %q", out)
		}
		if out := mustRun(t, "list", "DONE"); out != "[DONE] 1: Buy milk\n" {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("global json format", func(t *testing.T) {
		out := mustRun(t, "-format", "json", "list")
		var tasks []map[string]interface{}
		if err := json.Unmarshal([]byte(out), &tasks); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if len(tasks) != 2 || tasks[0]["status"] != "done" {
			t.Errorf("tasks = %v", tasks)
		}
	})

	t.Run("list yaml format", func(t *testing.T) {
		out := mustRun(t, "list", "-format", "yaml", "todo")
		if !strings.Contains(out, "description: Walk dog") || strings.Contains(out, "Buy milk") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("format from environment", func(t *testing.T) {
		t.Setenv("TASK_CLI_LIST_FORMAT", "json")
		out := mustRun(t, "list", "done")
		if !strings.HasPrefix(out, "[\n  {") {
			t.Errorf("output = %q", out)
		}
	})
}

func TestFileFlag(t *testing.T) {
	defaultPath := setupProject(t)
	custom := filepath.Join(t.TempDir(), "work.json")

	mustRun(t, "-file", custom, "add", "Elsewhere")

	if tasks := loadTasks(t, custom); len(tasks) != 1 || tasks[0].Description != "Elsewhere" {
		t.Errorf("custom file tasks = %+v", tasks)
	}
	if _, err := os.Stat(defaultPath); !os.IsNotExist(err) {
		t.Errorf("default file should not exist: %v", err)
	}

	t.Setenv("TASK_CLI_FILE", custom)
	if out := mustRun(t, "list"); out != "[TODO] 1: Elsewhere\n" {
		t.Errorf("list via env output = %q", out)
	}
}

func TestCorruptFile(t *testing.T) {
	path := setupProject(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	for _, args := range [][]string{{"list"}, {"add", "x"}, {"delete", "1"}} {
		_, _, err := run(t, args...)
		if !errors.Is(err, todo.ErrCorruptStore) {
			t.Errorf("%v: error = %v, want ErrCorruptStore", args, err)
		}
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			t.Errorf("%v: corrupt file should not be a usage error", args)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if string(data) != "{not json" {
		t.Errorf("corrupt file was overwritten: %q", data)
	}
}

func TestDoctorCommand(t *testing.T) {
	path := setupProject(t)

	t.Run("missing file passes", func(t *testing.T) {
		out := mustRun(t, "doctor")
		if !strings.Contains(out, "Not found") || !strings.Contains(out, "All checks passed") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("valid file passes", func(t *testing.T) {
		mustRun(t, "add", "Buy milk")
		mustRun(t, "mark-done", "1")
		out := mustRun(t, "doctor", "-v")
		for _, want := range []string{"Valid", "Tasks: 1", "done: 1", "[DONE] 1: Buy milk"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("invalid file fails", func(t *testing.T) {
		doc := `[
  {"id": 1, "description": "a", "status": "todo", "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"},
  {"id": 1, "description": "b", "status": "blocked", "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"}
]
`
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("WriteFile error = %v", err)
		}
		out, _, err := run(t, "doctor")
		if err == nil {
			t.Fatal("expected doctor to fail")
		}
		if !strings.Contains(out, "Validation failed") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("corrupt file fails", func(t *testing.T) {
		if err := os.WriteFile(path, []byte(`{"tasks": []}`), 0o644); err != nil {
			t.Fatalf("WriteFile error = %v", err)
		}
		out, _, err := run(t, "doctor")
		if err == nil {
			t.Fatal("expected doctor to fail")
		}
		if !strings.Contains(out, "Load error") {
			t.Errorf("output:\n%s", out)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	setupProject(t)
	if err := os.WriteFile("task-cli.toml", []byte("list_format = \"yaml\"\ncolour = true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	t.Setenv("TASK_CLI_LOG_LEVEL", "error")

	out, stderr, err := run(t, "-log-caller", "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	for _, want := range []string{
		`list_format     = "yaml"`,
		"(project file)",
		"(environment)",
		"(flag)",
		"(default)",
		"Unknown keys:",
		"colour",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Unknown keys are warnings, which the error level suppresses.
	if strings.Contains(stderr, "unknown config key") {
		t.Errorf("stderr = %q", stderr)
	}

	t.Setenv("TASK_CLI_LOG_LEVEL", "")
	_, stderr, err = run(t, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(stderr, "unknown config key") {
		t.Errorf("expected unknown key warning, stderr = %q", stderr)
	}
}

func TestConfigExample(t *testing.T) {
	setupProject(t)
	if out := mustRun(t, "config", "example"); out != config.ExampleConfig() {
		t.Errorf("output does not match example config:\n%s", out)
	}
}

func TestInvalidConfigIsNotUsageError(t *testing.T) {
	setupProject(t)

	t.Setenv("TASK_CLI_LOG_LEVEL", "loud")
	_, _, err := run(t, "list")
	if err == nil || !strings.Contains(err.Error(), "configuring logging") {
		t.Fatalf("error = %v, want logging config error", err)
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		t.Error("config error should not be a usage error")
	}

	t.Setenv("TASK_CLI_LOG_LEVEL", "")
	if err := os.WriteFile("task-cli.toml", []byte("list_format = \n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	if _, _, err := run(t, "list"); err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want config load error", err)
	}
}

func TestDebugLogging(t *testing.T) {
	setupProject(t)

	_, stderr, err := run(t, "-log-level", "debug", "add", "Logged")
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	if !strings.Contains(stderr, "dispatching") {
		t.Errorf("expected debug output, stderr = %q", stderr)
	}

	_, stderr, err = run(t, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if stderr != "" {
		t.Errorf("default level should be quiet, stderr = %q", stderr)
	}
}

func TestTUIRequiresTerminal(t *testing.T) {
	setupProject(t)
	if _, _, err := run(t, "tui", "-refresh", "0"); err == nil {
		t.Error("expected error when stdout is not a terminal")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"-3", -3, false},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
