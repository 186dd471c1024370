// Package cmd implements the CLI command structure for task-cli.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/task-cli/internal/config"
	"github.com/nibzard/task-cli/internal/logging"
	"github.com/nibzard/task-cli/internal/todo"
	"github.com/nibzard/task-cli/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// NotFoundMessage is printed when a command names an unknown task id.
const NotFoundMessage = "Task not found."

// UsageError reports invalid command-line arguments.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// app carries the per-invocation state shared by the subcommands.
type app struct {
	cfg    *config.ConfigWithSources
	store  *todo.Store
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// Run executes the task-cli CLI.
func Run(ctx context.Context, args []string) error {
	return RunWithIO(ctx, args, os.Stdout, os.Stderr)
}

// RunWithIO executes the CLI with explicit output streams.
func RunWithIO(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("task-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, config.ErrInvalidFlags) {
			return &UsageError{Msg: err.Error()}
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	cfg := cws.Config
	logOpts, err := logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	logger := logging.New(stderr, logOpts)
	for _, key := range cws.Unknown {
		logger.Warn("unknown config key", "key", key)
	}

	a := &app{
		cfg:    cws,
		store:  todo.NewStore(cfg.TaskFile, todo.WithLogger(logger)),
		logger: logger,
		stdout: stdout,
		stderr: stderr,
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Fprintln(stdout, "Usage: task-cli <command> [options]")
		fmt.Fprintln(stdout, "Run 'task-cli help' for the list of commands.")
		return nil
	}
	subcommand, rest := remaining[0], remaining[1:]
	logger.Debug("dispatching", "command", subcommand, "file", cfg.TaskFile)

	err = a.dispatch(ctx, fs, subcommand, rest)
	if errors.Is(err, todo.ErrNotFound) {
		logger.Debug("lookup failed", "err", err)
		fmt.Fprintln(stdout, NotFoundMessage)
		return nil
	}
	return err
}

func (a *app) dispatch(ctx context.Context, fs *flag.FlagSet, subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return a.addCommand(args)
	case "update":
		return a.updateCommand(args)
	case "delete":
		return a.deleteCommand(args)
	case "mark-in-progress":
		return a.setStatusCommand(args, todo.StatusInProgress)
	case "mark-done":
		return a.setStatusCommand(args, todo.StatusDone)
	case "list":
		return a.listCommand(args)
	case "doctor":
		return a.doctorCommand(args)
	case "tui":
		return a.tuiCommand(ctx, args)
	case "config":
		return a.configCommand(args)
	case "version":
		return versionCommand(a.stdout)
	case "help":
		printUsage(fs, a.stdout)
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", subcommand)
		return usageErrorf("unknown command: %s", subcommand)
	}
}

// addCommand creates a task from the joined arguments.
func (a *app) addCommand(args []string) error {
	if len(args) == 0 {
		return usageErrorf("add requires a description")
	}
	id, err := a.store.Add(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Task added successfully (ID: %d)\n", id)
	return nil
}

// updateCommand replaces a task's description.
func (a *app) updateCommand(args []string) error {
	if len(args) < 2 {
		return usageErrorf("update requires an id and a description")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.store.Update(id, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Task updated successfully.")
	return nil
}

func (a *app) deleteCommand(args []string) error {
	id, err := singleID("delete", args)
	if err != nil {
		return err
	}
	if err := a.store.Delete(id); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Task deleted successfully.")
	return nil
}

func (a *app) setStatusCommand(args []string, status todo.Status) error {
	id, err := singleID("mark-"+string(status), args)
	if err != nil {
		return err
	}
	if err := a.store.SetStatus(id, status); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Task marked as %s.\n", status)
	return nil
}

// listCommand prints all tasks, or those with the given status.
func (a *app) listCommand(args []string) error {
	fs := flag.NewFlagSet("task-cli list", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	format := fs.String("format", a.cfg.Config.ListFormat, "Output format (text, json, yaml)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &UsageError{Msg: err.Error()}
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return usageErrorf("unexpected arguments: %v", remaining[1:])
	}
	var status todo.Status
	if len(remaining) == 1 {
		parsed, err := todo.ParseStatus(remaining[0])
		if err != nil {
			return &UsageError{Msg: err.Error()}
		}
		status = parsed
	}
	*format = strings.ToLower(strings.TrimSpace(*format))
	if !validFormat(*format) {
		return usageErrorf("invalid format %q (expected %s)", *format, strings.Join(config.ListFormats, "|"))
	}

	tasks, err := a.store.List(status)
	if err != nil {
		return err
	}
	return ui.PrintTasks(a.stdout, tasks, ui.PrintOptions{
		Format: *format,
		Color:  ui.IsTTY(a.stdout),
	})
}

// doctorCommand checks config and task file validity.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("task-cli doctor", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &UsageError{Msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usageErrorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	fmt.Fprintln(w, "Task CLI Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if len(a.cfg.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config files (using defaults)")
	}
	for _, f := range a.cfg.Files {
		fmt.Fprintf(w, "  ✅ %s\n", f)
	}
	for _, key := range a.cfg.Unknown {
		fmt.Fprintf(w, "  ⚠️  Unknown key: %s\n", key)
	}
	fmt.Fprintln(w)

	// Task file
	path := a.store.Path()
	fmt.Fprintf(w, "Task file: %s\n", path)
	info, statErr := os.Stat(path)
	switch {
	case statErr != nil && os.IsNotExist(statErr):
		fmt.Fprintln(w, "  ⚠️  Not found (treated as an empty list)")
	case statErr != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", statErr)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		allOK = false
	}

	if allOK {
		tasks, err := a.store.Load()
		if err != nil {
			fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
			allOK = false
		} else {
			errs := todo.Validate(tasks)
			if len(errs) == 0 {
				fmt.Fprintln(w, "  ✅ Valid")
			} else {
				fmt.Fprintln(w, "  ❌ Validation failed:")
				for _, e := range errs {
					fmt.Fprintf(w, "     - %v\n", e)
				}
				allOK = false
			}
			fmt.Fprintf(w, "  Tasks: %d", len(tasks))
			for _, s := range todo.Statuses() {
				fmt.Fprintf(w, ", %s: %d", s, len(todo.FilterByStatus(tasks, s)))
			}
			fmt.Fprintln(w)
			if *verbose {
				for _, t := range tasks {
					fmt.Fprintf(w, "    - %s %d: %s (updated %s)\n", ui.StatusLabel(t.Status), t.ID, t.Description, t.UpdatedAt)
				}
			}
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("task-cli tui", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	refresh := fs.Duration("refresh", ui.DefaultRefreshInterval, "Reload interval (0 disables)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &UsageError{Msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usageErrorf("unexpected arguments: %v", fs.Args())
	}

	return ui.RunTUI(ctx, a.store, ui.WithRefreshInterval(*refresh))
}

// configCommand prints the effective configuration, or an example file.
func (a *app) configCommand(args []string) error {
	if len(args) > 0 {
		if args[0] == "example" && len(args) == 1 {
			fmt.Fprint(a.stdout, config.ExampleConfig())
			return nil
		}
		return usageErrorf("unexpected arguments: %v", args)
	}

	w := a.stdout
	for _, field := range a.cfg.Fields() {
		fmt.Fprintf(w, "%-15s = %-30q (%s)\n", field, a.cfg.Config.Value(field), a.cfg.Sources[field])
	}
	if len(a.cfg.Files) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Config files:")
		for _, f := range a.cfg.Files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if len(a.cfg.Unknown) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Unknown keys:")
		for _, key := range a.cfg.Unknown {
			fmt.Fprintf(w, "  %s\n", key)
		}
	}
	return nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "task-cli version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "task-cli - track tasks in a local JSON file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  task-cli [global options] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <description>             Add a task")
	fmt.Fprintln(w, "  update <id> <description>     Replace a task's description")
	fmt.Fprintln(w, "  delete <id>                   Delete a task")
	fmt.Fprintln(w, "  mark-in-progress <id>         Mark a task as in-progress")
	fmt.Fprintln(w, "  mark-done <id>                Mark a task as done")
	fmt.Fprintln(w, "  list [status]                 List tasks (todo|in-progress|done)")
	fmt.Fprintln(w, "  doctor                        Check config and task file validity")
	fmt.Fprintln(w, "  tui                           Launch terminal UI")
	fmt.Fprintln(w, "  config [example]              Show effective config or an example file")
	fmt.Fprintln(w, "  version                       Show version information")
	fmt.Fprintln(w, "  help                          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'list' command):")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (text, json, yaml)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v    Show every task")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options (use with 'tui' command):")
	fmt.Fprintln(w, "  -refresh duration")
	fmt.Fprintf(w, "        Reload interval, 0 disables (default %s)\n", ui.DefaultRefreshInterval)
}

// parseID converts a command-line task id.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, usageErrorf("invalid task id %q", s)
	}
	return id, nil
}

func singleID(command string, args []string) (int, error) {
	switch len(args) {
	case 0:
		return 0, usageErrorf("%s requires a task id", command)
	case 1:
		return parseID(args[0])
	default:
		return 0, usageErrorf("unexpected arguments: %v", args[1:])
	}
}

func validFormat(format string) bool {
	for _, f := range config.ListFormats {
		if f == format {
			return true
		}
	}
	return false
}
