// Package logging builds the leveled console logger with charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "task-cli"

// Options holds configuration for console logging.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultOptions returns default options for console logging.
func DefaultOptions() Options {
	return Options{
		Level:           log.WarnLevel,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          Prefix,
	}
}

// New creates a logger writing to w. A nil writer means stderr.
func New(w io.Writer, opts Options) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OptionsFromConfig converts config strings into Options.
// Empty level or format values keep the defaults.
func OptionsFromConfig(level, format string, timestamps, caller bool) (Options, error) {
	opts := DefaultOptions()
	opts.ReportTimestamp = timestamps
	opts.ReportCaller = caller

	if strings.TrimSpace(level) != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return opts, err
		}
		opts.Level = lvl
	}
	if strings.TrimSpace(format) != "" {
		formatter, err := ParseFormatter(format)
		if err != nil {
			return opts, err
		}
		opts.Formatter = formatter
	}
	return opts, nil
}

// ParseLevel parses debug, info, warn (or warning), and error.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", level)
}

// ParseFormatter parses text, json, and logfmt.
func ParseFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("invalid log format %q (expected text|json|logfmt)", format)
}
