// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"sort"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotEnv   ConfigSource = ".env"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were applied, in load order.
	Files []string
	// Unknown lists keys found in config files that no field consumed.
	Unknown []string
}

// Default values.
const (
	DefaultTaskFile   = "tasks.json"
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
	DefaultListFormat = "text"
)

// ListFormats are the accepted values for list_format.
var ListFormats = []string{"text", "json", "yaml"}

// Config holds the full configuration for task-cli.
type Config struct {
	// Paths
	TaskFile string `toml:"task_file"`

	// Output
	ListFormat string `toml:"list_format"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"task_file",
		"list_format",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Value returns the effective value of a field by its config key.
func (c *Config) Value(field string) string {
	switch field {
	case "task_file":
		return c.TaskFile
	case "list_format":
		return c.ListFormat
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprintf("%t", c.LogTimestamps)
	case "log_caller":
		return fmt.Sprintf("%t", c.LogCaller)
	}
	return ""
}

// Fields returns the configurable field names in a stable order.
func (cws *ConfigWithSources) Fields() []string {
	fields := configFields()
	sort.Strings(fields)
	return fields
}

func validListFormat(format string) bool {
	for _, f := range ListFormats {
		if f == format {
			return true
		}
	}
	return false
}
