package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# task-cli configuration file
# Values can be overridden by TASK_CLI_* environment variables or CLI flags.

# Task file (relative paths resolve against the working directory;
# supports ~ and $VAR expansion)
task_file = "tasks.json"

# Default output format for "list": text, json, or yaml
list_format = "text"

# Logging (written to stderr)
# Level: debug, info, warn, error
log_level = "warn"
# Format: text, json, logfmt
log_format = "text"
log_timestamps = false
log_caller = false
`
}
