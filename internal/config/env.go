package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the optional env file read from the working directory.
const DotEnvFile = ".env"

// envLookup resolves an environment key and reports where it came from.
type envLookup func(key string) (string, ConfigSource, bool)

// newEnvLookup returns a lookup that prefers the process environment and
// falls back to values read from a .env file.
func newEnvLookup(dotenv map[string]string) envLookup {
	return func(key string) (string, ConfigSource, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, SourceEnv, true
		}
		if v, ok := dotenv[key]; ok && v != "" {
			return v, SourceDotEnv, true
		}
		return "", "", false
	}
}

// readDotEnv parses dir/.env without modifying the process environment.
// A missing file yields an empty map.
func readDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, DotEnvFile)
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// loadFromEnv overrides config from TASK_CLI_* variables and tracks sources.
func loadFromEnv(cfg *Config, lookup envLookup, sources map[string]ConfigSource) {
	setString := func(key, field string, target *string) {
		if v, source, ok := lookup(key); ok {
			*target = v
			sources[field] = source
		}
	}
	setBool := func(key, field string, target *bool) {
		if v, source, ok := lookup(key); ok {
			*target = boolFromString(v)
			sources[field] = source
		}
	}

	setString("TASK_CLI_FILE", "task_file", &cfg.TaskFile)
	setString("TASK_CLI_LIST_FORMAT", "list_format", &cfg.ListFormat)

	// Logging configuration
	setString("TASK_CLI_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TASK_CLI_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("TASK_CLI_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("TASK_CLI_LOG_CALLER", "log_caller", &cfg.LogCaller)
}

// boolFromString parses common truthy spellings; anything else is false.
func boolFromString(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v == "yes" || v == "y" || v == "on"
}
