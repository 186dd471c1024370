package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidFlags wraps errors from parsing command-line flags.
var ErrInvalidFlags = errors.New("invalid flags")

// LoadWithSources loads configuration from multiple sources in priority order
// and tracks the source of each value:
// 1. Defaults
// 2. User config file
// 3. Project config file
// 4. .env file
// 5. Environment variables
// 6. CLI flags
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	cws := &ConfigWithSources{
		Config:  &Config{WorkDir: wd},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := cws.loadConfigFile(userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(wd); projectConfigFile != "" {
		if err := cws.loadConfigFile(projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4-5. Override from .env and the environment
	dotenv, err := readDotEnv(wd)
	if err != nil {
		return nil, err
	}
	loadFromEnv(cfg, newEnvLookup(dotenv), cws.Sources)

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w: %w", ErrInvalidFlags, err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// loadConfigFile decodes a TOML file over the current config and records
// every key it defined.
func (cws *ConfigWithSources) loadConfigFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	for _, key := range md.Keys() {
		cws.Sources[key.String()] = source
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, fmt.Sprintf("%s (%s)", key.String(), path))
	}
	cws.Files = append(cws.Files, path)
	return nil
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	cfg.ListFormat = strings.ToLower(strings.TrimSpace(cfg.ListFormat))
	if !validListFormat(cfg.ListFormat) {
		return fmt.Errorf("invalid list format %q (expected %s)", cfg.ListFormat, strings.Join(ListFormats, "|"))
	}

	if strings.TrimSpace(cfg.TaskFile) == "" {
		return fmt.Errorf("task file path is empty")
	}
	cfg.TaskFile = expandPath(cfg.TaskFile)

	// Determine working directory
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	// Make paths absolute if they're relative
	if !filepath.IsAbs(cfg.TaskFile) {
		cfg.TaskFile = filepath.Join(cfg.WorkDir, cfg.TaskFile)
	}

	return nil
}
