// Package config loads application configuration from layered sources.
//
// The loading order, lowest priority first:
//  1. Default values (in code)
//  2. The base file (flowboard.yaml, or the path given to the loader)
//  3. The environment file next to it (flowboard.<environment>.yaml)
//  4. FLOWBOARD_* environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the base file read when no path is given
const DefaultPath = "flowboard.yaml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "FLOWBOARD_"

// Loader handles loading configuration from multiple sources
type Loader struct {
	path     string
	explicit bool
	lookup   func(string) (string, bool)
}

// NewLoader creates a loader for the base file at path. An empty path reads
// DefaultPath and tolerates its absence; an explicit path must exist.
func NewLoader(path string) *Loader {
	l := &Loader{path: path, explicit: path != "", lookup: os.LookupEnv}
	if path == "" {
		l.path = DefaultPath
	}
	return l
}

// WithLookup replaces the environment source
func (l *Loader) WithLookup(lookup func(string) (string, bool)) *Loader {
	l.lookup = lookup
	return l
}

// Path returns the base file path
func (l *Loader) Path() string {
	return l.path
}

// Files returns every file the loader reads for cfg's environment
func (l *Loader) Files(env Environment) []string {
	return []string{l.path, l.envFile(env)}
}

// Load builds the configuration
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	cfg.LoadedFrom = append(cfg.LoadedFrom, "defaults")

	if err := l.loadFile(l.path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || l.explicit {
			return nil, fmt.Errorf("failed to load config %s: %w", l.path, err)
		}
	}

	// the environment may come from the base file or the process
	if env, ok := l.lookup(EnvPrefix + "ENVIRONMENT"); ok && env != "" {
		cfg.Environment = Environment(strings.ToLower(env))
	}
	envFile := l.envFile(cfg.Environment)
	if err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", cfg.Environment, err)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) envFile(env Environment) string {
	ext := filepath.Ext(l.path)
	base := strings.TrimSuffix(l.path, ext)
	if ext == "" {
		ext = ".yaml"
	}
	return fmt.Sprintf("%s.%s%s", base, env, ext)
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.LoadedFrom = append(cfg.LoadedFrom, path)
	return nil
}

// applyEnv overlays FLOWBOARD_* variables. Malformed values are errors.
func (l *Loader) applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"LOG_LEVEL":              &cfg.LogLevel,
		"BOARD_KEY":              &cfg.Board.Key,
		"STORAGE_DRIVER":         &cfg.Storage.Driver,
		"STORAGE_PATH":           &cfg.Storage.Path,
		"STORAGE_DSN":            &cfg.Storage.DSN,
		"STORAGE_REDIS_ADDR":     &cfg.Storage.RedisAddr,
		"STORAGE_REDIS_PASSWORD": &cfg.Storage.RedisPassword,
		"STORAGE_REDIS_PREFIX":   &cfg.Storage.RedisPrefix,
		"STORAGE_TABLE":          &cfg.Storage.Table,
		"STORAGE_REGION":         &cfg.Storage.Region,
		"STORAGE_ENDPOINT":       &cfg.Storage.Endpoint,
		"SERVER_ADDR":            &cfg.Server.Addr,
		"TRACING_ENDPOINT":       &cfg.Tracing.Endpoint,
		"FONTS_MEASURER":         &cfg.Fonts.Measurer,
	}
	for name, target := range strs {
		if v, ok := l.lookup(EnvPrefix + name); ok {
			*target = v
		}
	}

	bools := map[string]*bool{
		"BOARD_SEED":              &cfg.Board.Seed,
		"STORAGE_BREAKER_ENABLED": &cfg.Storage.Breaker.Enabled,
		"TRACING_ENABLED":         &cfg.Tracing.Enabled,
	}
	for name, target := range bools {
		v, ok := l.lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*target = b
	}

	durations := map[string]*time.Duration{
		"EDITOR_SNAPSHOT_DEBOUNCE": &cfg.Editor.SnapshotDebounce,
		"EDITOR_PERSIST_DEBOUNCE":  &cfg.Editor.PersistDebounce,
		"EDITOR_LAYOUT_DEBOUNCE":   &cfg.Editor.LayoutDebounce,
		"EDITOR_SAVE_TIMEOUT":      &cfg.Editor.SaveTimeout,
	}
	for name, target := range durations {
		v, ok := l.lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*target = d
	}

	if v, ok := l.lookup(EnvPrefix + "EDITOR_HISTORY_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sEDITOR_HISTORY_LIMIT: %w", EnvPrefix, err)
		}
		cfg.Editor.HistoryLimit = n
	}
	if v, ok := l.lookup(EnvPrefix + "SERVER_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
