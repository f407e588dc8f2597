package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domainconfig "flowboard/domain/config"

	"github.com/go-playground/validator/v10"
)

// Environment names the deployment profile
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	Environment Environment   `yaml:"environment" validate:"oneof=development production test"`
	LogLevel    string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Board       BoardConfig   `yaml:"board"`
	Editor      EditorConfig  `yaml:"editor"`
	Storage     StorageConfig `yaml:"storage"`
	Server      ServerConfig  `yaml:"server"`
	Tracing     TracingConfig `yaml:"tracing"`
	Fonts       FontsConfig   `yaml:"fonts"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// BoardConfig selects the board a session opens
type BoardConfig struct {
	Key  string `yaml:"key" validate:"required"`
	Seed bool   `yaml:"seed"`
}

// EditorConfig holds the interaction tunables that may be hot reloaded
type EditorConfig struct {
	HistoryLimit     int           `yaml:"history_limit" validate:"min=1,max=1000"`
	SnapshotDebounce time.Duration `yaml:"snapshot_debounce" validate:"min=0"`
	PersistDebounce  time.Duration `yaml:"persist_debounce" validate:"min=0"`
	LayoutDebounce   time.Duration `yaml:"layout_debounce" validate:"min=0"`
	SaveTimeout      time.Duration `yaml:"save_timeout" validate:"gt=0"`
	MinZoom          float64       `yaml:"min_zoom" validate:"gt=0"`
	MaxZoom          float64       `yaml:"max_zoom" validate:"gtefield=MinZoom"`
}

// StorageConfig picks and configures the document store
type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=memory file sqlite redis dynamodb"`

	// file
	Path string `yaml:"path" validate:"required_if=Driver file"`

	// sqlite
	DSN string `yaml:"dsn" validate:"required_if=Driver sqlite"`

	// redis
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"min=0"`
	RedisPrefix   string `yaml:"redis_prefix"`

	// dynamodb
	Table    string `yaml:"table" validate:"required_if=Driver dynamodb"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`

	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker around remote stores
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold" validate:"required_if=Enabled true"`
}

// ServerConfig configures the REST surface
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// TracingConfig configures OTLP span export
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" validate:"min=0,max=1"`
	Insecure    bool    `yaml:"insecure"`
}

// FontsConfig picks the text measurer
type FontsConfig struct {
	Measurer string `yaml:"measurer" validate:"oneof=font cell none"`
}

// Default returns the built-in configuration
func Default() *Config {
	editor := domainconfig.DefaultEditorConfig()
	return &Config{
		Environment: Development,
		LogLevel:    "info",
		Board: BoardConfig{
			Key:  "flowcanvas-v1",
			Seed: true,
		},
		Editor: EditorConfig{
			HistoryLimit:     editor.HistoryLimit,
			SnapshotDebounce: editor.SnapshotDebounce,
			PersistDebounce:  editor.PersistDebounce,
			LayoutDebounce:   editor.LayoutDebounce,
			SaveTimeout:      editor.SaveTimeout,
			MinZoom:          editor.MinZoom,
			MaxZoom:          editor.MaxZoom,
		},
		Storage: StorageConfig{
			Driver:      "file",
			Path:        "flowboard.json",
			DSN:         "file:flowboard.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "flowboard:",
			Table:       "flowboard-boards",
			Region:      "us-east-1",
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			ServiceName: "flowboard",
			SampleRate:  1,
			Insecure:    true,
		},
		Fonts: FontsConfig{Measurer: "font"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// EditorDomain merges the tunables into the domain editor rules
func (c *Config) EditorDomain() domainconfig.EditorConfig {
	cfg := domainconfig.DefaultEditorConfig()
	cfg.HistoryLimit = c.Editor.HistoryLimit
	cfg.SnapshotDebounce = c.Editor.SnapshotDebounce
	cfg.PersistDebounce = c.Editor.PersistDebounce
	cfg.LayoutDebounce = c.Editor.LayoutDebounce
	cfg.SaveTimeout = c.Editor.SaveTimeout
	cfg.MinZoom = c.Editor.MinZoom
	cfg.MaxZoom = c.Editor.MaxZoom
	return cfg
}
