package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/logging"
)

const (
	// ConfigBaseName is the configuration file name without extension.
	ConfigBaseName = "reconcile"

	// DefaultPort is the default port for `reconcile serve`.
	DefaultPort = 7070

	// DefaultHost is the default host for `reconcile serve`.
	DefaultHost = "localhost"

	// DefaultRecursionLimit bounds how often one job may re-run in a flush.
	DefaultRecursionLimit = 100

	// DefaultNamespace is the Prometheus namespace.
	DefaultNamespace = "reconcile"

	// DefaultTracerName is the OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/reconcile"
)

// searchOrder lists the file extensions Load tries.
var searchOrder = []string{".json", ".yaml", ".yml", ".toml"}

// Config represents the complete reconcile configuration.
type Config struct {
	// Log configures the slog logger.
	Log LogConfig `json:"log" yaml:"log" toml:"log"`

	// Scheduler configures the job queue.
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler" toml:"scheduler"`

	// Metrics configures the Prometheus collector.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" toml:"metrics"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing" yaml:"tracing" toml:"tracing"`

	// Serve configures the demo server.
	Serve ServeConfig `json:"serve" yaml:"serve" toml:"serve"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
}

// SchedulerConfig contains job queue settings.
type SchedulerConfig struct {
	// RecursionLimit is how many times one job may run in a single flush.
	RecursionLimit int `json:"recursionLimit,omitempty" yaml:"recursionLimit,omitempty" toml:"recursionLimit,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty" toml:"subsystem,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty" toml:"tracerName,omitempty"`
}

// ServeConfig contains demo server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`

	// TickInterval is how often the demo mutates its state (e.g., "2s").
	TickInterval string `json:"tickInterval,omitempty" yaml:"tickInterval,omitempty" toml:"tickInterval,omitempty"`

	// LoadDelay is how long the demo's async panel takes to load.
	LoadDelay string `json:"loadDelay,omitempty" yaml:"loadDelay,omitempty" toml:"loadDelay,omitempty"`

	// LoadTimeout is the async panel's timeout.
	LoadTimeout string `json:"loadTimeout,omitempty" yaml:"loadTimeout,omitempty" toml:"loadTimeout,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scheduler: SchedulerConfig{
			RecursionLimit: DefaultRecursionLimit,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Serve: ServeConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			TickInterval: "2s",
			LoadDelay:    "750ms",
			LoadTimeout:  "5s",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reconcile.json, reconcile.yaml, reconcile.yml and
// reconcile.toml, in that order.
func Load(dir string) (*Config, error) {
	for _, ext := range searchOrder {
		path := filepath.Join(dir, ConfigBaseName+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("C120").
		With("dir", dir).
		WithSuggestion("Create reconcile.json or pass --config")
}

// LoadFile reads configuration from the specified file path.
// The format is chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C120").With("path", path)
		}
		return nil, errors.New("C121").With("path", path).Wrap(err)
	}

	cfg := New()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, errors.New("C123").With("path", path)
	}
	if err != nil {
		return nil, errors.New("C121").
			With("path", path).
			WithDetail(fmt.Sprintf("Failed to parse %s: %v", filepath.Base(path), err)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Scheduler.RecursionLimit == 0 {
		c.Scheduler.RecursionLimit = DefaultRecursionLimit
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.TickInterval == "" {
		c.Serve.TickInterval = "2s"
	}
	if c.Serve.LoadDelay == "" {
		c.Serve.LoadDelay = "750ms"
	}
	if c.Serve.LoadTimeout == "" {
		c.Serve.LoadTimeout = "5s"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.New("C122").With("field", "log.level").Wrap(err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return errors.New("C122").
			With("field", "log.format").
			WithDetail("Log format must be text or json")
	}
	if c.Scheduler.RecursionLimit < 1 {
		return errors.New("C122").
			With("field", "scheduler.recursionLimit").
			WithDetail("Recursion limit must be at least 1")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("C122").
			With("field", "serve.port").
			WithDetail("Port must be between 0 and 65535")
	}
	for field, v := range map[string]string{
		"serve.tickInterval": c.Serve.TickInterval,
		"serve.loadDelay":    c.Serve.LoadDelay,
		"serve.loadTimeout":  c.Serve.LoadTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return errors.New("C122").With("field", field).Wrap(err)
		}
	}
	return nil
}

// ServeAddress returns the listen address for `reconcile serve`.
func (c *Config) ServeAddress() string {
	return fmt.Sprintf("%s:%d", c.Serve.Host, c.Serve.Port)
}

// TickInterval returns the parsed demo tick interval.
func (c *Config) TickInterval() time.Duration {
	return mustDuration(c.Serve.TickInterval, 2*time.Second)
}

// LoadDelay returns the parsed async demo load delay.
func (c *Config) LoadDelay() time.Duration {
	return mustDuration(c.Serve.LoadDelay, 750*time.Millisecond)
}

// LoadTimeout returns the parsed async demo timeout.
func (c *Config) LoadTimeout() time.Duration {
	return mustDuration(c.Serve.LoadTimeout, 5*time.Second)
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
