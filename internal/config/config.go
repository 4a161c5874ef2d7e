package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ima-dev/ima/internal/errors"
)

// FileNames are the config file names looked up, in order.
var FileNames = []string{"ima.json", "ima.yaml", "ima.yml"}

const (
	// DefaultFrameRate is the default frame loop rate.
	DefaultFrameRate = 60

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "ima"

	// DefaultCells is the default counter grid size.
	DefaultCells = 100
)

// Config represents the complete ima configuration.
type Config struct {
	// Engine contains engine settings.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Inspect contains inspector server settings.
	Inspect InspectConfig `json:"inspect" yaml:"inspect"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Publish contains static render upload settings.
	Publish PublishConfig `json:"publish" yaml:"publish"`

	// Demo contains counter grid settings.
	Demo DemoConfig `json:"demo" yaml:"demo"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	// FrameRate is the number of frames per second of the frame loop.
	FrameRate int `json:"frameRate,omitempty" yaml:"frameRate,omitempty"`

	// FailurePolicy is "isolate" or "freeze".
	FailurePolicy string `json:"failurePolicy,omitempty" yaml:"failurePolicy,omitempty"`

	// TextBindings enables the text binding specialization.
	TextBindings *bool `json:"textBindings,omitempty" yaml:"textBindings,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is auto, text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics on the inspector.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// PublishConfig contains static render upload settings.
type PublishConfig struct {
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// DemoConfig contains counter grid settings.
type DemoConfig struct {
	// Cells is the number of counter sections.
	Cells int `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified file path. The format is
// chosen by extension: .json is JSON, .yaml and .yml are YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E301").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E302").Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E302").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON or YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the first config file in dir, or "" when there is none.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadDir loads the config file in dir. A directory without one yields the
// defaults.
func LoadDir(dir string) (*Config, error) {
	path := Find(dir)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadDir(wd)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Engine
	if c.Engine.FrameRate == 0 {
		c.Engine.FrameRate = DefaultFrameRate
	}
	if c.Engine.FailurePolicy == "" {
		c.Engine.FailurePolicy = "isolate"
	}
	if c.Engine.TextBindings == nil {
		c.Engine.TextBindings = boolPtr(true)
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "auto"
	}

	// Inspector
	if c.Inspect.Host == "" {
		c.Inspect.Host = DefaultHost
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = DefaultPort
	}

	// Metrics
	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = boolPtr(true)
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}

	// Demo
	if c.Demo.Cells == 0 {
		c.Demo.Cells = DefaultCells
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.FrameRate < 1 || c.Engine.FrameRate > 1000 {
		return errors.New("E303").
			WithDetail("engine.frameRate must be between 1 and 1000, got " + strconv.Itoa(c.Engine.FrameRate))
	}
	switch strings.ToLower(c.Engine.FailurePolicy) {
	case "isolate", "freeze":
	default:
		return errors.New("E204").
			WithDetail("engine.failurePolicy is " + strconv.Quote(c.Engine.FailurePolicy))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E303").
			WithDetail("log.level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "json":
	default:
		return errors.New("E303").
			WithDetail("log.format must be auto, text or json")
	}
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("E303").
			WithDetail("inspect.port must be between 0 and 65535")
	}
	if c.Demo.Cells < 0 {
		return errors.New("E303").
			WithDetail("demo.cells must not be negative")
	}
	return nil
}

// Address returns the inspector listen address.
func (c *Config) Address() string {
	return c.Inspect.Host + ":" + strconv.Itoa(c.Inspect.Port)
}

// TextBindingsEnabled reports whether the text binding specialization is on.
func (c *Config) TextBindingsEnabled() bool {
	return c.Engine.TextBindings == nil || *c.Engine.TextBindings
}

// MetricsEnabled reports whether /metrics is exposed.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

func boolPtr(b bool) *bool { return &b }
