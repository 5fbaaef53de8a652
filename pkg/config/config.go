// Package config loads the keyforge-server YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SouradipPatra7904/KeyForge/pkg/logging"
	"github.com/SouradipPatra7904/KeyForge/pkg/server"
)

// Config is the top-level server configuration.
type Config struct {
	// Address to listen on. Defaults to ":7904".
	Address string `yaml:"address"`

	Logging   Logging   `yaml:"logging"`
	Auth      Auth      `yaml:"auth"`
	Discovery Discovery `yaml:"discovery"`
}

// Logging configures the pipeline and its sinks.
type Logging struct {
	// Level is the severity threshold (trace..fatal). Defaults to "info".
	Level string `yaml:"level"`

	// QueueCapacity bounds the pipeline queue. 0 means the default.
	QueueCapacity int `yaml:"queue_capacity"`

	Console Console `yaml:"console"`
	Memory  Memory  `yaml:"memory"`
	File    File    `yaml:"file"`

	// CapturePath enables the CBOR capture sink when non-empty.
	CapturePath string `yaml:"capture_path"`
}

// Console configures the console sink.
type Console struct {
	// Enabled turns the console sink on. Defaults to true.
	Enabled *bool `yaml:"enabled"`

	// Mode is plain, colored, or json. Defaults to "colored".
	Mode string `yaml:"mode"`
}

// Memory configures the in-memory recency sink.
type Memory struct {
	// Enabled turns the memory sink on. Defaults to true.
	Enabled *bool `yaml:"enabled"`

	// GlobalCapacity is the global ring size. 0 means the default.
	GlobalCapacity int `yaml:"global_capacity"`

	// SessionCapacity is the per-session ring size. 0 means the default.
	SessionCapacity int `yaml:"session_capacity"`
}

// File configures the rotating file sink, enabled when BasePath is set.
type File struct {
	// BasePath is the rotation base; the active file is {base}.0.log.
	BasePath string `yaml:"base_path"`

	// MaxBytes is the rotation threshold. Defaults to 10 MiB.
	MaxBytes int64 `yaml:"max_bytes"`

	// MaxFiles is the retained backup count. Defaults to 5.
	MaxFiles int `yaml:"max_files"`

	// JSON selects JSON lines instead of plain text.
	JSON bool `yaml:"json"`
}

// Auth configures token authentication for mutating commands.
type Auth struct {
	// TokenHashes are bcrypt hashes of accepted tokens. Empty disables
	// authentication.
	TokenHashes []string `yaml:"token_hashes"`
}

// Discovery configures mDNS announcement of the server.
type Discovery struct {
	// Enabled turns mDNS announcement on. Defaults to false.
	Enabled bool `yaml:"enabled"`

	// Instance is the announced instance name. Defaults to "keyforge".
	Instance string `yaml:"instance"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = fmt.Sprintf(":%d", server.DefaultPort)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Console.Enabled == nil {
		enabled := true
		c.Logging.Console.Enabled = &enabled
	}
	if c.Logging.Console.Mode == "" {
		c.Logging.Console.Mode = "colored"
	}
	if c.Logging.Memory.Enabled == nil {
		enabled := true
		c.Logging.Memory.Enabled = &enabled
	}
	if c.Logging.Memory.GlobalCapacity == 0 {
		c.Logging.Memory.GlobalCapacity = logging.DefaultGlobalCapacity
	}
	if c.Logging.Memory.SessionCapacity == 0 {
		c.Logging.Memory.SessionCapacity = logging.DefaultSessionCapacity
	}
	if c.Logging.File.MaxBytes == 0 {
		c.Logging.File.MaxBytes = 10 << 20
	}
	if c.Logging.File.MaxFiles == 0 {
		c.Logging.File.MaxFiles = 5
	}
	if c.Discovery.Instance == "" {
		c.Discovery.Instance = "keyforge"
	}
}

func (c *Config) validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	if _, err := logging.ParseConsoleMode(c.Logging.Console.Mode); err != nil {
		return fmt.Errorf("invalid logging.console.mode: %w", err)
	}
	if c.Logging.QueueCapacity < 0 {
		return fmt.Errorf("logging.queue_capacity must not be negative")
	}
	if c.Logging.File.MaxFiles < 0 {
		return fmt.Errorf("logging.file.max_files must not be negative")
	}
	return nil
}

// BuildPipeline constructs a started pipeline with the configured sinks.
// The returned cleanup closes file-backed sinks and must run after the
// pipeline is shut down.
func (c *Config) BuildPipeline() (*logging.Pipeline, func(), error) {
	var pipe *logging.Pipeline
	if c.Logging.QueueCapacity > 0 {
		pipe = logging.NewPipelineWithCapacity(c.Logging.QueueCapacity)
	} else {
		pipe = logging.NewPipeline()
	}

	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	pipe.SetLevel(level)

	var closers []func()

	if *c.Logging.Console.Enabled {
		mode, err := logging.ParseConsoleMode(c.Logging.Console.Mode)
		if err != nil {
			return nil, nil, err
		}
		pipe.AddSink(logging.NewConsoleSink(mode))
	}

	if *c.Logging.Memory.Enabled {
		pipe.AddSink(logging.NewMemorySinkWithCapacity(
			c.Logging.Memory.GlobalCapacity, c.Logging.Memory.SessionCapacity))
	}

	if c.Logging.File.BasePath != "" {
		sink := logging.NewRotatingSink(
			c.Logging.File.BasePath, c.Logging.File.MaxBytes,
			c.Logging.File.MaxFiles, c.Logging.File.JSON)
		pipe.AddSink(sink)
		closers = append(closers, func() { _ = sink.Close() })
	}

	if c.Logging.CapturePath != "" {
		sink, err := logging.NewCaptureSink(c.Logging.CapturePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open capture file: %w", err)
		}
		pipe.AddSink(sink)
		closers = append(closers, func() { _ = sink.Close() })
	}

	pipe.Start()

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return pipe, cleanup, nil
}
