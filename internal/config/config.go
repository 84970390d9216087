// Package config loads the application configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/yame/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	IPC       IPCConfig       `yaml:"ipc"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error or silent.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

type WorkspaceConfig struct {
	Root        string        `yaml:"root"`
	ScanTimeout time.Duration `yaml:"scanTimeout"`
	Concurrency int           `yaml:"concurrency"`
	SkipHidden  bool          `yaml:"skipHidden"`
}

type IPCConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	Path            string        `yaml:"path"`
	ReadBufferSize  int           `yaml:"readBufferSize"`
	WriteBufferSize int           `yaml:"writeBufferSize"`
	MaxMessageSize  int64         `yaml:"maxMessageSize"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Workspace: WorkspaceConfig{
			Root:        ".",
			ScanTimeout: 30 * time.Second,
			Concurrency: 8,
			SkipHidden:  true,
		},
		IPC: IPCConfig{
			ListenAddr:      "127.0.0.1:7420",
			Path:            "/ipc",
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  4 * 1024 * 1024,
			WriteTimeout:    10 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a YAML document over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and joins every problem found.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch log.Encoding(c.Log.Format) {
	case log.EncodingJSON, log.EncodingConsole:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Workspace.ScanTimeout <= 0 {
		errs = append(errs, errors.New("workspace.scanTimeout must be positive"))
	}
	if c.Workspace.Concurrency < 1 {
		errs = append(errs, errors.New("workspace.concurrency must be at least 1"))
	}
	if c.IPC.ListenAddr == "" {
		errs = append(errs, errors.New("ipc.listenAddr is required"))
	}
	if c.IPC.Path == "" || c.IPC.Path[0] != '/' {
		errs = append(errs, errors.New("ipc.path must start with /"))
	}
	if c.IPC.MaxMessageSize < 0 {
		errs = append(errs, errors.New("ipc.maxMessageSize must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// LogLevel returns the parsed log level. Call Validate first.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return level
}
