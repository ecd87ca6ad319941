// Package config loads the editor runtime configuration from a YAML file,
// falling back to defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Executor ExecutorConfig `yaml:"executor"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Layout   LayoutConfig   `yaml:"layout"`
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	AllowedOrigin  string `yaml:"allowed_origin"`
	StepDelayMilli int    `yaml:"step_delay_ms"` // simulated per-node work in the dev executor
}

// ExecutorConfig configures the execution protocol client.
type ExecutorConfig struct {
	URL                  string `yaml:"url"`
	MaxReconnectAttempts int    `yaml:"max_reconnect_attempts"`
	ReconnectBaseDelayMs int    `yaml:"reconnect_base_delay_ms"`
}

// ReconnectBaseDelay returns the base delay as a duration.
func (c ExecutorConfig) ReconnectBaseDelay() time.Duration {
	return time.Duration(c.ReconnectBaseDelayMs) * time.Millisecond
}

// AutosaveConfig configures the local autosave loop.
type AutosaveConfig struct {
	Path       string `yaml:"path"`
	IntervalMs int    `yaml:"interval_ms"`
}

// Interval returns the autosave interval as a duration.
func (c AutosaveConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// LayoutConfig configures auto-layout spacing.
type LayoutConfig struct {
	StartX       float64 `yaml:"start_x"`
	StartY       float64 `yaml:"start_y"`
	LevelGap     float64 `yaml:"level_gap"`
	NodeGap      float64 `yaml:"node_gap"`
	ComponentGap float64 `yaml:"component_gap"`
}

// Load reads the config at path, or returns defaults when path is empty or
// the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "http://localhost:3003"
	}
	if c.Server.StepDelayMilli == 0 {
		c.Server.StepDelayMilli = 50
	}
	if c.Executor.URL == "" {
		c.Executor.URL = "ws://localhost:8080/api/v1/execute"
	}
	if c.Executor.MaxReconnectAttempts == 0 {
		c.Executor.MaxReconnectAttempts = 5
	}
	if c.Executor.ReconnectBaseDelayMs == 0 {
		c.Executor.ReconnectBaseDelayMs = 1000
	}
	if c.Autosave.Path == "" {
		c.Autosave.Path = "./nodeflow-local.db"
	}
	if c.Autosave.IntervalMs == 0 {
		c.Autosave.IntervalMs = 30000
	}
	if c.Layout.StartX == 0 {
		c.Layout.StartX = 100
	}
	if c.Layout.StartY == 0 {
		c.Layout.StartY = 100
	}
	if c.Layout.LevelGap == 0 {
		c.Layout.LevelGap = 120
	}
	if c.Layout.NodeGap == 0 {
		c.Layout.NodeGap = 40
	}
	if c.Layout.ComponentGap == 0 {
		c.Layout.ComponentGap = 80
	}
}
