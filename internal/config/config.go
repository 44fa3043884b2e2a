// Package config loads pool settings from a YAML or JSON file and turns them
// into pool options.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/utkarsh5026/threadpool/internal/logger"
	"github.com/utkarsh5026/threadpool/pool"
)

// Config is the on-disk shape of a pool configuration.
type Config struct {
	Workers     int             `yaml:"workers" json:"workers"`
	Name        string          `yaml:"name" json:"name"`
	LockThreads bool            `yaml:"lock_threads" json:"lock_threads"`
	CPUAffinity bool            `yaml:"cpu_affinity" json:"cpu_affinity"`
	RateLimit   RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Metrics     MetricsConfig   `yaml:"metrics" json:"metrics"`
	Log         LogConfig       `yaml:"log" json:"log"`
}

// RateLimitConfig throttles task starts. Zero values disable it.
type RateLimitConfig struct {
	TasksPerSecond float64 `yaml:"tasks_per_second" json:"tasks_per_second"`
	Burst          int     `yaml:"burst" json:"burst"`
}

// MetricsConfig controls Prometheus export.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers: 4,
		Name:    "pool",
		Metrics: MetricsConfig{Addr: ":9090"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of Default. The format is chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.LockThreads && c.CPUAffinity {
		errs = append(errs, errors.New("lock_threads and cpu_affinity are mutually exclusive"))
	}
	if c.RateLimit.TasksPerSecond < 0 {
		errs = append(errs, errors.New("rate_limit.tasks_per_second must be non-negative"))
	}
	if c.RateLimit.TasksPerSecond > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1 when a rate is set"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format: %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Options converts the configuration into pool options. reg may be nil, in
// which case metrics are not registered even when enabled.
func (c *Config) Options(log *slog.Logger, reg prometheus.Registerer) []pool.Option {
	opts := []pool.Option{pool.WithName(c.Name)}

	if log != nil {
		opts = append(opts, pool.WithLogger(log))
	}
	if c.Metrics.Enabled && reg != nil {
		opts = append(opts, pool.WithMetrics(reg))
	}
	if c.RateLimit.TasksPerSecond > 0 {
		opts = append(opts, pool.WithRateLimit(c.RateLimit.TasksPerSecond, c.RateLimit.Burst))
	}

	switch {
	case c.CPUAffinity:
		opts = append(opts, pool.WithCPUAffinity())
	case c.LockThreads:
		opts = append(opts, pool.WithLockedThreads())
	}

	return opts
}
