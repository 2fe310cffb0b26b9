// Package config loads engine configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/casaops/taskwright/internal/ports"
)

// ErrNotFound is returned when the named config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Config holds the engine's runtime configuration.
type Config struct {
	// StorePath is the SQLite database holding tasks and history.
	StorePath string
	// BackupDir is where step snapshots are written.
	BackupDir string
	// CommandTimeout bounds shell and test steps.
	CommandTimeout time.Duration
	// BackupRetention is how long snapshots are kept.
	BackupRetention time.Duration
	// SweepInterval is the janitor's sweep period.
	SweepInterval time.Duration
	// LogLevel is the minimum log level name.
	LogLevel string
	// LogJSON switches log output to JSON.
	LogJSON bool
}

// fileConfig is the YAML shape; durations are strings like "90s" or "72h".
type fileConfig struct {
	StorePath       string `yaml:"store_path"`
	BackupDir       string `yaml:"backup_dir"`
	CommandTimeout  string `yaml:"command_timeout"`
	BackupRetention string `yaml:"backup_retention"`
	SweepInterval   string `yaml:"sweep_interval"`
	LogLevel        string `yaml:"log_level"`
	LogJSON         bool   `yaml:"log_json"`
}

// Default returns the built-in configuration, rooted under ~/.taskwright.
func Default() Config {
	root := ports.ExpandPath("~/.taskwright")
	return Config{
		StorePath:       filepath.Join(root, "tasks.db"),
		BackupDir:       filepath.Join(root, "backups"),
		CommandTimeout:  60 * time.Second,
		BackupRetention: 30 * 24 * time.Hour,
		SweepInterval:   time.Hour,
		LogLevel:        "info",
	}
}

// Load reads the config file at path and merges it over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// LoadOrDefault loads the config file if it exists and falls back to the
// defaults when it does not.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Parse parses YAML config data and merges it over the defaults.
func Parse(data []byte) (Config, error) {
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if file.StorePath != "" {
		cfg.StorePath = ports.ExpandPath(file.StorePath)
	}
	if file.BackupDir != "" {
		cfg.BackupDir = ports.ExpandPath(file.BackupDir)
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	cfg.LogJSON = file.LogJSON

	var err error
	if cfg.CommandTimeout, err = mergeDuration(file.CommandTimeout, cfg.CommandTimeout); err != nil {
		return Config{}, fmt.Errorf("command_timeout: %w", err)
	}
	if cfg.BackupRetention, err = mergeDuration(file.BackupRetention, cfg.BackupRetention); err != nil {
		return Config{}, fmt.Errorf("backup_retention: %w", err)
	}
	if cfg.SweepInterval, err = mergeDuration(file.SweepInterval, cfg.SweepInterval); err != nil {
		return Config{}, fmt.Errorf("sweep_interval: %w", err)
	}

	return cfg, nil
}

func mergeDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}
