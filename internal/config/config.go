package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claude/dianafit/internal/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Workout  WorkoutConfig  `yaml:"workout"`
	Content  ContentConfig  `yaml:"content"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// StaticDir, when set, is served at / for the web shell.
	StaticDir string `yaml:"static_dir"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// DatabaseConfig is used when storage.driver is postgres.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type WorkoutConfig struct {
	RestSeconds int             `yaml:"rest_seconds"`
	ViewMode    models.ViewMode `yaml:"view_mode"`
}

type ContentConfig struct {
	// Path to a catalog override; empty uses the built-in catalog.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// RestDuration is the configured rest countdown.
func (w WorkoutConfig) RestDuration() time.Duration {
	return time.Duration(w.RestSeconds) * time.Second
}

// LockPath is the single-instance lock file next to the sqlite database.
func (s StorageConfig) LockPath() string {
	return filepath.Join(filepath.Dir(s.Path), "dianafit.lock")
}

// SlogLevel maps log.level to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8420},
		Storage: StorageConfig{Driver: "sqlite", Path: defaultDBPath()},
		Workout: WorkoutConfig{RestSeconds: 60, ViewMode: models.ViewList},
		Log:     LogConfig{Level: "info"},
	}
}

func defaultDBPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "dianafit", "dianafit.db")
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. Env vars use the prefix DIANAFIT_ and
// underscore-separated paths:
//
//	DIANAFIT_SERVER_HOST, DIANAFIT_SERVER_PORT, DIANAFIT_SERVER_STATIC_DIR,
//	DIANAFIT_STORAGE_DRIVER, DIANAFIT_STORAGE_PATH,
//	DIANAFIT_DB_HOST, DIANAFIT_DB_PORT, DIANAFIT_DB_NAME,
//	DIANAFIT_DB_USER, DIANAFIT_DB_PASSWORD, DIANAFIT_DB_SSLMODE,
//	DIANAFIT_WORKOUT_REST_SECONDS, DIANAFIT_WORKOUT_VIEW_MODE,
//	DIANAFIT_CONTENT_PATH, DIANAFIT_AUTH_API_KEY, DIANAFIT_LOG_LEVEL
func Load(path string) (*Config, error) {
	return load(path, false)
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DIANAFIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DIANAFIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DIANAFIT_SERVER_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("DIANAFIT_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("DIANAFIT_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DIANAFIT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DIANAFIT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DIANAFIT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DIANAFIT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DIANAFIT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DIANAFIT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("DIANAFIT_WORKOUT_REST_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Workout.RestSeconds = secs
		}
	}
	if v := os.Getenv("DIANAFIT_WORKOUT_VIEW_MODE"); v != "" {
		cfg.Workout.ViewMode = models.ViewMode(v)
	}
	if v := os.Getenv("DIANAFIT_CONTENT_PATH"); v != "" {
		cfg.Content.Path = v
	}
	if v := os.Getenv("DIANAFIT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("DIANAFIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port is required")
	}
	if !isLoopback(c.Server.Host) {
		return fmt.Errorf("server.host must be a loopback address, got %q", c.Server.Host)
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite or postgres, got %q", c.Storage.Driver)
	}
	if c.Workout.RestSeconds <= 0 {
		return fmt.Errorf("workout.rest_seconds must be positive")
	}
	if !c.Workout.ViewMode.Valid() {
		return fmt.Errorf("workout.view_mode must be list or detailed, got %q", c.Workout.ViewMode)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
