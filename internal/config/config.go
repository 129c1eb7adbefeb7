package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client preferences
type Config struct {
	ServerURL    string        `yaml:"server_url" json:"server_url"`       // Backend base URL
	Origin       string        `yaml:"origin" json:"origin"`               // Origin used in share links
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"` // Todo list refresh interval
	DBPath       string        `yaml:"db_path" json:"db_path"`             // Local key/value database

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	path string
}

// Dir returns ~/.toedo
func Dir() (string, error) {
	if dir := os.Getenv("TOEDO_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".toedo"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath, dbPath := "", ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "toedo.log")
		dbPath = filepath.Join(dir, "toedo.db")
	}

	interval, err := time.ParseDuration(getEnv("TOEDO_POLL_INTERVAL", "1.5s"))
	if err != nil || interval <= 0 {
		interval = 1500 * time.Millisecond
	}

	return &Config{
		ServerURL:    getEnv("TOEDO_SERVER_URL", "http://localhost:8080"),
		Origin:       getEnv("TOEDO_ORIGIN", "http://localhost:3000"),
		PollInterval: interval,
		DBPath:       getEnv("TOEDO_DB_PATH", dbPath),
		LogLevel:     getEnv("TOEDO_LOG_LEVEL", "INFO"),
		LogFile:      getEnv("TOEDO_LOG_FILE", logPath),
		LogConsole:   getEnv("TOEDO_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load loads config from ~/.toedo/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile loads config from path, returning defaults when it does not exist
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1500 * time.Millisecond
	}

	return cfg, nil
}

// Save writes the config back to the file it was loaded from
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
