package server

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the server configuration, read from the environment and an
// optional YAML file
type Config struct {
	Port        string `yaml:"port" env:"PORT" env-default:"8080"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:"postgres://localhost:5432/toedo?sslmode=disable"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	SessionTTL   time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"720h"`
	MagicLinkTTL time.Duration `yaml:"magic_link_ttl" env:"MAGIC_LINK_TTL" env-default:"15m"`

	// ExposeMagicToken returns the magic link token in the response while no
	// mailer is configured
	ExposeMagicToken bool `yaml:"expose_magic_token" env:"EXPOSE_MAGIC_TOKEN" env-default:"true"`
}

// LoadConfig reads path when given, otherwise only the environment
func LoadConfig(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address
func (c Config) Addr() string {
	return ":" + c.Port
}
