package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/review"
)

// RateRule caps one request category at Limit hits per fixed window.
type RateRule struct {
	Limit         int `toml:"limit"`
	WindowSeconds int `toml:"window_seconds"`
}

type Config struct {
	Server struct {
		Port        string   `toml:"port"`
		AdminToken  string   `toml:"admin_token"`
		CORSOrigins []string `toml:"cors_origins"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Moderation struct {
		APIKey                string `toml:"api_key"`
		Model                 string `toml:"model"`
		BaseURL               string `toml:"base_url"`
		MaxAttempts           int    `toml:"max_attempts"`
		AttemptTimeoutSeconds int    `toml:"attempt_timeout_seconds"`
	} `toml:"moderation"`

	Policy review.Policy `toml:"policy"`

	RateLimit struct {
		Enabled  bool                `toml:"enabled"`
		RedisURL string              `toml:"redis_url"`
		Rules    map[string]RateRule `toml:"rules"`
	} `toml:"ratelimit"`

	Notify struct {
		SMTPHost    string   `toml:"smtp_host"`
		SMTPPort    int      `toml:"smtp_port"`
		Username    string   `toml:"username"`
		Password    string   `toml:"password"`
		From        string   `toml:"from"`
		AdminEmails []string `toml:"admin_emails"`
	} `toml:"notify"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.applyEnvOverrides()

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}

	logger.Debug.Printf("Loaded moderation policy: %+v", config.Policy)

	return &config, nil
}

// applyEnvOverrides lets the compose environment win over the config file
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BACKEND_PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		c.Server.Port = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Server.AdminToken = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Moderation.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RateLimit.RedisURL = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Notify.Password = v
	}
}
