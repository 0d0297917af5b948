// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"` // X-Telegram-Bot-Api-Secret-Token
	Username      string `yaml:"username"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	GeminiKey    string `yaml:"gemini_key"`
	GeminiURL    string `yaml:"gemini_url"`
	DefaultModel string `yaml:"default_model"`
}

type PlacesConfig struct {
	APIKey     string `yaml:"api_key"`
	Language   string `yaml:"language"`
	MaxResults int    `yaml:"max_results"`
}

type SessionConfig struct {
	InactivityThreshold time.Duration `yaml:"inactivity_threshold"` // context expiry
	ContextLimit        int           `yaml:"context_limit"`        // entries loaded per context
	PromptMaxMessages   int           `yaml:"prompt_max_messages"`  // entries rendered into the prompt
}

type WorkerConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	DefaultPlatform string        `yaml:"default_platform"` // delivery fallback
	MetricsPort     int           `yaml:"metrics_port"`     // 0 disables the worker /metrics listener
}

type HTTPConfig struct {
	Port          int    `yaml:"port"`
	AdminJWTKey   string `yaml:"admin_jwt_key"` // HMAC secret for /admin routes
	RateLimit     int    `yaml:"rate_limit"`    // webhook messages per user per window
	RateWindowSec int    `yaml:"rate_window_sec"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Places   PlacesConfig   `yaml:"places"`
	Session  SessionConfig  `yaml:"session"`
	Worker   WorkerConfig   `yaml:"worker"`
	HTTP     HTTPConfig     `yaml:"http"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()

	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.Places.Language == "" {
		cfg.Places.Language = "en"
	}
	if cfg.Places.MaxResults <= 0 {
		cfg.Places.MaxResults = 5
	}
	if cfg.Session.InactivityThreshold <= 0 {
		cfg.Session.InactivityThreshold = 30 * time.Minute
	}
	if cfg.Session.ContextLimit <= 0 {
		cfg.Session.ContextLimit = 20
	}
	if cfg.Session.PromptMaxMessages <= 0 {
		cfg.Session.PromptMaxMessages = 10
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = 2 * time.Second
	}
	if cfg.Worker.DefaultPlatform == "" {
		cfg.Worker.DefaultPlatform = "telegram"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RateLimit <= 0 {
		cfg.HTTP.RateLimit = 30
	}
	if cfg.HTTP.RateWindowSec <= 0 {
		cfg.HTTP.RateWindowSec = 60
	}
}
