// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string `yaml:"token" envconfig:"BOT_TOKEN"`               // root bot credential
	PublicURL   string `yaml:"public_url" envconfig:"PUBLIC_URL"`         // https://host, webhooks live under /webhook/<token>
	APIEndpoint string `yaml:"api_endpoint" envconfig:"BOT_API_ENDPOINT"` // override for tests and local Bot API servers
	Noop        bool   `yaml:"noop" envconfig:"BOT_NOOP"`                 // log instead of calling telegram
}

type HTTPConfig struct {
	Port           int           `yaml:"port" envconfig:"PORT"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"HTTP_REQUEST_TIMEOUT"`
}

type LogConfig struct {
	Level    string `yaml:"level" envconfig:"LOG_LEVEL"`       // trace|debug|info|warn|error
	Format   string `yaml:"format" envconfig:"LOG_FORMAT"`     // json|console
	Sampling bool   `yaml:"sampling" envconfig:"LOG_SAMPLING"` // enable sampling in prod
}

type AdminConfig struct {
	APIKey    string        `yaml:"api_key" envconfig:"ADMIN_API_KEY"`
	JWTSecret string        `yaml:"jwt_secret" envconfig:"ADMIN_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" envconfig:"ADMIN_TOKEN_TTL"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	MaxConns       int32  `yaml:"max_conns" envconfig:"DATABASE_MAX_CONNS"`
	MigrateOnStart bool   `yaml:"migrate_on_start" envconfig:"DATABASE_MIGRATE_ON_START"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" envconfig:"REDIS_URL"`
	Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" envconfig:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`           // tenant cache entries
	LockTTL  time.Duration `yaml:"lock_ttl" envconfig:"REDIS_LOCK_TTL"` // per-conversation lock
}

type RateLimitConfig struct {
	OutboundPerSecond int `yaml:"outbound_per_second" envconfig:"RATE_LIMIT_OUTBOUND_PER_SECOND"`
	InboundPerMinute  int `yaml:"inbound_per_minute" envconfig:"RATE_LIMIT_INBOUND_PER_MINUTE"` // 0 disables
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

// Load reads the yaml file at path (skipped when path is empty), overlays
// environment variables and applies defaults.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Normalize fills defaults and performs minimal validation.
func Normalize(cfg *Config) error {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 12 * time.Hour
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 10 * time.Second
	}
	if cfg.RateLimit.OutboundPerSecond <= 0 {
		cfg.RateLimit.OutboundPerSecond = 30
	}
	if cfg.RateLimit.InboundPerMinute < 0 {
		cfg.RateLimit.InboundPerMinute = 0
	}
	cfg.Bot.PublicURL = strings.TrimRight(strings.TrimSpace(cfg.Bot.PublicURL), "/")

	if cfg.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	if cfg.Bot.PublicURL == "" {
		return errors.New("bot.public_url is required")
	}
	if u, err := url.Parse(cfg.Bot.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("bot.public_url %q is not an absolute url", cfg.Bot.PublicURL)
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Admin.APIKey != "" && cfg.Admin.JWTSecret == "" {
		return errors.New("admin.jwt_secret is required when admin.api_key is set")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
