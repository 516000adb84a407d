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

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty disables rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	PasswordHash string        `yaml:"password_hash"` // bcrypt hash of the staff password
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type OfferConfig struct {
	PurgeInterval time.Duration `yaml:"purge_interval"`
	RetentionDays int           `yaml:"retention_days"`
	RateLimit     struct {
		PerIP    int           `yaml:"per_ip"`
		PerPhone int           `yaml:"per_phone"`
		Window   time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Offer    OfferConfig    `yaml:"offer"`

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

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Offer.PurgeInterval <= 0 {
		cfg.Offer.PurgeInterval = 24 * time.Hour
	}
	if cfg.Offer.RetentionDays <= 0 {
		cfg.Offer.RetentionDays = 180
	}
	if cfg.Offer.RateLimit.PerIP <= 0 {
		cfg.Offer.RateLimit.PerIP = 10
	}
	if cfg.Offer.RateLimit.PerPhone <= 0 {
		cfg.Offer.RateLimit.PerPhone = 3
	}
	if cfg.Offer.RateLimit.Window <= 0 {
		cfg.Offer.RateLimit.Window = time.Hour
	}

	// Fail closed: no default credentials, ever.
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Auth.PasswordHash == "" {
		return nil, errors.New("auth.password_hash is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
