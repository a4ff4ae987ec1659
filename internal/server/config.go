// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the relaychat service.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	RateLimit       RateLimitConfig
	NamePolicy      channel.NamePolicy
	SeedChannels    []string
	LogLevel        string
	ShutdownTimeout time.Duration
	GinMode         string
}

// environment mirrors Config as flat environment variables. Zero values mean
// "not set" and are replaced by defaults in sanitizeConfig.
type environment struct {
	Port            string        `env:"SERVER_PORT"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS"`
	MaxMessageSize  int           `env:"MAX_MESSAGE_SIZE"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST"`
	RefillInterval  time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL"`
	NamePolicy      string        `env:"CHANNEL_NAME_POLICY"`
	SeedChannels    string        `env:"SEED_CHANNELS"`
	LogLevel        string        `env:"LOG_LEVEL"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	GinMode         string        `env:"GIN_MODE"`
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 512,
		RateLimit: RateLimitConfig{
			Burst:          5,
			RefillInterval: time.Second,
		},
		NamePolicy:      channel.PolicyStrict,
		SeedChannels:    append([]string(nil), channel.DefaultSeeds...),
		LogLevel:        "INFO",
		ShutdownTimeout: 10 * time.Second,
		GinMode:         "release",
	}
}

func sanitizeConfig(cfg Config) Config {
	def := defaultConfig()

	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = def.RateLimit.Burst
	}
	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = def.RateLimit.RefillInterval
	}
	if cfg.NamePolicy == "" {
		cfg.NamePolicy = def.NamePolicy
	}
	if cfg.SeedChannels == nil {
		cfg.SeedChannels = def.SeedChannels
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		cfg.GinMode = def.GinMode
	}
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	cfg.SeedChannels = append([]string(nil), cfg.SeedChannels...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// LoadConfig reads a .env file when one is present, then the process
// environment. Unset or non-positive values fall back to defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var raw environment
	if _, err := env.UnmarshalFromEnviron(&raw); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return configFromEnvironment(raw)
}

func configFromEnvironment(raw environment) (*Config, error) {
	cfg := defaultConfig()

	if raw.Port != "" {
		cfg.Port = raw.Port
	}
	if raw.AllowedOrigins != "" {
		cfg.AllowedOrigins = splitList(raw.AllowedOrigins)
	}
	if raw.MaxMessageSize > 0 {
		cfg.MaxMessageSize = int64(raw.MaxMessageSize)
	}
	if raw.RateLimitBurst > 0 {
		cfg.RateLimit.Burst = raw.RateLimitBurst
	}
	if raw.RefillInterval > 0 {
		cfg.RateLimit.RefillInterval = raw.RefillInterval
	}
	if raw.NamePolicy != "" {
		policy, err := channel.ParseNamePolicy(raw.NamePolicy)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		cfg.NamePolicy = policy
	}
	if raw.SeedChannels != "" {
		cfg.SeedChannels = splitList(raw.SeedChannels)
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = raw.ShutdownTimeout
	}
	if raw.GinMode != "" {
		cfg.GinMode = raw.GinMode
	}

	sanitized := sanitizeConfig(cfg)
	return &sanitized, nil
}

func splitList(value string) []string {
	parts := lo.Map(strings.Split(value, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Compact(parts)
}
