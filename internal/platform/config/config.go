package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environments accepted in CARELINK_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// RedisConfig configures the candidate cache connection. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit publisher. No brokers means audit events
// are only logged.
type KafkaConfig struct {
	Brokers     []string
	Topic       string
	CreateTopic bool
}

type Config struct {
	Server            Server
	Env               string
	LogLevel          slog.Level
	DatabaseURL       string
	Redis             RedisConfig
	CandidateCacheTTL time.Duration
	Kafka             KafkaConfig
	TierConfigPath    string
	TxTimeout         time.Duration
	// RequestTimeout bounds each /v1 request.
	RequestTimeout time.Duration
}

// IsProduction selects the JSON log handler and rejects the dev signing key.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds the process config from environment variables so main stays
// lean. Unset values fall back to development defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:          getEnv("CARELINK_ADDR", ":8080"),
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
			JWTIssuer:     getEnv("JWT_ISSUER", "carelink"),
			JWTAudience:   getEnv("JWT_AUDIENCE", "carelink-api"),
		},
		Env:            getEnv("CARELINK_ENV", EnvDevelopment),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		TierConfigPath: os.Getenv("TIER_CONFIG_PATH"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:       getEnv("AUDIT_TOPIC", "carelink.audit"),
			CreateTopic: os.Getenv("AUDIT_TOPIC_CREATE") == "true",
		},
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return Config{}, fmt.Errorf("CARELINK_ENV must be %s or %s, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}
	if cfg.IsProduction() && cfg.Server.JWTSigningKey == devSigningKey {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return Config{}, err
	}
	if cfg.CandidateCacheTTL, err = getDuration("CANDIDATE_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TxTimeout, err = getDuration("TX_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
