package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Sweep    SweepConfig
	Outbox   OutboxConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL         string        `envconfig:"DATABASE_URL" required:"true"`
	LockTimeout time.Duration `envconfig:"DATABASE_LOCK_TIMEOUT" default:"3s"`
}

// RedisConfig holds the listing cache settings.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:""`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"30s"`
}

// Enabled reports whether a redis address was configured at all.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// RabbitMQConfig holds the broker connection settings. The URL is only
// required by processes that publish (the API's outbox relay); the sweeper
// writes outbox rows without touching the broker.
type RabbitMQConfig struct {
	URL string `envconfig:"RABBITMQ_URL"`
}

// Validate fails when no broker URL was configured.
func (r *RabbitMQConfig) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("RABBITMQ_URL is required")
	}
	return nil
}

// AuthConfig holds the token signing key locations.
type AuthConfig struct {
	PrivateKeyPath string `envconfig:"AUTH_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `envconfig:"AUTH_PUBLIC_KEY_PATH"`
}

// SweepConfig holds the expiration sweep settings.
type SweepConfig struct {
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

// OutboxConfig holds the outbox relay settings.
type OutboxConfig struct {
	BatchSize int           `envconfig:"OUTBOX_BATCH_SIZE" default:"10"`
	Interval  time.Duration `envconfig:"OUTBOX_INTERVAL" default:"1s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the environment. A .env.local file overrides
// .env, which overrides nothing; both are optional.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}
