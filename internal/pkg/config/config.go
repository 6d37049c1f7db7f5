package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// PlaceholderJWTSecret is the value shipped in example env files. The server
// refuses to start with it.
const PlaceholderJWTSecret = "your-secret-key-change-in-production"

// MinJWTSecretLen is the shortest accepted signing secret, in bytes.
const MinJWTSecretLen = 32

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string `env:"PORT,         default=3000"`
	Env         string `env:"ENV,          default=production"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	CORSOrigin  string `env:"CORS_ORIGIN,  default=http://localhost:8080"`
	FrontendDir string `env:"FRONTEND_DIR"`

	Auth  AuthConfig
	Store StoreConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
	BcryptCost   int           `env:"BCRYPT_COST,    default=10"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=postgres"`

	Postgres PostgresConfig
	Mongo    MongoConfig
}

type PostgresConfig struct {
	Host     string `env:"DB_HOST,      default=localhost"`
	Port     int    `env:"DB_PORT,      default=5432"`
	Database string `env:"DB_NAME,      default=cms"`
	User     string `env:"DB_USER,      default=postgres"`
	Password string `env:"DB_PASSWORD"`
	SSLMode  string `env:"DB_SSLMODE,   default=disable"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cms"`
}

// RedisConfig is optional: an empty Addr disables the idempotency store.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// IsDevelopment reports whether ENV selects development behaviour
// (pretty logs, error details in 500 responses).
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file and then the process environment. Values
// already present in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadFrom resolves configuration from the given lookuper only.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be one of %s, %s, %s (got %q)",
			DriverPostgres, DriverMongo, DriverMemory, c.Store.Driver)
	}
	if c.Auth.JWTExpiresIn <= 0 {
		return errors.New("config: JWT_EXPIRES_IN must be positive")
	}
	return nil
}

// ValidateServe additionally checks what the HTTP server needs to sign tokens.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch secret := c.Auth.JWTSecret; {
	case secret == "":
		return errors.New("config: JWT_SECRET is required")
	case secret == PlaceholderJWTSecret:
		return errors.New("config: JWT_SECRET is still the example placeholder")
	case len(secret) < MinJWTSecretLen:
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", MinJWTSecretLen)
	}
	return nil
}
