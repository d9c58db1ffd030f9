// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct that main builds once
// and passes explicitly to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret  = "dev-jwt-secret-change-me"
	defaultDBPassword = "changeme"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host      string
	Port      string
	Env       string // "development", "production", "testing"
	PublicURL string // base URL used in emailed links; derived from the request when empty
	LogLevel  string

	// Persistence
	StoreDriver string // "postgres" or "memory"
	DatabaseURL string // overrides the individual POSTGRES_* values when set
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Valkey (Redis-compatible cache). Caching is disabled when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Identity tokens
	JWTSecret    string
	JWTAlgorithm string
	JWTIssuer    string
	TokenTTL     time.Duration

	// Credentials
	ResetTokenTTL time.Duration
	BcryptCost    int

	// Outbound email. Delivery is disabled when SMTPHost is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Media hosting
	MediaBackend     string // "local", "s3" or "gcs"
	MediaFolder      string
	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3PublicURL      string
	GCSBucket        string
	GCSCredentials   string
	LocalStoragePath string
	LocalStorageURL  string

	// Cross-origin request sources allowed by the API.
	CORSAllowedOrigins []string

	// Development seed account.
	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults for development where appropriate. Returns
// an error if the result is not usable.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Host:      envOrDefault("APP_HOST", "0.0.0.0"),
		Port:      envOrDefault("APP_PORT", "2130"),
		Env:       envOrDefault("APP_ENV", "development"),
		PublicURL: strings.TrimRight(os.Getenv("APP_PUBLIC_URL"), "/"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),

		StoreDriver: envOrDefault("STORE_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:      envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:      envOrDefault("POSTGRES_USER", "bloghub"),
		DBPassword:  envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:      envOrDefault("POSTGRES_DB", "bloghub"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		JWTSecret:    envOrDefault("JWT_SECRET", defaultJWTSecret),
		JWTAlgorithm: envOrDefault("JWT_ALGORITHM", "HS256"),
		JWTIssuer:    envOrDefault("JWT_ISSUER", "bloghub"),
		TokenTTL:     envDuration("JWT_TTL", 24*time.Hour),

		ResetTokenTTL: envDuration("RESET_TOKEN_TTL", 10*time.Minute),
		BcryptCost:    envInt("BCRYPT_COST", 10),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		MediaBackend:     envOrDefault("MEDIA_BACKEND", "local"),
		MediaFolder:      envOrDefault("MEDIA_FOLDER", "blog-site"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Bucket:         envOrDefault("S3_BUCKET", "bloghub-media"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSCredentials:   os.Getenv("GCS_CREDENTIALS_FILE"),
		LocalStoragePath: envOrDefault("LOCAL_STORAGE_PATH", "./uploads"),
		LocalStorageURL:  os.Getenv("LOCAL_STORAGE_URL"),

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		SeedAdminEmail:    envOrDefault("SEED_ADMIN_EMAIL", "admin@bloghub.local"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}
	if cfg.LocalStorageURL == "" {
		cfg.LocalStorageURL = "http://localhost:" + cfg.Port + "/uploads"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent. It is
// run once by Load.
func (c *Config) Validate() error {
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL and RESET_TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.StoreDriver)
	}

	switch c.MediaBackend {
	case "local":
	case "s3":
		if c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set for the s3 media backend")
		}
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET must be set for the gcs media backend")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND %q is not supported", c.MediaBackend)
	}

	if c.Env == "production" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.StoreDriver == "postgres" && c.DatabaseURL == "" && c.DBPassword == defaultDBPassword {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if c.StoreDriver == "memory" {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// CacheEnabled reports whether a Valkey host is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// MailEnabled reports whether an SMTP host is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
