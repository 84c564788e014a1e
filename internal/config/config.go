package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string // "debug", "info", "warn", "error"

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL         string
	DatabaseMaxConns    int32
	DatabaseMinConns    int32
	DatabaseMaxConnLife time.Duration

	// Redis backs sessions and rate limiting when set; otherwise they are in memory.
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // Optional: enables mTLS when set

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Rate limiting
	RateLimitMax int // requests per minute per IP

	// Click recording
	ClickQueueSize int
	ClickWorkers   int

	// Metrics
	MetricsEnabled bool

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "BioLinks"
	SiteTagline string // env: SITE_TAGLINE, default: "All your links in one place"
	SiteFooter  string // env: SITE_FOOTER, default: "BioLinks - All your links in one place"
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		ServerAddr:          getEnv("SERVER_ADDR", ":3000"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/biolinks?sslmode=disable"),
		DatabaseMaxConns:    int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
		DatabaseMinConns:    int32(getEnvInt("DATABASE_MIN_CONNS", 2)),
		DatabaseMaxConnLife: getEnvDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour),
		RedisURL:            getEnv("REDIS_URL", ""),
		TLSEnabled:          getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:         getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:          getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:           getEnv("TLS_CA_FILE", ""),
		OIDCIssuer:          getEnv("OIDC_ISSUER", ""),
		OIDCClientID:        getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret:    getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:     getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:       getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:         getEnv("CORS_ORIGINS", ""),
		RateLimitMax:        getEnvInt("RATE_LIMIT_MAX", 100),
		ClickQueueSize:      getEnvInt("CLICK_QUEUE_SIZE", 1024),
		ClickWorkers:        getEnvInt("CLICK_WORKERS", 2),
		MetricsEnabled:      getEnv("METRICS_ENABLED", "true") == "true",

		SiteTitle:   getEnv("SITE_TITLE", "BioLinks"),
		SiteTagline: getEnv("SITE_TAGLINE", "All your links in one place"),
		SiteFooter:  getEnv("SITE_FOOTER", "BioLinks - All your links in one place"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// OIDCEnabled returns true if an identity provider is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
