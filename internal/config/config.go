package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverS3     = "s3"
	StorageDriverMemory = "memory"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage gateway
	StorageDriver        string // "s3" or "memory"
	S3Region             string
	S3Bucket             string
	S3AccessKey          string
	S3SecretKey          string
	S3Endpoint           string // Optional: for S3-compatible services (MinIO, R2, etc.)
	S3PublicURL          string // Optional: CDN or bucket URL used for stored file URLs
	S3PathStyle          bool   // Path-style addressing, required by MinIO and some S3-compatible services
	S3PresignExpiry      time.Duration
	StorageUploadTimeout time.Duration
	StorageDeleteTimeout time.Duration

	// Uploads
	UploadMaxSize int64
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "MyCloudBox"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Required: base URL for share links and OAuth redirects
		Port:    envString("PORT", "5000"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/mycloudbox.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver:        envString("STORAGE_DRIVER", StorageDriverS3),
		S3Region:             envString("S3_REGION", ""),
		S3Bucket:             envString("S3_BUCKET", ""),
		S3AccessKey:          envString("S3_ACCESS_KEY", ""),
		S3SecretKey:          envString("S3_SECRET_KEY", ""),
		S3Endpoint:           envString("S3_ENDPOINT", ""),
		S3PublicURL:          envString("S3_PUBLIC_URL", ""),
		S3PathStyle:          envBool("S3_PATH_STYLE", true),
		S3PresignExpiry:      envDuration("S3_PRESIGN_EXPIRY", 15*time.Minute),
		StorageUploadTimeout: envDuration("STORAGE_UPLOAD_TIMEOUT", 30*time.Second),
		StorageDeleteTimeout: envDuration("STORAGE_DELETE_TIMEOUT", 10*time.Second),

		// Uploads
		UploadMaxSize: envInt64("UPLOAD_MAX_SIZE", 25<<20), // 25MB
	}

	if cfg.StorageDriver == StorageDriverS3 {
		validateS3(cfg)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateS3 ensures the S3 gateway can be constructed.
func validateS3(cfg *Config) {
	missing := map[string]string{
		"S3_REGION":     cfg.S3Region,
		"S3_BUCKET":     cfg.S3Bucket,
		"S3_ACCESS_KEY": cfg.S3AccessKey,
		"S3_SECRET_KEY": cfg.S3SecretKey,
	}
	for key, value := range missing {
		if value == "" {
			slog.Error("config required env var missing", "key", key, "hint", "set STORAGE_DRIVER=memory for local testing")
			os.Exit(1)
		}
	}
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email and in-memory storage for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.StorageDriver != StorageDriverS3 {
		slog.Error("production deployment requires STORAGE_DRIVER=s3", "storage_driver", cfg.StorageDriver)
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// OAuthEnabled reports whether the given provider has client credentials.
func (c *Config) OAuthEnabled(provider string) bool {
	switch provider {
	case "google":
		return c.GoogleClientID != "" && c.GoogleClientSecret != ""
	case "github":
		return c.GitHubClientID != "" && c.GitHubClientSecret != ""
	default:
		return false
	}
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		EmailFrom: c.EmailFrom,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,

		// Needed for CSP img-src/media-src
		StorageDriver: c.StorageDriver,
		S3Region:      c.S3Region,
		S3Bucket:      c.S3Bucket,
		S3Endpoint:    c.S3Endpoint,
		S3PublicURL:   c.S3PublicURL,

		UploadMaxSize: c.UploadMaxSize,
	}
}
