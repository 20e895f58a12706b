// config/config.go
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultBucket = "challenge-prints"

type Config struct {
	Port           string
	AppEnv         string
	DatabaseURL    string
	AllowedOrigins []string

	// Admin panel credentials. PasswordHash (bcrypt) wins over the plaintext password.
	AdminPassword     string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration

	StorageEndpoint       string
	StorageRegion         string
	StorageAccessKeyID    string
	StorageSecretKey      string
	StorageBucket         string
	StoragePublicBaseURL  string
	StorageForcePathStyle bool
	// UploadDir backs a disk store when no S3 endpoint is configured.
	UploadDir string

	MaxUploadBytes  int64
	StagingMaxAge   time.Duration
	SeedChallenges  bool
	LoginRateLimit  int
	SubmitRateLimit int
}

// UsesObjectStorage reports whether uploads go to the S3-compatible bucket instead of UploadDir.
func (c *Config) UsesObjectStorage() bool {
	return c.StorageEndpoint != ""
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		Port:           getEnvString("PORT", "5200"),
		AppEnv:         getEnvString("APP_ENV", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: getEnvStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		// ADMIN_DASHBOARD_PASSWORD is the older name used by the archive/export screens.
		AdminPassword:     getEnvString("ADMIN_PANEL_PASSWORD", os.Getenv("ADMIN_DASHBOARD_PASSWORD")),
		AdminPasswordHash: os.Getenv("ADMIN_PANEL_PASSWORD_HASH"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 4)) * time.Hour,

		StorageEndpoint:       os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:         getEnvString("STORAGE_REGION", "auto"),
		StorageAccessKeyID:    os.Getenv("STORAGE_ACCESS_KEY_ID"),
		StorageSecretKey:      os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		StorageBucket:         getEnvString("STORAGE_BUCKET", DefaultBucket),
		StoragePublicBaseURL:  os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		StorageForcePathStyle: getEnvBool("STORAGE_FORCE_PATH_STYLE", true),
		UploadDir:             getEnvString("UPLOAD_DIR", "uploads"),

		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", 5)) * 1024 * 1024,
		StagingMaxAge:   time.Duration(getEnvInt("STAGING_MAX_AGE_HOURS", 6)) * time.Hour,
		SeedChallenges:  getEnvBool("SEED_CHALLENGES", true),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		SubmitRateLimit: getEnvInt("SUBMIT_RATE_LIMIT", 20),
	}

	if cfg.StoragePublicBaseURL == "" && cfg.StorageEndpoint != "" {
		cfg.StoragePublicBaseURL = strings.TrimRight(cfg.StorageEndpoint, "/") + "/" + cfg.StorageBucket
	}

	return cfg, cfg.Validate()
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable not set"))
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PANEL_PASSWORD (or ADMIN_PANEL_PASSWORD_HASH) environment variable not set"))
	}
	if c.IsProduction() && c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}
	if c.IsProduction() && c.StorageEndpoint == "" {
		errs = append(errs, errors.New("STORAGE_ENDPOINT must be set in production"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_HOURS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
