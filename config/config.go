package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Database drivers accepted in DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Media    MediaConfig
	Reports  ReportsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	// InstanceID identifies this process on the change channel; empty means generated at start.
	InstanceID string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string // postgres, sqlite or memory
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/church?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string
}

// RedisConfig holds Redis connection settings. Redis is optional: without it the console runs
// single-instance and report exports are not available.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds the shared secret of the external auth service.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and S3 bucket names.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	ReportsBucket        string
	PresignExpireMinutes int
	// Endpoint points at an S3-compatible service (MinIO, LocalStack) instead of AWS.
	Endpoint string
}

// Enabled reports whether object storage is configured.
func (c AWSConfig) Enabled() bool {
	return c.MediaBucket != "" || c.ReportsBucket != ""
}

// MediaConfig holds media library limits.
type MediaConfig struct {
	MaxUploadMB int
}

// MaxUploadBytes returns the upload limit in bytes.
func (c MediaConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// ReportsConfig holds report branding.
type ReportsConfig struct {
	// ChurchName heads the member ID cards.
	ChurchName string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
			InstanceID:         getEnv("INSTANCE_ID", ""),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "church"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			MaxConns:   getEnvInt("DB_MAX_CONNS", 0),
			SQLitePath: getEnv("SQLITE_PATH", "church.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:          getEnv("AWS_S3_MEDIA_BUCKET", ""),
			ReportsBucket:        getEnv("AWS_S3_REPORTS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
			Endpoint:             getEnv("AWS_S3_ENDPOINT", ""),
		},
		Media: MediaConfig{
			MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 50),
		},
		Reports: ReportsConfig{
			ChurchName: getEnv("CHURCH_NAME", "Igreja Evangelica Comunidade Vida"),
		},
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Media.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.Media.MaxUploadMB)
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
