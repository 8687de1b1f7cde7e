// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds

	// CORSOrigins lists the browser origins allowed to call the API.
	// Empty disables CORS handling.
	CORSOrigins []string
}

// DatabaseConfig holds connection settings. Driver is "postgres", "mysql"
// or "sqlite".
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev            bool
	Migrations     bool
	MetricsEnabled bool
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// AuthConfig holds session and permission settings.
type AuthConfig struct {
	SessionSecret    string
	SubjectCacheTTL  time.Duration
	SubjectCacheSize int
	AdminEmail       string
	AdminPassword    string

	// RedisURL enables cross-instance subject cache invalidation.
	RedisURL            string
	InvalidationChannel string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MySQLDSN returns the go-sql-driver/mysql connection string.
func (d DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	dev := getEnvBool("DEV", true)
	logFormat := "json"
	if dev {
		logFormat = "text"
	}
	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	defaultPort := 5432
	if driver == "mysql" {
		defaultPort = 3306
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			CORSOrigins:  getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:     driver,
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", defaultPort),
			User:       getEnv("DB_USER", "adopt"),
			Password:   getEnv("DB_PASSWORD", "adopt123"),
			DBName:     getEnv("DB_NAME", "adopt"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "adopt.db"),
		},
		App: AppConfig{
			Dev:            dev,
			Migrations:     getEnvBool("MIGRATIONS", false),
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", logFormat),
		},
		Auth: AuthConfig{
			SessionSecret:       getEnv("SESSION_SECRET", ""),
			SubjectCacheTTL:     getEnvDuration("SUBJECT_CACHE_TTL", 5*time.Minute),
			SubjectCacheSize:    getEnvInt("SUBJECT_CACHE_SIZE", 1024),
			AdminEmail:          getEnv("ADMIN_EMAIL", ""),
			AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
			RedisURL:            getEnv("REDIS_URL", ""),
			InvalidationChannel: getEnv("SUBJECT_INVALIDATION_CHANNEL", "adopt:subjects:invalidate"),
		},
	}
}

// Validate reports settings that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if !c.App.Dev && c.Auth.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required outside dev mode")
	}
	if c.Auth.SubjectCacheSize <= 0 {
		return fmt.Errorf("config: SUBJECT_CACHE_SIZE must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration parses values like "90s" or "5m".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
