package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set, takes precedence over the individual parts.
type DatabaseConfig struct {
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectRetries is how many extra pings startup makes while the database
	// container is still coming up.
	ConnectRetries int
}

// MinIOConfig holds object storage settings for supplier attachments.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the connection used to cache postal code lookups.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CEPConfig tunes the postal code lookup client.
type CEPConfig struct {
	TimeoutSec  int
	CacheTTLSec int
}

// LocaleConfig carries the container locale.
type LocaleConfig struct {
	Lang  string
	LcAll string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	Debug        bool
	SecretKey    string
	AllowedHosts []string
	AuthRequired bool
	LogLevel     string
	Locale       LocaleConfig
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Redis        RedisConfig
	CEP          CEPConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	debug := getEnvBool("DEBUG", false)
	level := "info"
	if debug {
		level = "debug"
	}

	return &AppConfig{
		AppHost:      getEnv("APP_HOST", "localhost:8081"),
		Port:         getEnv("PORT", "8081"),
		Debug:        debug,
		SecretKey:    getEnv("SECRET_KEY", ""),
		AllowedHosts: getEnvList("ALLOWED_HOSTS", []string{"*"}),
		AuthRequired: getEnvBool("AUTH_REQUIRED", false),
		LogLevel:     getEnv("LOG_LEVEL", level),
		Locale: LocaleConfig{
			Lang:  getEnv("LANG", "pt_BR.UTF-8"),
			LcAll: getEnv("LC_ALL", "pt_BR.UTF-8"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectRetries:     getEnvInt("DB_CONNECT_RETRIES", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		CEP: CEPConfig{
			TimeoutSec:  getEnvInt("CEP_TIMEOUT_SEC", 5),
			CacheTTLSec: getEnvInt("CEP_CACHE_TTL_SEC", 86400),
		},
	}
}

// HostAllowed reports whether host (with or without port) matches ALLOWED_HOSTS.
// "*" allows everything and a leading dot matches the domain and its subdomains.
func (c *AppConfig) HostAllowed(host string) bool {
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.HasSuffix(host, "]") {
		host = host[:i]
	}
	host = strings.ToLower(host)
	for _, allowed := range c.AllowedHosts {
		allowed = strings.ToLower(allowed)
		switch {
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "."):
			if host == allowed[1:] || strings.HasSuffix(host, allowed) {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
