package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	MissingDefault  = "default"
	MissingNotFound = "not_found"
)

const (
	defaultAddr      = ":8080"
	defaultLogLevel  = "info"
	defaultNamespace = "contents"
	defaultCORS      = "*"
	defaultSSLMode   = "require"
	defaultRedisURL  = "redis://localhost:6379/0"
)

type Database struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

// DSN builds the lib/pq connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type Config struct {
	Addr           string
	LogLevel       string
	StorageBackend string
	Namespace      string
	OnMissing      string
	CORSOrigin     string
	RedisURL       string
	DB             Database
}

// Load reads the configuration from the process environment.
// Callers that want .env support load it first.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("ADDR", defaultAddr),
		LogLevel:       getEnv("LOG_LEVEL", defaultLogLevel),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		Namespace:      getEnv("STORAGE_NAMESPACE", defaultNamespace),
		OnMissing:      strings.ToLower(getEnv("ON_MISSING", MissingDefault)),
		CORSOrigin:     getEnv("CORS_ORIGIN", defaultCORS),
		RedisURL:       getEnv("REDIS_URL", defaultRedisURL),
		DB: Database{
			User:     getEnv("user", ""),
			Password: getEnv("password", ""),
			Host:     getEnv("host", ""),
			Port:     getEnv("port", ""),
			Name:     getEnv("dbname", ""),
			SSLMode:  getEnv("DB_SSLMODE", defaultSSLMode),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("postgres backend requires host and dbname")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.OnMissing {
	case MissingDefault, MissingNotFound:
	default:
		return fmt.Errorf("unknown ON_MISSING %q", c.OnMissing)
	}

	if c.Namespace == "" {
		return fmt.Errorf("STORAGE_NAMESPACE cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
