package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	DatabaseURL       string
	StorageDriver     string
	RedisURL          string
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
	MigrateOnStart    bool

	// TrustCacheTTL bounds how long a grant removed without going through
	// the cache keeps skipping consent.
	TrustCacheTTL time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS on the public listener when
	// the service is not behind a terminating proxy.
	TLSCertFile string
	TLSKeyFile  string

	// SiteURL is the absolute base URL of the surrounding site, with a
	// trailing slash. Login, home and re-entry links are resolved against it.
	SiteURL       string
	SiteName      string
	SiteLang      string
	LoginPath     string
	HomePath      string
	AuthorizePath string

	SessionCookie string
	SessionSecret string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		StorageDriver:     getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		RedisURL:          getEnv("REDIS_URL", ""),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr: os.Getenv("METRICS_LISTEN_ADDR"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ServiceName:       getEnv("SERVICE_NAME", "okapi-authorize"),
		MigrateOnStart:    getEnv("MIGRATE_ON_START", "") == "true",
		TLSCertFile:       getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:        getEnv("TLS_KEY_FILE", ""),
		SiteURL:           getEnv("SITE_URL", ""),
		SiteName:          getEnv("SITE_NAME", "OKAPI"),
		SiteLang:          getEnv("SITE_LANG", "en"),
		LoginPath:         getEnv("LOGIN_PATH", "login.php"),
		HomePath:          getEnv("HOME_PATH", "index.php"),
		AuthorizePath:     getEnv("AUTHORIZE_PATH", "okapi/apps/authorize"),
		SessionCookie:     getEnv("SESSION_COOKIE", "okapi_session"),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
	}

	ttl, err := time.ParseDuration(getEnv("TRUST_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("parse TRUST_CACHE_TTL: %w", err)
	}
	cfg.TrustCacheTTL = ttl

	if cfg.SiteURL != "" && !strings.HasSuffix(cfg.SiteURL, "/") {
		cfg.SiteURL += "/"
	}

	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var missing []string

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if c.SiteURL == "" {
		missing = append(missing, "SITE_URL")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(c.SiteURL, "http://") && !strings.HasPrefix(c.SiteURL, "https://") {
		return fmt.Errorf("SITE_URL must be an absolute http(s) URL")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if c.RedisURL != "" && c.TrustCacheTTL <= 0 {
		return fmt.Errorf("TRUST_CACHE_TTL must be positive")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must both be set")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
