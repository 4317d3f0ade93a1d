package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:    "postgres://localhost/okapi",
		StorageDriver:  StorageDriverPostgres,
		HTTPListenAddr: ":8080",
		SiteURL:        "https://opencaching.example/",
		SessionSecret:  strings.Repeat("s", 32),
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "STORAGE_DRIVER", "HTTP_LISTEN_ADDR", "LOG_LEVEL",
		"SITE_LANG", "LOGIN_PATH", "HOME_PATH", "AUTHORIZE_PATH", "SESSION_COOKIE",
		"METRICS_LISTEN_ADDR", "MIGRATE_ON_START", "TRUST_CACHE_TTL",
	} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, "", cfg.MetricsListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "en", cfg.SiteLang)
	assert.Equal(t, "login.php", cfg.LoginPath)
	assert.Equal(t, "index.php", cfg.HomePath)
	assert.Equal(t, "okapi/apps/authorize", cfg.AuthorizePath)
	assert.Equal(t, "okapi_session", cfg.SessionCookie)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 30*time.Second, cfg.TrustCacheTTL)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/okapi")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TRUST_CACHE_TTL", "5s")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("METRICS_LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("SITE_URL", "https://opencaching.example")
	t.Setenv("SITE_NAME", "Opencaching")
	t.Setenv("SITE_LANG", "pl")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db:5432/okapi", cfg.DatabaseURL)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.TrustCacheTTL)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, ":9090", cfg.MetricsListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "https://opencaching.example/", cfg.SiteURL, "trailing slash is added")
	assert.Equal(t, "Opencaching", cfg.SiteName)
	assert.Equal(t, "pl", cfg.SiteLang)
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := &Config{StorageDriver: StorageDriverPostgres}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "HTTP_LISTEN_ADDR")
	assert.Contains(t, err.Error(), "SITE_URL")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidate_MemoryDriverNeedsNoDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.StorageDriver = StorageDriverMemory
	cfg.DatabaseURL = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.StorageDriver = "mysql"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported STORAGE_DRIVER")
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.SessionSecret = "short"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestValidate_RelativeSiteURL(t *testing.T) {
	cfg := validConfig()
	cfg.SiteURL = "opencaching.example/"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SITE_URL")
}

func TestValidate_TLS_MismatchedCertKey(t *testing.T) {
	cfg := validConfig()
	cfg.TLSCertFile = "/path/to/cert.pem"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TLS_CERT_FILE and TLS_KEY_FILE must both be set")
}

func TestValidate_AllPresent(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestLoad_BadTrustCacheTTL(t *testing.T) {
	t.Setenv("TRUST_CACHE_TTL", "a day")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUST_CACHE_TTL")
}

func TestValidate_TrustCacheTTLWithRedis(t *testing.T) {
	cfg := validConfig()
	cfg.RedisURL = "redis://localhost:6379/0"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUST_CACHE_TTL")

	cfg.TrustCacheTTL = 10 * time.Second
	assert.NoError(t, cfg.Validate())
}
