package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("SPLASH_DELAY", "")
	t.Setenv("LOGIN_RATE_LIMIT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, ":3000", cfg.Address)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 2*time.Second, cfg.SplashDelay)
	assert.Equal(t, int64(5), cfg.LoginRateLimit)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("SPLASH_DELAY", "0s")
	t.Setenv("LOGIN_RATE_LIMIT", "10")
	t.Setenv("BLOB_BASE_URL", "https://cdn.test/blobs/")

	cfg := Load()

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, time.Duration(0), cfg.SplashDelay)
	assert.Equal(t, int64(10), cfg.LoginRateLimit)
	assert.Equal(t, "https://cdn.test/blobs", cfg.BlobBaseURL)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")
	t.Setenv("LOGIN_RATE_LIMIT", "-3")

	cfg := Load()

	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(5), cfg.LoginRateLimit)
}

func TestLoadTimeZone(t *testing.T) {
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	assert.Equal(t, "Asia/Kolkata", Load().TimeZone.String())

	t.Setenv("TIMEZONE", "Mars/Olympus")
	assert.Equal(t, time.UTC, Load().TimeZone)
}
