package authapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg := LoadConfigFromEnv()

	assert.Equal(t, DefaultCookieName, cfg.CookieName)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("GATEHOUSE_AUTH_COOKIE_SECURE", "true")
	t.Setenv("GATEHOUSE_AUTH_COOKIE_SAMESITE", "strict")
	t.Setenv("GATEHOUSE_AUTH_MAX_BODY_BYTES", "4096")

	cfg := LoadConfigFromEnv()

	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteStrictMode, cfg.CookieSameSite)
	assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
}

func TestLoadConfigFromEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("GATEHOUSE_AUTH_COOKIE_SECURE", "definitely")
	t.Setenv("GATEHOUSE_AUTH_COOKIE_SAMESITE", "diagonal")
	t.Setenv("GATEHOUSE_AUTH_MAX_BODY_BYTES", "-5")

	cfg := LoadConfigFromEnv()

	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestConfigZeroValueFallbacks(t *testing.T) {
	var cfg Config

	assert.Equal(t, DefaultCookieName, cfg.cookieName())
	assert.Equal(t, http.SameSiteLaxMode, cfg.sameSite())
	assert.Equal(t, int64(1<<20), cfg.maxBodyBytes())
}
