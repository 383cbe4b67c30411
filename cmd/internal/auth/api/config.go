package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// DefaultCookieName is the canonical session cookie key.
const DefaultCookieName = "SESSION_TOKEN"

// Config controls the HTTP auth surface.
type Config struct {
	// CookieName is the session cookie key. Fixed by the client contract;
	// overridable for tests and migrations only.
	CookieName string

	// CookieSecure marks the session cookie Secure. Off by default so the
	// service works behind plain-HTTP local deployments; turn it on when
	// TLS terminates in front of the process.
	CookieSecure bool

	// CookieSameSite for the session cookie. Lax unless overridden.
	CookieSameSite http.SameSite

	// MaxBodyBytes bounds request bodies on the auth endpoints.
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
//
// Env surface:
// - GATEHOUSE_AUTH_COOKIE_SECURE
// - GATEHOUSE_AUTH_COOKIE_SAMESITE (lax|strict|none)
// - GATEHOUSE_AUTH_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	cfg := Config{
		CookieName:     DefaultCookieName,
		CookieSecure:   envBool("GATEHOUSE_AUTH_COOKIE_SECURE", false),
		CookieSameSite: envSameSite("GATEHOUSE_AUTH_COOKIE_SAMESITE", http.SameSiteLaxMode),
		MaxBodyBytes:   envInt64("GATEHOUSE_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func (c Config) cookieName() string {
	if strings.TrimSpace(c.CookieName) == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c Config) sameSite() http.SameSite {
	if c.CookieSameSite == 0 {
		return http.SameSiteLaxMode
	}
	return c.CookieSameSite
}

func (c Config) maxBodyBytes() int64 {
	if c.MaxBodyBytes <= 0 {
		return 1 << 20
	}
	return c.MaxBodyBytes
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envSameSite(key string, def http.SameSite) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return def
	}
}
