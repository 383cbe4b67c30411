package authapi

import (
	"net/http"
	"strings"
	"time"
)

// setSessionCookie delivers the token to browser clients. HttpOnly keeps
// it out of script reach; the expiry mirrors the server-side session
// horizon so the cookie and the row die together.
func setSessionCookie(w http.ResponseWriter, cfg Config, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.cookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.sameSite(),
	})
}

// clearSessionCookie tells the browser to drop the session cookie.
func clearSessionCookie(w http.ResponseWriter, cfg Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.sameSite(),
	})
}

// tokenFromRequest extracts the presented session token. The extraction
// order is fixed: the SESSION_TOKEN cookie wins, then the Authorization
// Bearer header. A request presenting both is resolved by that order,
// never by merging.
func tokenFromRequest(r *http.Request, cfg Config) string {
	if c, err := r.Cookie(cfg.cookieName()); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
