// Package gateway fronts the downstream web surface. Requests reach the
// downstream only with a live session attached; everything else gets an
// envelope 401 without touching the backend.
package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	authapi "gatehouse/cmd/internal/auth/api"
)

// Proxy is a session-guarded reverse proxy.
type Proxy struct {
	log   *slog.Logger
	proxy *httputil.ReverseProxy
}

// NewProxy builds a Proxy forwarding to the given downstream base URL.
func NewProxy(log *slog.Logger, downstream string) (*Proxy, error) {
	if log == nil {
		log = slog.Default()
	}

	target, err := url.Parse(strings.TrimSpace(downstream))
	if err != nil {
		return nil, err
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("gateway: downstream url must be absolute")
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("gateway.proxy.fail", "err", err, "path", r.URL.Path)
			writeJSONFailure(w, http.StatusBadGateway, "Internal: Downstream unavailable.")
		},
	}

	return &Proxy{log: log, proxy: rp}, nil
}

// NewProxyFromEnv builds a Proxy from GATEHOUSE_DOWNSTREAM_URL.
// Returns (nil, nil) when the variable is unset so callers can skip
// mounting the gateway entirely.
func NewProxyFromEnv(log *slog.Logger) (*Proxy, error) {
	raw := strings.TrimSpace(os.Getenv("GATEHOUSE_DOWNSTREAM_URL"))
	if raw == "" {
		return nil, nil
	}
	return NewProxy(log, raw)
}

// ServeHTTP forwards the request when a session is attached and rejects
// it otherwise. Session attachment happens upstream of this handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := authapi.IdentityFrom(r.Context()); !ok {
		writeJSONFailure(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}
	p.proxy.ServeHTTP(w, r)
}

func writeJSONFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": msg,
	})
}
