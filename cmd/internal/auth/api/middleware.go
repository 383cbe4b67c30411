package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gatehouse/cmd/internal/auth"
)

type contextKey int

const identityKey contextKey = iota

// IdentityFrom returns the identity attached by AttachSession, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// withIdentity is exposed inside the package for handler tests.
func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// AttachSession resolves the presented token on every inbound request.
//
// A hit attaches the session and its user to the request context; a
// missing, unknown, revoked, or expired token leaves the request
// anonymous without failing it. Only a store-level fault stops the
// request with a 500.
func AttachSession(log *slog.Logger, svc *auth.Service, cfg Config) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := tokenFromRequest(r, cfg)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := svc.Resolve(r.Context(), tok)
			if err != nil {
				if errors.Is(err, auth.ErrNoToken) || errors.Is(err, auth.ErrSessionNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				log.Error("auth.attach.fail", "err", err)
				writeInternal(w, "Failed to resolve session.")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}
