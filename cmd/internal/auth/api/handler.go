package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gatehouse/cmd/internal/auth"
)

// Handler wires the HTTP auth endpoints to the session authenticator.
type Handler struct {
	log *slog.Logger
	cfg Config
	svc *auth.Service
}

// NewHandler constructs the auth Handler.
func NewHandler(log *slog.Logger, svc *auth.Service, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, errors.New("authapi: nil auth service")
	}
	return &Handler{log: log, cfg: cfg, svc: svc}, nil
}

// Register wires auth routes onto the provided mux. The session
// attachment middleware is applied by the caller around the whole mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth", h.handleWhoami)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/logout", h.handleLogout)
}

// ---- handlers ----

// handleWhoami reports the attached identity. Anonymity is not an error
// here: the response is 200 either way, distinguished by the success
// flag, which is what browser shells poll on startup.
func (h *Handler) handleWhoami(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeFailure(w, http.StatusOK, "Not Authenticated")
		return
	}

	writeSuccess(w, "Authenticated", toIdentityData(id))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.maxBodyBytes(), &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Missing username/password.")
		return
	}

	issued, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			writeFailure(w, http.StatusBadRequest, "Missing username/password.")
		case errors.Is(err, auth.ErrInvalidCredentials):
			// Unknown username and wrong password share this branch.
			writeFailure(w, http.StatusUnauthorized, "Invalid username/password.")
		default:
			h.log.Error("auth.login.fail", "err", err)
			writeInternal(w, "Failed to create session.")
		}
		return
	}

	setSessionCookie(w, h.cfg, issued.Token, sessionExpiry(h.svc))
	writeSuccess(w, "Authenticated Successfully.", tokenData{Token: issued.Token})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.maxBodyBytes(), &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Missing username/password.")
		return
	}

	issued, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			writeFailure(w, http.StatusBadRequest, "Missing username/password.")
		case errors.Is(err, auth.ErrPasswordPolicy):
			writeFailure(w, http.StatusBadRequest, "Password does not meet length requirements.")
		case errors.Is(err, auth.ErrUsernameTaken):
			writeFailure(w, http.StatusConflict, "User already exists.")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeInternal(w, "Failed to register user.")
		}
		return
	}

	setSessionCookie(w, h.cfg, issued.Token, sessionExpiry(h.svc))
	writeSuccess(w, "User registered and authenticated successfully.", tokenData{Token: issued.Token})
}

// handleLogout revokes the presented token. Revocation is not silently
// idempotent: a token that matches no row, including one already logged
// out, is a 404 the caller can observe.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tok := tokenFromRequest(r, h.cfg)
	if err := h.svc.Logout(r.Context(), tok); err != nil {
		switch {
		case errors.Is(err, auth.ErrNoToken):
			writeFailure(w, http.StatusBadRequest, "No session token found.")
		case errors.Is(err, auth.ErrSessionNotFound):
			writeFailure(w, http.StatusNotFound, "Session not found in the database.")
		default:
			h.log.Error("auth.logout.fail", "err", err)
			writeInternal(w, "Failed to log out.")
		}
		return
	}

	clearSessionCookie(w, h.cfg)
	writeSuccess(w, "Logged out successfully.", nil)
}

// sessionExpiry aligns the cookie horizon with the server-side session
// validity window.
func sessionExpiry(svc *auth.Service) time.Time {
	return time.Now().UTC().Add(svc.SessionTTL())
}
