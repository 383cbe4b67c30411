package authapi

import (
	"time"

	"gatehouse/cmd/internal/auth"
)

// envelope is the fixed response shape of every auth endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenData carries the minted token in the body so non-cookie clients
// can replay it as a bearer token.
type tokenData struct {
	Token string `json:"token"`
}

// userPayload is the client-visible user. The password hash never
// appears here under any code path.
type userPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// sessionPayload is the client-visible session. The token (and its
// storage digest) is stripped; the client already holds the token.
type sessionPayload struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type identityData struct {
	Session sessionPayload `json:"session"`
	User    userPayload    `json:"user"`
}

func toUserPayload(u auth.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

func toSessionPayload(s auth.Session) sessionPayload {
	return sessionPayload{
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func toIdentityData(id auth.Identity) identityData {
	return identityData{
		Session: toSessionPayload(id.Session),
		User:    toUserPayload(id.User),
	}
}
