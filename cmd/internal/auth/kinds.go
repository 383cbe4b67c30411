package auth

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	// Client-facing outcomes of the authenticator operations.
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrNoToken            = errors.New("no_token")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrPasswordPolicy     = errors.New("password_policy")

	// Store-level kinds surfaced by CredentialStore/SessionStore implementations.
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
)
