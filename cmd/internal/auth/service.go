package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gatehouse/cmd/security/password"
	"gatehouse/cmd/security/token"
)

// DefaultSessionTTL matches the cookie horizon: sessions older than this
// no longer resolve, even if the row still exists.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Service implements the high-level session-authentication operations:
// login, registration, logout, and token-to-identity resolution.
type Service struct {
	log    *slog.Logger
	creds  CredentialStore
	sess   SessionStore
	hasher password.Config

	sessionTTL time.Duration

	// dummyHash is verified against when a username does not exist, so an
	// unknown user costs the same as a wrong password (timing resistance).
	dummyHash string

	now func() time.Time
}

// Issued is the result of a successful login or registration.
// The token is shown to the client exactly once and never logged.
type Issued struct {
	Token  string
	UserID string
}

// Identity is an authenticated session resolved from a presented token.
type Identity struct {
	Session Session
	User    User
}

// ServiceOption configures optional Service knobs.
type ServiceOption func(*Service)

// WithSessionTTL overrides the session validity horizon.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service over the given stores and hasher.
func NewService(log *slog.Logger, store Store, hasher password.Config, opts ...ServiceOption) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		log:        log,
		creds:      store,
		sess:       store,
		hasher:     hasher,
		sessionTTL: DefaultSessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	// The dummy hash is minted once at startup; a failure here only costs
	// the timing defense, never availability.
	if h, err := hasher.Hash("dummy-password-for-timing-only"); err == nil {
		s.dummyHash = h
	}

	return s
}

// ResolveIdentity verifies a username/password pair and returns the user id.
// It creates no session; Login layers session minting on top.
//
// An unknown username and a wrong password produce the same
// ErrInvalidCredentials through a single shared path, so neither the
// response content nor its timing leaks account existence.
func (s *Service) ResolveIdentity(ctx context.Context, username, password string) (string, error) {
	const op = "auth.ResolveIdentity"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	u, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(s.dummyHash, password)
			}
			return "", ErrInvalidCredentials
		}
		return "", fault(op, err)
	}

	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil || !ok {
		return "", ErrInvalidCredentials
	}

	return u.ID, nil
}

// Login authenticates the pair and mints a fresh session.
// A persistence failure after successful verification is a server fault,
// not a client error.
func (s *Service) Login(ctx context.Context, username, password string) (Issued, error) {
	const op = "auth.Login"

	userID, err := s.ResolveIdentity(ctx, username, password)
	if err != nil {
		return Issued{}, err
	}

	issued, err := s.createSession(ctx, userID)
	if err != nil {
		return Issued{}, fault(op, err)
	}
	return issued, nil
}

// Register creates a new account and logs it in.
//
// The application-level uniqueness pre-check is a fast-path UX
// improvement only; the store's unique constraint on the normalized
// username is the real backstop against concurrent registrations
// differing only in case.
func (s *Service) Register(ctx context.Context, username, plaintext string) (Issued, error) {
	const op = "auth.Register"

	username = strings.TrimSpace(username)
	if username == "" || plaintext == "" {
		return Issued{}, ErrMissingCredentials
	}

	_, err := s.creds.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return Issued{}, ErrUsernameTaken
	case errors.Is(err, ErrNotFound):
		// Free as far as we can see; the constraint decides under race.
	default:
		return Issued{}, fault(op, err)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return Issued{}, OpError{Op: op, Kind: ErrPasswordPolicy, Msg: err.Error()}
		}
		return Issued{}, fault(op, err)
	}

	now := s.now()
	userID, err := NewUserID(now)
	if err != nil {
		return Issued{}, fault(op, err)
	}

	err = s.creds.CreateUser(ctx, User{
		ID:           userID,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return Issued{}, ErrUsernameTaken
		}
		return Issued{}, fault(op, err)
	}

	issued, err := s.createSession(ctx, userID)
	if err != nil {
		// The user row exists but the caller gets a failure, never a
		// partial user-without-session success.
		return Issued{}, fault(op, err)
	}
	return issued, nil
}

// Logout revokes the session matching the presented token exactly.
// A second logout with the same token fails with ErrSessionNotFound;
// that observable idempotence failure is deliberate.
func (s *Service) Logout(ctx context.Context, plainToken string) error {
	const op = "auth.Logout"

	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return ErrNoToken
	}

	err := s.sess.DeleteByTokenHash(ctx, token.HashSessionTokenHex(plainToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrSessionNotFound
		}
		return fault(op, err)
	}
	return nil
}

// Resolve maps a presented token to a live session and its user.
// Misses (unknown token, revoked session, expired session) return
// ErrSessionNotFound; only store-level failures surface as faults.
func (s *Service) Resolve(ctx context.Context, plainToken string) (Identity, error) {
	const op = "auth.Resolve"

	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return Identity{}, ErrNoToken
	}

	row, err := s.sess.FindByTokenHash(ctx, token.HashSessionTokenHex(plainToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, ErrSessionNotFound
		}
		return Identity{}, fault(op, err)
	}

	if !row.Active(s.now()) {
		// Stale row: the cookie horizon has passed, stop authorizing.
		return Identity{}, ErrSessionNotFound
	}

	u, err := s.creds.FindByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Referential integrity is owned by the store; a dangling
			// session is treated as a miss, not a fault.
			s.log.Warn("auth.resolve.dangling_session", "user_id", row.UserID)
			return Identity{}, ErrSessionNotFound
		}
		return Identity{}, fault(op, err)
	}

	return Identity{Session: row, User: u}, nil
}

// SessionTTL exposes the validity horizon for cookie expiry alignment.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// ---- helpers ----

func (s *Service) createSession(ctx context.Context, userID string) (Issued, error) {
	plain, err := token.NewSessionToken()
	if err != nil {
		return Issued{}, err
	}

	now := s.now()
	err = s.sess.CreateSession(ctx, Session{
		TokenHash: token.HashSessionTokenHex(plain),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return Issued{}, err
	}

	return Issued{Token: plain, UserID: userID}, nil
}
