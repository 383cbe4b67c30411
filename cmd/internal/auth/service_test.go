package auth

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/cmd/security/password"
	"gatehouse/cmd/security/token"
)

var hexToken64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

// testHasher keeps Argon2id cheap so the suite stays fast.
func testHasher() password.Config {
	return password.Config{
		Params: password.Argon2idParams{
			MemoryKiB:   8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength: 1,
		MaxLength: 1024,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(testLogger(), store, testHasher(), opts...), store
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Regexp(t, hexToken64, reg.Token, "session token must be 64 hex chars")
	assert.NotEmpty(t, reg.UserID)

	// Registration logs the account in.
	id, err := svc.Resolve(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, id.User.ID)
	assert.Equal(t, "alice", id.User.Username)

	// A later login mints a distinct token for the same account.
	in, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, in.UserID)
	assert.NotEqual(t, reg.Token, in.Token)
}

func TestLoginCaseInsensitiveUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "s3cret")
	require.NoError(t, err)

	for _, name := range []string{"alice", "ALICE", "aLiCe"} {
		in, err := svc.Login(ctx, name, "s3cret")
		require.NoError(t, err, "login as %q", name)

		id, err := svc.Resolve(ctx, in.Token)
		require.NoError(t, err)
		assert.Equal(t, "Alice", id.User.Username, "stored casing is preserved")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	t.Run("missing username", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "s3cret")
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "")
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		// Indistinguishable from a wrong password.
		_, err := svc.Login(ctx, "nobody", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Case variants collide too.
	_, err = svc.Register(ctx, "ALICE", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "s3cret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRegisterEnforcesPasswordPolicy(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", strings.Repeat("x", 2048))
	assert.ErrorIs(t, err, ErrPasswordPolicy)
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	second, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEqual(t, reg.Token, second.Token)

	// Revoking one session leaves the other authorizing.
	require.NoError(t, svc.Logout(ctx, reg.Token))

	_, err = svc.Resolve(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	id, err := svc.Resolve(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, id.User.ID)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		assert.ErrorIs(t, svc.Logout(ctx, ""), ErrNoToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		assert.ErrorIs(t, svc.Logout(ctx, strings.Repeat("ab", 32)), ErrSessionNotFound)
	})

	t.Run("revokes exactly once", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, reg.Token))
		// The second attempt observes the revocation.
		assert.ErrorIs(t, svc.Logout(ctx, reg.Token), ErrSessionNotFound)
	})
}

func TestResolveMisses(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = svc.Resolve(ctx, strings.Repeat("cd", 32))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveExpiredSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	svc, _ := newTestService(t, WithClock(clock), WithSessionTTL(time.Hour))
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	// Still inside the horizon.
	now = now.Add(59 * time.Minute)
	_, err = svc.Resolve(ctx, reg.Token)
	require.NoError(t, err)

	// Past it.
	now = now.Add(2 * time.Minute)
	_, err = svc.Resolve(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveDanglingSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	svc := NewService(testLogger(), store, testHasher())
	ctx := context.Background()

	// A session row pointing at a user that does not exist resolves to a
	// miss, not a server fault.
	err := store.CreateUser(ctx, User{ID: "01TEMP", Username: "ghost", PasswordHash: "x", CreatedAt: time.Now()})
	require.NoError(t, err)

	plain := strings.Repeat("ef", 32)
	now := time.Now().UTC()
	require.NoError(t, store.CreateSession(ctx, Session{
		TokenHash: token.HashSessionTokenHex(plain),
		UserID:    "01TEMP",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))
	delete(store.usersByID, "01TEMP")
	delete(store.usersByNorm, "ghost")

	_, err = svc.Resolve(ctx, plain)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStoreFailureIsFault(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Login(ctx, "alice", "s3cret")
	require.Error(t, err)
	assert.True(t, IsFault(err), "store failure must surface as a fault, got %v", err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveIdentityNoSessionSideEffect(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, reg.Token))

	userID, err := svc.ResolveIdentity(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, userID)

	// Verification alone minted nothing.
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.sessions)
}
