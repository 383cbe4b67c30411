package auth

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs unit tests
// and local development without a database; semantics mirror
// PostgresStore, including the unique constraint on the normalized
// username.
type MemoryStore struct {
	mu          sync.Mutex
	usersByNorm map[string]User
	usersByID   map[string]User
	sessions    map[string]Session
}

// NewMemoryStore returns an empty MemoryStore ready for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByNorm: make(map[string]User),
		usersByID:   make(map[string]User),
		sessions:    make(map[string]Session),
	}
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "auth.MemoryStore.FindByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usersByNorm[NormalizeUsername(username)]
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return u, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (User, error) {
	const op = "auth.MemoryStore.FindByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usersByID[id]
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return u, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u User) error {
	const op = "auth.MemoryStore.CreateUser"

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	norm := NormalizeUsername(u.Username)
	if _, exists := m.usersByNorm[norm]; exists {
		return OpError{Op: op, Kind: ErrConflict, Msg: "username"}
	}
	if _, exists := m.usersByID[u.ID]; exists {
		return OpError{Op: op, Kind: ErrConflict, Msg: "id"}
	}

	m.usersByNorm[norm] = u
	m.usersByID[u.ID] = u
	return nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, row Session) error {
	const op = "auth.MemoryStore.CreateSession"

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[row.TokenHash]; exists {
		return OpError{Op: op, Kind: ErrConflict, Msg: "token_hash"}
	}
	if _, exists := m.usersByID[row.UserID]; !exists {
		return OpError{Op: op, Kind: ErrNotFound, Msg: "user"}
	}

	m.sessions[row.TokenHash] = row
	return nil
}

func (m *MemoryStore) FindByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	const op = "auth.MemoryStore.FindByTokenHash"

	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.sessions[tokenHash]
	if !ok {
		return Session{}, OpError{Op: op, Kind: ErrNotFound}
	}
	return row, nil
}

func (m *MemoryStore) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	const op = "auth.MemoryStore.DeleteByTokenHash"

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[tokenHash]; !ok {
		return OpError{Op: op, Kind: ErrNotFound}
	}
	delete(m.sessions, tokenHash)
	return nil
}

var _ Store = (*MemoryStore)(nil)
