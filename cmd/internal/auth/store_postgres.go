package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgIdentRe accepts ordinary PostgreSQL identifiers only; quoting covers
// the rest, but rejecting early keeps configuration mistakes loud.
var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DBPool is the subset of *pgxpool.Pool the store needs.
// Declared as an interface so tests can substitute pgxmock.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements CredentialStore and SessionStore over PostgreSQL.
//
// Ownership: the pool belongs to the caller; this store never closes it.
// Schema/table identifiers are quoted to avoid injection via identifiers.
type PostgresStore struct {
	pool   DBPool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema used by the store (default "gatehouse").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" || !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("auth: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool DBPool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "gatehouse",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("auth: nil pool")
	}
	return st, nil
}

// FindByUsername looks a user up by normalized username.
// Normalization at lookup time is what makes "Alice" and "alice" the
// same account regardless of how the row was written.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "auth.PostgresStore.FindByUsername"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	users := pgIdent(s.schema, "users")

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		   FROM `+users+`
		  WHERE username_norm = $1`,
		NormalizeUsername(username),
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, OpError{Op: op, Kind: ErrNotFound}
		}
		return User{}, err
	}
	return u, nil
}

// FindByID loads a user by id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	const op = "auth.PostgresStore.FindByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	users := pgIdent(s.schema, "users")

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		   FROM `+users+`
		  WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, OpError{Op: op, Kind: ErrNotFound}
		}
		return User{}, err
	}
	return u, nil
}

// CreateUser persists a new user row.
// The unique index on username_norm turns a concurrent case-variant
// registration into ErrConflict here rather than two accounts.
func (s *PostgresStore) CreateUser(ctx context.Context, u User) error {
	const op = "auth.PostgresStore.CreateUser"

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%s: missing id or username", op)
	}

	users := pgIdent(s.schema, "users")

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+users+` (id, username, username_norm, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID,
		u.Username,
		NormalizeUsername(u.Username),
		u.PasswordHash,
		u.CreatedAt,
	)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return OpError{Op: op, Kind: ErrConflict, Msg: "username"}
		}
		return err
	}
	return nil
}

// CreateSession persists a new session row.
func (s *PostgresStore) CreateSession(ctx context.Context, row Session) error {
	const op = "auth.PostgresStore.CreateSession"

	if err := ctx.Err(); err != nil {
		return err
	}

	sessions := pgIdent(s.schema, "sessions")

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+sessions+` (token_hash, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		row.TokenHash,
		row.UserID,
		row.CreatedAt,
		row.ExpiresAt,
	)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return OpError{Op: op, Kind: ErrConflict, Msg: "token_hash"}
		}
		if pgIsForeignKeyViolation(err) {
			return OpError{Op: op, Kind: ErrNotFound, Msg: "user"}
		}
		return err
	}
	return nil
}

// FindByTokenHash loads a session by its storage digest.
func (s *PostgresStore) FindByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	const op = "auth.PostgresStore.FindByTokenHash"

	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	sessions := pgIdent(s.schema, "sessions")

	var row Session
	err := s.pool.QueryRow(ctx,
		`SELECT token_hash, user_id, created_at, expires_at
		   FROM `+sessions+`
		  WHERE token_hash = $1`,
		tokenHash,
	).Scan(&row.TokenHash, &row.UserID, &row.CreatedAt, &row.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, OpError{Op: op, Kind: ErrNotFound}
		}
		return Session{}, err
	}
	return row, nil
}

// DeleteByTokenHash deletes by exact digest match only, never a prefix
// or fuzzy match. Zero rows deleted maps to ErrNotFound so Logout can
// report an already-revoked token.
func (s *PostgresStore) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	const op = "auth.PostgresStore.DeleteByTokenHash"

	if err := ctx.Err(); err != nil {
		return err
	}

	sessions := pgIdent(s.schema, "sessions")

	ct, err := s.pool.Exec(ctx,
		`DELETE FROM `+sessions+` WHERE token_hash = $1`,
		tokenHash,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return OpError{Op: op, Kind: ErrNotFound}
	}
	return nil
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// ---- helpers ----

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

func pgIsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503" // foreign_key_violation
}
