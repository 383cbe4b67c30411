package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	st, err := NewPostgresStore(mock)
	require.NoError(t, err)
	return st, mock
}

func TestNewPostgresStore(t *testing.T) {
	t.Parallel()

	t.Run("nil pool rejected", func(t *testing.T) {
		_, err := NewPostgresStore(nil)
		assert.Error(t, err)
	})

	t.Run("bad schema rejected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		_, err = NewPostgresStore(mock, WithSchema(`bad"schema`))
		assert.Error(t, err)

		_, err = NewPostgresStore(mock, WithSchema(""))
		assert.Error(t, err)
	})

	t.Run("custom schema accepted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st, err := NewPostgresStore(mock, WithSchema("auth_test"))
		require.NoError(t, err)
		assert.Equal(t, "auth_test", st.schema)
	})
}

func TestPostgresFindByUsername(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found with normalized lookup", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "username", "password_hash", "created_at"},
			).AddRow("01A", "Alice", "$argon2id$...", created))

		u, err := st.FindByUsername(context.Background(), "  ALICE ")
		require.NoError(t, err)
		assert.Equal(t, "01A", u.ID)
		assert.Equal(t, "Alice", u.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss maps to not found", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		_, err := st.FindByUsername(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCreateUser(t *testing.T) {
	t.Parallel()

	u := User{
		ID:           "01A",
		Username:     "Alice",
		PasswordHash: "$argon2id$...",
		CreatedAt:    time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("inserts with normalized column", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO "gatehouse"\."users"`).
			WithArgs(u.ID, u.Username, "alice", u.PasswordHash, u.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, st.CreateUser(context.Background(), u))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to conflict", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO "gatehouse"\."users"`).
			WithArgs(u.ID, u.Username, "alice", u.PasswordHash, u.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := st.CreateUser(context.Background(), u)
		assert.ErrorIs(t, err, ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		st, mock := newMockStore(t)

		boom := errors.New("connection reset")
		mock.ExpectExec(`INSERT INTO "gatehouse"\."users"`).
			WithArgs(u.ID, u.Username, "alice", u.PasswordHash, u.CreatedAt).
			WillReturnError(boom)

		err := st.CreateUser(context.Background(), u)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	row := Session{
		TokenHash: "aa11",
		UserID:    "01A",
		CreatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}

	t.Run("create", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO "gatehouse"\."sessions"`).
			WithArgs(row.TokenHash, row.UserID, row.CreatedAt, row.ExpiresAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, st.CreateSession(context.Background(), row))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create with missing user maps to not found", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO "gatehouse"\."sessions"`).
			WithArgs(row.TokenHash, row.UserID, row.CreatedAt, row.ExpiresAt).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		err := st.CreateSession(context.Background(), row)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("find by token hash", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT token_hash, user_id, created_at, expires_at`).
			WithArgs(row.TokenHash).
			WillReturnRows(pgxmock.NewRows(
				[]string{"token_hash", "user_id", "created_at", "expires_at"},
			).AddRow(row.TokenHash, row.UserID, row.CreatedAt, row.ExpiresAt))

		got, err := st.FindByTokenHash(context.Background(), row.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, row, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete removes exactly one row", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectExec(`DELETE FROM "gatehouse"\."sessions"`).
			WithArgs(row.TokenHash).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, st.DeleteByTokenHash(context.Background(), row.TokenHash))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of absent row maps to not found", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectExec(`DELETE FROM "gatehouse"\."sessions"`).
			WithArgs(row.TokenHash).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := st.DeleteByTokenHash(context.Background(), row.TokenHash)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
