package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/taskhub/internal/errs"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("x")))
	require.False(t, isUniqueViolation(nil))
}

func TestNotFound(t *testing.T) {
	require.NoError(t, notFound(nil, "x"))
	require.ErrorIs(t, notFound(pgx.ErrNoRows, "x"), errs.ErrNotFound)
	other := errors.New("boom")
	require.Same(t, other, notFound(other, "x"))
}
