package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
)

var noteCols = []string{"id", "user_id", "title", "content", "created_at", "updated_at"}

func TestNoteRepo_CRUD(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()

	n := &model.Note{UserID: 7, Title: "idea", Content: "text"}
	mock.ExpectQuery(regexp.QuoteMeta(qNoteInsert)).
		WithArgs(int64(7), "idea", "text").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), t0, t0))
	require.NoError(t, r.Create(ctx, n))
	require.Equal(t, int64(3), n.ID)

	mock.ExpectQuery(regexp.QuoteMeta(qNoteList)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(noteCols).AddRow(int64(3), int64(7), "idea", "text", t0, t0))
	list, err := r.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)

	mock.ExpectQuery(regexp.QuoteMeta(qNoteGet)).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(pgxmock.NewRows(noteCols).AddRow(int64(3), int64(7), "idea", "text", t0, t0))
	got, err := r.Get(ctx, 7, 3)
	require.NoError(t, err)
	require.Equal(t, "text", got.Content)

	got.Content = "more"
	mock.ExpectQuery(regexp.QuoteMeta(qNoteUpdate)).
		WithArgs(int64(3), int64(7), "idea", "more").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(t0))
	require.NoError(t, r.Update(ctx, got))

	mock.ExpectExec(regexp.QuoteMeta(qNoteDelete)).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, 7, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepo_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(qNoteGet)).
		WithArgs(int64(3), int64(8)).
		WillReturnError(pgx.ErrNoRows)
	_, err := r.Get(ctx, 8, 3)
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(qNoteDelete)).
		WithArgs(int64(3), int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, 8, 3), errs.ErrNotFound)
}
