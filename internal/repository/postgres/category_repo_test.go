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

func TestCategoryRepo_CRUD(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCategoryRepo(db)
	ctx := context.Background()

	c := &model.Category{UserID: 7, Name: "work", Color: "#00ff00"}
	mock.ExpectQuery(regexp.QuoteMeta(qCategoryInsert)).
		WithArgs(int64(7), "work", "", "#00ff00").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), t0, t0))
	require.NoError(t, r.Create(ctx, c))
	require.Equal(t, int64(5), c.ID)

	mock.ExpectQuery(regexp.QuoteMeta(qCategoryList)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(catCols).
			AddRow(int64(5), int64(7), "work", "", "#00ff00", t0, t0).
			AddRow(int64(6), int64(7), "home", "h", "", t0, t0))
	list, err := r.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "home", list[1].Name)

	mock.ExpectQuery(regexp.QuoteMeta(qCategoryGet)).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(pgxmock.NewRows(catCols).AddRow(int64(5), int64(7), "work", "", "#00ff00", t0, t0))
	got, err := r.Get(ctx, 7, 5)
	require.NoError(t, err)
	require.Equal(t, "#00ff00", got.Color)

	got.Name = "job"
	mock.ExpectQuery(regexp.QuoteMeta(qCategoryUpdate)).
		WithArgs(int64(5), int64(7), "job", "", "#00ff00").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(t0))
	require.NoError(t, r.Update(ctx, got))

	mock.ExpectExec(regexp.QuoteMeta(qCategoryDelete)).
		WithArgs(int64(5), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, 7, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepo_ForeignLooksAbsent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCategoryRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(qCategoryGet)).
		WithArgs(int64(5), int64(8)).
		WillReturnError(pgx.ErrNoRows)
	_, err := r.Get(ctx, 8, 5)
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta(qCategoryUpdate)).
		WithArgs(int64(5), int64(8), "x", "", "").
		WillReturnError(pgx.ErrNoRows)
	require.ErrorIs(t, r.Update(ctx, &model.Category{ID: 5, UserID: 8, Name: "x"}), errs.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(qCategoryDelete)).
		WithArgs(int64(5), int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, 8, 5), errs.ErrNotFound)
}
