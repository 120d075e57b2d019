package migrate

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/taskhub/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		b, err := fs.ReadFile(migrations.FS, f)
		require.NoError(t, err)
		body := string(b)
		require.Contains(t, body, "-- +goose Up", f)
		require.Contains(t, body, "-- +goose Down", f)
	}
}

func TestUp_UnreachableDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Up(ctx, "postgres://u:p@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
	require.False(t, strings.Contains(err.Error(), "no migrations"))
}
