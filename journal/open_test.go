package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	l, err := Open(ctx, Options{Type: TypeSQLite, DBPath: filepath.Join(dir, "j.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, l)
	require.NoError(t, l.Close())

	l, err = Open(ctx, Options{Type: TypeCSV, TradesFile: filepath.Join(dir, "t.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, l)
	require.NoError(t, l.Close())

	l, err = Open(ctx, Options{Type: TypeNone})
	require.NoError(t, err)
	assert.Equal(t, Nop{}, l)

	_, err = Open(ctx, Options{Type: TypeSQLite})
	assert.Error(t, err)
	_, err = Open(ctx, Options{Type: TypePostgres})
	assert.Error(t, err)
	_, err = Open(ctx, Options{Type: "mongo"})
	assert.Error(t, err)

	_, _, err = OpenReader(ctx, Options{Type: TypeCSV, TradesFile: "x.csv"})
	assert.Error(t, err)

	r, closeFn, err := OpenReader(ctx, Options{Type: TypeSQLite, DBPath: filepath.Join(dir, "r.db")})
	require.NoError(t, err)
	assert.NotNil(t, r)
	assert.NoError(t, closeFn())
}
