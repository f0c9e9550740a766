package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	var got doc
	assert.ErrorIs(t, s.Get(ctx, KeyState, &got), ErrNotFound)

	require.NoError(t, s.Put(ctx, KeyState, doc{Name: "first"}))
	require.NoError(t, s.Put(ctx, KeyState, doc{Name: "second", Items: []string{"x"}}))
	require.NoError(t, s.Get(ctx, KeyState, &got))
	assert.Equal(t, doc{Name: "second", Items: []string{"x"}}, got)

	require.NoError(t, s.Put(ctx, ArchiveKey("2024-06-10"), doc{}))
	require.NoError(t, s.Put(ctx, ArchiveKey("2024-06-03"), doc{}))

	keys, err := s.List(ctx, ArchivePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{ArchiveKey("2024-06-03"), ArchiveKey("2024-06-10")}, keys)
}

// requireStoredAsWritten checks the backend keeps the indented text produced
// by encode, so every backend holds the same bytes the file store writes.
func requireStoredAsWritten(t *testing.T, s Store, raw func(key string) string) {
	t.Helper()
	v := doc{Name: "layout", Items: []string{"b", "a"}}
	require.NoError(t, s.Put(context.Background(), KeyWinners, v))

	want, err := encode(v)
	require.NoError(t, err)
	assert.Equal(t, string(want), raw(KeyWinners))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "docs.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	requireStoredAsWritten(t, s, func(key string) string {
		var body string
		require.NoError(t, s.db.QueryRow("SELECT body FROM documents WHERE doc_key = ?", key).Scan(&body))
		return body
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	s, err := OpenPostgres(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(context.Background(), "DELETE FROM documents")
	require.NoError(t, err)

	exerciseStore(t, s)
	requireStoredAsWritten(t, s, func(key string) string {
		var body string
		require.NoError(t, s.db.QueryRow(context.Background(),
			"SELECT body::text FROM documents WHERE doc_key = $1", key).Scan(&body))
		return body
	})
}
