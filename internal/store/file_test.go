package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Put(ctx, KeyRegistrations, doc{Name: "week", Items: []string{"a", "b"}}))

	var got doc
	require.NoError(t, s.Get(ctx, KeyRegistrations, &got))
	assert.Equal(t, doc{Name: "week", Items: []string{"a", "b"}}, got)
}

func TestFileStoreMissingDocument(t *testing.T) {
	s := NewFileStore(t.TempDir())

	var got doc
	err := s.Get(context.Background(), KeyWinners, &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreCreatesDirectoriesAndPrettyPrints(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewFileStore(dir)

	key := ArchiveKey("2024-06-03")
	require.NoError(t, s.Put(context.Background(), key, doc{Name: "archived"}))

	raw, err := os.ReadFile(filepath.Join(dir, "archive", "registrations-2024-06-03.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"name\": \"archived\""), string(raw))
	assert.True(t, strings.HasSuffix(string(raw), "}\n"))
}

func TestFileStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())

	keys, err := s.List(ctx, ArchivePrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, date := range []string{"2024-06-10", "2024-05-27", "2024-06-03"} {
		require.NoError(t, s.Put(ctx, ArchiveKey(date), doc{Name: date}))
	}
	require.NoError(t, s.Put(ctx, "archive/notes.json", doc{}))

	keys, err = s.List(ctx, ArchivePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"archive/registrations-2024-05-27.json",
		"archive/registrations-2024-06-03.json",
		"archive/registrations-2024-06-10.json",
	}, keys)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	s := NewFileStore(t.TempDir())

	assert.Error(t, s.Put(context.Background(), "../outside.json", doc{}))
	assert.Error(t, s.Put(context.Background(), "/etc/passwd", doc{}))
}

func TestArchiveDate(t *testing.T) {
	date, ok := ArchiveDate("archive/registrations-2024-06-03.json")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-03", date)

	_, ok = ArchiveDate("archive/registrations-latest.json")
	assert.False(t, ok)
	_, ok = ArchiveDate("registrations.json")
	assert.False(t, ok)
}
