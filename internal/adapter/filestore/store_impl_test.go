package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
)

func TestReadUnknownKey(t *testing.T) {
	store := NewStore(t.TempDir())

	var v map[string]any
	err := store.Read(context.Background(), "missing", &v)
	require.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "data"))
	ctx := context.Background()

	catalog := entity.NewCatalog()
	catalog.Insert(entity.Facility{ID: 42, Name: "Room 201", TypeName: "Meeting Room", CenterID: 7, CenterName: "Central Library", Bookable: true})
	require.NoError(t, store.Write(ctx, "all_facilities", catalog))

	loaded := entity.NewCatalog()
	require.NoError(t, store.Read(ctx, "all_facilities", loaded))
	require.Equal(t, 1, loaded.Size())

	facilities := loaded.Facilities()
	require.Equal(t, "Central Library", facilities[0].CenterName)
	require.Equal(t, int64(7), facilities[0].CenterID)
	require.True(t, loaded.Has(42))
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Write(context.Background(), "doc", map[string]int{"a": 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "doc.json", entries[0].Name())
}
