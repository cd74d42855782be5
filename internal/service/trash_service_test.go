package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
)

func newTrashFixture() (*backend.Memory, *TrashService) {
	store := backend.NewMemory()

	return store, NewTrashService(store, "content/trash", 10)
}

func TestTrashSoftDeleteMedia(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, trash := newTrashFixture()
	version := store.Seed("public/uploads/pic.png", []byte("binary"))

	entry, err := trash.SoftDelete(ctx, "public/uploads/pic.png", version, model.TrashKindMedia)
	require.NoError(t, err)
	require.Equal(t, "pic.png", entry.Name)
	require.Equal(t, "content/trash/media/pic.png.meta.json", entry.Path)
	require.Equal(t, model.TrashKindMedia, entry.Type)

	// Binary and envelope land side by side, original is gone.
	data, _, err := store.GetRaw(ctx, "content/trash/media/pic.png")
	require.NoError(t, err)
	require.Equal(t, "binary", string(data))

	envelope, err := store.GetFile(ctx, entry.Path)
	require.NoError(t, err)
	require.Equal(t, "public/uploads/pic.png", envelope.Content["originalPath"])

	_, _, err = store.GetRaw(ctx, "public/uploads/pic.png")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestTrashList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, trash := newTrashFixture()
	store.SeedJSON("content/trash/a.json", map[string]any{
		"originalPath": "content/blog/a.json",
		"deletedAt":    "2026-08-01T10:00:00Z",
		"type":         model.TrashKindCollectionItem,
		"data":         map[string]any{"title": "A"},
	})
	store.Seed("content/trash/media/pic.png", []byte("bin"))
	store.SeedJSON("content/trash/media/pic.png.meta.json", map[string]any{
		"originalPath": "public/uploads/pic.png",
		"deletedAt":    "2026-08-02T10:00:00Z",
		"type":         model.TrashKindMedia,
	})
	// Malformed envelope must be skipped, not fail the listing.
	store.SeedJSON("content/trash/broken.json", map[string]any{"unexpected": true})

	entries, err := trash.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest deletion first.
	require.Equal(t, "pic.png", entries[0].Name)
	require.Equal(t, model.TrashKindMedia, entries[0].Type)
	require.Equal(t, "a.json", entries[1].Name)
}

func TestTrashRestoreMedia(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, trash := newTrashFixture()
	version := store.Seed("public/uploads/pic.png", []byte("binary"))
	entry, err := trash.SoftDelete(ctx, "public/uploads/pic.png", version, model.TrashKindMedia)
	require.NoError(t, err)

	require.NoError(t, trash.Restore(ctx, entry.Path))

	data, _, err := store.GetRaw(ctx, "public/uploads/pic.png")
	require.NoError(t, err)
	require.Equal(t, "binary", string(data))

	stillThere, err := store.GetFile(ctx, entry.Path)
	require.NoError(t, err)
	require.Nil(t, stillThere)

	_, _, err = store.GetRaw(ctx, "content/trash/media/pic.png")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestTrashPurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("purges a media entry with its binary", func(t *testing.T) {
		store, trash := newTrashFixture()
		version := store.Seed("public/uploads/pic.png", []byte("binary"))
		entry, err := trash.SoftDelete(ctx, "public/uploads/pic.png", version, model.TrashKindMedia)
		require.NoError(t, err)

		require.NoError(t, trash.Purge(ctx, entry.Path))

		envelope, err := store.GetFile(ctx, entry.Path)
		require.NoError(t, err)
		require.Nil(t, envelope)

		_, _, err = store.GetRaw(ctx, "content/trash/media/pic.png")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("unknown entry reports trash item not found", func(t *testing.T) {
		_, trash := newTrashFixture()

		err := trash.Purge(ctx, "content/trash/ghost.json")
		require.ErrorIs(t, err, model.ErrTrashItemNotFound)
	})
}

func TestTrashEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, trash := newTrashFixture()
	store.SeedJSON("content/trash/a.json", map[string]any{
		"originalPath": "content/blog/a.json",
		"deletedAt":    "2026-08-01T10:00:00Z",
		"data":         map[string]any{},
	})
	store.SeedJSON("content/trash/b.json", map[string]any{
		"originalPath": "content/blog/b.json",
		"deletedAt":    "2026-08-02T10:00:00Z",
		"data":         map[string]any{},
	})

	purged, err := trash.Empty(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, purged)

	entries, err := trash.List(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestTrashCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, trash := newTrashFixture()

	expired := time.Now().UTC().Add(-11 * 24 * time.Hour).Format(time.RFC3339)
	fresh := time.Now().UTC().Add(-9 * 24 * time.Hour).Format(time.RFC3339)

	store.SeedJSON("content/trash/old.json", map[string]any{
		"originalPath": "content/blog/old.json",
		"deletedAt":    expired,
		"data":         map[string]any{},
	})
	store.SeedJSON("content/trash/new.json", map[string]any{
		"originalPath": "content/blog/new.json",
		"deletedAt":    fresh,
		"data":         map[string]any{},
	})
	store.SeedJSON("content/trash/weird.json", map[string]any{
		"originalPath": "content/blog/weird.json",
		"deletedAt":    "not-a-date",
		"data":         map[string]any{},
	})

	purged, err := trash.Cleanup(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, purged)

	entries, err := trash.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.NotEqual(t, "old.json", entry.Name)
	}
}
