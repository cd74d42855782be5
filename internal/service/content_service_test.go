package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
	"go-git-cms/internal/schema"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		MediaRoot:    "public/uploads",
		PublicPrefix: "public",
		FilesRoot:    "content/files",
		TrashRoot:    "content/trash",
		I18N:         schema.I18N{Locales: []string{"en", "es"}, DefaultLocale: "en"},
		Collections: []schema.Collection{
			{
				Slug:  "blog",
				Label: "Blog",
				Path:  "content/blog",
				Fields: []schema.Field{
					{Name: "title", Type: "text", Required: true, Localized: true},
					{Name: "status", Type: "select"},
					{Name: "body", Type: "richtext", Localized: true},
				},
			},
			{
				Slug:       "people",
				Label:      "People",
				Path:       "content/people",
				TitleField: "name",
				Fields: []schema.Field{
					{Name: "name", Type: "text", Required: true},
					{Name: "bio", Type: "richtext", Localized: true},
				},
			},
		},
	}
}

func newContentFixture() (*backend.Memory, *TrashService, *ContentService) {
	store := backend.NewMemory()
	s := testSchema()
	trash := NewTrashService(store, s.TrashRoot, 10)

	return store, trash, NewContentService(store, s, trash)
}

func TestContentServiceRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("canonical record defaults to published", func(t *testing.T) {
		store, _, svc := newContentFixture()
		store.SeedJSON("content/blog/abc.json", map[string]any{"title": "Post"})

		record, err := svc.Read(ctx, "blog", "abc")
		require.NoError(t, err)
		require.NotNil(t, record)
		require.Equal(t, "content/blog/abc.json", record.Path)
		require.Equal(t, model.StatusPublished, record.Status)
	})

	t.Run("legacy draft folder implies draft status", func(t *testing.T) {
		store, _, svc := newContentFixture()
		store.SeedJSON("content/blog/draft/xyz.json", map[string]any{"title": "WIP"})

		record, err := svc.Read(ctx, "blog", "xyz")
		require.NoError(t, err)
		require.NotNil(t, record)
		require.Equal(t, "content/blog/draft/xyz.json", record.Path)
		require.Equal(t, model.StatusDraft, record.Status)
	})

	t.Run("explicit status beats the folder", func(t *testing.T) {
		store, _, svc := newContentFixture()
		store.SeedJSON("content/blog/draft/xyz.json", map[string]any{"title": "Old", "status": model.StatusArchived})

		record, err := svc.Read(ctx, "blog", "xyz")
		require.NoError(t, err)
		require.Equal(t, model.StatusArchived, record.Status)
	})

	t.Run("canonical path wins over legacy copies", func(t *testing.T) {
		store, _, svc := newContentFixture()
		store.SeedJSON("content/blog/dup.json", map[string]any{"title": "Canonical"})
		store.SeedJSON("content/blog/draft/dup.json", map[string]any{"title": "Legacy"})

		record, err := svc.Read(ctx, "blog", "dup")
		require.NoError(t, err)
		require.Equal(t, "Canonical", record.Content["title"])
	})

	t.Run("missing record resolves to nil", func(t *testing.T) {
		_, _, svc := newContentFixture()

		record, err := svc.Read(ctx, "blog", "ghost")
		require.NoError(t, err)
		require.Nil(t, record)
	})

	t.Run("unknown collection fails", func(t *testing.T) {
		_, _, svc := newContentFixture()

		_, err := svc.Read(ctx, "nope", "x")
		require.ErrorIs(t, err, model.ErrCollectionNotFound)
	})
}

func TestContentServiceWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("new record mints a uuid and a display slug", func(t *testing.T) {
		store, _, svc := newContentFixture()

		result, err := svc.Write(ctx, "blog", NewRecordID, map[string]any{"title": "Hello World"}, "admin@example.com")
		require.NoError(t, err)
		require.True(t, result.Created)

		_, err = uuid.Parse(result.ID)
		require.NoError(t, err)
		require.Equal(t, "content/blog/"+result.ID+".json", result.Path)

		file, err := store.GetFile(ctx, result.Path)
		require.NoError(t, err)
		require.Equal(t, result.ID, file.Content["id"])
		require.Equal(t, "hello-world", file.Content["slug"])

		meta, ok := file.Content["_meta"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "admin@example.com", meta["createdBy"])
		require.NotEmpty(t, meta["createdAt"])
	})

	t.Run("update preserves creation facts", func(t *testing.T) {
		store, _, svc := newContentFixture()
		store.SeedJSON("content/blog/r1.json", map[string]any{
			"title": "First",
			"_meta": map[string]any{"createdAt": "2025-01-01T00:00:00Z", "createdBy": "author@example.com"},
		})

		result, err := svc.Write(ctx, "blog", "r1", map[string]any{
			"title": "Second",
			"_meta": map[string]any{"createdAt": "2025-01-01T00:00:00Z", "createdBy": "author@example.com"},
		}, "editor@example.com")
		require.NoError(t, err)
		require.False(t, result.Created)

		file, err := store.GetFile(ctx, result.Path)
		require.NoError(t, err)
		meta := file.Content["_meta"].(map[string]any)
		require.Equal(t, "2025-01-01T00:00:00Z", meta["createdAt"])
		require.Equal(t, "author@example.com", meta["createdBy"])
		require.Equal(t, "editor@example.com", meta["updatedBy"])
	})

	t.Run("writing a legacy record migrates it to the canonical path", func(t *testing.T) {
		store, _, svc := newContentFixture()
		store.SeedJSON("content/blog/draft/old.json", map[string]any{"title": "Legacy"})

		result, err := svc.Write(ctx, "blog", "old", map[string]any{"title": "Legacy Updated"}, "admin")
		require.NoError(t, err)
		require.False(t, result.Created)
		require.Equal(t, "content/blog/old.json", result.Path)

		migrated, err := store.GetFile(ctx, "content/blog/old.json")
		require.NoError(t, err)
		require.Equal(t, "Legacy Updated", migrated.Content["title"])

		legacy, err := store.GetFile(ctx, "content/blog/draft/old.json")
		require.NoError(t, err)
		require.Nil(t, legacy)
	})

	t.Run("slug follows the default locale of a localized title", func(t *testing.T) {
		store, _, svc := newContentFixture()

		result, err := svc.Write(ctx, "blog", NewRecordID, map[string]any{
			"title": map[string]any{"en": "Summer Trip", "es": "Viaje de Verano"},
		}, "admin")
		require.NoError(t, err)

		file, err := store.GetFile(ctx, result.Path)
		require.NoError(t, err)
		require.Equal(t, "summer-trip", file.Content["slug"])
	})

	t.Run("nil record is rejected", func(t *testing.T) {
		_, _, svc := newContentFixture()

		_, err := svc.Write(ctx, "blog", NewRecordID, nil, "admin")
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestContentServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _, svc := newContentFixture()
	store.SeedJSON("content/blog/a.json", map[string]any{"title": "A"})
	store.SeedJSON("content/blog/b.json", map[string]any{"title": "B", "status": model.StatusDraft})
	store.SeedJSON("content/blog/draft/c.json", map[string]any{"title": map[string]any{"en": "C en"}})
	store.Seed("content/blog/notes.txt", []byte("ignored"))

	records, err := svc.List(ctx, "blog")
	require.NoError(t, err)
	require.Len(t, records, 3)

	byPath := map[string]model.ListedRecord{}
	for _, record := range records {
		byPath[record.Path] = record
	}

	require.Equal(t, "A", byPath["content/blog/a.json"].Title)
	require.Equal(t, model.StatusPublished, byPath["content/blog/a.json"].Status)
	require.Equal(t, model.StatusDraft, byPath["content/blog/b.json"].Status)
	require.Equal(t, "C en", byPath["content/blog/draft/c.json"].Title)
}

func TestContentServiceSoftDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("moves the record into the trash", func(t *testing.T) {
		store, trash, svc := newContentFixture()
		store.SeedJSON("content/blog/gone.json", map[string]any{"title": "Bye"})

		entry, err := svc.SoftDelete(ctx, "blog", "gone")
		require.NoError(t, err)
		require.Equal(t, "content/blog/gone.json", entry.OriginalPath)
		require.Equal(t, model.TrashKindCollectionItem, entry.Type)

		live, err := store.GetFile(ctx, "content/blog/gone.json")
		require.NoError(t, err)
		require.Nil(t, live)

		envelope, err := store.GetFile(ctx, entry.Path)
		require.NoError(t, err)
		require.Equal(t, "content/blog/gone.json", envelope.Content["originalPath"])
		data := envelope.Content["data"].(map[string]any)
		require.Equal(t, "Bye", data["title"])

		// Round trip back out of the trash.
		require.NoError(t, trash.Restore(ctx, entry.Path))
		restored, err := store.GetFile(ctx, "content/blog/gone.json")
		require.NoError(t, err)
		require.Equal(t, "Bye", restored.Content["title"])
	})

	t.Run("missing record reports not found", func(t *testing.T) {
		_, _, svc := newContentFixture()

		_, err := svc.SoftDelete(ctx, "blog", "ghost")
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}
