package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"go-git-cms/internal/backend"
)

func newStatsFixture() (*backend.Memory, *StatsService) {
	store := backend.NewMemory()
	s := testSchema()
	trash := NewTrashService(store, s.TrashRoot, 10)

	return store, NewStatsService(store, s, trash)
}

func TestStatsSystem(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, svc := newStatsFixture()

	stats, err := svc.System(ctx)
	require.NoError(t, err)
	require.Equal(t, 5000, stats.RateLimit.Limit)
}

func TestStatsCollections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, svc := newStatsFixture()
	store.SeedJSON("content/blog/a.json", map[string]any{"title": "A", "status": "draft"})
	store.SeedJSON("content/blog/b.json", map[string]any{"title": "B"})
	store.SeedJSON("content/people/jane.json", map[string]any{"name": "Jane"})

	stats, err := svc.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	blog := stats[0]
	require.Equal(t, "blog", blog.Slug)
	require.Equal(t, "collection", blog.Type)
	require.Equal(t, 2, blog.Count)
	require.Equal(t, 1, blog.StatusBreakdown["Draft"])
	require.Equal(t, 1, blog.StatusBreakdown["Published"])

	// No status field defined, so everything counts as published.
	people := stats[1]
	require.Equal(t, 1, people.Count)
	require.Equal(t, 1, people.StatusBreakdown["Published"])
}

func TestStatsLocalization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, svc := newStatsFixture()
	store.SeedJSON("content/blog/full.json", map[string]any{
		"title": "Full",
		"translations": map[string]any{
			"es": map[string]any{"title": "Completo", "body": "texto"},
		},
	})
	store.SeedJSON("content/blog/partial.json", map[string]any{
		"title": "Partial",
		"translations": map[string]any{
			"es": map[string]any{"title": ""},
		},
	})
	store.SeedJSON("content/people/jane.json", map[string]any{"name": "Jane"})

	stats, err := svc.Localization(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	require.Equal(t, "en", stats[0].Locale)
	require.Equal(t, 100, stats[0].Percentage)

	es := stats[1]
	require.Equal(t, "es", es.Locale)
	require.Equal(t, 3, es.Total)
	// Only the fully translated blog post counts; the partial one has an
	// empty required field and the people record has no translations block.
	require.Equal(t, 1, es.Translated)
	require.Equal(t, 33, es.Percentage)
}

func TestStatsMedia(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, svc := newStatsFixture()
	store.Seed("public/uploads/a.png", []byte("aaaa"))
	store.Seed("public/uploads/b.PNG", []byte("bb"))
	store.Seed("public/uploads/doc.pdf", []byte("cc"))
	store.Seed("public/uploads/skip.bin", []byte("dd"))
	store.SeedJSON("content/trash/x.json", map[string]any{
		"originalPath": "content/blog/x.json",
		"deletedAt":    "2026-08-01T00:00:00Z",
		"data":         map[string]any{},
	})

	stats, err := svc.Media(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.FileCount)
	require.Equal(t, int64(8), stats.TotalSize)
	require.Equal(t, 2, stats.TypeDistribution["png"])
	require.Equal(t, 1, stats.TypeDistribution["pdf"])
	require.Equal(t, "8 B", stats.TotalSizeHuman)
	require.Equal(t, 1, stats.TrashCount)
}

func TestStatsRecentActivity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, svc := newStatsFixture()
	_, err := store.PutRaw(ctx, "content/blog/a.json", []byte("{}"), "")
	require.NoError(t, err)
	_, err = store.PutRaw(ctx, "content/blog/b.json", []byte("{}"), "")
	require.NoError(t, err)

	commits, err := svc.RecentActivity(ctx, 1)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, "Create content/blog/b.json", commits[0].Message)
}
