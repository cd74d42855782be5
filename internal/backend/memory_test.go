package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"go-git-cms/internal/model"
)

func TestMemoryVersioning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unconditioned put creates and overwrites", func(t *testing.T) {
		m := NewMemory()

		v1, err := m.PutRaw(ctx, "a/b.txt", []byte("one"), "")
		require.NoError(t, err)
		require.NotEmpty(t, v1)

		v2, err := m.PutRaw(ctx, "a/b.txt", []byte("two"), "")
		require.NoError(t, err)
		require.NotEqual(t, v1, v2)

		data, version, err := m.GetRaw(ctx, "a/b.txt")
		require.NoError(t, err)
		require.Equal(t, "two", string(data))
		require.Equal(t, v2, version)
	})

	t.Run("conditioned put rejects a stale token", func(t *testing.T) {
		m := NewMemory()

		v1, err := m.PutRaw(ctx, "a/b.txt", []byte("one"), "")
		require.NoError(t, err)

		_, err = m.PutRaw(ctx, "a/b.txt", []byte("two"), v1)
		require.NoError(t, err)

		_, err = m.PutRaw(ctx, "a/b.txt", []byte("three"), v1)
		require.True(t, errors.Is(err, model.ErrVersionConflict))
	})

	t.Run("delete requires the current token", func(t *testing.T) {
		m := NewMemory()
		v1 := m.Seed("a/b.txt", []byte("one"))

		err := m.Delete(ctx, "a/b.txt", "stale")
		require.True(t, errors.Is(err, model.ErrVersionConflict))

		require.NoError(t, m.Delete(ctx, "a/b.txt", v1))

		err = m.Delete(ctx, "a/b.txt", v1)
		require.True(t, errors.Is(err, model.ErrNotFound))
	})
}

func TestMemoryReads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing json file reads as nil without error", func(t *testing.T) {
		m := NewMemory()

		file, err := m.GetFile(ctx, "nope.json")
		require.NoError(t, err)
		require.Nil(t, file)
	})

	t.Run("stat reports nil for absent paths", func(t *testing.T) {
		m := NewMemory()
		m.Seed("dir/file.txt", []byte("x"))

		meta, err := m.Stat(ctx, "dir/file.txt")
		require.NoError(t, err)
		require.Equal(t, "file.txt", meta.Name)
		require.Equal(t, int64(1), meta.Size)

		missing, err := m.Stat(ctx, "dir/other.txt")
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("json round trip preserves content", func(t *testing.T) {
		m := NewMemory()

		_, err := m.PutJSON(ctx, "doc.json", map[string]any{"title": "Hi", "n": float64(3)}, "")
		require.NoError(t, err)

		file, err := m.GetFile(ctx, "doc.json")
		require.NoError(t, err)
		require.Equal(t, "Hi", file.Content["title"])
		require.Equal(t, float64(3), file.Content["n"])
	})
}

func TestMemoryListings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory()
	m.Seed("content/blog/a.json", []byte("{}"))
	m.Seed("content/blog/b.json", []byte("{}"))
	m.Seed("content/blog/draft/c.json", []byte("{}"))
	m.Seed("content/people/d.json", []byte("{}"))

	t.Run("list is one level deep", func(t *testing.T) {
		metas, err := m.List(ctx, "content/blog")
		require.NoError(t, err)
		require.Len(t, metas, 2)
		require.Equal(t, "content/blog/a.json", metas[0].Path)
	})

	t.Run("list of a missing folder is empty", func(t *testing.T) {
		metas, err := m.List(ctx, "content/missing")
		require.NoError(t, err)
		require.Empty(t, metas)
	})

	t.Run("tree listing is recursive and prefix-scoped", func(t *testing.T) {
		metas, err := m.ListTree(ctx, "content/blog")
		require.NoError(t, err)
		require.Len(t, metas, 3)

		all, err := m.ListTree(ctx, "content")
		require.NoError(t, err)
		require.Len(t, all, 4)
	})
}

func TestMemoryCommitLog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory()
	_, err := m.PutRaw(ctx, "a.txt", []byte("1"), "")
	require.NoError(t, err)
	_, err = m.PutRaw(ctx, "b.txt", []byte("2"), "")
	require.NoError(t, err)

	commits, err := m.RecentCommits(ctx, 10, 1, "")
	require.NoError(t, err)
	require.Len(t, commits, 2)
	require.Equal(t, "Create b.txt", commits[0].Message)

	scoped, err := m.RecentCommits(ctx, 10, 1, "a.txt")
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	last, err := m.LastCommitDate(ctx, "b.txt")
	require.NoError(t, err)
	require.NotEmpty(t, last)
}
