// Package backend talks to the versioned-file API that the CMS uses as its
// database. Every mutation is conditioned on the file's last-known version
// token (the provider's content hash); a stale token surfaces as
// model.ErrVersionConflict, never as a silent overwrite.
package backend

import (
	"context"

	"go-git-cms/internal/model"
)

// Store is the file-level contract every higher component builds on.
//
// Reads of missing paths return (nil, nil) rather than an error so callers
// can distinguish absence from failure. Put with an empty version token
// creates-or-overwrites; Put with a token and Delete fail with
// model.ErrVersionConflict when the token no longer matches.
type Store interface {
	// GetFile reads and parses a JSON file.
	GetFile(ctx context.Context, path string) (*model.StoredFile, error)

	// GetRaw reads a file's bytes and version token, falling back to the
	// blob API when the inline content is absent (large files).
	GetRaw(ctx context.Context, path string) ([]byte, string, error)

	// Stat returns listing metadata for a single path, or nil when absent.
	Stat(ctx context.Context, path string) (*model.FileMeta, error)

	// PutJSON serializes content and writes it, returning the new version.
	PutJSON(ctx context.Context, path string, content map[string]any, version string) (string, error)

	// PutRaw writes bytes, returning the new version.
	PutRaw(ctx context.Context, path string, data []byte, version string) (string, error)

	// Delete removes a file; the version token is mandatory.
	Delete(ctx context.Context, path string, version string) error

	// List returns one directory level. A missing directory is an empty
	// listing, not an error.
	List(ctx context.Context, path string) ([]model.FileMeta, error)

	// ListTree returns every file under the prefix using a single
	// whole-tree call; the provider rate-limits per request, so recursive
	// directory walks are off the table.
	ListTree(ctx context.Context, prefix string) ([]model.FileMeta, error)

	// RateLimit reports the provider's remaining API headroom.
	RateLimit(ctx context.Context) (model.RateLimit, error)

	// RepoDetails reports repository-level metadata.
	RepoDetails(ctx context.Context) (model.RepoDetails, error)

	// RecentCommits lists recent history, optionally scoped to a path.
	RecentCommits(ctx context.Context, perPage int, page int, path string) ([]model.Commit, error)

	// LastCommitDate returns the most recent commit date touching path,
	// or "" when the path has no history.
	LastCommitDate(ctx context.Context, path string) (string, error)
}
