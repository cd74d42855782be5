package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"go-git-cms/internal/model"
)

// GitHub implements Store against the GitHub contents, trees and blobs APIs.
// One client is constructed at process start and injected into every service;
// it holds no per-request state.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

var _ Store = (*GitHub)(nil)

func NewGitHub(token string, owner string, repo string, branch string) *GitHub {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)

	return &GitHub{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
		branch: branch,
	}
}

func (g *GitHub) GetFile(ctx context.Context, path string) (*model.StoredFile, error) {
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, g.getOpts())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, g.wrap("get "+path, err)
	}

	if fileContent == nil {
		// Path resolved to a directory.
		return nil, nil
	}

	raw, err := fileContent.GetContent()
	if err != nil {
		return nil, g.wrap("decode "+path, err)
	}

	var content map[string]any
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &model.StoredFile{Content: content, Version: fileContent.GetSHA()}, nil
}

func (g *GitHub) GetRaw(ctx context.Context, path string) ([]byte, string, error) {
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, g.getOpts())
	if err != nil {
		if isNotFound(err) {
			return nil, "", fmt.Errorf("get %s: %w", path, model.ErrNotFound)
		}
		return nil, "", g.wrap("get "+path, err)
	}

	if fileContent == nil {
		return nil, "", fmt.Errorf("get %s: %w", path, model.ErrNotFound)
	}

	version := fileContent.GetSHA()

	raw, decodeErr := fileContent.GetContent()
	if decodeErr == nil && (raw != "" || fileContent.GetSize() == 0) {
		return []byte(raw), version, nil
	}

	// Inline content is absent above the contents-API size cap; fetch the
	// blob by hash instead.
	blob, _, err := g.client.Git.GetBlob(ctx, g.owner, g.repo, version)
	if err != nil {
		return nil, "", g.wrap("get blob "+version, err)
	}

	data, err := decodeBlob(blob)
	if err != nil {
		return nil, "", fmt.Errorf("decode blob %s: %w", version, err)
	}

	return data, version, nil
}

func (g *GitHub) Stat(ctx context.Context, path string) (*model.FileMeta, error) {
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, g.getOpts())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, g.wrap("stat "+path, err)
	}

	if fileContent == nil {
		return nil, nil
	}

	return &model.FileMeta{
		Name:    fileContent.GetName(),
		Path:    fileContent.GetPath(),
		Version: fileContent.GetSHA(),
		Size:    int64(fileContent.GetSize()),
	}, nil
}

func (g *GitHub) PutJSON(ctx context.Context, path string, content map[string]any, version string) (string, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", path, err)
	}

	return g.PutRaw(ctx, path, data, version)
}

func (g *GitHub) PutRaw(ctx context.Context, path string, data []byte, version string) (string, error) {
	if version == "" {
		// Unconditioned put creates-or-overwrites: discover the current
		// version first so an occupied destination does not reject the
		// write.
		meta, err := g.Stat(ctx, path)
		if err != nil {
			return "", err
		}
		if meta != nil {
			version = meta.Version
		}
	}

	message := "Create " + path
	if version != "" {
		message = "Update " + path
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: data,
		Branch:  github.String(g.branch),
	}
	if version != "" {
		opts.SHA = github.String(version)
	}

	resp, _, err := g.client.Repositories.CreateFile(ctx, g.owner, g.repo, path, opts)
	if err != nil {
		return "", g.wrap("put "+path, err)
	}

	return resp.Content.GetSHA(), nil
}

func (g *GitHub) Delete(ctx context.Context, path string, version string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Delete " + path),
		SHA:     github.String(version),
		Branch:  github.String(g.branch),
	}

	if _, _, err := g.client.Repositories.DeleteFile(ctx, g.owner, g.repo, path, opts); err != nil {
		return g.wrap("delete "+path, err)
	}

	return nil
}

func (g *GitHub) List(ctx context.Context, path string) ([]model.FileMeta, error) {
	_, entries, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, g.getOpts())
	if err != nil {
		if isNotFound(err) {
			// A folder that was never committed is an empty listing.
			return nil, nil
		}
		return nil, g.wrap("list "+path, err)
	}

	out := make([]model.FileMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}
		out = append(out, model.FileMeta{
			Name:    entry.GetName(),
			Path:    entry.GetPath(),
			Version: entry.GetSHA(),
			Size:    int64(entry.GetSize()),
		})
	}

	return out, nil
}

func (g *GitHub) ListTree(ctx context.Context, prefix string) ([]model.FileMeta, error) {
	ref, _, err := g.client.Git.GetRef(ctx, g.owner, g.repo, "heads/"+g.branch)
	if err != nil {
		return nil, g.wrap("resolve branch "+g.branch, err)
	}

	tree, _, err := g.client.Git.GetTree(ctx, g.owner, g.repo, ref.GetObject().GetSHA(), true)
	if err != nil {
		return nil, g.wrap("list tree", err)
	}

	prefix = strings.TrimSuffix(prefix, "/")
	var out []model.FileMeta
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		path := entry.GetPath()
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		name := path
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			name = path[idx+1:]
		}
		out = append(out, model.FileMeta{
			Name:    name,
			Path:    path,
			Version: entry.GetSHA(),
			Size:    int64(entry.GetSize()),
		})
	}

	return out, nil
}

func (g *GitHub) RateLimit(ctx context.Context) (model.RateLimit, error) {
	limits, _, err := g.client.RateLimit.Get(ctx)
	if err != nil {
		return model.RateLimit{}, g.wrap("rate limit", err)
	}

	core := limits.GetCore()

	return model.RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Unix(),
	}, nil
}

func (g *GitHub) RepoDetails(ctx context.Context) (model.RepoDetails, error) {
	repo, _, err := g.client.Repositories.Get(ctx, g.owner, g.repo)
	if err != nil {
		return model.RepoDetails{}, g.wrap("repo details", err)
	}

	return model.RepoDetails{
		SizeKB:     repo.GetSize(),
		OpenIssues: repo.GetOpenIssuesCount(),
	}, nil
}

func (g *GitHub) RecentCommits(ctx context.Context, perPage int, page int, path string) ([]model.Commit, error) {
	opts := &github.CommitsListOptions{
		SHA:         g.branch,
		Path:        path,
		ListOptions: github.ListOptions{PerPage: perPage, Page: page},
	}

	commits, _, err := g.client.Repositories.ListCommits(ctx, g.owner, g.repo, opts)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, g.wrap("list commits", err)
	}

	out := make([]model.Commit, 0, len(commits))
	for _, commit := range commits {
		author := commit.GetCommit().GetAuthor()
		out = append(out, model.Commit{
			SHA:     commit.GetSHA(),
			Message: commit.GetCommit().GetMessage(),
			Author:  author.GetName(),
			Email:   author.GetEmail(),
			Date:    author.GetDate().Format("2006-01-02T15:04:05Z07:00"),
			URL:     commit.GetHTMLURL(),
		})
	}

	return out, nil
}

func (g *GitHub) LastCommitDate(ctx context.Context, path string) (string, error) {
	commits, err := g.RecentCommits(ctx, 1, 1, path)
	if err != nil {
		return "", err
	}

	if len(commits) == 0 {
		return "", nil
	}

	return commits[0].Date, nil
}

func (g *GitHub) getOpts() *github.RepositoryContentGetOptions {
	return &github.RepositoryContentGetOptions{Ref: g.branch}
}

// wrap translates provider failures into the package's error taxonomy.
func (g *GitHub) wrap(op string, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w", op, model.ErrRateLimited)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, model.ErrNotFound)
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w", op, model.ErrVersionConflict)
		case http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w", op, model.ErrRateLimited)
		}
	}

	return fmt.Errorf("%s: %w: %v", op, model.ErrBackendUnavailable, err)
}

func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}

func decodeBlob(blob *github.Blob) ([]byte, error) {
	content := blob.GetContent()
	if blob.GetEncoding() != "base64" {
		return []byte(content), nil
	}

	// The blob API wraps base64 payloads in newlines.
	content = strings.ReplaceAll(content, "\n", "")

	return base64.StdEncoding.DecodeString(content)
}
