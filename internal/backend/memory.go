package backend

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-git-cms/internal/model"
)

// Memory is an in-process Store used by tests and offline development. It
// reproduces the provider's contract exactly: content-hash version tokens,
// conflict rejection on stale tokens, empty listings for missing folders.
type Memory struct {
	mu      sync.Mutex
	files   map[string]memoryFile
	commits []model.Commit
	seq     int
}

type memoryFile struct {
	data    []byte
	version string
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{files: map[string]memoryFile{}}
}

// Seed places a file without recording history; tests use it to arrange
// repository state.
func (m *Memory) Seed(path string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	version := m.hash(data)
	m.files[path] = memoryFile{data: data, version: version}

	return version
}

// SeedJSON is Seed for JSON content.
func (m *Memory) SeedJSON(path string, content map[string]any) string {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		panic(err)
	}

	return m.Seed(path, data)
}

func (m *Memory) GetFile(_ context.Context, path string) (*model.StoredFile, error) {
	m.mu.Lock()
	file, ok := m.files[path]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var content map[string]any
	if err := json.Unmarshal(file.data, &content); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &model.StoredFile{Content: content, Version: file.version}, nil
}

func (m *Memory) GetRaw(_ context.Context, path string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[path]
	if !ok {
		return nil, "", fmt.Errorf("get %s: %w", path, model.ErrNotFound)
	}

	return append([]byte(nil), file.data...), file.version, nil
}

func (m *Memory) Stat(_ context.Context, path string) (*model.FileMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[path]
	if !ok {
		return nil, nil
	}

	return &model.FileMeta{
		Name:    baseName(path),
		Path:    path,
		Version: file.version,
		Size:    int64(len(file.data)),
	}, nil
}

func (m *Memory) PutJSON(ctx context.Context, path string, content map[string]any, version string) (string, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", path, err)
	}

	return m.PutRaw(ctx, path, data, version)
}

func (m *Memory) PutRaw(_ context.Context, path string, data []byte, version string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.files[path]
	if version != "" && (!exists || existing.version != version) {
		return "", fmt.Errorf("put %s: %w", path, model.ErrVersionConflict)
	}

	newVersion := m.hash(data)
	m.files[path] = memoryFile{data: append([]byte(nil), data...), version: newVersion}

	message := "Create " + path
	if exists {
		message = "Update " + path
	}
	m.recordCommit(message)

	return newVersion, nil
}

func (m *Memory) Delete(_ context.Context, path string, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.files[path]
	if !exists {
		return fmt.Errorf("delete %s: %w", path, model.ErrNotFound)
	}
	if existing.version != version {
		return fmt.Errorf("delete %s: %w", path, model.ErrVersionConflict)
	}

	delete(m.files, path)
	m.recordCommit("Delete " + path)

	return nil
}

func (m *Memory) List(_ context.Context, path string) ([]model.FileMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.TrimSuffix(path, "/") + "/"
	var out []model.FileMeta
	for filePath, file := range m.files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		// One directory level only.
		if strings.Contains(strings.TrimPrefix(filePath, prefix), "/") {
			continue
		}
		out = append(out, model.FileMeta{
			Name:    baseName(filePath),
			Path:    filePath,
			Version: file.version,
			Size:    int64(len(file.data)),
		})
	}

	sortMetas(out)

	return out, nil
}

func (m *Memory) ListTree(_ context.Context, prefix string) ([]model.FileMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix = strings.TrimSuffix(prefix, "/")
	var out []model.FileMeta
	for filePath, file := range m.files {
		if filePath != prefix && !strings.HasPrefix(filePath, prefix+"/") {
			continue
		}
		out = append(out, model.FileMeta{
			Name:    baseName(filePath),
			Path:    filePath,
			Version: file.version,
			Size:    int64(len(file.data)),
		})
	}

	sortMetas(out)

	return out, nil
}

func (m *Memory) RateLimit(context.Context) (model.RateLimit, error) {
	return model.RateLimit{Limit: 5000, Remaining: 5000, Reset: time.Now().Add(time.Hour).Unix()}, nil
}

func (m *Memory) RepoDetails(context.Context) (model.RepoDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var size int64
	for _, file := range m.files {
		size += int64(len(file.data))
	}

	return model.RepoDetails{SizeKB: int(size / 1024)}, nil
}

func (m *Memory) RecentCommits(_ context.Context, perPage int, page int, path string) ([]model.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if page < 1 {
		page = 1
	}

	var matched []model.Commit
	for i := len(m.commits) - 1; i >= 0; i-- {
		commit := m.commits[i]
		if path != "" && !strings.Contains(commit.Message, path) {
			continue
		}
		matched = append(matched, commit)
	}

	start := (page - 1) * perPage
	if start >= len(matched) {
		return nil, nil
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], nil
}

func (m *Memory) LastCommitDate(ctx context.Context, path string) (string, error) {
	commits, err := m.RecentCommits(ctx, 1, 1, path)
	if err != nil || len(commits) == 0 {
		return "", err
	}

	return commits[0].Date, nil
}

func (m *Memory) recordCommit(message string) {
	m.seq++
	m.commits = append(m.commits, model.Commit{
		SHA:     fmt.Sprintf("%040d", m.seq),
		Message: message,
		Author:  "memory",
		Date:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (m *Memory) hash(data []byte) string {
	m.seq++
	sum := sha1.Sum(append(data, byte(m.seq), byte(m.seq>>8)))

	return hex.EncodeToString(sum[:])
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}

	return path
}

func sortMetas(metas []model.FileMeta) {
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })
}
