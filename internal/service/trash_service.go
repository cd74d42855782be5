package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
)

// TrashService owns every entry after a soft delete: listing, restore,
// permanent deletion and retention cleanup. Entries live under the trash
// root; media binaries get a sidecar envelope because the binary itself
// cannot carry metadata.
type TrashService struct {
	store         backend.Store
	trashRoot     string
	retentionDays int
}

func NewTrashService(store backend.Store, trashRoot string, retentionDays int) *TrashService {
	return &TrashService{store: store, trashRoot: strings.TrimSuffix(trashRoot, "/"), retentionDays: retentionDays}
}

func (s *TrashService) mediaRoot() string {
	return s.trashRoot + "/media"
}

// SoftDelete copies the live file into the trash namespace and only then
// deletes the original with the caller's version token. An interruption
// between the two steps duplicates the data, never loses it.
func (s *TrashService) SoftDelete(ctx context.Context, path string, version string, kind string) (model.TrashEntry, error) {
	filename := baseName(path)
	if filename == "" {
		return model.TrashEntry{}, fmt.Errorf("%w: invalid path %q", model.ErrInvalidInput, path)
	}

	deletedAt := time.Now().UTC().Format(time.RFC3339)

	var trashPath string
	switch kind {
	case model.TrashKindMedia:
		data, _, err := s.store.GetRaw(ctx, path)
		if err != nil {
			return model.TrashEntry{}, err
		}

		// An unconditioned put lets a same-named earlier trash entry be
		// overwritten instead of rejected.
		binPath := s.mediaRoot() + "/" + filename
		if _, err := s.store.PutRaw(ctx, binPath, data, ""); err != nil {
			return model.TrashEntry{}, err
		}

		trashPath = binPath + ".meta.json"
		envelope := model.TrashEnvelope{
			OriginalPath: path,
			DeletedAt:    deletedAt,
			Type:         model.TrashKindMedia,
		}
		if _, err := s.store.PutJSON(ctx, trashPath, envelopeMap(envelope), ""); err != nil {
			return model.TrashEntry{}, err
		}

	default:
		file, err := s.store.GetFile(ctx, path)
		if err != nil {
			return model.TrashEntry{}, err
		}
		if file == nil {
			return model.TrashEntry{}, fmt.Errorf("%s: %w", path, model.ErrNotFound)
		}

		trashPath = s.trashRoot + "/" + filename
		envelope := model.TrashEnvelope{
			OriginalPath: path,
			DeletedAt:    deletedAt,
			Type:         model.TrashKindCollectionItem,
			Data:         file.Content,
		}
		if _, err := s.store.PutJSON(ctx, trashPath, envelopeMap(envelope), ""); err != nil {
			return model.TrashEntry{}, err
		}
	}

	if err := s.store.Delete(ctx, path, version); err != nil {
		return model.TrashEntry{}, err
	}

	return model.TrashEntry{
		Name:         strings.TrimSuffix(filename, ".meta.json"),
		Path:         trashPath,
		OriginalPath: path,
		DeletedAt:    deletedAt,
		Type:         kind,
	}, nil
}

// List returns every trash entry, newest deletion first. Envelopes that fail
// to parse are logged and skipped so one corrupt file cannot hide the rest.
func (s *TrashService) List(ctx context.Context) ([]model.TrashEntry, error) {
	var entries []model.TrashEntry

	items, err := s.store.List(ctx, s.trashRoot)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if !strings.HasSuffix(item.Name, ".json") {
			continue
		}
		entry, ok := s.readEnvelope(ctx, item, model.TrashKindCollectionItem)
		if ok {
			entries = append(entries, entry)
		}
	}

	mediaItems, err := s.store.List(ctx, s.mediaRoot())
	if err != nil {
		return nil, err
	}
	for _, item := range mediaItems {
		if !strings.HasSuffix(item.Name, ".meta.json") {
			continue
		}
		entry, ok := s.readEnvelope(ctx, item, model.TrashKindMedia)
		if ok {
			entry.Name = strings.TrimSuffix(item.Name, ".meta.json")
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DeletedAt > entries[j].DeletedAt
	})

	return entries, nil
}

func (s *TrashService) readEnvelope(ctx context.Context, item model.FileMeta, kind string) (model.TrashEntry, bool) {
	file, err := s.store.GetFile(ctx, item.Path)
	if err != nil || file == nil {
		if err != nil {
			slog.Warn("unreadable trash envelope skipped", "path", item.Path, "error", err)
		}
		return model.TrashEntry{}, false
	}

	originalPath, _ := file.Content["originalPath"].(string)
	deletedAt, _ := file.Content["deletedAt"].(string)
	if originalPath == "" || deletedAt == "" {
		slog.Warn("malformed trash envelope skipped", "path", item.Path)
		return model.TrashEntry{}, false
	}

	entryType := kind
	if explicit, ok := file.Content["type"].(string); ok && explicit != "" {
		entryType = explicit
	}

	return model.TrashEntry{
		Name:         item.Name,
		Path:         item.Path,
		OriginalPath: originalPath,
		DeletedAt:    deletedAt,
		Type:         entryType,
	}, true
}

// Restore writes the payload back to its original path. The write is
// deliberately unconditioned: restoring is user-directed recovery and
// overwrites whatever currently occupies the path.
func (s *TrashService) Restore(ctx context.Context, trashPath string) error {
	file, err := s.store.GetFile(ctx, trashPath)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("%s: %w", trashPath, model.ErrTrashItemNotFound)
	}

	originalPath, _ := file.Content["originalPath"].(string)
	if originalPath == "" {
		return fmt.Errorf("%w: envelope missing originalPath", model.ErrInvalidInput)
	}

	if kind, _ := file.Content["type"].(string); kind == model.TrashKindMedia {
		binPath := strings.TrimSuffix(trashPath, ".meta.json")
		data, binVersion, err := s.store.GetRaw(ctx, binPath)
		if err != nil {
			return err
		}

		if _, err := s.store.PutRaw(ctx, originalPath, data, ""); err != nil {
			return err
		}

		if err := s.store.Delete(ctx, binPath, binVersion); err != nil {
			return err
		}

		return s.store.Delete(ctx, trashPath, file.Version)
	}

	data, _ := file.Content["data"].(map[string]any)
	if data == nil {
		return fmt.Errorf("%w: envelope missing data", model.ErrInvalidInput)
	}

	if _, err := s.store.PutJSON(ctx, originalPath, data, ""); err != nil {
		return err
	}

	return s.store.Delete(ctx, trashPath, file.Version)
}

// Purge removes a trash entry for good. For a media envelope the co-located
// binary goes first, best effort: a binary that is already gone is logged and
// ignored.
func (s *TrashService) Purge(ctx context.Context, trashPath string) error {
	if strings.HasSuffix(trashPath, ".meta.json") && strings.HasPrefix(trashPath, s.mediaRoot()+"/") {
		binPath := strings.TrimSuffix(trashPath, ".meta.json")
		meta, err := s.store.Stat(ctx, binPath)
		if err != nil {
			return err
		}
		if meta != nil {
			if err := s.store.Delete(ctx, binPath, meta.Version); err != nil {
				slog.Warn("trash binary delete failed", "path", binPath, "error", err)
			}
		}
	}

	file, err := s.store.GetFile(ctx, trashPath)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("%s: %w", trashPath, model.ErrTrashItemNotFound)
	}

	return s.store.Delete(ctx, trashPath, file.Version)
}

// Empty purges everything currently in the trash, one entry at a time so a
// single failure cannot abort the batch. Returns the number purged.
func (s *TrashService) Empty(ctx context.Context) (int, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, entry := range entries {
		if err := s.Purge(ctx, entry.Path); err != nil {
			slog.Error("purge failed during empty", "path", entry.Path, "error", err)
			continue
		}
		purged++
	}

	return purged, nil
}

// Cleanup purges entries whose deletion age exceeds the retention window.
// It is an explicit maintenance operation; the trash listing handler may
// invoke it opportunistically but nothing schedules it.
func (s *TrashService) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = s.retentionDays
	}

	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	purged := 0
	for _, entry := range entries {
		deletedAt, err := time.Parse(time.RFC3339, entry.DeletedAt)
		if err != nil {
			slog.Warn("trash entry with unparseable deletedAt skipped", "path", entry.Path, "deletedAt", entry.DeletedAt)
			continue
		}
		if !deletedAt.Before(cutoff) {
			continue
		}

		slog.Info("purging expired trash entry", "path", entry.Path, "deletedAt", entry.DeletedAt)
		if err := s.Purge(ctx, entry.Path); err != nil {
			slog.Error("retention purge failed", "path", entry.Path, "error", err)
			continue
		}
		purged++
	}

	return purged, nil
}

// RetentionDays exposes the configured default window.
func (s *TrashService) RetentionDays() int {
	return s.retentionDays
}

// envelopeMap projects the envelope onto the generic JSON shape the store
// writes.
func envelopeMap(envelope model.TrashEnvelope) map[string]any {
	out := map[string]any{
		"originalPath": envelope.OriginalPath,
		"deletedAt":    envelope.DeletedAt,
		"type":         envelope.Type,
	}
	if envelope.Data != nil {
		out["data"] = envelope.Data
	}

	return out
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}

	return path
}
