package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
	"go-git-cms/internal/schema"
	"go-git-cms/internal/util"
)

// NewRecordID is the sentinel identifier that makes Write mint a fresh UUID.
const NewRecordID = "new"

// recordLocation is one step of the ordered lookup contract: the canonical
// path first, then each legacy status folder in fixed priority. The status is
// what a record found there inherits when it carries no status field itself.
type recordLocation struct {
	path   string
	status string
}

func recordLocations(collectionPath string, id string) []recordLocation {
	return []recordLocation{
		{path: fmt.Sprintf("%s/%s.json", collectionPath, id), status: model.StatusPublished},
		{path: fmt.Sprintf("%s/%s/%s.json", collectionPath, model.StatusDraft, id), status: model.StatusDraft},
		{path: fmt.Sprintf("%s/%s/%s.json", collectionPath, model.StatusPublished, id), status: model.StatusPublished},
		{path: fmt.Sprintf("%s/%s/%s.json", collectionPath, model.StatusArchived, id), status: model.StatusArchived},
	}
}

// ContentService owns the ContentRecord lifecycle: reads with legacy-path
// fallback, conditioned writes with transparent path migration, and the
// hand-off to the trash subsystem on soft delete.
type ContentService struct {
	store  backend.Store
	schema *schema.Schema
	trash  *TrashService
}

func NewContentService(store backend.Store, s *schema.Schema, trash *TrashService) *ContentService {
	return &ContentService{store: store, schema: s, trash: trash}
}

// Read returns the record and its inferred status, or (nil, nil) when no
// location holds it.
func (s *ContentService) Read(ctx context.Context, collectionSlug string, id string) (*model.ResolvedRecord, error) {
	collection, err := s.schema.CollectionBySlug(collectionSlug)
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, collection.Path, id)
}

func (s *ContentService) resolve(ctx context.Context, collectionPath string, id string) (*model.ResolvedRecord, error) {
	for _, loc := range recordLocations(collectionPath, id) {
		file, err := s.store.GetFile(ctx, loc.path)
		if err != nil {
			return nil, err
		}
		if file == nil {
			continue
		}

		status := loc.status
		if explicit, ok := file.Content["status"].(string); ok && explicit != "" {
			status = explicit
		}

		return &model.ResolvedRecord{
			Content: file.Content,
			Path:    loc.path,
			Version: file.Version,
			Status:  status,
		}, nil
	}

	return nil, nil
}

// Write persists a record at its canonical path. An id of NewRecordID mints a
// UUID and embeds it; a record found at a legacy path is migrated by creating
// the canonical file first and deleting the legacy file only afterwards, so an
// interrupted migration duplicates rather than loses the record.
func (s *ContentService) Write(ctx context.Context, collectionSlug string, id string, record map[string]any, actor string) (model.WriteResult, error) {
	collection, err := s.schema.CollectionBySlug(collectionSlug)
	if err != nil {
		return model.WriteResult{}, err
	}

	if record == nil {
		return model.WriteResult{}, fmt.Errorf("%w: empty record", model.ErrInvalidInput)
	}

	identifier := id
	if id == NewRecordID {
		identifier = uuid.NewString()
		record["id"] = identifier
	}

	// Display slug only; the filename is always the UUID.
	if source := localizedString(record, "title", s.schema.DefaultLocale()); source != "" {
		record["slug"] = util.Slugify(source)
	} else if source := localizedString(record, "name", s.schema.DefaultLocale()); source != "" {
		record["slug"] = util.Slugify(source)
	} else if source := localizedString(record, "label", s.schema.DefaultLocale()); source != "" {
		record["slug"] = util.Slugify(source)
	}

	targetPath := fmt.Sprintf("%s/%s.json", collection.Path, identifier)

	var existing *model.ResolvedRecord
	if id != NewRecordID {
		existing, err = s.resolve(ctx, collection.Path, id)
		if err != nil {
			return model.WriteResult{}, err
		}
	}

	// A conditioned token applies only when updating in place; a canonical
	// file created during migration starts fresh.
	token := ""
	if existing != nil && existing.Path == targetPath {
		token = existing.Version
	}

	stampMeta(record, existing, actor)

	if _, err := s.store.PutJSON(ctx, targetPath, record, token); err != nil {
		return model.WriteResult{}, err
	}

	if existing != nil && existing.Path != targetPath {
		// Canonical copy exists now; losing this delete merely leaves a
		// stale duplicate behind.
		if err := s.store.Delete(ctx, existing.Path, existing.Version); err != nil {
			slog.Warn("legacy record cleanup failed", "path", existing.Path, "error", err)
		}
	}

	return model.WriteResult{
		ID:      identifier,
		Path:    targetPath,
		Created: existing == nil,
	}, nil
}

// SoftDelete resolves the record exactly as Read does, then hands it to the
// trash subsystem.
func (s *ContentService) SoftDelete(ctx context.Context, collectionSlug string, id string) (model.TrashEntry, error) {
	collection, err := s.schema.CollectionBySlug(collectionSlug)
	if err != nil {
		return model.TrashEntry{}, err
	}

	resolved, err := s.resolve(ctx, collection.Path, id)
	if err != nil {
		return model.TrashEntry{}, err
	}
	if resolved == nil {
		return model.TrashEntry{}, fmt.Errorf("%s/%s: %w", collectionSlug, id, model.ErrNotFound)
	}

	return s.trash.SoftDelete(ctx, resolved.Path, resolved.Version, model.TrashKindCollectionItem)
}

// List returns every record of a collection, legacy locations included, with
// status and display title fetched per file. The per-file fetches fan out
// concurrently; the single tree listing keeps the call count low.
func (s *ContentService) List(ctx context.Context, collectionSlug string) ([]model.ListedRecord, error) {
	collection, err := s.schema.CollectionBySlug(collectionSlug)
	if err != nil {
		return nil, err
	}

	files, err := s.store.ListTree(ctx, collection.Path)
	if err != nil {
		return nil, err
	}

	jsonFiles := filterJSON(files)
	listed := make([]model.ListedRecord, len(jsonFiles))

	var wg sync.WaitGroup
	for i, meta := range jsonFiles {
		wg.Add(1)
		go func(i int, meta model.FileMeta) {
			defer wg.Done()

			entry := model.ListedRecord{FileMeta: meta, Status: "unknown"}
			file, err := s.store.GetFile(ctx, meta.Path)
			if err != nil || file == nil {
				if err != nil {
					slog.Error("fetch record failed during listing", "path", meta.Path, "error", err)
				}
				listed[i] = entry
				return
			}

			entry.Title = resolveTitle(collection, file.Content, s.schema.DefaultLocale())
			entry.Status = model.StatusPublished
			if status, ok := file.Content["status"].(string); ok && status != "" {
				entry.Status = status
			}

			listed[i] = entry
		}(i, meta)
	}
	wg.Wait()

	return listed, nil
}

func stampMeta(record map[string]any, existing *model.ResolvedRecord, actor string) {
	now := time.Now().UTC().Format(time.RFC3339)

	meta := model.RecordMeta{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}

	// Creation facts survive every later write.
	if prior, ok := record["_meta"].(map[string]any); ok {
		if createdAt, ok := prior["createdAt"].(string); ok && createdAt != "" {
			meta.CreatedAt = createdAt
		}
		if createdBy, ok := prior["createdBy"].(string); ok && createdBy != "" {
			meta.CreatedBy = createdBy
		}
	} else if existing != nil {
		if prior, ok := existing.Content["_meta"].(map[string]any); ok {
			if createdAt, ok := prior["createdAt"].(string); ok && createdAt != "" {
				meta.CreatedAt = createdAt
			}
			if createdBy, ok := prior["createdBy"].(string); ok && createdBy != "" {
				meta.CreatedBy = createdBy
			}
		}
	}

	record["_meta"] = map[string]any{
		"createdAt": meta.CreatedAt,
		"updatedAt": meta.UpdatedAt,
		"createdBy": meta.CreatedBy,
		"updatedBy": meta.UpdatedBy,
	}
}

func filterJSON(files []model.FileMeta) []model.FileMeta {
	out := make([]model.FileMeta, 0, len(files))
	for _, file := range files {
		if len(file.Name) > 5 && file.Name[len(file.Name)-5:] == ".json" {
			out = append(out, file)
		}
	}

	return out
}
