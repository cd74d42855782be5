package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
	"go-git-cms/internal/schema"
)

// ReferenceIndex answers which documents mention a media asset. The scanning
// implementation below does a full-content substring pass on every call; the
// interface exists so it can be swapped for a real inverted index without
// touching callers.
type ReferenceIndex interface {
	// Orphans returns the paths of assets referenced by no document.
	Orphans(ctx context.Context, media []model.FileMeta) (map[string]struct{}, error)

	// References lists the documents whose serialized form contains the
	// filename, with a human-readable title per match.
	References(ctx context.Context, filename string) ([]model.MediaReference, error)
}

// ScanIndex is the substring scanner: references are discovered by looking
// for the asset's bare filename inside each record's serialized JSON. That is
// the system's actual integrity mechanism, so false positives on partial
// filename collisions are accepted. Cost is a full fetch of every document
// per call; fine for the repository sizes this targets.
type ScanIndex struct {
	store  backend.Store
	schema *schema.Schema
}

var _ ReferenceIndex = (*ScanIndex)(nil)

func NewScanIndex(store backend.Store, s *schema.Schema) *ScanIndex {
	return &ScanIndex{store: store, schema: s}
}

func (s *ScanIndex) Orphans(ctx context.Context, media []model.FileMeta) (map[string]struct{}, error) {
	var serialized []string
	for _, collection := range s.schema.Collections {
		docs, err := s.loadCollection(ctx, collection.Path)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			serialized = append(serialized, doc.serialized)
		}
	}

	orphaned := make(map[string]struct{})
	for _, asset := range media {
		used := false
		for _, doc := range serialized {
			if strings.Contains(doc, asset.Name) {
				used = true
				break
			}
		}
		if !used {
			orphaned[asset.Path] = struct{}{}
		}
	}

	return orphaned, nil
}

func (s *ScanIndex) References(ctx context.Context, filename string) ([]model.MediaReference, error) {
	var references []model.MediaReference

	for _, collection := range s.schema.Collections {
		docs, err := s.loadCollection(ctx, collection.Path)
		if err != nil {
			return nil, err
		}

		for _, doc := range docs {
			if !strings.Contains(doc.serialized, filename) {
				continue
			}

			title := resolveTitle(&collection, doc.content, s.schema.DefaultLocale())
			if title == "" {
				title = strings.TrimSuffix(doc.name, ".json")
			}

			references = append(references, model.MediaReference{
				Path:       doc.path,
				Title:      title,
				Collection: collection.Label,
			})
		}
	}

	return references, nil
}

type loadedDoc struct {
	name       string
	path       string
	content    map[string]any
	serialized string
}

func (s *ScanIndex) loadCollection(ctx context.Context, collectionPath string) ([]loadedDoc, error) {
	files, err := s.store.ListTree(ctx, collectionPath)
	if err != nil {
		return nil, err
	}

	var docs []loadedDoc
	for _, meta := range filterJSON(files) {
		file, err := s.store.GetFile(ctx, meta.Path)
		if err != nil {
			// A single unreadable document must not abort the scan.
			slog.Warn("skipping unreadable document during reference scan", "path", meta.Path, "error", err)
			continue
		}
		if file == nil {
			continue
		}

		raw, err := json.Marshal(file.Content)
		if err != nil {
			continue
		}

		docs = append(docs, loadedDoc{
			name:       meta.Name,
			path:       meta.Path,
			content:    file.Content,
			serialized: string(raw),
		})
	}

	return docs, nil
}

// resolveTitle picks a display title for a record: the collection's
// configured title field first (honoring localization), then generic title
// and name fields. Returns "" when nothing usable exists.
func resolveTitle(collection *schema.Collection, content map[string]any, defaultLocale string) string {
	if content == nil {
		return ""
	}

	for _, field := range []string{collection.TitleFieldName(), "title", "name"} {
		if value := localizedString(content, field, defaultLocale); value != "" {
			return value
		}
	}

	return ""
}

// localizedString extracts a string field that may be stored directly, as a
// per-locale map, or under the record's translations block. The default
// locale wins; any other locale is better than nothing.
func localizedString(content map[string]any, field string, defaultLocale string) string {
	switch value := content[field].(type) {
	case string:
		if value != "" {
			return value
		}
	case map[string]any:
		if s, ok := value[defaultLocale].(string); ok && s != "" {
			return s
		}
		for _, v := range value {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}

	translations, ok := content["translations"].(map[string]any)
	if !ok {
		return ""
	}

	if locale, ok := translations[defaultLocale].(map[string]any); ok {
		if s, ok := locale[field].(string); ok && s != "" {
			return s
		}
	}

	for _, v := range translations {
		if locale, ok := v.(map[string]any); ok {
			if s, ok := locale[field].(string); ok && s != "" {
				return s
			}
		}
	}

	return ""
}
