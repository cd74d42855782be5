package service

import (
	"context"
	"path"
	"regexp"
	"strings"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
	"go-git-cms/internal/schema"
	"go-git-cms/internal/util"
)

var mediaFilePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg|pdf|mp4)$`)

// StatsService computes the dashboard aggregates. Every call re-reads the
// backend; nothing is cached between requests.
type StatsService struct {
	store  backend.Store
	schema *schema.Schema
	trash  *TrashService
}

func NewStatsService(store backend.Store, s *schema.Schema, trash *TrashService) *StatsService {
	return &StatsService{store: store, schema: s, trash: trash}
}

// System reports backend rate-limit headroom and repository size.
func (s *StatsService) System(ctx context.Context) (model.SystemStats, error) {
	rateLimit, err := s.store.RateLimit(ctx)
	if err != nil {
		return model.SystemStats{}, err
	}

	repo, err := s.store.RepoDetails(ctx)
	if err != nil {
		return model.SystemStats{}, err
	}

	return model.SystemStats{RateLimit: rateLimit, Repo: repo}, nil
}

// Collections reports per-collection counts, status breakdowns and last
// update times.
func (s *StatsService) Collections(ctx context.Context) ([]model.CollectionStats, error) {
	stats := make([]model.CollectionStats, 0, len(s.schema.Collections))

	for _, collection := range s.schema.Collections {
		files, err := s.store.List(ctx, collection.Path)
		if err != nil {
			return nil, err
		}
		jsonFiles := filterJSON(files)

		lastUpdated, err := s.store.LastCommitDate(ctx, collection.Path)
		if err != nil {
			return nil, err
		}

		breakdown := map[string]int{}
		if collection.HasStatusField() {
			for _, meta := range jsonFiles {
				file, err := s.store.GetFile(ctx, meta.Path)
				if err != nil || file == nil {
					continue
				}
				status, _ := file.Content["status"].(string)
				if status == "" {
					status = model.StatusPublished
				}
				breakdown[capitalize(status)]++
			}
		} else if len(jsonFiles) > 0 {
			breakdown[capitalize(model.StatusPublished)] = len(jsonFiles)
		}

		collectionType := collection.Type
		if collectionType == "" {
			collectionType = schema.TypeCollection
		}

		stats = append(stats, model.CollectionStats{
			Slug:            collection.Slug,
			Label:           collection.Label,
			Type:            collectionType,
			Count:           len(jsonFiles),
			LastUpdated:     lastUpdated,
			StatusBreakdown: breakdown,
		})
	}

	return stats, nil
}

// Localization reports translation completeness per locale. A record counts
// as translated for a non-default locale when its translations block holds a
// non-empty value for every required localized field.
func (s *StatsService) Localization(ctx context.Context) ([]model.LocaleStats, error) {
	type loadedCollection struct {
		collection schema.Collection
		contents   []map[string]any
	}

	loaded := make([]loadedCollection, 0, len(s.schema.Collections))
	for _, collection := range s.schema.Collections {
		files, err := s.store.List(ctx, collection.Path)
		if err != nil {
			return nil, err
		}

		entry := loadedCollection{collection: collection}
		for _, meta := range filterJSON(files) {
			file, err := s.store.GetFile(ctx, meta.Path)
			if err != nil || file == nil {
				continue
			}
			entry.contents = append(entry.contents, file.Content)
		}
		loaded = append(loaded, entry)
	}

	defaultLocale := s.schema.DefaultLocale()
	out := make([]model.LocaleStats, 0, len(s.schema.I18N.Locales))

	for _, locale := range s.schema.I18N.Locales {
		localeStats := model.LocaleStats{Locale: locale}

		for _, entry := range loaded {
			collectionStats := model.LocaleCollectionStats{
				Slug:  entry.collection.Slug,
				Label: entry.collection.Label,
			}

			localized := entry.collection.LocalizedFields()
			if len(localized) == 0 {
				// Nothing to translate counts as fully translated.
				collectionStats.Total = len(entry.contents)
				collectionStats.Translated = len(entry.contents)
			} else {
				for _, content := range entry.contents {
					collectionStats.Total++
					if locale == defaultLocale || isTranslated(content, locale, localized) {
						collectionStats.Translated++
					}
				}
			}

			collectionStats.Percentage = percentage(collectionStats.Translated, collectionStats.Total)
			localeStats.Total += collectionStats.Total
			localeStats.Translated += collectionStats.Translated
			localeStats.Collections = append(localeStats.Collections, collectionStats)
		}

		localeStats.Percentage = percentage(localeStats.Translated, localeStats.Total)
		out = append(out, localeStats)
	}

	return out, nil
}

// Media reports library size, type distribution and current trash volume.
func (s *StatsService) Media(ctx context.Context) (model.MediaStats, error) {
	files, err := s.store.ListTree(ctx, s.schema.MediaRoot)
	if err != nil {
		return model.MediaStats{}, err
	}

	stats := model.MediaStats{TypeDistribution: map[string]int{}}
	for _, file := range files {
		if !mediaFilePattern.MatchString(file.Name) {
			continue
		}
		stats.FileCount++
		stats.TotalSize += file.Size

		ext := strings.ToLower(strings.TrimPrefix(path.Ext(file.Name), "."))
		if ext == "" {
			ext = "unknown"
		}
		stats.TypeDistribution[ext]++
	}
	stats.TotalSizeHuman = util.HumanizeBytes(stats.TotalSize)

	trashEntries, err := s.trash.List(ctx)
	if err != nil {
		return model.MediaStats{}, err
	}
	stats.TrashCount = len(trashEntries)

	return stats, nil
}

// RecentActivity returns the latest commits touching the repository.
func (s *StatsService) RecentActivity(ctx context.Context, limit int) ([]model.Commit, error) {
	if limit <= 0 {
		limit = 5
	}

	return s.store.RecentCommits(ctx, limit, 1, "")
}

func isTranslated(content map[string]any, locale string, required []schema.Field) bool {
	translations, ok := content["translations"].(map[string]any)
	if !ok {
		return false
	}

	values, ok := translations[locale].(map[string]any)
	if !ok || len(values) == 0 {
		return false
	}

	for _, field := range required {
		if !field.Required {
			continue
		}
		raw, exists := values[field.Name]
		if !exists || raw == nil {
			return false
		}
		if value, ok := raw.(string); ok && value == "" {
			return false
		}
	}

	return true
}

func percentage(part int, total int) int {
	if total == 0 {
		return 0
	}

	return int(float64(part)/float64(total)*100 + 0.5)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
