package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-git-cms/internal/backend"
	"go-git-cms/internal/model"
	"go-git-cms/internal/schema"
	"go-git-cms/internal/util"
)

// DefaultFolder routes an upload or move to the media root itself rather
// than a sub-folder.
const DefaultFolder = "default"

const mediaServePrefix = "/api/v1/media/serve/"

var imageFilePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)$`)

// MediaService owns media assets: uploads, serving, listing with orphan
// detection, soft deletion, and the move that rewrites every referencing
// document.
type MediaService struct {
	store  backend.Store
	schema *schema.Schema
	refs   ReferenceIndex
	trash  *TrashService
}

func NewMediaService(store backend.Store, s *schema.Schema, refs ReferenceIndex, trash *TrashService) *MediaService {
	return &MediaService{store: store, schema: s, refs: refs, trash: trash}
}

// Upload stores an image under the media root, or any other file under the
// private files root with a timestamped name. customName, when given,
// replaces the timestamped name but keeps the original extension.
func (s *MediaService) Upload(ctx context.Context, originalName string, folder string, customName string, data []byte) (model.UploadItem, error) {
	if len(data) == 0 {
		return model.UploadItem{}, fmt.Errorf("%w: empty upload", model.ErrInvalidInput)
	}

	safeName, err := util.SanitizeFilename(originalName)
	if err != nil {
		return model.UploadItem{}, err
	}

	detectedMIME := http.DetectContentType(data)
	isImage := strings.HasPrefix(detectedMIME, "image/") || strings.HasSuffix(strings.ToLower(safeName), ".svg")

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), safeName)
	if customName != "" {
		custom, err := util.SanitizeFilename(customName)
		if err != nil {
			return model.UploadItem{}, err
		}
		ext := path.Ext(safeName)
		if ext != "" && !strings.HasSuffix(custom, ext) {
			custom += ext
		}
		filename = custom
	}

	var target string
	if isImage {
		target = s.mediaPath(folder, filename)
	} else {
		// Non-image uploads are stored privately and only served through
		// the authenticated endpoint.
		target = s.schema.FilesRoot + "/" + filename
	}

	if _, err := s.store.PutRaw(ctx, target, data, ""); err != nil {
		return model.UploadItem{}, err
	}

	item := model.UploadItem{
		Name:     filename,
		Path:     target,
		URL:      s.serveURL(target),
		Size:     int64(len(data)),
		MimeType: detectedMIME,
	}

	if isImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			item.Width = cfg.Width
			item.Height = cfg.Height
		}
	}

	return item, nil
}

// List returns every image under the media root with its serve URL and
// orphan flag.
func (s *MediaService) List(ctx context.Context) ([]model.MediaFile, error) {
	files, err := s.store.ListTree(ctx, s.schema.MediaRoot)
	if err != nil {
		return nil, err
	}

	images := make([]model.FileMeta, 0, len(files))
	for _, file := range files {
		if imageFilePattern.MatchString(file.Name) {
			images = append(images, file)
		}
	}

	orphaned, err := s.refs.Orphans(ctx, images)
	if err != nil {
		return nil, err
	}

	out := make([]model.MediaFile, 0, len(images))
	for _, file := range images {
		_, isOrphan := orphaned[file.Path]
		out = append(out, model.MediaFile{
			FileMeta: file,
			URL:      s.serveURL(file.Path),
			Orphaned: isOrphan,
		})
	}

	return out, nil
}

// Serve fetches raw bytes for the authenticated serve endpoint. relPath is
// relative to the media root.
func (s *MediaService) Serve(ctx context.Context, relPath string) ([]byte, string, error) {
	relPath = strings.TrimPrefix(path.Clean("/"+relPath), "/")
	if relPath == "" || strings.HasPrefix(relPath, "..") {
		return nil, "", fmt.Errorf("%w: bad media path", model.ErrInvalidInput)
	}

	data, _, err := s.store.GetRaw(ctx, s.schema.MediaRoot+"/"+relPath)
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(path.Ext(relPath))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}

// ServeFile fetches a non-image upload from the private files root. Unlike
// media these are only reachable through the authenticated endpoint.
func (s *MediaService) ServeFile(ctx context.Context, name string) ([]byte, string, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" || strings.Contains(name, "/") {
		return nil, "", fmt.Errorf("%w: bad file name", model.ErrInvalidInput)
	}

	data, _, err := s.store.GetRaw(ctx, s.schema.FilesRoot+"/"+name)
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}

// Delete soft-deletes a media asset into the trash namespace.
func (s *MediaService) Delete(ctx context.Context, assetPath string) (model.TrashEntry, error) {
	if !strings.HasPrefix(assetPath, s.schema.MediaRoot+"/") {
		return model.TrashEntry{}, fmt.Errorf("%w: %q is outside the media root", model.ErrInvalidInput, assetPath)
	}

	meta, err := s.store.Stat(ctx, assetPath)
	if err != nil {
		return model.TrashEntry{}, err
	}
	if meta == nil {
		return model.TrashEntry{}, fmt.Errorf("%s: %w", assetPath, model.ErrNotFound)
	}

	return s.trash.SoftDelete(ctx, assetPath, meta.Version, model.TrashKindMedia)
}

// References lists the documents that mention the filename.
func (s *MediaService) References(ctx context.Context, filename string) ([]model.MediaReference, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", model.ErrInvalidInput)
	}

	return s.refs.References(ctx, filename)
}

// Move relocates an asset to a new folder and rewrites every document that
// referenced its old URL. Ordering is deliberate: the copy lands first, then
// references are rewritten, and the original is deleted last, so an
// interruption leaves the asset duplicated rather than referenced-but-missing.
// Per-document rewrite failures are logged and skipped; there is no rollback.
func (s *MediaService) Move(ctx context.Context, currentPath string, newFolder string) (model.MoveResult, error) {
	filename := baseName(currentPath)
	if filename == "" || !strings.HasPrefix(currentPath, s.schema.MediaRoot+"/") {
		return model.MoveResult{}, fmt.Errorf("%w: invalid media path %q", model.ErrInvalidInput, currentPath)
	}

	newPath := s.mediaPath(newFolder, filename)
	if newPath == currentPath {
		return model.MoveResult{}, model.ErrSamePath
	}

	data, version, err := s.store.GetRaw(ctx, currentPath)
	if err != nil {
		return model.MoveResult{}, err
	}

	if _, err := s.store.PutRaw(ctx, newPath, data, ""); err != nil {
		return model.MoveResult{}, err
	}

	// Documents reference the served URL, which is the repository path with
	// the public prefix stripped.
	oldFragment := strings.TrimPrefix(currentPath, s.schema.PublicPrefix)
	newFragment := strings.TrimPrefix(newPath, s.schema.PublicPrefix)

	updated := s.rewriteReferences(ctx, oldFragment, newFragment)

	if err := s.store.Delete(ctx, currentPath, version); err != nil {
		return model.MoveResult{}, err
	}

	return model.MoveResult{NewPath: newPath, UpdatedFiles: updated}, nil
}

// rewriteReferences walks every collection document sequentially (rate
// limits rule out fan-out here) and substitutes the URL fragment wherever the
// serialized record contains it.
func (s *MediaService) rewriteReferences(ctx context.Context, oldFragment string, newFragment string) []string {
	updated := []string{}

	for _, collection := range s.schema.Collections {
		files, err := s.store.ListTree(ctx, collection.Path)
		if err != nil {
			slog.Error("collection listing failed during reference rewrite", "collection", collection.Slug, "error", err)
			continue
		}

		for _, meta := range filterJSON(files) {
			file, err := s.store.GetFile(ctx, meta.Path)
			if err != nil || file == nil {
				if err != nil {
					slog.Error("document fetch failed during reference rewrite", "path", meta.Path, "error", err)
				}
				continue
			}

			raw, err := json.Marshal(file.Content)
			if err != nil {
				continue
			}
			serialized := string(raw)
			if !strings.Contains(serialized, oldFragment) {
				continue
			}

			var rewritten map[string]any
			if err := json.Unmarshal([]byte(strings.ReplaceAll(serialized, oldFragment, newFragment)), &rewritten); err != nil {
				slog.Error("rewritten document failed to parse", "path", meta.Path, "error", err)
				continue
			}

			if _, err := s.store.PutJSON(ctx, meta.Path, rewritten, file.Version); err != nil {
				slog.Error("document rewrite failed", "path", meta.Path, "error", err)
				continue
			}

			updated = append(updated, meta.Path)
		}
	}

	return updated
}

func (s *MediaService) mediaPath(folder string, filename string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" || folder == DefaultFolder {
		return s.schema.MediaRoot + "/" + filename
	}

	return s.schema.MediaRoot + "/" + folder + "/" + filename
}

func (s *MediaService) serveURL(repoPath string) string {
	if strings.HasPrefix(repoPath, s.schema.MediaRoot+"/") {
		return mediaServePrefix + strings.TrimPrefix(repoPath, s.schema.MediaRoot+"/")
	}

	return "/api/v1/files/" + baseName(repoPath)
}
