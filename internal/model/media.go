package model

// MediaFile is one listed media asset, enriched with its serve URL and
// whether any content document still references it.
type MediaFile struct {
	FileMeta
	URL      string `json:"url"`
	Orphaned bool   `json:"orphaned"`
}

// MediaReference points at a content document that mentions a media file.
type MediaReference struct {
	Path       string `json:"path"`
	Title      string `json:"title"`
	Collection string `json:"collection"`
}

// MoveResult reports a media move and every document rewritten because it
// referenced the old location.
type MoveResult struct {
	NewPath      string   `json:"newPath"`
	UpdatedFiles []string `json:"updatedFiles"`
}

// UploadItem reports a completed upload.
type UploadItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
