package model

// Record statuses. Canonical records without an explicit status field are
// treated as published; legacy records inherit the status of the folder they
// were found in.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// StoredFile is the handle returned by any backend read of a JSON file.
// Version is the backend's content hash for the revision that was read and
// must accompany any conditioned update or delete of that file.
type StoredFile struct {
	Content map[string]any
	Version string
}

// FileMeta describes one file from a directory or tree listing.
type FileMeta struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Version string `json:"version"`
	Size    int64  `json:"size"`
}

// RecordMeta is the _meta block stamped onto every content record.
type RecordMeta struct {
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	CreatedBy string `json:"createdBy,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// ResolvedRecord is a content record together with where it was found and the
// status inferred from its location when the record itself carries none.
type ResolvedRecord struct {
	Content map[string]any
	Path    string
	Version string
	Status  string
}

// ListedRecord is one entry of a collection listing.
type ListedRecord struct {
	FileMeta
	Title  string `json:"title,omitempty"`
	Status string `json:"status"`
}

// WriteResult reports the outcome of a record write.
type WriteResult struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Created bool   `json:"created"`
}
