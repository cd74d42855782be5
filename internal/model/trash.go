package model

// Trash entry kinds.
const (
	TrashKindCollectionItem = "collection_item"
	TrashKindMedia          = "media"
)

// TrashEnvelope is the wrapper persisted for every soft-deleted item. For
// collection items Data holds the original record; for media the binary is
// stored next to the envelope and Data stays empty.
type TrashEnvelope struct {
	OriginalPath string         `json:"originalPath"`
	DeletedAt    string         `json:"deletedAt"`
	Type         string         `json:"type"`
	Data         map[string]any `json:"data,omitempty"`
}

// TrashEntry is one listed trash item.
type TrashEntry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	OriginalPath string `json:"originalPath"`
	DeletedAt    string `json:"deletedAt"`
	Type         string `json:"type"`
}
