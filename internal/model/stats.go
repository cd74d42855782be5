package model

// RateLimit is the backend's remaining API headroom.
type RateLimit struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// RepoDetails is a small slice of repository metadata used by the dashboard.
type RepoDetails struct {
	SizeKB     int `json:"size_kb"`
	OpenIssues int `json:"open_issues"`
}

// SystemStats aggregates backend-level health numbers.
type SystemStats struct {
	RateLimit RateLimit   `json:"rate_limit"`
	Repo      RepoDetails `json:"repo"`
}

// CollectionStats summarizes one collection for the dashboard.
type CollectionStats struct {
	Slug            string         `json:"slug"`
	Label           string         `json:"label"`
	Type            string         `json:"type"`
	Count           int            `json:"count"`
	LastUpdated     string         `json:"last_updated,omitempty"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
}

// LocaleCollectionStats is translation completeness of one collection for one
// locale.
type LocaleCollectionStats struct {
	Slug       string `json:"slug"`
	Label      string `json:"label"`
	Total      int    `json:"total"`
	Translated int    `json:"translated"`
	Percentage int    `json:"percentage"`
}

// LocaleStats is translation completeness across all collections for one
// locale.
type LocaleStats struct {
	Locale      string                  `json:"locale"`
	Total       int                     `json:"total"`
	Translated  int                     `json:"translated"`
	Percentage  int                     `json:"percentage"`
	Collections []LocaleCollectionStats `json:"collections"`
}

// MediaStats summarizes the media library.
type MediaStats struct {
	FileCount        int            `json:"file_count"`
	TotalSize        int64          `json:"total_size"`
	TotalSizeHuman   string         `json:"total_size_human"`
	TypeDistribution map[string]int `json:"type_distribution"`
	TrashCount       int            `json:"trash_count"`
}

// Commit is one entry of the repository's recent activity feed.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Email   string `json:"email,omitempty"`
	Date    string `json:"date"`
	URL     string `json:"url,omitempty"`
}
