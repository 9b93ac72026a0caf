package models

import "time"

// Entry types stored in SearchIndexEntry.Type.
const (
	EntryTypeNote   = "notes"
	EntryTypeMedium = "medium"
)

// SearchIndexEntry is the flat, source-agnostic record the search engine
// scores. A slice of these is the search-index.json artifact.
type SearchIndexEntry struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	URL           string     `json:"url"`
	Type          string     `json:"type"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category,omitempty"`
	LastModified  *time.Time `json:"lastModified,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Author        string     `json:"author,omitempty"`
}

// External reports whether the entry links outside the site.
func (e SearchIndexEntry) External() bool {
	return e.Type != EntryTypeNote
}
