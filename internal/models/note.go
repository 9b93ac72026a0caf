// Package models defines the domain types shared by the readers, the index
// builder and the search engine.
package models

import "time"

// Note represents one parsed Markdown file under the notes root.
type Note struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Path            string    `json:"path"`
	Title           string    `json:"title"`
	Author          string    `json:"author,omitempty"`
	Content         string    `json:"content"`
	Excerpt         string    `json:"excerpt"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	Subfolder       string    `json:"subfolder,omitempty"`
	LastModified    time.Time `json:"lastModified"`
	TableOfContents []TocNode `json:"tableOfContents"`
	Images          []string  `json:"images"`
	WordCount       int       `json:"wordCount"`
	ReadTime        int       `json:"readTime"`
}

// URL returns the internal route of the note.
func (n Note) URL() string {
	return "/notes/" + n.Slug
}

// TocNode is one heading in a note's table of contents.
type TocNode struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Level    int       `json:"level"`
	Anchor   string    `json:"anchor"`
	Children []TocNode `json:"children"`
}

// NoteListItem is the lightweight projection returned by list operations.
type NoteListItem struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	Subfolder    string    `json:"subfolder,omitempty"`
	LastModified time.Time `json:"lastModified"`
	ReadTime     int       `json:"readTime"`
}

// ListItem projects n into a NoteListItem.
func (n Note) ListItem() NoteListItem {
	return NoteListItem{
		ID:           n.ID,
		Slug:         n.Slug,
		Title:        n.Title,
		Excerpt:      n.Excerpt,
		Category:     n.Category,
		Tags:         n.Tags,
		Subfolder:    n.Subfolder,
		LastModified: n.LastModified,
		ReadTime:     n.ReadTime,
	}
}

// FileMetadata is what the storage layer reports for each note file.
type FileMetadata struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
