// Package searchindex merges notes and blog posts into the flat search index
// and reads and writes its JSON artifact.
package searchindex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/parser"
)

// NotesSource supplies the local notes.
type NotesSource interface {
	Notes(ctx context.Context) ([]models.Note, error)
}

// PostsSource supplies externally fetched blog posts.
type PostsSource interface {
	Posts(ctx context.Context) ([]models.BlogPost, error)
}

// Build projects notes and posts into index entries, notes first. Entries
// without a title or URL are dropped.
func Build(notes []models.Note, posts []models.BlogPost) []models.SearchIndexEntry {
	out := make([]models.SearchIndexEntry, 0, len(notes)+len(posts))
	for _, n := range notes {
		if e, ok := FromNote(n); ok {
			out = append(out, e)
		}
	}
	for _, p := range posts {
		if e, ok := FromPost(p); ok {
			out = append(out, e)
		}
	}
	return out
}

// FromNote projects a note into an index entry.
func FromNote(n models.Note) (models.SearchIndexEntry, bool) {
	if strings.TrimSpace(n.Title) == "" || n.Slug == "" {
		return models.SearchIndexEntry{}, false
	}
	content := parser.PlainText(n.Content)
	if content == "" {
		content = n.Excerpt
	}
	e := models.SearchIndexEntry{
		ID:       n.ID,
		Title:    n.Title,
		Content:  content,
		URL:      n.URL(),
		Type:     models.EntryTypeNote,
		Tags:     nonNil(n.Tags),
		Category: n.Category,
		Author:   n.Author,
	}
	if !n.LastModified.IsZero() {
		ts := n.LastModified.UTC()
		e.LastModified = &ts
	}
	return e, true
}

// FromPost projects a blog post into an index entry.
func FromPost(p models.BlogPost) (models.SearchIndexEntry, bool) {
	if strings.TrimSpace(p.Title) == "" || p.Link == "" {
		return models.SearchIndexEntry{}, false
	}
	id := p.GUID
	if id == "" {
		id = p.Link
	}
	e := models.SearchIndexEntry{
		ID:      id,
		Title:   p.Title,
		Content: p.Description,
		URL:     p.Link,
		Type:    models.EntryTypeMedium,
		Tags:    nonNil(p.Categories),
		Author:  p.Author,
	}
	if !p.PubDate.IsZero() {
		ts := p.PubDate.UTC()
		e.PublishedDate = &ts
	}
	return e, true
}

// Builder gathers both sources and merges them. A failing posts source only
// removes the posts from the result.
type Builder struct {
	notes  NotesSource
	posts  PostsSource
	logger *slog.Logger
}

// NewBuilder creates a Builder. posts may be nil for a notes-only index.
func NewBuilder(notes NotesSource, posts PostsSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{notes: notes, posts: posts, logger: logger}
}

// Build fetches notes and posts concurrently and merges them.
func (b *Builder) Build(ctx context.Context) ([]models.SearchIndexEntry, error) {
	var (
		notes []models.Note
		posts []models.BlogPost
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := b.notes.Notes(gCtx)
		if err != nil {
			return fmt.Errorf("searchindex: notes: %w", err)
		}
		notes = n
		return nil
	})
	if b.posts != nil {
		g.Go(func() error {
			p, err := b.posts.Posts(gCtx)
			if err != nil {
				b.logger.Warn("searchindex: blog posts unavailable, indexing notes only",
					slog.String("error", err.Error()))
				return nil
			}
			posts = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := Build(notes, posts)
	b.logger.Info("searchindex: built",
		slog.Int("notes", len(notes)),
		slog.Int("posts", len(posts)),
		slog.Int("entries", len(entries)))
	return entries, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
