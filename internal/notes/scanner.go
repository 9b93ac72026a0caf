// Package notes reads the Markdown notes tree into fully derived Note values.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/dossier/internal/images"
	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/parser"
	"github.com/starford/dossier/internal/storage"
	"github.com/starford/dossier/internal/toc"
)

// Defaults applied while deriving notes.
const (
	DefaultCategory = "Uncategorized"
	ExcerptLength   = 200
)

// Scanner walks a notes root and derives Note values from every file.
type Scanner struct {
	store    storage.Provider
	excludes []string
	logger   *slog.Logger
}

// NewScanner creates a Scanner over store. Paths matching any of the
// doublestar patterns in excludes are skipped.
func NewScanner(store storage.Provider, excludes []string, logger *slog.Logger) (*Scanner, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("notes: invalid exclude pattern %q", pattern)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{store: store, excludes: excludes, logger: logger}, nil
}

// Scan reads every note under the root. Files that cannot be read or parsed
// are logged and skipped; only listing failures and cancellation are errors.
func (s *Scanner) Scan(ctx context.Context) ([]models.Note, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, fmt.Errorf("notes: scan: %w", err)
	}

	out := make([]models.Note, 0, len(metas))
	seen := make(map[string]string, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.excluded(m.Path) {
			s.logger.Debug("notes: excluded", slog.String("path", m.Path))
			continue
		}

		data, err := s.store.Read(m.Path)
		if err != nil {
			s.logger.Warn("notes: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		note, err := Derive(m, data)
		if err != nil {
			s.logger.Warn("notes: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if prev, dup := seen[note.Slug]; dup {
			s.logger.Warn("notes: duplicate slug skipped",
				slog.String("path", m.Path),
				slog.String("slug", note.Slug),
				slog.String("kept", prev))
			continue
		}
		seen[note.Slug] = m.Path
		out = append(out, note)
	}

	s.logger.Debug("notes: scan complete", slog.Int("files", len(metas)), slog.Int("notes", len(out)))
	return out, nil
}

func (s *Scanner) excluded(p string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// Derive builds a Note from a file's metadata and raw contents.
func Derive(meta models.FileMetadata, data []byte) (models.Note, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.Note{}, err
	}

	rel := meta.Path
	dir, file := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")
	stem := strings.TrimSuffix(file, path.Ext(file))

	slug := Slug(rel)
	md := res.Metadata

	title := md.Title
	if title == "" {
		title = parser.Humanize(stem)
	}
	category := md.Category
	if category == "" {
		category = defaultCategory(dir)
	}
	modified := md.Date
	if modified.IsZero() {
		modified = meta.ModTime
	}

	words := parser.WordCount(res.Body)
	return models.Note{
		ID:              strings.ReplaceAll(slug, "/", "-"),
		Slug:            slug,
		Path:            rel,
		Title:           title,
		Author:          md.Author,
		Content:         images.Rewrite(res.Body, slug),
		Excerpt:         parser.Excerpt(res.Body, ExcerptLength),
		Category:        category,
		Tags:            md.Tags,
		Subfolder:       dir,
		LastModified:    modified,
		TableOfContents: toc.Build(res.Body),
		Images:          images.Extract(res.Body),
		WordCount:       words,
		ReadTime:        parser.ReadTime(words),
	}, nil
}

// Slug derives the routing slug of a note from its slash-separated path
// relative to the notes root.
func Slug(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = parser.Slugify(seg)
	}
	return strings.Join(segments, "/")
}

func defaultCategory(dir string) string {
	if dir == "" {
		return DefaultCategory
	}
	top, _, _ := strings.Cut(dir, "/")
	if c := parser.Humanize(top); c != "" {
		return c
	}
	return DefaultCategory
}
