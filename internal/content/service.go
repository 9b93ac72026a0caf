// Package content is the read side of the site: notes, blog posts, the merged
// search index and queries over it, each behind a TTL cache.
package content

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/dossier/internal/apperr"
	"github.com/starford/dossier/internal/cache"
	"github.com/starford/dossier/internal/checksum"
	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/related"
	"github.com/starford/dossier/internal/search"
	"github.com/starford/dossier/internal/searchindex"
)

const (
	notesKey    = "notes"
	postsKey    = "posts"
	indexKey    = "index"
	artifactKey = "artifact"
)

// NoteScanner reads every note from the notes root.
type NoteScanner interface {
	Scan(ctx context.Context) ([]models.Note, error)
}

// PostFetcher fetches the blog posts of a handle.
type PostFetcher interface {
	FetchPosts(ctx context.Context, handle string) ([]models.BlogPost, error)
}

// NoteDetail is a note with its related notes.
type NoteDetail struct {
	models.Note
	Related []models.NoteListItem `json:"related"`
}

// NoteFilter narrows a note listing. Empty fields match everything.
type NoteFilter struct {
	Category string
	Tag      string
}

// Artifact is the encoded search index with its content hash.
type Artifact struct {
	Data []byte
	ETag string
}

// Service answers every read of the site. It is safe for concurrent use.
type Service struct {
	scanner NoteScanner
	blog    PostFetcher
	handle  string
	engine  *search.Engine
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	notes    *cache.TTL[[]models.Note]
	posts    *cache.TTL[[]models.BlogPost]
	index    *cache.TTL[[]models.SearchIndexEntry]
	artifact *cache.TTL[Artifact]
	results  *cache.TTL[[]search.Result]
}

// Option configures a Service.
type Option func(*Service)

// WithBlog enables blog posts fetched by f for handle.
func WithBlog(f PostFetcher, handle string) Option {
	return func(s *Service) {
		s.blog = f
		s.handle = handle
	}
}

// WithTTL sets how long cached values stay fresh.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for caches and related-note
// recency.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service over scanner using engine for queries.
func NewService(scanner NoteScanner, engine *search.Engine, opts ...Option) *Service {
	s := &Service{
		scanner: scanner,
		engine:  engine,
		ttl:     cache.DefaultTTL,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	clock := cache.WithClock(s.now)
	s.notes = cache.New[[]models.Note](clock)
	s.posts = cache.New[[]models.BlogPost](clock)
	s.index = cache.New[[]models.SearchIndexEntry](clock)
	s.artifact = cache.New[Artifact](clock)
	s.results = cache.New[[]search.Result](clock)
	return s
}

// Engine returns the search engine used by the service.
func (s *Service) Engine() *search.Engine {
	return s.engine
}

// BlogEnabled reports whether posts are fetched at all.
func (s *Service) BlogEnabled() bool {
	return s.blog != nil && s.handle != ""
}

// Notes returns every note, scanning the notes root when the cache is stale.
func (s *Service) Notes(ctx context.Context) ([]models.Note, error) {
	return s.notes.GetOrRefresh(ctx, notesKey, s.ttl, s.scanner.Scan)
}

// List returns list items of the notes matching f, most recently modified
// first.
func (s *Service) List(ctx context.Context, f NoteFilter) ([]models.NoteListItem, error) {
	notes, err := s.Notes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.NoteListItem, 0, len(notes))
	for _, n := range notes {
		if f.Category != "" && !strings.EqualFold(n.Category, f.Category) {
			continue
		}
		if f.Tag != "" && !hasTag(n.Tags, f.Tag) {
			continue
		}
		out = append(out, n.ListItem())
	}
	slices.SortStableFunc(out, func(a, b models.NoteListItem) int {
		if c := b.LastModified.Compare(a.LastModified); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out, nil
}

// Note returns the note with slug and its related notes.
func (s *Service) Note(ctx context.Context, slug string) (*NoteDetail, error) {
	notes, err := s.Notes(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := find(notes, slug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	rel := related.Rank(related.TargetOf(n), notes, related.DefaultLimit, s.now())
	items := make([]models.NoteListItem, 0, len(rel))
	for _, r := range rel {
		items = append(items, r.ListItem())
	}
	return &NoteDetail{Note: n, Related: items}, nil
}

// Related scores the notes related to slug.
func (s *Service) Related(ctx context.Context, slug string, limit int) ([]related.Scored, error) {
	notes, err := s.Notes(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := find(notes, slug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return related.RankScored(related.TargetOf(n), notes, limit, s.now()), nil
}

// Posts returns the blog posts. Fetch failures are returned so callers can
// choose how to degrade. With the blog disabled the list is empty.
func (s *Service) Posts(ctx context.Context) ([]models.BlogPost, error) {
	if !s.BlogEnabled() {
		return []models.BlogPost{}, nil
	}
	return s.posts.GetOrRefresh(ctx, postsKey, s.ttl, func(ctx context.Context) ([]models.BlogPost, error) {
		return s.blog.FetchPosts(ctx, s.handle)
	})
}

// Index returns the merged search index. A blog outage leaves only notes in
// it.
func (s *Service) Index(ctx context.Context) ([]models.SearchIndexEntry, error) {
	return s.index.GetOrRefresh(ctx, indexKey, s.ttl, func(ctx context.Context) ([]models.SearchIndexEntry, error) {
		var posts searchindex.PostsSource
		if s.BlogEnabled() {
			posts = s
		}
		return searchindex.NewBuilder(s, posts, s.logger).Build(ctx)
	})
}

// Artifact returns the encoded index and its ETag.
func (s *Service) Artifact(ctx context.Context) (Artifact, error) {
	return s.artifact.GetOrRefresh(ctx, artifactKey, s.ttl, func(ctx context.Context) (Artifact, error) {
		entries, err := s.Index(ctx)
		if err != nil {
			return Artifact{}, err
		}
		data, err := searchindex.Encode(entries)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Data: data, ETag: `"` + checksum.Sum(data) + `"`}, nil
	})
}

// Search runs query against the index. Results of typ only are kept when
// typ is set; limit caps the list when positive.
func (s *Service) Search(ctx context.Context, query, typ string, limit int) ([]search.Result, error) {
	q := search.Sanitize(query)
	if q == "" {
		return []search.Result{}, nil
	}
	all, err := s.results.GetOrRefresh(ctx, strings.ToLower(q), s.ttl, func(ctx context.Context) ([]search.Result, error) {
		entries, err := s.Index(ctx)
		if err != nil {
			return nil, err
		}
		return s.engine.Search(q, entries, 0), nil
	})
	if err != nil {
		return nil, err
	}
	out := search.FilterByType(all, typ)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return slices.Clone(out), nil
}

// Analyze explains how query is understood.
func (s *Service) Analyze(query string) search.Analysis {
	return s.engine.Analyze(query)
}

// Invalidate drops every cached value so the next read rebuilds it.
func (s *Service) Invalidate() {
	s.notes.Purge()
	s.posts.Purge()
	s.index.Purge()
	s.artifact.Purge()
	s.results.Purge()
	s.logger.Debug("content: caches invalidated")
}

// Stats summarizes what is currently cached, for readiness reporting.
func (s *Service) Stats() map[string]string {
	return map[string]string{
		"notes_cached":   strconv.FormatBool(s.notes.Len() > 0),
		"index_cached":   strconv.FormatBool(s.index.Len() > 0),
		"cached_queries": strconv.Itoa(s.results.Len()),
	}
}

func find(notes []models.Note, slug string) (models.Note, bool) {
	slug = strings.Trim(slug, "/")
	for _, n := range notes {
		if n.Slug == slug {
			return n, true
		}
	}
	return models.Note{}, false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
