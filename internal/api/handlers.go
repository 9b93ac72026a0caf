package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dossier/internal/apperr"
	"github.com/starford/dossier/internal/content"
	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/related"
	"github.com/starford/dossier/internal/search"
)

// MaxQueryLength bounds the q parameter, in runes, after trimming.
const MaxQueryLength = 100

// DefaultMaxResults is used when no result cap is configured.
const DefaultMaxResults = 20

const relatedSuffix = "/related"

// Content is the read side the handlers depend on.
type Content interface {
	List(ctx context.Context, f content.NoteFilter) ([]models.NoteListItem, error)
	Note(ctx context.Context, slug string) (*content.NoteDetail, error)
	Related(ctx context.Context, slug string, limit int) ([]related.Scored, error)
	Posts(ctx context.Context) ([]models.BlogPost, error)
	Search(ctx context.Context, query, typ string, limit int) ([]search.Result, error)
	Analyze(query string) search.Analysis
}

// Handler holds API route handlers.
type Handler struct {
	svc        Content
	maxResults int
}

// NewHandler creates a new Handler.
func NewHandler(svc Content, maxResults int) *Handler {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Handler{svc: svc, maxResults: maxResults}
}

type searchParams struct {
	Query string `json:"q"`
	Type  string `json:"type"`
	Limit int    `json:"limit"`
}

func (p searchParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Query,
			validation.Required.Error("query parameter 'q' is required"),
			validation.RuneLength(1, MaxQueryLength)),
		validation.Field(&p.Type, validation.In(models.EntryTypeNote, models.EntryTypeMedium)),
		validation.Field(&p.Limit, validation.Min(0)),
	)
}

func parseSearchParams(r *http.Request) (searchParams, error) {
	q := r.URL.Query()
	p := searchParams{
		Query: strings.TrimSpace(q.Get("q")),
		Type:  q.Get("type"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, errors.New("limit: must be an integer")
		}
		p.Limit = n
	}
	return p, p.Validate()
}

// notePath extracts the note slug from the URL (everything after /api/notes/).
// Supports encoded slashes (e.g. red-team%2Frecon).
func notePath(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Search handles GET /api/search.
//
//	@Summary		Rank notes and blog posts against a free text query
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query (1-100 characters)"
//	@Param			type	query		string	false	"Entry type"	Enums(notes, medium)
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{array}		SearchResult
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	p, err := parseSearchParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	limit := p.Limit
	if limit == 0 || limit > h.maxResults {
		limit = h.maxResults
	}
	results, err := h.svc.Search(r.Context(), p.Query, p.Type, limit)
	if err != nil {
		internalError(w, "search", err, slog.String("query", p.Query))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Analyze handles GET /api/search/analyze.
//
//	@Summary		Show the keywords and intent detected in a query
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search query (1-100 characters)"
//	@Success		200	{object}	QueryAnalysis
//	@Failure		400	{object}	errResponse
//	@Router			/search/analyze [get]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	p, err := parseSearchParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Analyze(p.Query))
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, most recent first
//	@Tags			notes
//	@Produce		json
//	@Param			category	query		string	false	"Filter by category"
//	@Param			tag			query		string	false	"Filter by tag"
//	@Success		200			{object}	NoteListResponse
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), content.NoteFilter{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
	})
	if err != nil {
		internalError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/*. Paths ending in /related are served by
// Related.
//
//	@Summary		Get a single note by slug
//	@Tags			notes
//	@Produce		json
//	@Param			slug	path		string	true	"Note slug"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Router			/notes/{slug} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	slug := notePath(r)
	if s, ok := strings.CutSuffix(slug, relatedSuffix); ok && s != "" {
		h.related(w, r, s)
		return
	}
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	note, err := h.svc.Note(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		internalError(w, "get note", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// related handles GET /api/notes/{slug}/related.
//
//	@Summary		Notes related to a note by tags, category and recency
//	@Tags			notes
//	@Produce		json
//	@Param			slug	path		string	true	"Note slug"
//	@Param			limit	query		int		false	"Max related notes"
//	@Success		200		{object}	RelatedResponse
//	@Failure		404		{object}	errResponse
//	@Router			/notes/{slug}/related [get]
func (h *Handler) related(w http.ResponseWriter, r *http.Request, slug string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	scored, err := h.svc.Related(r.Context(), slug, limit)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		internalError(w, "related notes", err, slog.String("slug", slug))
		return
	}
	out := make([]RelatedNote, 0, len(scored))
	for _, s := range scored {
		out = append(out, RelatedNote{NoteListItem: s.Note.ListItem(), Score: s.Score, SharedTags: s.SharedTags})
	}
	writeJSON(w, http.StatusOK, RelatedResponse{Slug: slug, Related: out})
}

// ListPosts handles GET /api/posts. A feed outage is reported in the body
// with an empty list rather than as an error status.
//
//	@Summary		List blog posts
//	@Tags			blog
//	@Produce		json
//	@Success		200	{object}	PostsResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Posts(r.Context())
	if err != nil {
		slog.Warn("blog posts unavailable", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, PostsResponse{Posts: []models.BlogPost{}, Error: "blog feed unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, PostsResponse{Posts: posts})
}
