// Package api implements the read-only HTTP API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig tunes the API routes.
type RouterConfig struct {
	// MaxResults caps search results; requests may ask for fewer.
	MaxResults int
	// RequestsPerMinute per client IP; zero disables rate limiting.
	RequestsPerMinute int
	Burst             int
	// Events, if non-nil, is served at GET /events.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc Content, cfg RouterConfig) chi.Router {
	h := NewHandler(svc, cfg.MaxResults)

	r := chi.NewRouter()
	if cfg.RequestsPerMinute > 0 {
		r.Use(NewRateLimiter(cfg.RequestsPerMinute, cfg.Burst).Middleware)
	}

	// Search.
	r.Get("/search", h.Search)
	r.Get("/search/analyze", h.Analyze)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNote)

	// Blog.
	r.Get("/posts", h.ListPosts)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
