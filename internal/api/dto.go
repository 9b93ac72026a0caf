package api

import (
	"github.com/starford/dossier/internal/content"
	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/search"
)

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = content.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = models.NoteListItem

// SearchResult is a single ranked hit (aliased from the search engine).
type SearchResult = search.Result

// QueryAnalysis explains how a query is understood.
type QueryAnalysis = search.Analysis

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// RelatedNote is one related note with its score.
type RelatedNote struct {
	NoteListItem
	Score      float64 `json:"score" example:"5.8"`
	SharedTags int     `json:"sharedTags" example:"2"`
}

// RelatedResponse wraps related notes.
type RelatedResponse struct {
	Slug    string        `json:"slug" example:"red-team/recon" validate:"required"`
	Related []RelatedNote `json:"related" validate:"required"`
}

// PostsResponse wraps blog posts. Error is set when the feed could not be
// fetched; Posts is then empty.
type PostsResponse struct {
	Posts []models.BlogPost `json:"posts" validate:"required"`
	Error string            `json:"error,omitempty" example:"blog feed unavailable"`
}
