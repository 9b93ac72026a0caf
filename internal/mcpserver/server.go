// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note and search tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dossier/internal/apperr"
	"github.com/starford/dossier/internal/content"
	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/related"
	"github.com/starford/dossier/internal/search"
)

// DefaultSearchLimit caps search_content results when no limit is given.
const DefaultSearchLimit = 10

// Content is the read side the tools depend on.
type Content interface {
	List(ctx context.Context, f content.NoteFilter) ([]models.NoteListItem, error)
	Note(ctx context.Context, slug string) (*content.NoteDetail, error)
	Related(ctx context.Context, slug string, limit int) ([]related.Scored, error)
	Search(ctx context.Context, query, typ string, limit int) ([]search.Result, error)
	Analyze(query string) search.Analysis
}

// Server wraps the MCP server with the dossier tools.
type Server struct {
	mcp *server.MCPServer
	svc Content
}

// New creates a new MCP server with all tools registered.
func New(svc Content, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dossier",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Rank notes and blog posts against a free text query. "+
			"Security terms and their synonyms (e.g. pentest, xss, ad) are recognised."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithString("type", mcp.Description("Restrict to one entry type: notes or medium")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by slug, returning its Markdown with image paths rewritten."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Note slug (e.g. red-team/recon)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("related_notes",
		mcp.WithDescription("Find notes related to a note by shared tags, category and recency."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Note slug")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of related notes")),
	), s.relatedNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List note slugs and titles, optionally filtered."),
		mcp.WithString("category", mcp.Description("Optional category filter")),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("analyze_query",
		mcp.WithDescription("Show which dictionary keywords and which intent a query is read as."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Query to analyze")),
	), s.analyzeQuery)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns how notes are written and how missing fields are derived."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format",
			mcp.WithResourceDescription("Markdown note format and derived fields."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio serves MCP on stdin/stdout until ctx is cancelled or stdin
// closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads requests from in and writes responses to out. Cancelling ctx
// and reaching the end of in both count as a clean stop.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err == nil || errors.Is(err, io.EOF) || ctx.Err() != nil {
		return nil
	}
	return err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func notFoundOr(err error, slug string) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}
	typ := req.GetString("type", "")
	if typ != "" && typ != models.EntryTypeNote && typ != models.EntryTypeMedium {
		return mcp.NewToolResultError(fmt.Sprintf("unknown type %q", typ)), nil
	}
	limit := req.GetInt("limit", DefaultSearchLimit)
	results, err := s.svc.Search(ctx, query, typ, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no results"), nil
	}
	return jsonResult(results)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Note(ctx, slug)
	if err != nil {
		return notFoundOr(err, slug), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", note.Title)
	fmt.Fprintf(&b, "category: %s\n", note.Category)
	if len(note.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(note.Tags, ", "))
	}
	fmt.Fprintf(&b, "read time: %d min\n\n", note.ReadTime)
	b.WriteString(note.Content)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) relatedNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scored, err := s.svc.Related(ctx, slug, req.GetInt("limit", related.DefaultLimit))
	if err != nil {
		return notFoundOr(err, slug), nil
	}
	if len(scored) == 0 {
		return mcp.NewToolResultText("no related notes found"), nil
	}
	lines := make([]string, 0, len(scored))
	for _, sc := range scored {
		lines = append(lines, fmt.Sprintf("%s\t%.2f\t%s", sc.Note.Slug, sc.Score, sc.Note.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx, content.NoteFilter{
		Category: req.GetString("category", ""),
		Tag:      req.GetString("tag", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.Slug+"\t"+it.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) analyzeQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Analyze(query))
}

func (s *Server) getNoteFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
