package mcpserver

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dossier/internal/content"
	"github.com/starford/dossier/internal/notes"
	"github.com/starford/dossier/internal/search"
	"github.com/starford/dossier/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestNotes(t, testutil.Fixture)
	scanner, err := notes.NewScanner(store, nil, testutil.QuietLogger())
	if err != nil {
		t.Fatal(err)
	}
	svc := content.NewService(scanner, search.NewEngine(search.DefaultDictionary()),
		content.WithLogger(testutil.QuietLogger()))
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so handlers are invoked directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "search_content":
		result, err = srv.searchContent(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "related_notes":
		result, err = srv.relatedNotes(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "analyze_query":
		result, err = srv.analyzeQuery(ctx, req)
	case "get_note_format":
		result, err = srv.getNoteFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchContent(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_content", map[string]any{"query": "pentest", "limit": 1})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "Penetration Testing Methodology") {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_content", map[string]any{"query": "gardening"})
	if resultText(r) != "no results" {
		t.Errorf("empty search = %q", resultText(r))
	}
}

func TestSearchContent_Invalid(t *testing.T) {
	srv := testServer(t)
	for _, args := range []map[string]any{
		{},
		{"query": "   "},
		{"query": "nmap", "type": "video"},
	} {
		if r := callTool(t, srv, "search_content", args); !r.IsError {
			t.Errorf("args %v: expected error", args)
		}
	}
}

func TestReadNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_note", map[string]any{"slug": "red-team/recon-with-nmap"})
	text := resultText(r)
	if !strings.HasPrefix(text, "# Recon with Nmap") || !strings.Contains(text, "category: Red Team") {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]any{"slug": "nope"})
	if !r.IsError || resultText(r) != "not found: nope" {
		t.Errorf("missing note result = %q", resultText(r))
	}
}

func TestRelatedNotes(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "related_notes", map[string]any{"slug": "red-team/recon-with-nmap"})
	if !strings.HasPrefix(resultText(r), "red-team/penetration-testing-methodology\t") {
		t.Errorf("related = %q", resultText(r))
	}
}

func TestListNotes(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_notes", map[string]any{})
	if lines := strings.Split(resultText(r), "\n"); len(lines) != 3 {
		t.Errorf("list = %q", resultText(r))
	}

	r = callTool(t, srv, "list_notes", map[string]any{"tag": "siem"})
	if resultText(r) != "blue-team/siem-alert-triage\tSIEM Alert Triage" {
		t.Errorf("filtered list = %q", resultText(r))
	}
}

func TestAnalyzeQuery(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "analyze_query", map[string]any{"query": "what is xss"})
	text := resultText(r)
	if !strings.Contains(text, `"cross-site scripting"`) || !strings.Contains(text, `"educational"`) {
		t.Errorf("analysis = %q", text)
	}
}

func TestNoteFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note_format", nil)
	if !strings.Contains(resultText(r), "/images/notes/<slug>/") {
		t.Errorf("format = %q", resultText(r))
	}
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := testServer(t)
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, in, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_StopsAtEndOfInput(t *testing.T) {
	srv := testServer(t)
	if err := srv.Serve(context.Background(), strings.NewReader(""), io.Discard); err != nil {
		t.Fatalf("Serve = %v, want nil", err)
	}
}
