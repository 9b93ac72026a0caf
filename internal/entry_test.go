package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/searchindex"
	"github.com/starford/dossier/internal/testutil"
)

func readArtifact(t *testing.T, path string) []models.SearchIndexEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	entries, err := searchindex.Decode(f)
	if err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	return entries
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir, _ := testutil.TestNotes(t, testutil.Fixture)
	cfg := NewDefaultConfig()
	cfg.Notes.Path = dir
	cfg.Index.Output = filepath.Join(t.TempDir(), "public", searchindex.DefaultArtifactName)
	return cfg
}

func TestBuildIndex_WritesArtifact(t *testing.T) {
	cfg := testConfig(t)

	if err := BuildIndex(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	entries := readArtifact(t, cfg.Index.Output)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for _, e := range entries {
		if e.Type != models.EntryTypeNote || e.URL == "" {
			t.Fatalf("bad entry %+v", e)
		}
	}
}

func TestBuildIndex_RequiresConfig(t *testing.T) {
	if err := BuildIndex(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestBuildIndex_SeedsEmptyRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Path = filepath.Join(t.TempDir(), "notes")
	cfg.Notes.SeedExamples = true
	cfg.Index.Output = filepath.Join(t.TempDir(), searchindex.DefaultArtifactName)

	if err := BuildIndex(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	entries := readArtifact(t, cfg.Index.Output)
	if len(entries) == 0 {
		t.Fatal("seeded notes were not indexed")
	}
}

func TestReadyHandler(t *testing.T) {
	app, err := newApplication([]Option{WithConfig(testConfig(t)), WithLogOutput(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := app.setup()
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	readyHandler(rt)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Fatalf("body = %s, %v", w.Body.String(), err)
	}
}
