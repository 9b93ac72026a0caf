package searchindex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/dossier/internal/models"
)

type notesFunc func(context.Context) ([]models.Note, error)

func (f notesFunc) Notes(ctx context.Context) ([]models.Note, error) { return f(ctx) }

type postsFunc func(context.Context) ([]models.BlogPost, error)

func (f postsFunc) Posts(ctx context.Context) ([]models.BlogPost, error) { return f(ctx) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleNotes() []models.Note {
	return []models.Note{
		{ID: "getting-started", Slug: "getting-started", Title: "Getting Started", Content: "# Intro\n\nWelcome to **the** notes.", Tags: []string{"meta"}, Category: "General", LastModified: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "red-team-recon", Slug: "red-team/recon", Title: "Recon", Content: "", Excerpt: "Recon excerpt", Category: "Red Team"},
		{ID: "untitled", Slug: "untitled", Title: "  "},
	}
}

func samplePosts() []models.BlogPost {
	return []models.BlogPost{
		{Title: "Hunting with Sysmon", Link: "https://medium.com/p/1", GUID: "guid-1", Description: "Threat hunting.", Categories: []string{"dfir"}, Author: "starford", PubDate: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)},
		{Title: "No GUID", Link: "https://medium.com/p/2"},
		{Title: "", Link: "https://medium.com/p/3"},
	}
}

func TestBuild_ProjectsAndOrders(t *testing.T) {
	got := Build(sampleNotes(), samplePosts())
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4: %+v", len(got), got)
	}

	n := got[0]
	if n.Type != models.EntryTypeNote || n.URL != "/notes/getting-started" || n.Content != "Intro Welcome to the notes." {
		t.Fatalf("note entry = %+v", n)
	}
	if n.LastModified == nil || !n.LastModified.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("lastModified = %v", n.LastModified)
	}
	if got[1].Content != "Recon excerpt" || got[1].URL != "/notes/red-team/recon" {
		t.Fatalf("excerpt fallback entry = %+v", got[1])
	}
	if got[1].Tags == nil {
		t.Fatal("tags must never be nil")
	}

	p := got[2]
	if p.Type != models.EntryTypeMedium || p.ID != "guid-1" || p.URL != "https://medium.com/p/1" || p.Author != "starford" {
		t.Fatalf("post entry = %+v", p)
	}
	if p.PublishedDate == nil || p.LastModified != nil {
		t.Fatalf("post dates = %v / %v", p.PublishedDate, p.LastModified)
	}
	if got[3].ID != "https://medium.com/p/2" {
		t.Fatalf("guid fallback = %q", got[3].ID)
	}
}

func TestBuilder_PostsFailureKeepsNotes(t *testing.T) {
	b := NewBuilder(
		notesFunc(func(context.Context) ([]models.Note, error) { return sampleNotes(), nil }),
		postsFunc(func(context.Context) ([]models.BlogPost, error) { return nil, errors.New("feed down") }),
		quietLogger(),
	)
	got, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want the 2 valid notes", len(got))
	}
	for _, e := range got {
		if e.Type != models.EntryTypeNote {
			t.Fatalf("unexpected entry %+v", e)
		}
	}
}

func TestBuilder_NotesFailureFails(t *testing.T) {
	b := NewBuilder(
		notesFunc(func(context.Context) ([]models.Note, error) { return nil, errors.New("disk gone") }),
		nil,
		quietLogger(),
	)
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuilder_NilPostsSource(t *testing.T) {
	b := NewBuilder(
		notesFunc(func(context.Context) ([]models.Note, error) { return sampleNotes(), nil }),
		nil,
		quietLogger(),
	)
	got, err := b.Build(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("Build = %d entries, %v", len(got), err)
	}
}

func TestBuilder_MergesPosts(t *testing.T) {
	b := NewBuilder(
		notesFunc(func(context.Context) ([]models.Note, error) { return sampleNotes(), nil }),
		postsFunc(func(context.Context) ([]models.BlogPost, error) { return samplePosts(), nil }),
		quietLogger(),
	)
	got, err := b.Build(context.Background())
	if err != nil || len(got) != 4 {
		t.Fatalf("Build = %d entries, %v", len(got), err)
	}
}
