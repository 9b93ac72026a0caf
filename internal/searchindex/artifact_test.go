package searchindex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/storage"
)

func TestEncode_EmptyIsArray(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("Encode(nil) = %s", data)
	}
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	data, err := Encode([]models.SearchIndexEntry{{ID: "x", Title: "<b>&</b>", URL: "/x", Tags: []string{}}})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<b>&</b>")) {
		t.Fatalf("title escaped: %s", data)
	}
}

func TestDecode_Null(t *testing.T) {
	got, err := Decode(strings.NewReader("null"))
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Decode(null) = %v, %v", got, err)
	}
	if _, err := Decode(strings.NewReader("{")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := Build(sampleNotes(), samplePosts())
	if err := WriteFile(store, DefaultArtifactName, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := store.Read(DefaultArtifactName)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Title != want[i].Title || got[i].Content != want[i].Content {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if !got[0].LastModified.Equal(*want[0].LastModified) {
		t.Fatalf("lastModified = %v", got[0].LastModified)
	}
}
