package searchindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/storage"
)

// DefaultArtifactName is the file name of the static index.
const DefaultArtifactName = "search-index.json"

// Encode serializes entries as a JSON array. An empty index encodes as [].
func Encode(entries []models.SearchIndexEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.SearchIndexEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("searchindex: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a JSON array of entries.
func Decode(r io.Reader) ([]models.SearchIndexEntry, error) {
	var entries []models.SearchIndexEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("searchindex: decode: %w", err)
	}
	if entries == nil {
		entries = []models.SearchIndexEntry{}
	}
	return entries, nil
}

// WriteFile atomically writes the artifact to name inside store.
func WriteFile(store storage.Provider, name string, entries []models.SearchIndexEntry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := store.Write(name, data); err != nil {
		return fmt.Errorf("searchindex: write %s: %w", name, err)
	}
	return nil
}
