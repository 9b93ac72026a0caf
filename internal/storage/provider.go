// Package storage defines the file-system abstraction used for note sources
// and generated artifacts.
package storage

import "github.com/starford/dossier/internal/models"

// Provider is the interface for file operations relative to a root directory.
type Provider interface {
	// List returns metadata for every Markdown file under dir (relative to
	// root). Dotfiles and dot-directories are skipped.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// WriteIfAbsent writes content only when path does not exist yet and
	// reports whether it wrote.
	WriteIfAbsent(path string, content []byte) (bool, error)
	// Root returns the absolute root directory.
	Root() string
}
