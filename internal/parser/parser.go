// Package parser splits note files into frontmatter metadata and body and
// provides the text helpers used to derive excerpts, word counts and slugs.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// ErrMalformedFrontmatter is returned when a frontmatter block is present but
// cannot be decoded.
var ErrMalformedFrontmatter = errors.New("malformed frontmatter")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

// Metadata holds the frontmatter fields consumed downstream.
type Metadata struct {
	Title    string
	Author   string
	Date     time.Time
	Category string
	Tags     []string
}

// Result holds the output of parsing a note file.
type Result struct {
	Metadata Metadata
	Body     string
}

// rawMetadata mirrors the frontmatter block before coercion. Tags and date
// are left untyped so that scalar or oddly shaped values do not fail the
// whole file.
type rawMetadata struct {
	Title    string `yaml:"title" toml:"title" json:"title"`
	Author   string `yaml:"author" toml:"author" json:"author"`
	Date     any    `yaml:"date" toml:"date" json:"date"`
	Category string `yaml:"category" toml:"category" json:"category"`
	Tags     any    `yaml:"tags" toml:"tags" json:"tags"`
}

// Parse extracts frontmatter metadata and the body from raw note bytes.
// A file without frontmatter yields empty metadata and the whole file as body.
func Parse(data []byte) (*Result, error) {
	var raw rawMetadata
	body, err := frontmatter.Parse(bytes.NewReader(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
	}

	return &Result{
		Metadata: Metadata{
			Title:    strings.TrimSpace(raw.Title),
			Author:   strings.TrimSpace(raw.Author),
			Date:     coerceDate(raw.Date),
			Category: strings.TrimSpace(raw.Category),
			Tags:     coerceTags(raw.Tags),
		},
		Body: strings.TrimLeft(string(body), "\r\n"),
	}, nil
}

// coerceTags keeps list-shaped tag values only. Scalars are ignored.
func coerceTags(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		return []string{}
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func coerceDate(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
