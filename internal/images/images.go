// Package images finds Markdown image references in note bodies and rewrites
// them to the flat per-note public image folder.
package images

import (
	"path"
	"regexp"
	"strings"
)

// PublicPrefix is the URL prefix under which note images are served.
const PublicPrefix = "/images/notes"

// imageRe captures alt text, source and an optional quoted title.
var imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(\s+"[^"]*")?\s*\)`)

// Extract returns the source of every image reference in body, in order of
// appearance. Duplicates are kept.
func Extract(body string) []string {
	matches := imageRe.FindAllStringSubmatch(body, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[2])
	}
	return out
}

// Rewrite points every relative image reference in body at
// PublicPrefix/slug/<basename>. Absolute URLs and sources already under
// PublicPrefix are left as they are.
func Rewrite(body, slug string) string {
	return imageRe.ReplaceAllStringFunc(body, func(ref string) string {
		m := imageRe.FindStringSubmatch(ref)
		src := m[2]
		if !NeedsRewrite(src) {
			return ref
		}
		return "![" + m[1] + "](" + PublicPath(slug, src) + m[3] + ")"
	})
}

// NeedsRewrite reports whether src is a relative reference.
func NeedsRewrite(src string) bool {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "//"),
		strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(src, PublicPrefix+"/"):
		return false
	}
	return true
}

// PublicPath returns the canonical public path for src inside the note's
// image folder. Directory components of src are discarded.
func PublicPath(slug, src string) string {
	clean := strings.ReplaceAll(src, `\`, "/")
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	return PublicPrefix + "/" + slug + "/" + path.Base(clean)
}
