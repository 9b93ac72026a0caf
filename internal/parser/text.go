package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// WordsPerMinute is the reading speed used for read-time estimates.
const WordsPerMinute = 200

var (
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```|~~~.*?~~~")
	fenceLineRe   = regexp.MustCompile("(?m)^\\s*(?:```|~~~).*$")
	imageRe       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	headingRe     = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	blockquoteRe  = regexp.MustCompile(`(?m)^\s*>\s?`)
	listMarkerRe  = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	ruleRe        = regexp.MustCompile(`(?m)^\s*(?:[-*_]\s*){3,}$`)
	inlineCodeRe  = regexp.MustCompile("`([^`]*)`")
	emphasisRe    = regexp.MustCompile(`\*{1,3}|~~`)
	slugStripRe   = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRunRe   = regexp.MustCompile(`-{2,}`)
)

// PlainText strips Markdown syntax from md and collapses whitespace. Code
// inside fenced blocks is kept as text so commands stay searchable.
func PlainText(md string) string {
	s := fenceLineRe.ReplaceAllString(md, "")
	return stripInline(s)
}

// Excerpt returns at most n runes of plain text with code blocks removed,
// cut at a word boundary and suffixed with "..." when truncated.
func Excerpt(md string, n int) string {
	s := stripInline(fencedBlockRe.ReplaceAllString(md, " "))
	return Truncate(s, n)
}

func stripInline(s string) string {
	s = ruleRe.ReplaceAllString(s, "")
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = headingRe.ReplaceAllString(s, "")
	s = blockquoteRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most n runes, backing up to the last space when
// one exists, and appends "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// WordCount counts whitespace separated words in the plain text of md.
func WordCount(md string) int {
	return len(strings.Fields(PlainText(md)))
}

// ReadTime returns the estimated minutes needed to read words words. It is
// never less than one.
func ReadTime(words int) int {
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Humanize turns a file or directory name such as "web-app_recon" into
// "Web App Recon".
func Humanize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Slugify turns one path segment into a URL-safe slug segment.
func Slugify(segment string) string {
	s := strings.ToLower(strings.TrimSpace(segment))
	s = strings.NewReplacer(" ", "-", "_", "-", ".", "-").Replace(s)
	s = slugStripRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}
