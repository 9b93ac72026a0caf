package search

import (
	"strings"
	"unicode"

	"github.com/starford/dossier/internal/parser"
)

// DefaultSnippetLength is the snippet width in runes.
const DefaultSnippetLength = 200

const ellipsis = "..."

// Snippet returns a window of content around the first occurrence of query,
// or of the first term found when the query itself does not occur. Terms
// match on word boundaries. Without any match the leading width runes are
// returned.
func Snippet(content, query string, terms []string, width int) string {
	if width <= 0 {
		width = DefaultSnippetLength
	}
	text := strings.Join(strings.Fields(content), " ")
	if text == "" {
		return ""
	}
	runes := []rune(text)
	lower := lowerRunes(runes)

	q := []rune(strings.ToLower(strings.TrimSpace(query)))
	pos, n := runeIndex(lower, q, false), len(q)
	if pos < 0 {
		for _, t := range terms {
			needle := []rune(strings.ToLower(t))
			if pos = runeIndex(lower, needle, true); pos >= 0 {
				n = len(needle)
				break
			}
		}
	}
	if pos < 0 {
		return parser.Truncate(text, width)
	}
	if len(runes) <= width {
		return text
	}

	start := max(0, pos-width/3)
	if start > 0 {
		// Move forward to the start of a word, never past the match.
		for i := start; i < pos; i++ {
			if runes[i-1] == ' ' {
				start = i
				break
			}
		}
	}
	end := min(len(runes), start+max(width, n))
	if end < len(runes) {
		// Move back to a word end, never into the match.
		for i := end; i > pos+n; i-- {
			if runes[i] == ' ' {
				end = i
				break
			}
		}
	}

	out := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		out = ellipsis + out
	}
	if end < len(runes) {
		out += ellipsis
	}
	return out
}

// lowerRunes lowers each rune in place so offsets match the original.
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// runeIndex finds needle in hay. With bounded set the match must sit on
// word boundaries.
func runeIndex(hay, needle []rune, bounded bool) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, r := range needle {
			if hay[i+j] != r {
				continue outer
			}
		}
		if bounded {
			if i > 0 && isWordRune(hay[i-1]) {
				continue
			}
			if e := i + len(needle); e < len(hay) && isWordRune(hay[e]) {
				continue
			}
		}
		return i
	}
	return -1
}
