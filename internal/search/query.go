package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength caps sanitized queries, in runes.
const MaxQueryLength = 200

// maxWindow is the longest phrase, in words, matched against the dictionary.
const maxWindow = 4

var unsafeChars = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")

// Sanitize removes markup-significant characters, collapses whitespace and
// caps the query at MaxQueryLength runes.
func Sanitize(query string) string {
	q := unsafeChars.Replace(query)
	q = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, q)
	q = strings.Join(strings.Fields(q), " ")
	if r := []rune(q); len(r) > MaxQueryLength {
		q = strings.TrimSpace(string(r[:MaxQueryLength]))
	}
	return q
}

// tokenize lower-cases s and splits it into words with surrounding
// punctuation removed. Inner punctuation such as in "cross-site" or "c++"
// is kept.
func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// windows returns every phrase of n consecutive words for n in [lo, hi],
// grouped by start position with longer phrases first.
func windows(words []string, lo, hi int) []string {
	var out []string
	for i := range words {
		for n := min(hi, len(words)-i); n >= lo; n-- {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments are expected in lower case.
func containsPhrase(text, phrase string) bool {
	return indexPhrase(text, phrase) >= 0
}

// indexPhrase returns the byte offset of the first word-bounded occurrence
// of phrase in text, or -1.
func indexPhrase(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return start
		}
		offset = start + 1
		if offset >= len(text) {
			return -1
		}
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
