package search

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/starford/dossier/internal/models"
)

// Score components. A document without an exact query match can collect at
// most maxKeywordScore+maxPhraseScore+maxPartialScore+tagBonus points, which
// stays below exactMatchScore.
const (
	MaxScore        = 100
	exactMatchScore = 50
	exactTitleBonus = 20
	keywordScore    = 15
	keywordTitle    = 5
	maxKeywordScore = 30
	phraseScore     = 4
	maxPhraseScore  = 10
	maxPartialScore = 5
	tagBonus        = 4
	minPartialLen   = 3
)

// Result is one ranked search hit.
type Result struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	Type            string   `json:"type"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category,omitempty"`
	Snippet         string   `json:"snippet"`
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// Analysis describes how a query is understood without running it.
type Analysis struct {
	Query    string         `json:"query"`
	Keywords []KeywordEntry `json:"keywords"`
	Intent   Intent         `json:"intent"`
}

// Engine scores index entries against free text queries using a keyword
// dictionary. It is immutable after construction and safe for concurrent use.
type Engine struct {
	terms         map[string]KeywordEntry
	synonyms      map[string]string
	snippetLength int
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnippetLength sets the snippet width in runes.
func WithSnippetLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.snippetLength = n
		}
	}
}

// NewEngine builds the term and synonym lookups for dict. Terms and synonyms
// are normalized to lowercase words. When a term or a synonym is listed
// twice the first entry wins.
func NewEngine(dict []KeywordEntry, opts ...Option) *Engine {
	e := &Engine{
		terms:         make(map[string]KeywordEntry, len(dict)),
		synonyms:      make(map[string]string),
		snippetLength: DefaultSnippetLength,
	}
	for _, opt := range opts {
		opt(e)
	}

	kept := make([]KeywordEntry, 0, len(dict))
	for _, kw := range dict {
		kw.Term = normalizePhrase(kw.Term)
		if kw.Term == "" {
			continue
		}
		if _, dup := e.terms[kw.Term]; dup {
			continue
		}
		synonyms := make([]string, 0, len(kw.Synonyms))
		for _, s := range kw.Synonyms {
			if s = normalizePhrase(s); s != "" && s != kw.Term && !slices.Contains(synonyms, s) {
				synonyms = append(synonyms, s)
			}
		}
		kw.Synonyms = synonyms
		e.terms[kw.Term] = kw
		kept = append(kept, kw)
	}
	for _, kw := range kept {
		for _, s := range kw.Synonyms {
			if _, isTerm := e.terms[s]; isTerm {
				continue
			}
			if _, dup := e.synonyms[s]; !dup {
				e.synonyms[s] = kw.Term
			}
		}
	}
	return e
}

// Lookup returns the dictionary entry for a term or one of its synonyms.
func (e *Engine) Lookup(phrase string) (KeywordEntry, bool) {
	p := normalizePhrase(phrase)
	if kw, ok := e.terms[p]; ok {
		return kw, true
	}
	if term, ok := e.synonyms[p]; ok {
		return e.terms[term], true
	}
	return KeywordEntry{}, false
}

// ExtractKeywords returns the canonical dictionary terms mentioned in query,
// in order of first appearance. Windows of up to four words are tried
// longest first at each position.
func (e *Engine) ExtractKeywords(query string) []string {
	words := tokenize(Sanitize(query))
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, w := range windows(words, 1, maxWindow) {
		kw, ok := e.Lookup(w)
		if !ok {
			continue
		}
		if _, dup := seen[kw.Term]; dup {
			continue
		}
		seen[kw.Term] = struct{}{}
		out = append(out, kw.Term)
	}
	return out
}

// Analyze reports the sanitized query, its dictionary keywords and intent.
func (e *Engine) Analyze(query string) Analysis {
	q := Sanitize(query)
	terms := e.ExtractKeywords(q)
	kws := make([]KeywordEntry, 0, len(terms))
	for _, t := range terms {
		kws = append(kws, e.terms[t])
	}
	return Analysis{Query: q, Keywords: kws, Intent: ClassifyIntent(q)}
}

// plan is the per-query state shared by every candidate.
type plan struct {
	query    string
	lower    string
	keywords []string
	surfaces map[string][]string
	phrases  []string
	partials []string
	words    map[string]struct{}
}

func (e *Engine) plan(query string) plan {
	q := Sanitize(query)
	p := plan{
		query:    q,
		lower:    strings.ToLower(q),
		keywords: e.ExtractKeywords(q),
		surfaces: make(map[string][]string),
		words:    make(map[string]struct{}),
	}
	for _, term := range p.keywords {
		p.surfaces[term] = append([]string{term}, e.terms[term].Synonyms...)
	}
	words := tokenize(q)
	p.phrases = unique(windows(words, 2, len(words)-1))
	for _, w := range words {
		if _, dup := p.words[w]; dup {
			continue
		}
		p.words[w] = struct{}{}
		if utf8.RuneCountInString(w) >= minPartialLen {
			p.partials = append(p.partials, w)
		}
	}
	return p
}

// Search ranks entries against query. Entries that neither contain the
// query nor any of its keywords are left out. A limit of zero or less
// returns every match.
func (e *Engine) Search(query string, entries []models.SearchIndexEntry, limit int) []Result {
	p := e.plan(query)
	if p.query == "" {
		return []Result{}
	}

	type ranked struct {
		Result
		idx int
	}
	var hits []ranked
	for i, entry := range entries {
		r, ok := e.score(p, entry)
		if !ok {
			continue
		}
		hits = append(hits, ranked{Result: r, idx: i})
	}

	slices.SortFunc(hits, func(a, b ranked) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = h.Result
	}
	return out
}

func (e *Engine) score(p plan, entry models.SearchIndexEntry) (Result, bool) {
	title := strings.ToLower(entry.Title)
	body := strings.ToLower(entry.Content)
	// Title and body are matched separately so no phrase spans the two.
	inEither := func(match func(string, string) bool, s string) bool {
		return match(title, s) || match(body, s)
	}

	exact := inEither(strings.Contains, p.lower)
	var matched, found []string
	var kwPoints float64
	for _, term := range p.keywords {
		for _, s := range p.surfaces[term] {
			if !inEither(containsPhrase, s) {
				continue
			}
			w := e.terms[term].Weight
			kwPoints += keywordScore * w
			if containsPhrase(title, s) {
				kwPoints += keywordTitle * w
			}
			matched = append(matched, term)
			found = append(found, s)
			break
		}
	}
	if !exact && len(matched) == 0 {
		return Result{}, false
	}

	var score float64
	if exact {
		score += exactMatchScore
		if strings.Contains(title, p.lower) {
			score += exactTitleBonus
		}
	}
	score += min(kwPoints, maxKeywordScore)

	phrases := 0
	for _, ph := range p.phrases {
		if inEither(containsPhrase, ph) {
			phrases += phraseScore
		}
	}
	score += float64(min(phrases, maxPhraseScore))

	partials := 0
	for _, w := range p.partials {
		if inEither(strings.Contains, w) {
			partials++
		}
	}
	score += float64(min(partials, maxPartialScore))

	if p.tagMatch(entry.Tags, matched) {
		score += tagBonus
	}

	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	if matched == nil {
		matched = []string{}
	}
	return Result{
		ID:              entry.ID,
		Title:           entry.Title,
		URL:             entry.URL,
		Type:            entry.Type,
		Tags:            tags,
		Category:        entry.Category,
		Snippet:         Snippet(entry.Content, p.query, found, e.snippetLength),
		Score:           round1(min(score, MaxScore)),
		MatchedKeywords: matched,
	}, true
}

func (p plan) tagMatch(tags, matched []string) bool {
	for _, tag := range tags {
		t := normalizePhrase(tag)
		if _, ok := p.words[t]; ok {
			return true
		}
		for _, term := range matched {
			if slices.Contains(p.surfaces[term], t) {
				return true
			}
		}
	}
	return false
}

func unique(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := ss[:0]
	for _, s := range ss {
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// FilterByType keeps the results of the given entry type. An empty type
// keeps everything.
func FilterByType(results []Result, typ string) []Result {
	if typ == "" {
		return results
	}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}
