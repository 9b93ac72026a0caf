package search

// Query intents.
const (
	IntentTechnical   = "technical"
	IntentTutorial    = "tutorial"
	IntentEducational = "educational"
	IntentNews        = "news"
	IntentReference   = "reference"
)

// Intent is the heuristic purpose of a query.
type Intent struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// indicators are listed in tie-break priority order.
var indicators = []struct {
	intent  string
	phrases []string
}{
	{IntentTechnical, []string{
		"exploit", "payload", "configure", "configuration", "command", "script",
		"code", "syntax", "bypass", "implementation", "setup", "install", "debug",
		"error", "cve", "poc",
	}},
	{IntentTutorial, []string{
		"how to", "step by step", "guide", "tutorial", "walkthrough", "example",
		"examples", "lab", "hands-on", "cheat sheet", "cheatsheet",
	}},
	{IntentEducational, []string{
		"what is", "what are", "why", "explain", "introduction", "basics",
		"overview", "learn", "concept", "concepts", "difference between",
		"fundamentals",
	}},
	{IntentNews, []string{
		"latest", "news", "update", "updates", "recent", "new", "announced",
		"breach", "today", "this week", "trend", "trends",
	}},
}

// ClassifyIntent labels the purpose of a query by counting indicator
// phrases. It never affects which documents match.
func ClassifyIntent(query string) Intent {
	text := normalizePhrase(Sanitize(query))
	best, bestHits := IntentReference, 0
	for _, ind := range indicators {
		hits := 0
		for _, p := range ind.phrases {
			if containsPhrase(text, p) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = ind.intent, hits
		}
	}
	if bestHits == 0 {
		return Intent{Type: IntentReference, Confidence: 0.1}
	}
	return Intent{Type: best, Confidence: round1(min(1, 0.4+0.2*float64(bestHits)))}
}

func round1(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}
