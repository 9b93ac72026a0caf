package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSnippet_CentersOnQuery(t *testing.T) {
	content := strings.Repeat("filler words here ", 20) + "the Kerberoasting attack abuses service tickets " + strings.Repeat("tail text ", 20)
	got := Snippet(content, "kerberoasting", nil, 60)
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Fatalf("snippet %q should be elided on both sides", got)
	}
	if !strings.Contains(got, "Kerberoasting") {
		t.Fatalf("snippet %q lost the match", got)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(got, "..."), "...")
	if utf8.RuneCountInString(body) > 60 {
		t.Fatalf("snippet body is %d runes", utf8.RuneCountInString(body))
	}
	if strings.HasPrefix(body, " ") || strings.HasSuffix(body, " ") {
		t.Fatalf("snippet %q not trimmed to words", got)
	}
}

func TestSnippet_FallsBackToTerm(t *testing.T) {
	content := strings.Repeat("intro ", 50) + "run a pentest against staging"
	got := Snippet(content, "penetration testing", []string{"pentest"}, 40)
	if !strings.Contains(got, "pentest") {
		t.Fatalf("snippet %q does not show the term", got)
	}
}

func TestSnippet_NoMatchUsesLeadingText(t *testing.T) {
	content := "Alpha beta gamma delta epsilon zeta eta theta"
	got := Snippet(content, "omega", nil, 20)
	if got != "Alpha beta gamma..." {
		t.Fatalf("snippet = %q", got)
	}
}

func TestSnippet_ShortContentUnchanged(t *testing.T) {
	if got := Snippet("Short\n\ttext", "text", nil, 50); got != "Short text" {
		t.Fatalf("snippet = %q", got)
	}
	if got := Snippet("", "x", nil, 50); got != "" {
		t.Fatalf("snippet = %q", got)
	}
}

func TestSnippet_MultiByte(t *testing.T) {
	content := strings.Repeat("日本語 ", 40) + "Ünïcode match here " + strings.Repeat("ñ ", 40)
	got := Snippet(content, "ÜNÏCODE", nil, 30)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "Ünïcode") {
		t.Fatalf("snippet %q lost the match", got)
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query string
		want  string
		conf  float64
	}{
		{"nmap", IntentReference, 0.1},
		{"how to set up a lab", IntentTutorial, 0.8},
		{"what is zero trust", IntentEducational, 0.6},
		{"latest ransomware news", IntentNews, 0.8},
		{"exploit payload", IntentTechnical, 0.8},
		// One hit each: technical wins the tie.
		{"exploit guide", IntentTechnical, 0.6},
		{"guide explaining overview", IntentTutorial, 0.6},
	}
	for _, tt := range tests {
		got := ClassifyIntent(tt.query)
		if got.Type != tt.want || got.Confidence != tt.conf {
			t.Errorf("ClassifyIntent(%q) = %+v, want %s/%v", tt.query, got, tt.want, tt.conf)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"  a   b  ":            "a b",
		`<script>"x"</script>`: "scriptx/script",
		"tab\tand\nnewline":    "tab and newline",
		"R&D":                  "RD",
	}
	for in, want := range tests {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
	long := strings.Repeat("é", MaxQueryLength+50)
	if got := Sanitize(long); utf8.RuneCountInString(got) != MaxQueryLength {
		t.Fatalf("Sanitize capped to %d runes", utf8.RuneCountInString(got))
	}
}
