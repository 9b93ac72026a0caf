package parser

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\nauthor: Ada\ncategory: Forensics\ntags:\n  - siem\n  - dfir\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Metadata.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Metadata.Title, "Hello")
	}
	if r.Metadata.Author != "Ada" || r.Metadata.Category != "Forensics" {
		t.Errorf("metadata = %+v", r.Metadata)
	}
	if len(r.Metadata.Tags) != 2 || r.Metadata.Tags[0] != "siem" || r.Metadata.Tags[1] != "dfir" {
		t.Errorf("tags = %v, want [siem dfir]", r.Metadata.Tags)
	}
	if !strings.HasPrefix(r.Body, "# Hello") {
		t.Errorf("body = %q", r.Body)
	}
	if strings.Contains(r.Body, "title:") {
		t.Errorf("frontmatter leaked into body: %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Metadata.Title != "" || len(r.Metadata.Tags) != 0 {
		t.Errorf("expected empty metadata, got %+v", r.Metadata)
	}
	if r.Body != string(input) {
		t.Errorf("body = %q, want whole file", r.Body)
	}
}

func TestParse_ScalarTagsIgnored(t *testing.T) {
	r, err := Parse([]byte("---\ntitle: T\ntags: siem\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Metadata.Tags == nil || len(r.Metadata.Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", r.Metadata.Tags)
	}
}

func TestParse_DuplicateTagsCollapsed(t *testing.T) {
	r, err := Parse([]byte("---\ntags: [web, xss, web, \" \"]\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Metadata.Tags) != 2 || r.Metadata.Tags[0] != "web" || r.Metadata.Tags[1] != "xss" {
		t.Errorf("tags = %v, want [web xss]", r.Metadata.Tags)
	}
}

func TestParse_Date(t *testing.T) {
	r, err := Parse([]byte("---\ndate: 2024-03-05\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !r.Metadata.Date.Equal(want) {
		t.Errorf("date = %v, want %v", r.Metadata.Date, want)
	}
}

func TestParse_MalformedFrontmatter(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nBody\n"))
	if err == nil {
		t.Fatal("expected error for malformed frontmatter")
	}
	if !errors.Is(err, ErrMalformedFrontmatter) {
		t.Errorf("error = %v, want ErrMalformedFrontmatter", err)
	}
}

func TestPlainText(t *testing.T) {
	md := "## Recon\nRun **nmap** with `-sV` and see [the docs](https://nmap.org).\n![diagram](img.png)\n```bash\nnmap -sV 10.0.0.1\n```\n"
	got := PlainText(md)
	want := "Recon Run nmap with -sV and see the docs. diagram nmap -sV 10.0.0.1"
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestExcerpt_DropsCodeAndTruncates(t *testing.T) {
	md := "Intro words here.\n```\nsecret command\n```\nMore text follows after the block."
	got := Excerpt(md, 30)
	if strings.Contains(got, "secret") {
		t.Errorf("excerpt contains code: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt not truncated: %q", got)
	}
	if len([]rune(got)) > 33 {
		t.Errorf("excerpt too long: %q", got)
	}
}

func TestReadTime(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 200: 1, 201: 2, 1000: 5}
	for words, want := range cases {
		if got := ReadTime(words); got != want {
			t.Errorf("ReadTime(%d) = %d, want %d", words, got, want)
		}
	}
}

func TestHumanizeAndSlugify(t *testing.T) {
	if got := Humanize("web-app_recon"); got != "Web App Recon" {
		t.Errorf("Humanize = %q", got)
	}
	if got := Slugify("  Active Directory_Attacks "); got != "active-directory-attacks" {
		t.Errorf("Slugify = %q", got)
	}
	if got := Slugify("???"); got != "untitled" {
		t.Errorf("Slugify(???) = %q", got)
	}
}
