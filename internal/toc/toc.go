// Package toc builds the nested table of contents of a Markdown body.
package toc

import (
	"regexp"
	"strings"

	"github.com/starford/dossier/internal/models"
)

var (
	headingRe     = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	closingHashRe = regexp.MustCompile(`\s+#+$`)
	anchorStripRe = regexp.MustCompile(`[^a-z0-9\s-]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	hyphenRunRe   = regexp.MustCompile(`-{2,}`)
	fenceOpenRe   = regexp.MustCompile("^\\s*(```|~~~)")
)

// Heading is a single heading line found in a body.
type Heading struct {
	Level int
	Title string
}

// Headings scans body line by line and returns its headings in document
// order. Lines inside fenced code blocks are ignored.
func Headings(body string) []Heading {
	var out []Heading
	fence := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := fenceOpenRe.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case fence == m[1]:
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(closingHashRe.ReplaceAllString(m[2], ""))
		if title == "" {
			continue
		}
		out = append(out, Heading{Level: len(m[1]), Title: title})
	}
	return out
}

// Anchor converts a heading title into a URL fragment made of [a-z0-9-].
func Anchor(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, "_", " ")
	s = anchorStripRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "section"
	}
	return s
}

// Build returns the heading forest of body. A heading becomes a child of the
// nearest preceding heading with a strictly smaller level; otherwise it is a
// root. Equal titles produce equal anchors.
func Build(body string) []models.TocNode {
	headings := Headings(body)
	if len(headings) == 0 {
		return []models.TocNode{}
	}

	// Nodes are built as pointers and copied into value form at the end, so
	// appending children never invalidates a parent still on the stack.
	type node struct {
		models.TocNode
		kids []*node
	}

	var roots []*node
	var stack []*node
	for _, h := range headings {
		anchor := Anchor(h.Title)
		n := &node{TocNode: models.TocNode{
			ID:     anchor,
			Title:  h.Title,
			Level:  h.Level,
			Anchor: anchor,
		}}
		for len(stack) > 0 && stack[len(stack)-1].Level >= n.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.kids = append(parent.kids, n)
		}
		stack = append(stack, n)
	}

	var freeze func(ns []*node) []models.TocNode
	freeze = func(ns []*node) []models.TocNode {
		out := make([]models.TocNode, len(ns))
		for i, n := range ns {
			out[i] = n.TocNode
			out[i].Children = freeze(n.kids)
		}
		return out
	}
	return freeze(roots)
}

// Flatten returns the nodes of forest in pre-order.
func Flatten(forest []models.TocNode) []models.TocNode {
	var out []models.TocNode
	var walk func([]models.TocNode)
	walk = func(ns []models.TocNode) {
		for _, n := range ns {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}
