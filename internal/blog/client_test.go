package blog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const okFeed = `{
  "status": "ok",
  "items": [
    {
      "title": " Hunting with Sigma ",
      "pubDate": "2024-05-10 08:30:00",
      "link": "https://medium.com/@analyst/hunting-with-sigma-1",
      "guid": "https://medium.com/p/1",
      "author": "analyst",
      "thumbnail": "",
      "description": "<p>Detection <b>engineering</b> with Sigma rules.</p><p>Second paragraph.</p>",
      "content": "<figure><img src=\"https://cdn/img.png\"></figure><p>Detection engineering with Sigma rules and more words.</p>",
      "categories": ["detection", "siem"]
    },
    {
      "title": "No guid",
      "pubDate": "bad date",
      "link": "https://medium.com/@analyst/no-guid",
      "description": "plain",
      "content": ""
    }
  ]
}`

func TestFetchPosts_MapsItems(t *testing.T) {
	var gotFeed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFeed = r.URL.Query().Get("rss_url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okFeed))
	}))
	defer srv.Close()

	c := NewClient(WithProxyURL(srv.URL), WithHTTPClient(srv.Client()))
	posts, err := c.FetchPosts(context.Background(), "@analyst")
	if err != nil {
		t.Fatalf("FetchPosts: %v", err)
	}
	if gotFeed != "https://medium.com/feed/@analyst" {
		t.Errorf("rss_url = %q", gotFeed)
	}
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2", len(posts))
	}

	p := posts[0]
	if p.Title != "Hunting with Sigma" || p.GUID != "https://medium.com/p/1" {
		t.Errorf("post = %+v", p)
	}
	if strings.Contains(p.Description, "<") {
		t.Errorf("description not stripped: %q", p.Description)
	}
	if !strings.Contains(p.Description, "Detection engineering with Sigma rules.") {
		t.Errorf("description = %q", p.Description)
	}
	if p.Thumbnail != "https://cdn/img.png" {
		t.Errorf("thumbnail = %q", p.Thumbnail)
	}
	if !p.PubDate.Equal(time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("pubDate = %v", p.PubDate)
	}
	if len(p.Categories) != 2 || p.ReadTime != 1 {
		t.Errorf("categories/readTime = %v/%d", p.Categories, p.ReadTime)
	}

	q := posts[1]
	if q.GUID != q.Link {
		t.Errorf("guid fallback = %q, want link", q.GUID)
	}
	if !q.PubDate.IsZero() {
		t.Errorf("bad pubDate should be zero, got %v", q.PubDate)
	}
	if q.Categories == nil {
		t.Error("categories should be non-nil")
	}
}

func TestFetchPosts_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithProxyURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.FetchPosts(context.Background(), "analyst")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want StatusError 502", err)
	}
}

func TestFetchPosts_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"rss_url parameter is invalid"}`))
	}))
	defer srv.Close()

	c := NewClient(WithProxyURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.FetchPosts(context.Background(), "analyst")
	var ae *APIError
	if !errors.As(err, &ae) || !strings.Contains(ae.Message, "invalid") {
		t.Fatalf("err = %v, want APIError", err)
	}
}

func TestFetchPosts_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(WithProxyURL(srv.URL), WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := c.FetchPosts(context.Background(), "analyst")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("fetch did not honor timeout")
	}
}

func TestFetchPosts_EmptyHandle(t *testing.T) {
	c := NewClient()
	if _, err := c.FetchPosts(context.Background(), " "); err == nil {
		t.Error("expected error for empty handle")
	}
}

func TestHTMLText(t *testing.T) {
	got := htmlText("<p>One</p><p>Two <em>three</em></p><script>alert(1)</script>")
	if got != "One Two three" {
		t.Errorf("htmlText = %q", got)
	}
}
