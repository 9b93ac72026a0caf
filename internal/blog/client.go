// Package blog fetches posts from an external blog through an RSS-to-JSON
// proxy.
package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/parser"
)

// Defaults for the Medium feed behind rss2json.
const (
	DefaultProxyURL      = "https://api.rss2json.com/v1/api.json"
	DefaultFeedTemplate  = "https://medium.com/feed/@%s"
	DefaultTimeout       = 8 * time.Second
	DescriptionMaxLength = 300
	pubDateLayout        = "2006-01-02 15:04:05"
	maxResponseBodyBytes = 5 << 20
)

// StatusError is returned when the proxy answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("blog: proxy returned status %d", e.StatusCode)
}

// APIError is returned when the proxy reports a feed-level failure.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blog: feed status %q", e.Status)
	}
	return fmt.Sprintf("blog: feed status %q: %s", e.Status, e.Message)
}

// Client fetches blog posts.
type Client struct {
	http         *http.Client
	proxyURL     string
	feedTemplate string
	timeout      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithProxyURL sets the RSS-to-JSON proxy endpoint.
func WithProxyURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.proxyURL = u
		}
	}
}

// WithFeedTemplate sets the fmt template turning a handle into a feed URL.
func WithFeedTemplate(tpl string) Option {
	return func(cl *Client) {
		if tpl != "" {
			cl.feedTemplate = tpl
		}
	}
}

// WithTimeout bounds every fetch.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// NewClient creates a Client with the Medium defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:         http.DefaultClient,
		proxyURL:     DefaultProxyURL,
		feedTemplate: DefaultFeedTemplate,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FeedURL returns the RSS feed URL for handle.
func (c *Client) FeedURL(handle string) string {
	return fmt.Sprintf(c.feedTemplate, strings.TrimPrefix(handle, "@"))
}

// RequestURL returns the proxy URL queried for handle.
func (c *Client) RequestURL(handle string) (string, error) {
	u, err := url.Parse(c.proxyURL)
	if err != nil {
		return "", fmt.Errorf("blog: parse proxy url: %w", err)
	}
	q := u.Query()
	q.Set("rss_url", c.FeedURL(handle))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type feedResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Items   []feedItem `json:"items"`
}

type feedItem struct {
	Title       string   `json:"title"`
	PubDate     string   `json:"pubDate"`
	Link        string   `json:"link"`
	GUID        string   `json:"guid"`
	Author      string   `json:"author"`
	Thumbnail   string   `json:"thumbnail"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Categories  []string `json:"categories"`
}

// FetchPosts retrieves the posts of handle. Any transport, status or
// feed-level failure is returned as an error; callers degrade to an empty
// list.
func (c *Client) FetchPosts(ctx context.Context, handle string) ([]models.BlogPost, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("blog: handle is required")
	}
	reqURL, err := c.RequestURL(handle)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("blog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blog: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var feed feedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("blog: decode feed: %w", err)
	}
	if feed.Status != "ok" {
		return nil, &APIError{Status: feed.Status, Message: feed.Message}
	}

	posts := make([]models.BlogPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		posts = append(posts, toPost(item))
	}
	return posts, nil
}

func toPost(item feedItem) models.BlogPost {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	bodyText := htmlText(body)

	description := htmlText(item.Description)
	if description == "" {
		description = bodyText
	}

	thumbnail := item.Thumbnail
	if thumbnail == "" {
		thumbnail = firstImage(item.Content)
	}
	if thumbnail == "" {
		thumbnail = firstImage(item.Description)
	}

	guid := item.GUID
	if guid == "" {
		guid = item.Link
	}

	pub, _ := time.Parse(pubDateLayout, item.PubDate)

	categories := item.Categories
	if categories == nil {
		categories = []string{}
	}

	return models.BlogPost{
		Title:       strings.TrimSpace(item.Title),
		Link:        item.Link,
		PubDate:     pub,
		Description: parser.Truncate(description, DescriptionMaxLength),
		Categories:  categories,
		GUID:        guid,
		Author:      item.Author,
		Thumbnail:   thumbnail,
		ReadTime:    parser.ReadTime(len(strings.Fields(bodyText))),
	}
}
