package models

import "time"

// BlogPost is one article fetched from the external blog feed.
type BlogPost struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pubDate"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories"`
	GUID        string    `json:"guid"`
	Author      string    `json:"author,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	ReadTime    int       `json:"readTime"`
}
