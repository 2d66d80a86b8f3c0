package model

import "time"

// Source is a configured publication whose feed is polled. The roster is
// loaded once from configuration and never mutated at runtime.
type Source struct {
	ID              string `json:"id" mapstructure:"id"`
	Name            string `json:"name" mapstructure:"name"`
	FeedURL         string `json:"feed_url" mapstructure:"feed_url"`
	PublicationName string `json:"publication_name,omitempty" mapstructure:"publication_name"`
}

// Post is a normalized feed entry. ID is the entry GUID, or the permalink
// when the feed omits one, and is stable across refreshes so that stores
// can upsert by it.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	Author          string    `json:"author"`
	PublicationName string    `json:"publication_name"`
	Published       time.Time `json:"published"`
	PublishedRaw    string    `json:"published_raw,omitempty"`
	Link            string    `json:"link"`
	SourceID        string    `json:"source_id"`
	CoverImage      string    `json:"cover_image,omitempty"`
}

// RefreshResult summarizes one pass over the source roster.
type RefreshResult struct {
	UpdatedCount    int     `json:"updated_count"`
	NewContentFound bool    `json:"new_content_found"`
	NewPosts        []*Post `json:"new_posts"`
}
