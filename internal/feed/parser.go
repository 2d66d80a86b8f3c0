package feed

import (
	"fmt"
	"io"

	"github.com/mmcdole/gofeed"

	"agora/internal/extract"
	"agora/internal/model"
)

// Parser maps raw feed documents onto the normalized post schema.
type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parse reads an RSS/Atom document and returns the source's normalized
// posts plus the publication logo URL, when the feed declares one.
// Entries missing a title or link pass through as-is; only the ID is
// required, derived from the GUID or the permalink.
func (p *Parser) Parse(reader io.Reader, source model.Source) ([]*model.Post, string, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, "", fmt.Errorf("parsing feed: %w", err)
	}

	var logoURL string
	if feed.Image != nil && feed.Image.URL != "" {
		logoURL = feed.Image.URL
	}

	publication := source.PublicationName
	if publication == "" {
		publication = feed.Title
	}

	posts := make([]*model.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		post := &model.Post{
			ID:              postID(item),
			Title:           item.Title,
			Subtitle:        extract.Subtitle(item.Content, item.Description),
			Author:          source.Name,
			PublicationName: publication,
			PublishedRaw:    item.Published,
			Link:            item.Link,
			SourceID:        source.ID,
			CoverImage:      extract.CoverImage(item),
		}

		// Unparseable dates stay zero; the raw string is kept as issued.
		if item.PublishedParsed != nil {
			post.Published = *item.PublishedParsed
		}

		posts = append(posts, post)
	}

	return posts, logoURL, nil
}

// postID must be stable across refreshes so stores can upsert by it.
func postID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}
