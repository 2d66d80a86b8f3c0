package feed

import (
	"strings"
	"testing"
	"time"

	"agora/internal/model"
)

var testSource = model.Source{
	ID:      "kant-weekly",
	Name:    "Immanuel Kant",
	FeedURL: "https://kant.example.com/feed",
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name          string
		source        model.Source
		feedContent   string
		expectError   bool
		expectedCount int
		expectedLogo  string
		validateFunc  func(t *testing.T, posts []*model.Post)
	}{
		{
			name:   "valid RSS feed",
			source: testSource,
			feedContent: `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
	<channel>
		<title>Critique Weekly</title>
		<link>https://kant.example.com</link>
		<image>
			<url>https://kant.example.com/logo.png</url>
			<title>Critique Weekly</title>
			<link>https://kant.example.com</link>
		</image>
		<item>
			<title>On Synthetic Judgments</title>
			<link>https://kant.example.com/p/synthetic</link>
			<description>A short description</description>
			<guid>post-1</guid>
			<pubDate>Wed, 01 Jan 2025 12:00:00 GMT</pubDate>
			<enclosure url="https://kant.example.com/cover1.jpg" type="image/jpeg" length="0"/>
		</item>
		<item>
			<title>Second Post</title>
			<link>https://kant.example.com/p/second</link>
			<description>desc</description>
			<content:encoded><![CDATA[<p>The first paragraph of content.</p><p>More.</p>]]></content:encoded>
			<guid>post-2</guid>
			<pubDate>Thu, 02 Jan 2025 12:00:00 GMT</pubDate>
		</item>
	</channel>
</rss>`,
			expectedCount: 2,
			expectedLogo:  "https://kant.example.com/logo.png",
			validateFunc: func(t *testing.T, posts []*model.Post) {
				p := posts[0]
				if p.ID != "post-1" {
					t.Errorf("expected ID post-1, got %s", p.ID)
				}
				if p.Author != "Immanuel Kant" {
					t.Errorf("expected author from source name, got %s", p.Author)
				}
				if p.PublicationName != "Critique Weekly" {
					t.Errorf("expected publication from feed title, got %s", p.PublicationName)
				}
				if p.SourceID != "kant-weekly" {
					t.Errorf("expected source_id kant-weekly, got %s", p.SourceID)
				}
				if p.CoverImage != "https://kant.example.com/cover1.jpg" {
					t.Errorf("expected enclosure cover image, got %s", p.CoverImage)
				}
				want := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
				if !p.Published.Equal(want) {
					t.Errorf("expected published %v, got %v", want, p.Published)
				}

				if posts[1].Subtitle != "The first paragraph of content.  More." {
					t.Errorf("unexpected subtitle %q", posts[1].Subtitle)
				}
			},
		},
		{
			name: "publication name override wins over feed title",
			source: model.Source{
				ID:              "hume",
				Name:            "David Hume",
				PublicationName: "Enquiries",
			},
			feedContent: `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Feed Title</title>
<item><title>Of Miracles</title><link>https://hume.example.com/p/miracles</link><guid>m-1</guid></item>
</channel></rss>`,
			expectedCount: 1,
			validateFunc: func(t *testing.T, posts []*model.Post) {
				if posts[0].PublicationName != "Enquiries" {
					t.Errorf("expected override Enquiries, got %s", posts[0].PublicationName)
				}
			},
		},
		{
			name:   "missing guid falls back to link",
			source: testSource,
			feedContent: `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>No GUID</title><link>https://kant.example.com/p/noguid</link></item>
</channel></rss>`,
			expectedCount: 1,
			validateFunc: func(t *testing.T, posts []*model.Post) {
				if posts[0].ID != "https://kant.example.com/p/noguid" {
					t.Errorf("expected permalink ID, got %s", posts[0].ID)
				}
			},
		},
		{
			name:   "invalid date tolerated",
			source: testSource,
			feedContent: `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>Bad Date</title><guid>bd-1</guid><pubDate>not a date</pubDate></item>
</channel></rss>`,
			expectedCount: 1,
			validateFunc: func(t *testing.T, posts []*model.Post) {
				if !posts[0].Published.IsZero() {
					t.Errorf("expected zero time for unparseable date, got %v", posts[0].Published)
				}
				if posts[0].PublishedRaw != "not a date" {
					t.Errorf("expected raw date kept as issued, got %q", posts[0].PublishedRaw)
				}
			},
		},
		{
			name:   "valid Atom feed",
			source: testSource,
			feedContent: `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Publication</title>
	<entry>
		<title>Atom Entry</title>
		<link href="https://kant.example.com/atom/1"/>
		<id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
		<updated>2025-01-01T12:00:00Z</updated>
		<summary>Entry summary</summary>
	</entry>
</feed>`,
			expectedCount: 1,
			validateFunc: func(t *testing.T, posts []*model.Post) {
				if posts[0].ID != "urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a" {
					t.Errorf("expected atom id as post ID, got %s", posts[0].ID)
				}
				if posts[0].Subtitle != "Entry summary" {
					t.Errorf("expected subtitle from summary, got %q", posts[0].Subtitle)
				}
			},
		},
		{
			name:          "invalid XML",
			source:        testSource,
			feedContent:   "not valid XML",
			expectError:   true,
			expectedCount: 0,
		},
		{
			name:          "empty feed",
			source:        testSource,
			feedContent:   `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`,
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, logoURL, err := parser.Parse(strings.NewReader(tt.feedContent), tt.source)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if len(posts) != tt.expectedCount {
				t.Errorf("expected %d posts, got %d", tt.expectedCount, len(posts))
			}
			if tt.expectedLogo != "" && logoURL != tt.expectedLogo {
				t.Errorf("expected logo %s, got %s", tt.expectedLogo, logoURL)
			}

			if tt.validateFunc != nil && len(posts) > 0 {
				tt.validateFunc(t, posts)
			}
		})
	}
}
