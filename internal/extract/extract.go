package extract

import (
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
)

const (
	// Subtitles are clipped to this many characters, ellipsis included.
	maxSubtitleLen  = 150
	subtitleClipLen = 147
	ellipsis        = "..."
)

var (
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
	imgSrcRe    = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
)

// Subtitle derives a short teaser from an entry's HTML payloads. Content is
// preferred over description; markup is stripped, the first paragraph taken,
// and the result clipped to 150 characters. Returns "" when neither field
// yields text.
func Subtitle(content, description string) string {
	if content != "" {
		text := strings.TrimSpace(tagRe.ReplaceAllString(content, " "))
		if first := paragraphRe.Split(text, 2)[0]; first != "" {
			return clip(first)
		}
	}

	if description != "" {
		return clip(strings.TrimSpace(tagRe.ReplaceAllString(description, " ")))
	}

	return ""
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) > maxSubtitleLen {
		return string(runes[:subtitleClipLen]) + ellipsis
	}
	return s
}

// CoverImage picks a cover image URL for an entry. An image enclosure wins
// over inline images because it is the more deliberate author-supplied
// asset; otherwise the first <img> in the content, then in the description.
// Returns "" when nothing matches.
func CoverImage(item *gofeed.Item) string {
	if item == nil {
		return ""
	}

	for _, enc := range item.Enclosures {
		if enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	if url := firstImageInHTML(item.Content); url != "" {
		return url
	}

	return firstImageInHTML(item.Description)
}

// firstImageInHTML is a best-effort scan, not a full parser. Malformed
// markup simply yields no match.
func firstImageInHTML(html string) string {
	if match := imgSrcRe.FindStringSubmatch(html); len(match) > 1 {
		return match[1]
	}
	return ""
}
