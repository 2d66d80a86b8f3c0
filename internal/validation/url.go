// Package validation checks source feed URLs before the fetch pipeline
// touches them. A bad roster entry is skipped, never fatal.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

const maxURLLength = 2048

// FeedURLValidator validates configured feed URLs.
type FeedURLValidator struct {
	MaxLength int
}

func NewFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{MaxLength: maxURLLength}
}

// ValidateAndNormalize validates a feed URL and returns the normalized
// version. URLs without a scheme default to HTTPS.
func (v *FeedURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL missing host")
	}
	if strings.Contains(parsed.Host, " ") {
		return "", fmt.Errorf("URL host contains spaces")
	}

	return parsed.String(), nil
}
