package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"agora/internal/config"
)

// Fetcher retrieves feed documents over HTTP. It remembers ETag and
// Last-Modified values per feed URL for the lifetime of the process and
// issues conditional requests, so unchanged feeds cost one cheap 304.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	ignoreCache bool

	mu   sync.Mutex
	meta map[string]feedMeta
}

type feedMeta struct {
	etag         string
	lastModified string
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Feed.HTTPTimeout,
		},
		userAgent: cfg.Feed.UserAgent,
		meta:      make(map[string]feedMeta),
	}
}

// SetIgnoreCache configures the fetcher to ignore ETag/Last-Modified
// headers and always retrieve the full document.
func (f *Fetcher) SetIgnoreCache(ignore bool) {
	f.ignoreCache = ignore
}

// Fetch retrieves the feed at feedURL. The second return value is false
// when the upstream reports the document unmodified; in that case the
// response is nil and the caller has nothing to parse.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*http.Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	if !f.ignoreCache {
		f.mu.Lock()
		if m, ok := f.meta[feedURL]; ok {
			if m.etag != "" {
				req.Header.Set("If-None-Match", m.etag)
			}
			if m.lastModified != "" {
				req.Header.Set("If-Modified-Since", m.lastModified)
			}
		}
		f.mu.Unlock()
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, false, nil
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	f.rememberMetadata(feedURL, resp)
	return resp, true, nil
}

func (f *Fetcher) rememberMetadata(feedURL string, resp *http.Response) {
	m := feedMeta{
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	if m.etag == "" && m.lastModified == "" {
		return
	}

	f.mu.Lock()
	f.meta[feedURL] = m
	f.mu.Unlock()
}
