// Package refresh drives the feed-refresh pipeline: poll every configured
// source, normalize entries, detect content newer than the per-source
// high-water mark, and persist results.
package refresh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"agora/internal/config"
	"agora/internal/debuglog"
	"agora/internal/feed"
	"agora/internal/model"
	"agora/internal/store"
	"agora/internal/validation"
)

// Refresher iterates the source roster sequentially. One failing source
// never aborts the batch; its result is simply empty until the next cycle.
//
// High-water marks live in memory only and reset to the epoch on restart,
// so a restart may re-flag previously seen posts as new. Best effort by
// design.
type Refresher struct {
	store        store.Store
	fetcher      *feed.Fetcher
	parser       *feed.Parser
	sources      []model.Source
	urlValidator *validation.FeedURLValidator

	mu        sync.Mutex
	lastSeen  map[string]time.Time
	latest    []*model.Post
	logoSaved map[string]bool
}

func New(st store.Store, cfg *config.Config) *Refresher {
	return &Refresher{
		store:        st,
		fetcher:      feed.NewFetcher(cfg),
		parser:       feed.NewParser(),
		sources:      cfg.Sources,
		urlValidator: validation.NewFeedURLValidator(),
		lastSeen:     make(map[string]time.Time),
		logoSaved:    make(map[string]bool),
	}
}

// SetForceRefresh makes every fetch bypass conditional-request caching.
func (r *Refresher) SetForceRefresh(force bool) {
	r.fetcher.SetIgnoreCache(force)
}

// Sources returns the configured roster.
func (r *Refresher) Sources() []model.Source {
	return r.sources
}

// LatestNewPosts returns the posts discovered by the most recent cycle
// that found new content. The buffer is replaced, not appended to.
func (r *Refresher) LatestNewPosts() []*model.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// RefreshAll runs one pass over every source. The mutex guarantees that a
// timer-triggered and an on-demand refresh never overlap.
//
// A non-nil error reports the first persistence failure; sources processed
// after the failure are still fetched and persisted.
func (r *Refresher) RefreshAll(ctx context.Context) (*model.RefreshResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &model.RefreshResult{NewPosts: []*model.Post{}}
	seen := make(map[string]bool)
	var firstErr error

	for _, src := range r.sources {
		log := debuglog.WithFields(map[string]interface{}{"source": src.ID})

		feedURL, err := r.urlValidator.ValidateAndNormalize(src.FeedURL)
		if err != nil {
			log.Warnf("skipping source with bad feed URL: %v", err)
			continue
		}

		posts, logoURL, updated, err := r.fetchSource(ctx, feedURL, src)
		if err != nil {
			log.Errorf("fetch failed: %v", err)
			continue
		}
		if !updated {
			log.Debugf("feed not modified")
			continue
		}

		if logoURL != "" && !r.logoSaved[src.ID] {
			if err := r.store.SaveLogo(ctx, src.ID, logoURL); err != nil {
				log.Errorf("saving logo: %v", err)
			} else {
				r.logoSaved[src.ID] = true
			}
		}

		if len(posts) > 0 {
			mark := r.lastSeen[src.ID]
			newest := mark
			for _, p := range posts {
				if p.Published.After(newest) {
					newest = p.Published
				}
			}

			if newest.After(mark) {
				result.NewContentFound = true
				for _, p := range posts {
					if p.Published.After(mark) && !seen[p.ID] {
						seen[p.ID] = true
						result.NewPosts = append(result.NewPosts, p)
					}
				}
				r.lastSeen[src.ID] = newest
			}
		}

		// Persisted regardless of whether anything new was detected;
		// the upsert is idempotent.
		if err := r.store.UpsertSourcePosts(ctx, src.ID, posts); err != nil {
			log.Errorf("persisting posts: %v", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("persisting posts for %s: %w", src.ID, err)
			}
			continue
		}

		if len(posts) > 0 {
			result.UpdatedCount++
		}
		log.Infof("refreshed: %d posts, %d new so far", len(posts), len(result.NewPosts))
	}

	if result.NewContentFound {
		r.latest = result.NewPosts
	}

	return result, firstErr
}

func (r *Refresher) fetchSource(ctx context.Context, feedURL string, src model.Source) ([]*model.Post, string, bool, error) {
	resp, updated, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, "", false, err
	}
	if !updated {
		return nil, "", false, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", false, fmt.Errorf("reading response: %w", err)
	}

	posts, logoURL, err := r.parser.Parse(bytes.NewReader(body), src)
	if err != nil {
		return nil, "", false, err
	}
	return posts, logoURL, true, nil
}
