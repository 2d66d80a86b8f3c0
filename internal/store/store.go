package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"agora/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Query selects posts for the read path. Search is matched
// case-insensitively against title, subtitle, and author. Page starts at 1;
// Limit is the page size.
type Query struct {
	Search string
	Page   int
	Limit  int
}

// Result is one page of posts.
type Result struct {
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"hasMore"`
	Posts   []*model.Post `json:"posts"`
}

// Store persists normalized posts and per-source publication logos.
//
// UpsertSourcePosts is idempotent: re-running it with the same input leaves
// the collection unchanged. Posts a source no longer serves are never
// deleted; the merge is additive, keyed by post ID.
type Store interface {
	UpsertSourcePosts(ctx context.Context, sourceID string, posts []*model.Post) error
	PostsBySource(ctx context.Context, sourceID string) ([]*model.Post, error)
	QueryPosts(ctx context.Context, q Query) (*Result, error)
	SaveLogo(ctx context.Context, sourceID, logoURL string) error
	Logo(ctx context.Context, sourceID string) (string, error)
	Close() error
}

// sortPostsDesc orders posts by publish timestamp, newest first. The sort is
// stable so that insertion order breaks ties.
func sortPostsDesc(posts []*model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published.After(posts[j].Published)
	})
}

// matchesSearch reports whether the post's title, subtitle, or author
// contains the already-lowercased term.
func matchesSearch(p *model.Post, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Subtitle), lowered) ||
		strings.Contains(strings.ToLower(p.Author), lowered)
}

// paginate slices one page out of the full result set and fills in the
// envelope fields. hasMore is true while page*limit < total.
func paginate(posts []*model.Post, q Query) *Result {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	total := len(posts)
	start := (page - 1) * limit
	end := page * limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Result{
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
		Posts:   posts[start:end],
	}
}
