package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"agora/internal/model"
)

// RedisStore keeps posts as JSON values with a sorted set scored by publish
// time for newest-first scans, plus a per-source ID set. Intended for
// deployments where the cache should outlive the process but a local file
// or bbolt database is not available.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func postKey(id string) string            { return "agora:post:" + id }
func sourceSetKey(sourceID string) string { return "agora:source:" + sourceID }
func logoKey(sourceID string) string      { return "agora:logo:" + sourceID }

const byDateKey = "agora:posts:by_date"

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) UpsertSourcePosts(ctx context.Context, sourceID string, posts []*model.Post) error {
	for _, p := range posts {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := s.rdb.Set(ctx, postKey(p.ID), b, 0).Err(); err != nil {
			return fmt.Errorf("storing post %s: %w", p.ID, err)
		}
		z := redis.Z{Score: float64(p.Published.Unix()), Member: p.ID}
		if err := s.rdb.ZAdd(ctx, byDateKey, z).Err(); err != nil {
			return fmt.Errorf("indexing post %s: %w", p.ID, err)
		}
		if err := s.rdb.SAdd(ctx, sourceSetKey(sourceID), p.ID).Err(); err != nil {
			return fmt.Errorf("tracking post %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *RedisStore) PostsBySource(ctx context.Context, sourceID string) ([]*model.Post, error) {
	ids, err := s.rdb.SMembers(ctx, sourceSetKey(sourceID)).Result()
	if err != nil {
		return nil, err
	}
	posts, err := s.loadPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortPostsDesc(posts)
	return posts, nil
}

func (s *RedisStore) QueryPosts(ctx context.Context, q Query) (*Result, error) {
	// ZRevRange already yields newest-first order.
	ids, err := s.rdb.ZRevRange(ctx, byDateKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	posts, err := s.loadPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if matchesSearch(p, term) {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}

	return paginate(posts, q), nil
}

func (s *RedisStore) SaveLogo(ctx context.Context, sourceID, logoURL string) error {
	return s.rdb.Set(ctx, logoKey(sourceID), logoURL, 0).Err()
}

func (s *RedisStore) Logo(ctx context.Context, sourceID string) (string, error) {
	logoURL, err := s.rdb.Get(ctx, logoKey(sourceID)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return logoURL, nil
}

// loadPosts fetches posts by ID, skipping IDs whose values have expired or
// gone missing.
func (s *RedisStore) loadPosts(ctx context.Context, ids []string) ([]*model.Post, error) {
	posts := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		b, err := s.rdb.Get(ctx, postKey(id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var p model.Post
		if err := json.Unmarshal(b, &p); err != nil {
			continue
		}
		posts = append(posts, &p)
	}
	return posts, nil
}
