package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"agora/internal/model"
	"agora/internal/search"
)

var (
	postsBucket = []byte("posts")
	logosBucket = []byte("logos")
)

// BoltStore is the document-store backend: posts upserted by ID into bbolt
// as JSON values, with a Bleve index over title/subtitle/author kept in
// sync for free-text search.
type BoltStore struct {
	db  *bolt.DB
	idx *search.Index
}

func NewBoltStore(dbPath, indexPath string) (*BoltStore, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{postsBucket, logosBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	idx, err := search.Open(indexPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening search index: %w", err)
	}

	return &BoltStore{db: db, idx: idx}, nil
}

func (s *BoltStore) Close() error {
	if err := s.idx.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func (s *BoltStore) UpsertSourcePosts(_ context.Context, _ string, posts []*model.Post) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(postsBucket)
		for _, p := range posts {
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(p.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving posts: %w", err)
	}

	if err := s.idx.IndexPosts(posts); err != nil {
		return fmt.Errorf("indexing posts: %w", err)
	}
	return nil
}

func (s *BoltStore) PostsBySource(_ context.Context, sourceID string) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(postsBucket).ForEach(func(_, v []byte) error {
			var p model.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return nil
			}
			if p.SourceID == sourceID {
				posts = append(posts, &p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortPostsDesc(posts)
	return posts, nil
}

func (s *BoltStore) QueryPosts(ctx context.Context, q Query) (*Result, error) {
	var posts []*model.Post
	var err error

	if strings.TrimSpace(q.Search) == "" {
		posts, err = s.allPosts()
	} else {
		posts, err = s.searchPosts(q.Search)
	}
	if err != nil {
		return nil, err
	}

	sortPostsDesc(posts)
	return paginate(posts, q), nil
}

func (s *BoltStore) allPosts() ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(postsBucket).ForEach(func(_, v []byte) error {
			var p model.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return nil
			}
			posts = append(posts, &p)
			return nil
		})
	})
	return posts, err
}

func (s *BoltStore) searchPosts(query string) ([]*model.Post, error) {
	total, err := s.idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}
	ids, err := s.idx.Search(query, int(total))
	if err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}

	posts := make([]*model.Post, 0, len(ids))
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(postsBucket)
		for _, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				continue
			}
			var p model.Post
			if err := json.Unmarshal(data, &p); err != nil {
				continue
			}
			posts = append(posts, &p)
		}
		return nil
	})
	return posts, err
}

func (s *BoltStore) SaveLogo(_ context.Context, sourceID, logoURL string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(logosBucket).Put([]byte(sourceID), []byte(logoURL))
	})
}

func (s *BoltStore) Logo(_ context.Context, sourceID string) (string, error) {
	var logoURL string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(logosBucket).Get([]byte(sourceID))
		if data == nil {
			return ErrNotFound
		}
		logoURL = string(data)
		return nil
	})
	return logoURL, err
}
