package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agora/internal/model"
)

const allPostsFile = "all-posts.json"

// FileStore keeps one JSON document per source plus one merged document,
// all human-readable arrays of posts, under <dir>/cache. Logos live as tiny
// JSON documents under <dir>/logos. Every write is a whole-file overwrite.
type FileStore struct {
	cacheDir string
	logosDir string
}

type logoRecord struct {
	LogoURL string `json:"logo_url"`
}

func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{
		cacheDir: filepath.Join(dir, "cache"),
		logosDir: filepath.Join(dir, "logos"),
	}
	for _, d := range []string{s.cacheDir, s.logosDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) UpsertSourcePosts(_ context.Context, sourceID string, posts []*model.Post) error {
	if err := s.writeJSON(s.sourceFile(sourceID), posts); err != nil {
		return fmt.Errorf("writing source cache: %w", err)
	}

	// Rebuild the merged document: drop entries superseded by ID, append
	// the new list, re-sort. Entries the feed no longer serves stay put;
	// the merge is additive, not a mirror.
	merged, err := s.readPosts(filepath.Join(s.cacheDir, allPostsFile))
	if err != nil {
		return fmt.Errorf("reading merged cache: %w", err)
	}

	replaced := make(map[string]bool, len(posts))
	for _, p := range posts {
		replaced[p.ID] = true
	}

	kept := merged[:0]
	for _, p := range merged {
		if replaced[p.ID] {
			continue
		}
		kept = append(kept, p)
	}
	kept = append(kept, posts...)
	sortPostsDesc(kept)

	if err := s.writeJSON(filepath.Join(s.cacheDir, allPostsFile), kept); err != nil {
		return fmt.Errorf("writing merged cache: %w", err)
	}
	return nil
}

func (s *FileStore) PostsBySource(_ context.Context, sourceID string) ([]*model.Post, error) {
	return s.readPosts(s.sourceFile(sourceID))
}

func (s *FileStore) QueryPosts(_ context.Context, q Query) (*Result, error) {
	posts, err := s.readPosts(filepath.Join(s.cacheDir, allPostsFile))
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

func (s *FileStore) SaveLogo(_ context.Context, sourceID, logoURL string) error {
	return s.writeJSON(filepath.Join(s.logosDir, sourceID+".json"), logoRecord{LogoURL: logoURL})
}

func (s *FileStore) Logo(_ context.Context, sourceID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.logosDir, sourceID+".json"))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading logo: %w", err)
	}
	var rec logoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("decoding logo: %w", err)
	}
	return rec.LogoURL, nil
}

func (s *FileStore) sourceFile(sourceID string) string {
	return filepath.Join(s.cacheDir, sourceID+".json")
}

// readPosts returns an empty slice when the file does not exist yet; a
// missing cache is not an error on the read path.
func (s *FileStore) readPosts(path string) ([]*model.Post, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []*model.Post{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	var posts []*model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decoding cache file: %w", err)
	}
	return posts, nil
}

func (s *FileStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
