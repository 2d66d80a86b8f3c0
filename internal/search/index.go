// Package search maintains a Bleve full-text index over posts.
package search

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"agora/internal/model"
)

// Index wraps a Bleve index keyed by post ID. Callers load the full posts
// from their store; the index returns matching IDs only.
type Index struct {
	idx bleve.Index
}

// Open opens the index at indexPath, creating it when absent.
func Open(indexPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, err
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, err
		}
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = false
	title.IncludeTermVectors = true

	subtitle := bleve.NewTextFieldMapping()
	subtitle.Analyzer = standard.Name
	subtitle.Store = false

	author := bleve.NewTextFieldMapping()
	author.Analyzer = standard.Name
	author.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("subtitle", subtitle)
	dm.AddFieldMappingsAt("author", author)

	im.DefaultMapping = dm
	return im
}

// IndexPosts adds or replaces posts in the index as one batch.
func (i *Index) IndexPosts(posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	batch := i.idx.NewBatch()
	for _, p := range posts {
		if err := batch.Index(p.ID, map[string]any{
			"title":    p.Title,
			"subtitle": p.Subtitle,
			"author":   p.Author,
		}); err != nil {
			return err
		}
	}
	return i.idx.Batch(batch)
}

// Search returns the IDs of posts matching query, best score first.
// An OR of per-term match and prefix queries across the indexed fields,
// with title weighted above subtitle and author.
func (i *Index) Search(query string, limit int) ([]string, error) {
	tokens := strings.Fields(strings.TrimSpace(query))
	if len(tokens) == 0 || limit <= 0 {
		return []string{}, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for field, boost := range map[string]float64{
			"title":    4.0,
			"subtitle": 2.0,
			"author":   2.0,
		} {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(field)
			qm.SetBoost(boost)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(strings.ToLower(tok))
			qp.SetField(field)
			qp.SetBoost(boost * 0.8)
			qs = append(qs, qp)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// DocCount reports the number of indexed posts.
func (i *Index) DocCount() (uint64, error) {
	return i.idx.DocCount()
}

func (i *Index) Close() error {
	return i.idx.Close()
}
