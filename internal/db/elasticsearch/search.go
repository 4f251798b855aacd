package elasticsearch

import (
	"context"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/db"
)

// Search runs src against a single index.
func (s *Store) Search(ctx context.Context, index string, src *elastic.SearchSource) (*elastic.SearchResult, error) {
	res, err := s.client.Search(s.indexName(index)).SearchSource(src).Do(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: classify(err)}
	}
	return res, nil
}
