package apisearch

import (
	"context"
	"fmt"
	"time"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
)

// searchUseCase is the internal interface for searches.
type searchUseCase interface {
	Search(ctx context.Context, app string, indices []string, q query.Query) ([]*result.Result, error)
}

// Search runs q against every index concurrently on behalf of app.
// The i-th result belongs to indices[i].
func (c *Client) Search(ctx context.Context, app string, indices []string, q Query) (res []*Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "app", app, "indices", len(indices)) }()

	res, err = c.searchSvc.Search(ctx, app, indices, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// SearchOne runs q against a single index.
func (c *Client) SearchOne(ctx context.Context, app, index string, q Query) (*Result, error) {
	res, err := c.Search(ctx, app, []string{index}, q)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}
