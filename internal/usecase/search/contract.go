package search

import (
	"context"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
)

// Compiler translates domain queries into engine search sources.
type Compiler interface {
	Compile(q query.Query) (*elastic.SearchSource, error)
}

// Searcher runs a search source against one engine index.
type Searcher interface {
	Search(ctx context.Context, index string, src *elastic.SearchSource) (*elastic.SearchResult, error)
}

// UsageRecorder accounts served searches per app.
type UsageRecorder interface {
	Record(ctx context.Context, app string, m metrics.Metrics) error
}
