package usage

import (
	"context"
	"time"

	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
)

// Store persists per-app usage counters.
type Store interface {
	Add(ctx context.Context, app string, at time.Time, m metrics.Metrics) error
	Get(ctx context.Context, app string, p domusage.Period, at time.Time) (metrics.Metrics, error)
}
