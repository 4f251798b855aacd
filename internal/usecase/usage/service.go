package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/apisearch-io/search-server-sub000/internal/domain"
	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
)

// Service records and reports search usage.
type Service struct {
	store Store
	now   func() time.Time
}

// New creates a Service. store can be nil (usage tracking disabled).
func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record adds m to the app counters of the current day and month.
func (s *Service) Record(ctx context.Context, app string, m metrics.Metrics) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Add(ctx, app, s.now(), m); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// GetReport builds a usage report of app for the current period.
func (s *Service) GetReport(ctx context.Context, app string, period domusage.Period) (domusage.Report, error) {
	if !period.IsValid() {
		return domusage.Report{}, domain.NewValidationError("period", fmt.Sprintf("unknown period %q", period))
	}

	now := s.now()
	start, end := period.Bounds(now)

	var m metrics.Metrics
	if s.store != nil {
		var err error
		if m, err = s.store.Get(ctx, app, period, now); err != nil {
			return domusage.Report{}, fmt.Errorf("get usage: %w", err)
		}
	}

	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), app, m), nil
}
