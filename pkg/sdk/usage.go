package apisearch

import (
	"context"
	"fmt"
	"time"

	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains the search usage of an app for a time period.
type UsageReport struct {
	App         string
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	Metrics     UsageMetrics
}

// UsageMetrics are the metered totals of a period.
type UsageMetrics struct {
	Searches int64
	Indices  int64
	Hits     int64
}

// Usage returns the usage report of app for the current period.
// Without WithUsage the counters are always zero.
func (c *Client) Usage(ctx context.Context, app string, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err, "app", app) }()

	report, err := c.usageSvc.GetReport(ctx, app, domusage.Period(period))
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage: %w", err)
	}
	m := report.Metrics()

	return UsageReport{
		App:         report.App(),
		Period:      UsagePeriod(report.Period()),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Metrics: UsageMetrics{
			Searches: m.Searches(),
			Indices:  m.Indices(),
			Hits:     m.Hits(),
		},
	}, nil
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, app string, period domusage.Period) (domusage.Report, error)
}
