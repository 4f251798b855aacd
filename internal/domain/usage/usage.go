package usage

import (
	"time"

	"github.com/apisearch-io/search-server-sub000/internal/domain/usage/metrics"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// IsValid reports whether p is a known period.
func (p Period) IsValid() bool {
	return p == PeriodDay || p == PeriodMonth
}

// Bounds returns the UTC start and end of the period containing t.
func (p Period) Bounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	if p == PeriodMonth {
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Report is the search usage of an app for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	app         string
	metrics     metrics.Metrics
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, app string, m metrics.Metrics) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		app:         app,
		metrics:     m,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// App returns the app the report covers.
func (r *Report) App() string { return r.app }

// Metrics returns the usage metrics.
func (r *Report) Metrics() metrics.Metrics { return r.metrics }
