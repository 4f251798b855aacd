package apisearch

import (
	"context"

	healthuc "github.com/apisearch-io/search-server-sub000/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // "elasticsearch", "cache" -> "ok"/"error"
}

// Ready reports whether searches can be served. A failing cache only degrades.
func (h HealthStatus) Ready() bool { return h.Status != string(healthuc.Unhealthy) }

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
