package apisearch

import (
	"context"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	domusage "github.com/apisearch-io/search-server-sub000/internal/domain/usage"
	healthuc "github.com/apisearch-io/search-server-sub000/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, app string, indices []string, q query.Query) ([]*result.Result, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, app string, indices []string, q query.Query,
) ([]*result.Result, error) {
	return m.searchFn(ctx, app, indices, q)
}

// --- usageUseCase mock ---

type mockUsageUC struct {
	getReportFn func(ctx context.Context, app string, period domusage.Period) (domusage.Report, error)
}

func (m *mockUsageUC) GetReport(ctx context.Context, app string, period domusage.Period) (domusage.Report, error) {
	return m.getReportFn(ctx, app, period)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- pinger mock ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }
