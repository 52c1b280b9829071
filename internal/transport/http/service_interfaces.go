package http

import (
	"context"

	"retailcli/internal/analytics"
	"retailcli/internal/dataset"
	"retailcli/internal/services"
	"retailcli/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the analytics operations the handlers
// depend on. Declared here so handler tests can substitute mocks.
type AnalyticsServiceInterface interface {
	KPIs(ctx context.Context, filter domain.OrderFilter) (analytics.KPIReport, error)
	Summary(ctx context.Context, groupBy []analytics.Dimension, filter domain.OrderFilter) (*analytics.Summary, error)
	TopN(ctx context.Context, dimension analytics.Dimension, metric analytics.Metric, n int, ascending bool, filter domain.OrderFilter) ([]analytics.TopRow, error)
	Segments(ctx context.Context) (*services.SegmentReport, error)
	Filters(ctx context.Context) (*services.FilterOptions, error)
	CleaningReport(ctx context.Context) (dataset.CleanReport, error)
}

// ChartServiceInterface defines the chart rendering operation.
type ChartServiceInterface interface {
	Render(ctx context.Context, name string, filter domain.OrderFilter) (string, error)
}

// DatasetReloaderInterface triggers a fresh load of the extract.
type DatasetReloaderInterface interface {
	Reload(ctx context.Context) (*services.Snapshot, error)
}
