package services

import (
	"context"
	"log/slog"
	"sync"

	"retailcli/internal/analytics"
	"retailcli/internal/charts"
	"retailcli/internal/errors"
	"retailcli/internal/features"
	"retailcli/internal/segmentation"
	"retailcli/pkg/contracts/domain"
)

// chartTopN bounds the bar charts to the same ranking depth the dashboard
// tables use.
const chartTopN = 10

// ChartService renders charts on demand for the current filter selection.
// The underlying plot library mutates shared font state, so renders are
// serialized; the aggregation feeding them is not.
type ChartService struct {
	cache    *DatasetCache
	agg      *analytics.Aggregator
	renderer *charts.Renderer
	logger   *slog.Logger

	mu sync.Mutex
}

// NewChartService creates a chart service writing images under chartsDir.
func NewChartService(cache *DatasetCache, chartsDir string, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartService{
		cache:    cache,
		agg:      analytics.NewAggregator(logger),
		renderer: charts.NewRenderer(charts.DefaultConfig(chartsDir), logger),
		logger:   logger,
	}
}

// Path returns where a rendered chart lands on disk.
func (s *ChartService) Path(name string) string {
	return s.renderer.Path(name)
}

// Render builds the aggregate a chart needs from the filtered dataset and
// renders it, returning the written file path. Unknown chart names report
// not-found so handlers can map them to 404.
func (s *ChartService) Render(ctx context.Context, name string, filter domain.OrderFilter) (string, error) {
	if !charts.IsChartName(name) {
		return "", errors.NewNotFoundError("chart " + name)
	}

	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	rows := filterRows(snap.Rows, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case charts.ChartTimeSeries:
		monthly, err := s.summarize(ctx, rows, analytics.DimOrderMonth)
		if err != nil {
			return "", err
		}
		return s.renderer.TimeSeries(monthly)
	case charts.ChartSegments:
		counts := snap.TierCounts
		if !filter.IsZero() {
			scored := segmentation.ScoreCustomers(features.BuildCustomers(ordersOf(rows)))
			counts = segmentation.TierCounts(scored)
		}
		return s.renderer.CustomerSegments(counts)
	case charts.ChartProducts:
		top, err := s.agg.TopN(rows, analytics.DimProduct, analytics.MetricSales, chartTopN, false)
		if err != nil {
			return "", err
		}
		return s.renderer.ProductPerformance(top)
	case charts.ChartGeography:
		top, err := s.agg.TopN(rows, analytics.DimState, analytics.MetricSales, chartTopN, false)
		if err != nil {
			return "", err
		}
		return s.renderer.GeographicAnalysis(top)
	case charts.ChartCategories:
		categories, err := s.summarize(ctx, rows, analytics.DimCategory, analytics.DimSubCategory)
		if err != nil {
			return "", err
		}
		return s.renderer.CategoryAnalysis(categories)
	case charts.ChartShipping:
		shipping, err := s.summarize(ctx, rows, analytics.DimShipMode)
		if err != nil {
			return "", err
		}
		return s.renderer.ShippingAnalysis(shipping)
	case charts.ChartDiscounts:
		discounts, err := s.summarize(ctx, rows, analytics.DimDiscountBand)
		if err != nil {
			return "", err
		}
		return s.renderer.DiscountAnalysis(discounts)
	case charts.ChartCorrelation:
		return s.renderer.CorrelationHeatmap(s.agg.Correlations(rows))
	case charts.ChartMarginBoxplot:
		return s.renderer.ProfitMarginBoxplot(analytics.MarginsByCategory(rows))
	default:
		return s.renderer.KPIDashboard(s.agg.KPIs(rows))
	}
}

func (s *ChartService) summarize(ctx context.Context, rows []features.Enriched, groupBy ...analytics.Dimension) (*analytics.Summary, error) {
	return s.agg.Summarize(ctx, rows, analytics.Query{GroupBy: groupBy})
}

func ordersOf(rows []features.Enriched) []domain.Order {
	orders := make([]domain.Order, len(rows))
	for i, r := range rows {
		orders[i] = r.Order
	}
	return orders
}
