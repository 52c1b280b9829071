package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"retailcli/internal/analytics"
	"retailcli/internal/charts"
	"retailcli/internal/dataset"
	"retailcli/internal/features"
	"retailcli/pkg/contracts/domain"
)

// AnalyticsService answers dashboard queries from the cached dataset. Every
// call recomputes from the immutable snapshot, so concurrent requests are
// independent.
type AnalyticsService struct {
	cache  *DatasetCache
	agg    *analytics.Aggregator
	logger *slog.Logger
}

// NewAnalyticsService creates the analytics service.
func NewAnalyticsService(cache *DatasetCache, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		cache:  cache,
		agg:    analytics.NewAggregator(logger),
		logger: logger,
	}
}

// KPIs returns the headline figures for the filtered dataset.
func (s *AnalyticsService) KPIs(ctx context.Context, filter domain.OrderFilter) (analytics.KPIReport, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return analytics.KPIReport{}, err
	}
	return s.agg.KPIs(filterRows(snap.Rows, filter)), nil
}

// Summary groups the filtered dataset by the requested dimensions. The
// snapshot's tier joins are wired in so customer_tier and product_tier
// groupings resolve.
func (s *AnalyticsService) Summary(ctx context.Context, groupBy []analytics.Dimension, filter domain.OrderFilter) (*analytics.Summary, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.agg.Summarize(ctx, snap.Rows, analytics.Query{
		GroupBy:       groupBy,
		Filter:        filter,
		CustomerTiers: snap.TiersByCustomer,
		ProductTiers:  snap.TiersByProduct,
	})
}

// TopN returns the ranked table for the filtered dataset.
func (s *AnalyticsService) TopN(ctx context.Context, dimension analytics.Dimension, metric analytics.Metric, n int, ascending bool, filter domain.OrderFilter) ([]analytics.TopRow, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.agg.TopN(filterRows(snap.Rows, filter), dimension, metric, n, ascending)
}

// SegmentReport is the customer value tier table.
type SegmentReport struct {
	TierCounts map[domain.CustomerTier]int `json:"tier_counts"`
	Customers  []domain.Customer           `json:"customers"`
}

// Segments returns the scored customers and their tier distribution. Tiers
// are always computed over the whole dataset; a filtered population would
// shift every quartile boundary and make tiers incomparable between requests.
func (s *AnalyticsService) Segments(ctx context.Context) (*SegmentReport, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SegmentReport{
		TierCounts: snap.TierCounts,
		Customers:  snap.Customers,
	}, nil
}

// FilterOptions populates the dashboard filter controls.
type FilterOptions struct {
	Categories []string              `json:"categories"`
	Regions    []string              `json:"regions"`
	DateFrom   string                `json:"date_from"`
	DateTo     string                `json:"date_to"`
	Dimensions []analytics.Dimension `json:"dimensions"`
	Metrics    []analytics.Metric    `json:"metrics"`
	Charts     []string              `json:"charts"`
}

// Filters returns the distinct filter values of the dataset plus the defined
// dimensions, metrics and chart names.
func (s *AnalyticsService) Filters(ctx context.Context) (*FilterOptions, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	categories := make(map[string]bool)
	regions := make(map[string]bool)
	var minDate, maxDate time.Time
	for i, o := range snap.Orders {
		categories[o.Category] = true
		regions[o.Region] = true
		if i == 0 || o.OrderDate.Before(minDate) {
			minDate = o.OrderDate
		}
		if o.OrderDate.After(maxDate) {
			maxDate = o.OrderDate
		}
	}

	opts := &FilterOptions{
		Categories: sortedKeys(categories),
		Regions:    sortedKeys(regions),
		Dimensions: analytics.Dimensions,
		Metrics:    analytics.Metrics,
		Charts:     charts.ChartNames,
	}
	if len(snap.Orders) > 0 {
		opts.DateFrom = minDate.Format("2006-01-02")
		opts.DateTo = maxDate.Format("2006-01-02")
	}
	return opts, nil
}

// CleaningReport returns the change report of the snapshot's cleaning pass.
func (s *AnalyticsService) CleaningReport(ctx context.Context) (dataset.CleanReport, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return dataset.CleanReport{}, err
	}
	return snap.Report, nil
}

// filterRows returns the rows matching the filter. A zero filter returns the
// input slice unchanged.
func filterRows(rows []features.Enriched, f domain.OrderFilter) []features.Enriched {
	if f.IsZero() {
		return rows
	}
	out := make([]features.Enriched, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r.Order) {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
