// Package pipeline runs the full batch analysis as a fixed stage sequence:
// load, clean, enrich, segment, aggregate, charts, reports. Stages run
// synchronously and share one in-memory dataset; any stage error aborts the
// run, except chart failures, which are collected per chart while the
// remaining stages proceed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"retailcli/internal/analytics"
	"retailcli/internal/charts"
	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/internal/errors"
	"retailcli/internal/exporter"
	"retailcli/internal/features"
	"retailcli/internal/infrastructure"
	"retailcli/internal/segmentation"
	"retailcli/pkg/contracts/domain"
)

// Stage identifiers, in execution order
const (
	StageLoad      = "load"
	StageClean     = "clean"
	StageEnrich    = "enrich"
	StageSegment   = "segment"
	StageAggregate = "aggregate"
	StageCharts    = "charts"
	StageReports   = "reports"
)

// Stages lists every pipeline stage in execution order.
var Stages = []string{
	StageLoad, StageClean, StageEnrich, StageSegment,
	StageAggregate, StageCharts, StageReports,
}

// Report file names written by the reports stage, alongside the well-known
// CleanOrdersCSV, CustomersCSV and AnalysisXLSX paths.
const (
	CleanReportCSV     = "clean_report.csv"
	ProductTiersCSV    = "product_tiers.csv"
	CategorySummaryCSV = "category_summary.csv"
	RegionSummaryCSV   = "region_summary.csv"
	MonthlySummaryCSV  = "monthly_summary.csv"
)

// DefaultTopN is the depth of the ranked product and state tables.
const DefaultTopN = 10

// Observer is notified as each stage finishes; err is nil on success. The
// analyzer CLI drives its terminal progress bar from it.
type Observer func(stage string, err error)

// Config describes one batch run.
type Config struct {
	// InputPath is the sales extract to analyze.
	InputPath string
	// Paths decides where charts and reports land.
	Paths *config.Paths
	// TopN overrides the ranked table depth; zero means DefaultTopN.
	TopN int
	// DayFirst prefers D/M/YYYY over M/D/YYYY for ambiguous dates.
	DayFirst bool
	// Delimiter overrides the CSV field delimiter; zero means comma.
	Delimiter rune
	// Observer, when set, is called after every stage.
	Observer Observer
}

// Result carries everything one run produced.
type Result struct {
	RunID string

	Orders           []domain.Order
	Report           dataset.CleanReport
	Rows             []features.Enriched
	Customers        []domain.Customer
	TierCounts       map[domain.CustomerTier]int
	Products         []domain.ProductPerformance
	UntieredProducts int
	KPIs             analytics.KPIReport

	ChartsWritten  []string
	ChartFailures  map[string]error
	ReportsWritten []string

	StageDurations map[string]time.Duration
	Duration       time.Duration
}

// Runner executes the batch pipeline.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a runner. A nil logger falls back to slog.Default().
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// aggregates holds the intermediate summaries the charts and reports stages
// consume. They are not part of the Result; callers that need summaries
// recompute them from Result.Rows.
type aggregates struct {
	monthly    *analytics.Summary
	categories *analytics.Summary // category + sub-category, feeds the grouped bar chart
	category   *analytics.Summary
	region     *analytics.Summary
	shipping   *analytics.Summary
	discounts  *analytics.Summary

	topProducts  []analytics.TopRow
	topStates    []analytics.TopRow
	correlations analytics.CorrelationMatrix
	margins      map[string][]float64
}

// Run executes every stage in order and returns the collected result. On a
// stage error the partial result is returned alongside the error so callers
// can still report what completed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.cfg.InputPath == "" {
		return nil, errors.NewAppValidationError("pipeline requires an input path")
	}
	if r.cfg.Paths == nil {
		return nil, errors.NewAppValidationError("pipeline requires configured paths")
	}

	// The run id doubles as the trace id so every stage log line correlates.
	ctx = infrastructure.EnsureTraceID(ctx)

	start := time.Now()
	res := &Result{
		RunID:          infrastructure.GetTraceID(ctx),
		StageDurations: make(map[string]time.Duration, len(Stages)),
	}

	r.logger.InfoContext(ctx, "operation_start",
		slog.String("run_id", res.RunID),
		slog.String("input", r.cfg.InputPath),
		slog.String("output", r.cfg.Paths.DataDir))

	var (
		table *dataset.RawTable
		agg   aggregates
	)

	stages := []struct {
		id  string
		run func(context.Context) error
	}{
		{StageLoad, func(ctx context.Context) error {
			loader := dataset.NewLoader(r.logger, dataset.LoaderConfig{
				Comma:   r.cfg.Delimiter,
				Lenient: true,
			})
			loaded, err := loader.Load(ctx, r.cfg.InputPath)
			if err != nil {
				return err
			}
			table = loaded
			return nil
		}},
		{StageClean, func(ctx context.Context) error {
			cleaner := dataset.NewCleaner(r.logger, dataset.CleanerConfig{DayFirst: r.cfg.DayFirst})
			cleaned, err := cleaner.Clean(ctx, table)
			if err != nil {
				return err
			}
			res.Orders = cleaned.Orders
			res.Report = cleaned.Report
			table = nil // raw rows are not needed past this point
			return nil
		}},
		{StageEnrich, func(ctx context.Context) error {
			res.Rows = features.Enrich(res.Orders)
			return nil
		}},
		{StageSegment, func(ctx context.Context) error {
			res.Customers = segmentation.ScoreCustomers(features.BuildCustomers(res.Orders))
			res.TierCounts = segmentation.TierCounts(res.Customers)
			res.Products, res.UntieredProducts = segmentation.BuildProductTiers(res.Rows)
			return nil
		}},
		{StageAggregate, func(ctx context.Context) error {
			return r.aggregate(ctx, res, &agg)
		}},
		{StageCharts, func(ctx context.Context) error {
			renderer := charts.NewRenderer(charts.DefaultConfig(r.cfg.Paths.ChartsDir), r.logger)
			res.ChartsWritten, res.ChartFailures = renderer.RenderAll(ctx, charts.Dataset{
				Monthly:           agg.monthly,
				TierCounts:        res.TierCounts,
				TopProducts:       agg.topProducts,
				TopStates:         agg.topStates,
				Categories:        agg.categories,
				Shipping:          agg.shipping,
				Discounts:         agg.discounts,
				Correlations:      agg.correlations,
				MarginsByCategory: agg.margins,
				KPIs:              res.KPIs,
			})
			return nil
		}},
		{StageReports, func(ctx context.Context) error {
			return r.writeReports(res, &agg)
		}},
	}

	for i, stage := range stages {
		select {
		case <-ctx.Done():
			r.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("run_id", res.RunID),
				slog.String("stage", stage.id))
			return res, fmt.Errorf("run cancelled before stage %s: %w", stage.id, ctx.Err())
		default:
		}

		r.logger.InfoContext(ctx, "stage_start",
			slog.String("run_id", res.RunID),
			slog.String("stage", stage.id),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(stages)))

		stageStart := time.Now()
		err := stage.run(ctx)
		res.StageDurations[stage.id] = time.Since(stageStart)

		if r.cfg.Observer != nil {
			r.cfg.Observer(stage.id, err)
		}
		if err != nil {
			r.logger.ErrorContext(ctx, "stage_error",
				slog.String("run_id", res.RunID),
				slog.String("stage", stage.id),
				slog.String("error", err.Error()))
			return res, err
		}

		r.logger.InfoContext(ctx, "stage_complete",
			slog.String("run_id", res.RunID),
			slog.String("stage", stage.id),
			slog.Duration("duration", res.StageDurations[stage.id]))
	}

	res.Duration = time.Since(start)
	r.logger.InfoContext(ctx, "operation_complete",
		slog.String("run_id", res.RunID),
		slog.Int("orders", len(res.Orders)),
		slog.Int("charts_written", len(res.ChartsWritten)),
		slog.Int("charts_failed", len(res.ChartFailures)),
		slog.Int("reports_written", len(res.ReportsWritten)),
		slog.Duration("duration", res.Duration))

	return res, nil
}

func (r *Runner) aggregate(ctx context.Context, res *Result, agg *aggregates) error {
	a := analytics.NewAggregator(r.logger)

	summaries := []struct {
		dst     **analytics.Summary
		groupBy []analytics.Dimension
	}{
		{&agg.monthly, []analytics.Dimension{analytics.DimOrderMonth}},
		{&agg.categories, []analytics.Dimension{analytics.DimCategory, analytics.DimSubCategory}},
		{&agg.category, []analytics.Dimension{analytics.DimCategory}},
		{&agg.region, []analytics.Dimension{analytics.DimRegion}},
		{&agg.shipping, []analytics.Dimension{analytics.DimShipMode}},
		{&agg.discounts, []analytics.Dimension{analytics.DimDiscountBand}},
	}
	for _, s := range summaries {
		summary, err := a.Summarize(ctx, res.Rows, analytics.Query{GroupBy: s.groupBy})
		if err != nil {
			return err
		}
		*s.dst = summary
	}

	topN := r.cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	var err error
	if agg.topProducts, err = a.TopN(res.Rows, analytics.DimProduct, analytics.MetricSales, topN, false); err != nil {
		return err
	}
	if agg.topStates, err = a.TopN(res.Rows, analytics.DimState, analytics.MetricSales, topN, false); err != nil {
		return err
	}

	agg.correlations = a.Correlations(res.Rows)
	agg.margins = analytics.MarginsByCategory(res.Rows)
	res.KPIs = a.KPIs(res.Rows)
	return nil
}

func (r *Runner) writeReports(res *Result, agg *aggregates) error {
	ordersExp := exporter.NewOrdersExporter(r.cfg.Paths)
	reportExp := exporter.NewReportExporter(r.cfg.Paths)
	workbook := exporter.NewExcelWriter(r.cfg.Paths)

	writes := []struct {
		path string
		run  func(path string) error
	}{
		{r.cfg.Paths.CleanOrdersCSV, func(p string) error {
			return ordersExp.ExportCleanedOrders(res.Orders, p)
		}},
		{r.cfg.Paths.GetReportPath(CleanReportCSV), func(p string) error {
			return reportExp.ExportCleanReport(res.Report, p)
		}},
		{r.cfg.Paths.CustomersCSV, func(p string) error {
			return reportExp.ExportCustomerSegments(res.Customers, p)
		}},
		{r.cfg.Paths.GetReportPath(ProductTiersCSV), func(p string) error {
			return reportExp.ExportProductTiers(res.Products, p)
		}},
		{r.cfg.Paths.GetReportPath(CategorySummaryCSV), func(p string) error {
			return reportExp.ExportSummary(agg.category, p)
		}},
		{r.cfg.Paths.GetReportPath(RegionSummaryCSV), func(p string) error {
			return reportExp.ExportSummary(agg.region, p)
		}},
		{r.cfg.Paths.GetReportPath(MonthlySummaryCSV), func(p string) error {
			return reportExp.ExportSummary(agg.monthly, p)
		}},
		{r.cfg.Paths.AnalysisXLSX, func(p string) error {
			return workbook.WriteAnalysisWorkbook(p, exporter.ExcelReport{
				KPIs:       res.KPIs,
				TierCounts: res.TierCounts,
				Customers:  res.Customers,
				Category:   agg.category,
				Region:     agg.region,
				Products:   res.Products,
			})
		}},
	}

	for _, w := range writes {
		if err := w.run(w.path); err != nil {
			return err
		}
		res.ReportsWritten = append(res.ReportsWritten, w.path)
	}
	return nil
}
