package charts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"retailcli/internal/analytics"
	"retailcli/internal/errors"
	"retailcli/pkg/contracts/domain"
)

// Chart names double as output file names (with ChartExt appended).
const (
	ChartTimeSeries    = "time_series_analysis"
	ChartSegments      = "customer_segments"
	ChartProducts      = "product_performance"
	ChartGeography     = "geographic_analysis"
	ChartCategories    = "category_analysis"
	ChartShipping      = "shipping_analysis"
	ChartDiscounts     = "discount_analysis"
	ChartCorrelation   = "correlation_matrix"
	ChartMarginBoxplot = "profit_margin_boxplot"
	ChartKPIs          = "kpi_dashboard"

	// ChartExt is the output image format extension.
	ChartExt = ".png"
)

// ChartNames lists every chart RenderAll produces, in render order.
var ChartNames = []string{
	ChartTimeSeries, ChartSegments, ChartProducts, ChartGeography,
	ChartCategories, ChartShipping, ChartDiscounts, ChartCorrelation,
	ChartMarginBoxplot, ChartKPIs,
}

// IsChartName reports whether name is a defined chart.
func IsChartName(name string) bool {
	for _, n := range ChartNames {
		if name == n {
			return true
		}
	}
	return false
}

// Config controls chart output. Width and height are vector sizes in vg
// units, so rendered pixel dimensions follow the engine's DPI.
type Config struct {
	OutputDir string
	Width     vg.Length
	Height    vg.Length
}

// DefaultConfig returns the standard 10x6 inch chart configuration.
func DefaultConfig(outputDir string) Config {
	return Config{
		OutputDir: outputDir,
		Width:     10 * vg.Inch,
		Height:    6 * vg.Inch,
	}
}

// Renderer draws the fixed chart set as PNG files. Every chart is
// deterministic for identical input: fixed palette, fixed dimensions, no
// clock and no randomness.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// NewRenderer creates a renderer. A nil logger falls back to slog.Default();
// zero width or height fall back to the default dimensions.
func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig(cfg.OutputDir)
	if cfg.Width <= 0 {
		cfg.Width = defaults.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = defaults.Height
	}
	return &Renderer{cfg: cfg, logger: logger}
}

// Path returns the output file path of a chart.
func (r *Renderer) Path(name string) string {
	return filepath.Join(r.cfg.OutputDir, name+ChartExt)
}

// save writes the finished plot to the chart's fixed file name.
func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return "", errors.NewRenderError("create chart directory", err)
	}
	path := r.Path(name)
	if err := p.Save(r.cfg.Width, r.cfg.Height, path); err != nil {
		return "", errors.NewRenderError("save chart "+name, err)
	}
	return path, nil
}

// Dataset bundles the aggregates RenderAll draws from. Each field feeds the
// chart(s) named in its comment.
type Dataset struct {
	Monthly           *analytics.Summary          // time_series_analysis; grouped by order month
	TierCounts        map[domain.CustomerTier]int // customer_segments
	TopProducts       []analytics.TopRow          // product_performance
	TopStates         []analytics.TopRow          // geographic_analysis
	Categories        *analytics.Summary          // category_analysis; grouped by category + sub-category
	Shipping          *analytics.Summary          // shipping_analysis; grouped by ship mode
	Discounts         *analytics.Summary          // discount_analysis; grouped by discount band
	Correlations      analytics.CorrelationMatrix // correlation_matrix
	MarginsByCategory map[string][]float64        // profit_margin_boxplot
	KPIs              analytics.KPIReport         // kpi_dashboard
}

// RenderAll draws the full chart set. A failing chart is logged at WARN and
// skipped; the remaining charts still render. It returns the written file
// paths and the failures keyed by chart name.
func (r *Renderer) RenderAll(ctx context.Context, d Dataset) ([]string, map[string]error) {
	charts := []struct {
		name   string
		render func() (string, error)
	}{
		{ChartTimeSeries, func() (string, error) { return r.TimeSeries(d.Monthly) }},
		{ChartSegments, func() (string, error) { return r.CustomerSegments(d.TierCounts) }},
		{ChartProducts, func() (string, error) { return r.ProductPerformance(d.TopProducts) }},
		{ChartGeography, func() (string, error) { return r.GeographicAnalysis(d.TopStates) }},
		{ChartCategories, func() (string, error) { return r.CategoryAnalysis(d.Categories) }},
		{ChartShipping, func() (string, error) { return r.ShippingAnalysis(d.Shipping) }},
		{ChartDiscounts, func() (string, error) { return r.DiscountAnalysis(d.Discounts) }},
		{ChartCorrelation, func() (string, error) { return r.CorrelationHeatmap(d.Correlations) }},
		{ChartMarginBoxplot, func() (string, error) { return r.ProfitMarginBoxplot(d.MarginsByCategory) }},
		{ChartKPIs, func() (string, error) { return r.KPIDashboard(d.KPIs) }},
	}

	var written []string
	failed := make(map[string]error)

	for _, chart := range charts {
		select {
		case <-ctx.Done():
			failed[chart.name] = fmt.Errorf("render %s: %w", chart.name, ctx.Err())
			continue
		default:
		}

		path, err := chart.render()
		if err != nil {
			r.logger.WarnContext(ctx, "chart render failed",
				"chart", chart.name,
				"error", err,
			)
			failed[chart.name] = err
			continue
		}

		written = append(written, path)
		r.logger.DebugContext(ctx, "chart rendered", "chart", chart.name, "path", path)
	}

	return written, failed
}
