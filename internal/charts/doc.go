// Package charts renders the analysis figures to PNG files.
//
// # Inventory
//
// The renderer draws a fixed set of ten charts, one PNG per chart name:
// a monthly sales and profit time series, customer value tiers, top
// products, top states, category and sub-category sales, average
// shipping days per ship mode, sales and profit per discount band, the
// numeric correlation matrix, profit margin boxplots per category, and
// a KPI card grid. ChartNames lists them in render order.
//
// # Inputs
//
// Charts draw precomputed results only. Every figure takes a Summary,
// ranking, or report produced by the analytics and segmentation
// packages; nothing in this package touches raw order rows. RenderAll
// bundles the inputs in a Dataset and renders every chart, collecting
// per-chart failures instead of stopping at the first one.
//
// # Failure Handling
//
// A chart with nothing to draw returns a RenderError rather than an
// empty canvas. RenderAll logs each failure at WARN, records it in the
// returned map under the chart name, and keeps rendering the rest.
package charts
