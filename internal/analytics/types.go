package analytics

import (
	"strings"

	"retailcli/internal/errors"
	"retailcli/pkg/contracts/domain"
)

// Dimension identifies a grouping or ranking axis over enriched orders.
type Dimension string

const (
	DimCategory     Dimension = "category"
	DimSubCategory  Dimension = "sub_category"
	DimRegion       Dimension = "region"
	DimState        Dimension = "state"
	DimCity         Dimension = "city"
	DimSegment      Dimension = "segment"
	DimShipMode     Dimension = "ship_mode"
	DimDiscountBand Dimension = "discount_band"
	DimOrderYear    Dimension = "order_year"
	DimOrderMonth   Dimension = "order_month"
	DimOrderQuarter Dimension = "order_quarter"
	DimOrderWeekday Dimension = "order_weekday"
	DimCustomerTier Dimension = "customer_tier"
	DimProductTier  Dimension = "product_tier"
	DimCustomer     Dimension = "customer"
	DimProduct      Dimension = "product"
)

// Dimensions lists every axis accepted by Summarize and TopN.
var Dimensions = []Dimension{
	DimCategory, DimSubCategory, DimRegion, DimState, DimCity,
	DimSegment, DimShipMode, DimDiscountBand,
	DimOrderYear, DimOrderMonth, DimOrderQuarter, DimOrderWeekday,
	DimCustomerTier, DimProductTier, DimCustomer, DimProduct,
}

// IsValid reports whether the dimension is a defined axis.
func (d Dimension) IsValid() bool {
	for _, dim := range Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// Metric identifies the measure a ranked table is ordered by.
type Metric string

const (
	MetricSales    Metric = "sales"
	MetricProfit   Metric = "profit"
	MetricQuantity Metric = "quantity"
	MetricOrders   Metric = "orders"
)

// Metrics lists every measure accepted by TopN.
var Metrics = []Metric{MetricSales, MetricProfit, MetricQuantity, MetricOrders}

// IsValid reports whether the metric is a defined measure.
func (m Metric) IsValid() bool {
	for _, metric := range Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Query describes one aggregation request: the dimensions to group by,
// optional row filters, and the tier joins that resolve the customer and
// product tier dimensions.
type Query struct {
	GroupBy []Dimension
	Filter  domain.OrderFilter

	// CustomerTiers keys scored tiers by customer id, ProductTiers by
	// product name. A row without a join entry resolves to "Unknown" when
	// the corresponding tier dimension is requested.
	CustomerTiers map[string]domain.CustomerTier
	ProductTiers  map[string]domain.ProductTier
}

// Validate checks the query's grouping dimensions.
func (q Query) Validate() error {
	if len(q.GroupBy) == 0 {
		return errors.NewAppValidationError("summarize requires at least one grouping dimension")
	}
	for _, d := range q.GroupBy {
		if !d.IsValid() {
			return errors.NewAppValidationError("unknown grouping dimension: " + string(d))
		}
	}
	return nil
}

// SummaryRow is one grouped aggregate. Key holds one value per requested
// dimension, in request order; the profit margin is undefined (HasMargin
// false) when the group has no sales.
type SummaryRow struct {
	Key              []string `json:"key,omitempty"`
	Rows             int      `json:"rows"`
	Orders           int      `json:"orders"`
	TotalSales       float64  `json:"total_sales"`
	TotalProfit      float64  `json:"total_profit"`
	TotalQuantity    int      `json:"total_quantity"`
	MeanSales        float64  `json:"mean_sales"`
	MeanProfit       float64  `json:"mean_profit"`
	MeanDiscount     float64  `json:"mean_discount"`
	MeanShippingDays float64  `json:"mean_shipping_days"`
	ProfitMargin     float64  `json:"profit_margin"`
	HasMargin        bool     `json:"has_margin"`
}

// Label renders the row key for display.
func (r SummaryRow) Label() string {
	return strings.Join(r.Key, " / ")
}

// Summary is the result of one aggregation call. Totals covers the whole
// filtered set and carries an empty key.
type Summary struct {
	GroupBy []Dimension  `json:"group_by"`
	Rows    []SummaryRow `json:"rows,omitempty"`
	Totals  SummaryRow   `json:"totals"`
}

// KPIReport holds the headline figures of one analysis run.
type KPIReport struct {
	TotalSales      float64 `json:"total_sales"`
	TotalProfit     float64 `json:"total_profit"`
	ProfitMargin    float64 `json:"profit_margin"`
	HasMargin       bool    `json:"has_margin"`
	Orders          int     `json:"orders"`
	Customers       int     `json:"customers"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	ProfitPerOrder  float64 `json:"profit_per_order"`
	AvgShippingDays float64 `json:"avg_shipping_days"`
	AvgDiscount     float64 `json:"avg_discount"`
}

// TopRow is one entry of a ranked table.
type TopRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
