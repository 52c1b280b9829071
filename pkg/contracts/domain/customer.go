package domain

import (
	"time"
)

// Customer represents the per-customer RFM aggregate for one analysis run.
// It is recomputed from the full order set on every run and never persisted.
type Customer struct {
	CustomerID     string       `json:"customer_id"`
	CustomerName   string       `json:"customer_name,omitempty"`
	Segment        string       `json:"segment,omitempty"`
	LastOrderDate  time.Time    `json:"last_order_date"`
	RecencyDays    int          `json:"recency_days"`
	Frequency      int          `json:"frequency"`
	Monetary       float64      `json:"monetary"`
	LifetimeValue  float64      `json:"lifetime_value"`
	SalesPerOrder  float64      `json:"sales_per_order"`
	RecencyScore   int          `json:"recency_score,omitempty"`
	FrequencyScore int          `json:"frequency_score,omitempty"`
	MonetaryScore  int          `json:"monetary_score,omitempty"`
	RFMScore       int          `json:"rfm_score,omitempty"`
	Tier           CustomerTier `json:"tier,omitempty"`
}

// CustomerTier represents a customer value bucket derived from the
// composite RFM score.
type CustomerTier string

const (
	TierBronze   CustomerTier = "Bronze"
	TierSilver   CustomerTier = "Silver"
	TierGold     CustomerTier = "Gold"
	TierPlatinum CustomerTier = "Platinum"
)

// CustomerTiers lists the tiers in ascending value order.
var CustomerTiers = []CustomerTier{TierBronze, TierSilver, TierGold, TierPlatinum}

// Rank returns the tier position in ascending value order, starting at 0.
// Unknown tiers rank below Bronze.
func (t CustomerTier) Rank() int {
	for i, tier := range CustomerTiers {
		if t == tier {
			return i
		}
	}
	return -1
}

// IsValid reports whether the tier is one of the defined buckets.
func (t CustomerTier) IsValid() bool {
	return t.Rank() >= 0
}

// ProductTier represents a product performance bucket derived from
// profit margin quartiles.
type ProductTier string

const (
	ProductTierLow       ProductTier = "Low"
	ProductTierAverage   ProductTier = "Average"
	ProductTierGood      ProductTier = "Good"
	ProductTierExcellent ProductTier = "Excellent"
)

// ProductTiers lists the product tiers in ascending performance order.
var ProductTiers = []ProductTier{ProductTierLow, ProductTierAverage, ProductTierGood, ProductTierExcellent}

// Rank returns the tier position in ascending performance order, starting at 0.
func (t ProductTier) Rank() int {
	for i, tier := range ProductTiers {
		if t == tier {
			return i
		}
	}
	return -1
}

// ProductPerformance represents the per-product margin aggregate with its
// assigned performance tier.
type ProductPerformance struct {
	ProductName string      `json:"product_name"`
	Category    string      `json:"category,omitempty"`
	Orders      int         `json:"orders"`
	TotalSales  float64     `json:"total_sales"`
	TotalProfit float64     `json:"total_profit"`
	MeanMargin  float64     `json:"mean_margin"`
	Tier        ProductTier `json:"tier"`
}
