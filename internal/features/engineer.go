// Package features derives analysis columns from cleaned orders: calendar
// labels, shipping duration, profit margin and discount bands, plus the
// per-customer purchase aggregates that feed segmentation.
package features

import (
	"fmt"
	"sort"
	"time"

	"retailcli/pkg/contracts/domain"
)

// Enriched is a cleaned order together with its derived analysis columns
type Enriched struct {
	domain.Order

	OrderYear    int       `json:"order_year"`
	OrderMonth   string    `json:"order_month"` // 2023-01
	MonthStart   time.Time `json:"month_start"`
	OrderQuarter string    `json:"order_quarter"` // 2023-Q1
	OrderWeekday string    `json:"order_weekday"`
	ShippingDays int       `json:"shipping_days"`

	// ProfitMargin is profit over sales; it is undefined (not zero) when an
	// order has no sales, signalled by HasMargin
	ProfitMargin float64 `json:"profit_margin"`
	HasMargin    bool    `json:"has_margin"`

	DiscountBand string `json:"discount_band"`
}

// DiscountBands lists the band labels in ascending discount order
var DiscountBands = []string{"0-10%", "10-20%", "20-30%", "30-40%", "40-50%", "50%+"}

// DiscountBand maps a discount fraction to its band label. Bands are
// right-inclusive and the lowest band includes zero.
func DiscountBand(discount float64) string {
	switch {
	case discount <= 0.1:
		return DiscountBands[0]
	case discount <= 0.2:
		return DiscountBands[1]
	case discount <= 0.3:
		return DiscountBands[2]
	case discount <= 0.4:
		return DiscountBands[3]
	case discount <= 0.5:
		return DiscountBands[4]
	default:
		return DiscountBands[5]
	}
}

// Enrich derives the analysis columns for every order. The input is never
// mutated and the output preserves input order.
func Enrich(orders []domain.Order) []Enriched {
	enriched := make([]Enriched, len(orders))
	for i, o := range orders {
		e := Enriched{Order: o}

		e.OrderYear = o.OrderDate.Year()
		e.OrderMonth = o.OrderDate.Format("2006-01")
		e.MonthStart = time.Date(o.OrderDate.Year(), o.OrderDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		e.OrderQuarter = fmt.Sprintf("%d-Q%d", o.OrderDate.Year(), (int(o.OrderDate.Month())-1)/3+1)
		e.OrderWeekday = o.OrderDate.Weekday().String()
		e.ShippingDays = o.ShippingDays()

		if o.Sales > 0 {
			e.ProfitMargin = o.Profit / o.Sales
			e.HasMargin = true
		}

		e.DiscountBand = DiscountBand(o.Discount)

		enriched[i] = e
	}
	return enriched
}

// BuildCustomers aggregates orders into per-customer purchase profiles.
// Recency is measured against the latest order date in the dataset, frequency
// counts distinct order ids, monetary sums sales. Output is sorted by
// customer id; scores and tiers are left for the segmentation engine.
func BuildCustomers(orders []domain.Order) []domain.Customer {
	if len(orders) == 0 {
		return nil
	}

	var datasetMax time.Time
	for _, o := range orders {
		if o.OrderDate.After(datasetMax) {
			datasetMax = o.OrderDate
		}
	}

	type accumulator struct {
		customer domain.Customer
		orderIDs map[string]bool
	}

	byCustomer := make(map[string]*accumulator)
	for _, o := range orders {
		acc, ok := byCustomer[o.CustomerID]
		if !ok {
			acc = &accumulator{
				customer: domain.Customer{
					CustomerID:   o.CustomerID,
					CustomerName: o.CustomerName,
					Segment:      o.Segment,
				},
				orderIDs: make(map[string]bool),
			}
			byCustomer[o.CustomerID] = acc
		}

		acc.orderIDs[o.OrderID] = true
		acc.customer.Monetary += o.Sales
		acc.customer.LifetimeValue += o.Profit
		if o.OrderDate.After(acc.customer.LastOrderDate) {
			acc.customer.LastOrderDate = o.OrderDate
			// The profile carries the most recent name and segment on record
			acc.customer.CustomerName = o.CustomerName
			acc.customer.Segment = o.Segment
		}
	}

	customers := make([]domain.Customer, 0, len(byCustomer))
	for _, acc := range byCustomer {
		c := acc.customer
		c.Frequency = len(acc.orderIDs)
		c.RecencyDays = int(datasetMax.Sub(c.LastOrderDate).Hours() / 24)
		if c.Frequency > 0 {
			c.SalesPerOrder = c.Monetary / float64(c.Frequency)
		}
		customers = append(customers, c)
	}

	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CustomerID < customers[j].CustomerID
	})

	return customers
}
