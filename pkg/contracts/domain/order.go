package domain

import (
	"strings"
	"time"
)

// Order represents a single order line from the retail sales extract.
// One row of the input file maps to one Order; monetary amounts are in
// the currency of the extract.
type Order struct {
	RowID        int       `json:"row_id,omitempty"`
	OrderID      string    `json:"order_id" validate:"required"`
	OrderDate    time.Time `json:"order_date"`
	ShipDate     time.Time `json:"ship_date"`
	ShipMode     string    `json:"ship_mode"`
	CustomerID   string    `json:"customer_id" validate:"required"`
	CustomerName string    `json:"customer_name,omitempty"`
	Segment      string    `json:"segment"`
	Country      string    `json:"country,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Region       string    `json:"region"`
	ProductID    string    `json:"product_id,omitempty"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category"`
	ProductName  string    `json:"product_name"`
	Sales        float64   `json:"sales" validate:"min=0"`
	Quantity     int       `json:"quantity" validate:"min=0"`
	Discount     float64   `json:"discount" validate:"min=0,max=1"`
	Profit       float64   `json:"profit"`
}

// ShippingDays returns the whole days between order and ship date.
// Negative values indicate a ship-before-order data quality violation.
func (o Order) ShippingDays() int {
	return int(o.ShipDate.Sub(o.OrderDate).Hours() / 24)
}

// OrderFilter represents row filters applied before aggregation.
// All bounds are inclusive; nil/empty fields match everything.
type OrderFilter struct {
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Regions    []string   `json:"regions,omitempty"`
}

// Matches reports whether the order passes every configured filter.
func (f OrderFilter) Matches(o Order) bool {
	if f.DateFrom != nil && o.OrderDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && o.OrderDate.After(*f.DateTo) {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, o.Category) {
		return false
	}
	if len(f.Regions) > 0 && !containsFold(f.Regions, o.Region) {
		return false
	}
	return true
}

// IsZero reports whether no filter field is set.
func (f OrderFilter) IsZero() bool {
	return f.DateFrom == nil && f.DateTo == nil && len(f.Categories) == 0 && len(f.Regions) == 0
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
