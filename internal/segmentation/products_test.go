package segmentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/features"
	"retailcli/pkg/contracts/domain"
)

func productOrder(product, category string, sales, profit float64) domain.Order {
	return domain.Order{
		OrderID:     "US-2023-100001",
		OrderDate:   time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
		ShipDate:    time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC),
		CustomerID:  "C-1",
		Category:    category,
		ProductName: product,
		Sales:       sales,
		Profit:      profit,
	}
}

func TestBuildProductTiers_QuartileCut(t *testing.T) {
	rows := features.Enrich([]domain.Order{
		productOrder("Binder", "Office Supplies", 100, 5),
		productOrder("Stapler", "Office Supplies", 100, 15),
		productOrder("Bookcase", "Furniture", 100, 25),
		productOrder("Copier", "Technology", 100, 35),
	})

	products, excluded := BuildProductTiers(rows)
	require.Len(t, products, 4)
	assert.Zero(t, excluded)

	byName := make(map[string]domain.ProductPerformance, len(products))
	for _, p := range products {
		byName[p.ProductName] = p
	}

	assert.Equal(t, domain.ProductTierLow, byName["Binder"].Tier)
	assert.Equal(t, domain.ProductTierAverage, byName["Stapler"].Tier)
	assert.Equal(t, domain.ProductTierGood, byName["Bookcase"].Tier)
	assert.Equal(t, domain.ProductTierExcellent, byName["Copier"].Tier)
}

func TestBuildProductTiers_MeanOverDefinedMargins(t *testing.T) {
	// The zero-sales order has no margin. It still counts toward order and
	// sales totals but must not drag the mean margin toward zero.
	rows := features.Enrich([]domain.Order{
		productOrder("Stapler", "Office Supplies", 100, 10),
		productOrder("Stapler", "Office Supplies", 100, 30),
		productOrder("Stapler", "Office Supplies", 0, -5),
	})

	products, excluded := BuildProductTiers(rows)
	require.Len(t, products, 1)
	assert.Zero(t, excluded)

	p := products[0]
	assert.Equal(t, "Stapler", p.ProductName)
	assert.Equal(t, "Office Supplies", p.Category)
	assert.Equal(t, 3, p.Orders)
	assert.InDelta(t, 200.0, p.TotalSales, 1e-9)
	assert.InDelta(t, 35.0, p.TotalProfit, 1e-9)
	assert.InDelta(t, 0.2, p.MeanMargin, 1e-9)
}

func TestBuildProductTiers_ExcludesProductsWithoutMargin(t *testing.T) {
	rows := features.Enrich([]domain.Order{
		productOrder("Binder", "Office Supplies", 100, 10),
		productOrder("Copier", "Technology", 100, 30),
		productOrder("Sample Kit", "Office Supplies", 0, 0),
		productOrder("Sample Kit", "Office Supplies", 0, -2),
	})

	products, excluded := BuildProductTiers(rows)
	require.Len(t, products, 2)
	assert.Equal(t, 1, excluded)

	assert.Equal(t, "Binder", products[0].ProductName)
	assert.Equal(t, domain.ProductTierLow, products[0].Tier)
	assert.Equal(t, "Copier", products[1].ProductName)
	assert.Equal(t, domain.ProductTierExcellent, products[1].Tier)
}

func TestBuildProductTiers_AllExcluded(t *testing.T) {
	rows := features.Enrich([]domain.Order{
		productOrder("Sample Kit", "Office Supplies", 0, 0),
		productOrder("Demo Unit", "Technology", 0, 0),
	})

	products, excluded := BuildProductTiers(rows)

	assert.Nil(t, products)
	assert.Equal(t, 2, excluded)
}

func TestBuildProductTiers_SortedByName(t *testing.T) {
	rows := features.Enrich([]domain.Order{
		productOrder("Zebra Label Maker", "Office Supplies", 100, 20),
		productOrder("Armchair", "Furniture", 100, 10),
		productOrder("Monitor", "Technology", 100, 30),
	})

	products, _ := BuildProductTiers(rows)
	require.Len(t, products, 3)

	assert.Equal(t, "Armchair", products[0].ProductName)
	assert.Equal(t, "Monitor", products[1].ProductName)
	assert.Equal(t, "Zebra Label Maker", products[2].ProductName)
}

func TestBuildProductTiers_AllEqualMargins(t *testing.T) {
	rows := features.Enrich([]domain.Order{
		productOrder("Binder", "Office Supplies", 100, 10),
		productOrder("Stapler", "Office Supplies", 200, 20),
		productOrder("Copier", "Technology", 400, 40),
	})

	products, excluded := BuildProductTiers(rows)
	require.Len(t, products, 3)
	assert.Zero(t, excluded)

	for _, p := range products {
		assert.Equal(t, domain.ProductTierLow, p.Tier, "collapsed margin distribution tiers everything Low")
	}
}

func TestBuildProductTiers_Empty(t *testing.T) {
	products, excluded := BuildProductTiers(nil)

	assert.Nil(t, products)
	assert.Zero(t, excluded)
}
