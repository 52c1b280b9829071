package segmentation

import (
	"sort"

	"retailcli/internal/features"
	"retailcli/pkg/contracts/domain"
)

// BuildProductTiers groups enriched orders by product name and cuts the
// products into performance tiers by mean profit margin quartile. Only
// defined margins contribute to the mean; orders without a margin still
// count toward order and sales totals. Products with no defined margin at
// all cannot be tiered and are excluded, with the exclusion count returned
// alongside. Output is sorted by product name.
func BuildProductTiers(rows []features.Enriched) ([]domain.ProductPerformance, int) {
	if len(rows) == 0 {
		return nil, 0
	}

	type accumulator struct {
		perf      domain.ProductPerformance
		marginSum float64
		margins   int
	}

	byProduct := make(map[string]*accumulator)
	for _, r := range rows {
		acc, ok := byProduct[r.ProductName]
		if !ok {
			acc = &accumulator{perf: domain.ProductPerformance{
				ProductName: r.ProductName,
				Category:    r.Category,
			}}
			byProduct[r.ProductName] = acc
		}

		acc.perf.Orders++
		acc.perf.TotalSales += r.Sales
		acc.perf.TotalProfit += r.Profit
		if r.HasMargin {
			acc.marginSum += r.ProfitMargin
			acc.margins++
		}
	}

	excluded := 0
	products := make([]domain.ProductPerformance, 0, len(byProduct))
	for _, acc := range byProduct {
		if acc.margins == 0 {
			excluded++
			continue
		}
		acc.perf.MeanMargin = acc.marginSum / float64(acc.margins)
		products = append(products, acc.perf)
	}

	if len(products) == 0 {
		return nil, excluded
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductName < products[j].ProductName
	})

	margins := make([]float64, len(products))
	for i, p := range products {
		margins[i] = p.MeanMargin
	}

	q := computeQuartiles(margins)
	for i := range products {
		products[i].Tier = domain.ProductTiers[scoreAscending(margins[i], q)-1]
	}

	return products, excluded
}
