package segmentation

import (
	"retailcli/pkg/contracts/domain"
)

// ScoreCustomers assigns per-dimension RFM scores, the composite score and a
// value tier to every customer. Scores are quartile ranks within the input
// population, so the same customer may tier differently against a different
// population. Recency is inverted: the most recently active customers earn
// the highest recency score. The input slice is never mutated and output
// order matches input order.
func ScoreCustomers(customers []domain.Customer) []domain.Customer {
	if len(customers) == 0 {
		return nil
	}

	recency := make([]float64, len(customers))
	frequency := make([]float64, len(customers))
	monetary := make([]float64, len(customers))
	for i, c := range customers {
		recency[i] = float64(c.RecencyDays)
		frequency[i] = float64(c.Frequency)
		monetary[i] = c.Monetary
	}

	recencyQ := computeQuartiles(recency)
	frequencyQ := computeQuartiles(frequency)
	monetaryQ := computeQuartiles(monetary)

	scored := make([]domain.Customer, len(customers))
	composites := make([]float64, len(customers))
	for i, c := range customers {
		c.RecencyScore = scoreDescending(recency[i], recencyQ)
		c.FrequencyScore = scoreAscending(frequency[i], frequencyQ)
		c.MonetaryScore = scoreAscending(monetary[i], monetaryQ)
		c.RFMScore = c.RecencyScore + c.FrequencyScore + c.MonetaryScore
		composites[i] = float64(c.RFMScore)
		scored[i] = c
	}

	// Tier cut runs over the composite distribution itself, so tier
	// boundaries move with the population just like the dimension scores.
	tierQ := computeQuartiles(composites)
	for i := range scored {
		scored[i].Tier = domain.CustomerTiers[scoreAscending(composites[i], tierQ)-1]
	}

	return scored
}

// TierCounts tallies scored customers per value tier. Tiers with no
// customers report zero, so every defined tier is always present.
func TierCounts(customers []domain.Customer) map[domain.CustomerTier]int {
	counts := make(map[domain.CustomerTier]int, len(domain.CustomerTiers))
	for _, tier := range domain.CustomerTiers {
		counts[tier] = 0
	}
	for _, c := range customers {
		if c.Tier.IsValid() {
			counts[c.Tier]++
		}
	}
	return counts
}
