// Package segmentation scores customers and products against their peer
// population.
//
// Customers are scored on recency, frequency and monetary value (RFM). Each
// dimension maps to a 1-4 score by quartile rank within the population, and
// the composite R+F+M score (range 3-12) is cut by its own quartiles into
// the Bronze, Silver, Gold and Platinum value tiers. Products are tiered
// independently into Low, Average, Good and Excellent buckets by mean
// profit margin quartile.
//
// # Quartile Convention
//
// Quartile boundaries use linear interpolation at index p*(n-1) over the
// sorted values, the same convention the cleaning stage uses for median
// imputation. Boundary ties always resolve to the lower bucket, so a
// customer sitting exactly on Q2 of the composite distribution lands in
// Silver, not Gold.
//
// # Degenerate Distributions
//
// Collapsed distributions are well defined rather than errors. When every
// customer has identical frequency the boundaries coincide and the whole
// population scores 1 on that dimension; a population of one customer is
// its own quartile and tiers Bronze. Populations smaller than four cut the
// same way, they simply occupy fewer distinct buckets.
//
// # Usage
//
//	customers := features.BuildCustomers(orders)
//	scored := segmentation.ScoreCustomers(customers)
//
//	products, excluded := segmentation.BuildProductTiers(enriched)
package segmentation
