package segmentation

import (
	"math"
	"sort"
)

// quartiles holds the interior quartile boundaries of a distribution.
type quartiles struct {
	Q1 float64
	Q2 float64
	Q3 float64
}

// computeQuartiles returns the quartile boundaries of values. The input is
// not mutated. Empty input yields zero boundaries.
func computeQuartiles(values []float64) quartiles {
	if len(values) == 0 {
		return quartiles{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return quartiles{
		Q1: percentileValue(sorted, 0.25),
		Q2: percentileValue(sorted, 0.50),
		Q3: percentileValue(sorted, 0.75),
	}
}

// percentileValue calculates the value at a given percentile of a sorted
// slice by linear interpolation at index percentile*(n-1).
func percentileValue(sorted []float64, percentile float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	if percentile <= 0 {
		return sorted[0]
	}
	if percentile >= 1 {
		return sorted[n-1]
	}

	index := percentile * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// scoreAscending maps a value to a 1-4 quartile score: value <= Q1 scores 1,
// <= Q2 scores 2, <= Q3 scores 3, above Q3 scores 4. Boundary ties take the
// lower score. When boundaries coincide the lowest matching bucket wins, so
// a fully collapsed distribution scores 1 everywhere.
func scoreAscending(value float64, q quartiles) int {
	switch {
	case value <= q.Q1:
		return 1
	case value <= q.Q2:
		return 2
	case value <= q.Q3:
		return 3
	default:
		return 4
	}
}

// scoreDescending is scoreAscending with the scale inverted, for dimensions
// where a smaller value is better.
func scoreDescending(value float64, q quartiles) int {
	return 5 - scoreAscending(value, q)
}
