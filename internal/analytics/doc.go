// Package analytics aggregates enriched orders along business dimensions.
//
// The Aggregator is the single entry point: Summarize groups filtered rows
// by any combination of dimensions (category, region, calendar labels,
// customer/product tiers and so on) into per-key statistics, KPIs computes
// the headline figures of a run, TopN builds ranked performer tables and
// Correlations produces the pairwise correlation matrix over the numeric
// columns.
//
// All operations are pure over their inputs: every call produces fresh
// slices and nothing is mutated in place, so one Aggregator can serve
// concurrent dashboard requests against a shared dataset. An empty filtered
// set is a valid zero result everywhere, never an error.
//
// Group rows come back sorted by key and ranked tables break metric ties by
// label, so identical input always yields identical output. Sums over any
// single-dimension grouping add up to the unfiltered grand totals.
package analytics
