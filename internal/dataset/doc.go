// Package dataset reads raw retail sales extracts and turns them into typed,
// validated orders. It covers the first half of the analysis lifecycle: file
// ingestion, header resolution, deduplication, imputation and invariant
// enforcement.
//
// # Architecture
//
// The package is organized into two components:
//
// 1. Loader: Reads CSV or Excel extracts into a RawTable of untyped cells
// 2. Cleaner: Types, deduplicates and imputes the raw rows into domain.Order
//
// # Usage
//
// Loading an extract:
//
//	loader := dataset.NewLoader(logger, dataset.DefaultLoaderConfig())
//	table, err := loader.Load(ctx, "data/orders.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Cleaning it:
//
//	cleaner := dataset.NewCleaner(logger, dataset.DefaultCleanerConfig())
//	result, err := cleaner.Clean(ctx, table)
//
// # Cleaning Policy
//
// The cleaner applies its passes in a fixed order and counts every change in
// the CleanResult report:
//
//	- Exact duplicate rows are dropped (first occurrence wins)
//	- Rows with unparsable order or ship dates are excluded
//	- Missing numeric cells are imputed with the column median; malformed
//	  numeric cells exclude the row
//	- Missing categorical cells become "Unknown"
//	- Rows violating invariants (negative sales, discount outside [0,1])
//	  are excluded; ship-before-order rows are kept but counted
//
// Cleaning is idempotent: running the cleaner over its own output reports
// an all-zero change count.
package dataset
