// Package config provides centralized configuration management for Retail Pulse.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern RETAIL_* for namespacing:
//
//	RETAIL_SERVER_PORT=8080
//	RETAIL_LOGGING_LEVEL=info
//	RETAIL_ANALYTICS_DATASET_FILE=data/orders.csv
//	RETAIL_ANALYTICS_TOP_LIMIT=10
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	chartPath := paths.GetChartPath("customer_segments")
//	reportPath := paths.GetReportPath("retail_analysis.xlsx")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- File paths are accessible
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
