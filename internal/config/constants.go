package config

import "time"

// Application constants - all hardcoded values for the Retail Pulse system
const (
	// Dataset Files
	DefaultDatasetName = "orders.csv"
	ChartFileExt       = ".png"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// File Paths (relative to executable)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"
	DefaultWebDir  = "web"

	// DatasetLoadTimeout caps the background extract load at startup
	DatasetLoadTimeout = 5 * time.Minute

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Analysis Defaults
	DefaultTopLimit = 10
	MaxTopLimit     = 50
)

// SupportedDatasetExts lists the file extensions the loader accepts
var SupportedDatasetExts = []string{".csv", ".xlsx"}
