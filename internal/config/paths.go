package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	ChartsDir     string
	ReportsDir    string
	CacheDir      string
	LogsDir       string

	// Well-known dataset and report files
	DatasetCSV     string
	CleanOrdersCSV string
	CustomersCSV   string
	AnalysisXLSX   string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exe)

	// All paths are relative to the executable directory so the binaries
	// behave the same whether run from a dev tree or an installed layout.
	// Directory structure:
	// dist/
	//   ├── data/
	//   │   ├── orders.csv     (input sales extract)
	//   │   ├── charts/        (rendered PNG charts)
	//   │   ├── reports/       (cleaned data and report tables)
	//   │   └── cache/         (temporary files)
	//   ├── logs/              (application logs)
	//   └── web/               (dashboard assets)

	dataDir := filepath.Join(exeDir, "data")
	chartsDir := filepath.Join(dataDir, "charts")
	reportsDir := filepath.Join(dataDir, "reports")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		WebDir:        filepath.Join(exeDir, "web"),
		StaticDir:     filepath.Join(exeDir, "web", "static"),
		ChartsDir:     chartsDir,
		ReportsDir:    reportsDir,
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		// Well-known files
		DatasetCSV:     filepath.Join(dataDir, DefaultDatasetName),
		CleanOrdersCSV: filepath.Join(reportsDir, "orders_clean.csv"),
		CustomersCSV:   filepath.Join(reportsDir, "customers.csv"),
		AnalysisXLSX:   filepath.Join(reportsDir, "retail_analysis.xlsx"),
	}

	return paths, nil
}

// PathsAt returns application paths rooted at an explicit output directory
// instead of the executable location. The batch CLIs use it so their -out
// flag controls where artifacts land: <out>/charts, <out>/reports,
// <out>/cache and <out>/logs.
func PathsAt(baseDir string) (*Paths, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %v", baseDir, err)
	}

	reportsDir := filepath.Join(abs, "reports")

	return &Paths{
		ExecutableDir: abs,
		DataDir:       abs,
		WebDir:        filepath.Join(abs, "web"),
		StaticDir:     filepath.Join(abs, "web", "static"),
		ChartsDir:     filepath.Join(abs, "charts"),
		ReportsDir:    reportsDir,
		CacheDir:      filepath.Join(abs, "cache"),
		LogsDir:       filepath.Join(abs, "logs"),

		DatasetCSV:     filepath.Join(abs, DefaultDatasetName),
		CleanOrdersCSV: filepath.Join(reportsDir, "orders_clean.csv"),
		CustomersCSV:   filepath.Join(reportsDir, "customers.csv"),
		AnalysisXLSX:   filepath.Join(reportsDir, "retail_analysis.xlsx"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ChartsDir,
		p.ReportsDir,
		p.CacheDir,
		p.LogsDir,
		p.WebDir,
		p.StaticDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetWebFilePath returns the path to a web file
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// GetDatasetPath returns the path for a dataset file in the data directory
func (p *Paths) GetDatasetPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetChartPath returns the path for a rendered chart PNG
func (p *Paths) GetChartPath(name string) string {
	return filepath.Join(p.ChartsDir, name+ChartFileExt)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetSegmentReportPath returns the path for a dated segment report workbook
// (e.g. segments_20260825.xlsx)
func (p *Paths) GetSegmentReportPath(date time.Time) string {
	filename := fmt.Sprintf("segments_%s.xlsx", date.Format("20060102"))
	return filepath.Join(p.ReportsDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("charts", p.ChartsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("files",
			slog.String("dataset_csv", p.DatasetCSV),
			slog.String("clean_orders_csv", p.CleanOrdersCSV),
			slog.String("customers_csv", p.CustomersCSV),
			slog.String("analysis_xlsx", p.AnalysisXLSX),
		))
}

// ValidateDatasetFile checks that the orders dataset exists and has a
// supported extension, returning a descriptive error otherwise
func ValidateDatasetFile(path string) error {
	if path == "" {
		return fmt.Errorf("dataset file path is empty")
	}

	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, s := range SupportedDatasetExts {
		if ext == s {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported dataset format %q (expected one of %s)",
			ext, strings.Join(SupportedDatasetExts, ", "))
	}

	if !FileExists(path) {
		return fmt.Errorf("dataset file not found: %s", path)
	}

	return nil
}
