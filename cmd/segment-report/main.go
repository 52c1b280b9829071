package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/internal/errors"
	"retailcli/internal/exporter"
	"retailcli/internal/infrastructure"
	"retailcli/internal/services"
	"retailcli/pkg/contracts/domain"
)

const defaultTopCustomers = 10

func main() {
	inPath := flag.String("in", "", "sales extract to score (defaults to the configured dataset under data/)")
	outDir := flag.String("out", "", "output root for the segment report (defaults to the executable's dist layout)")
	topN := flag.Int("top", defaultTopCustomers, "number of top customers to print")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	paths, err := resolvePaths(*outDir)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// The terminal carries the report tables; logging goes to the run log.
	cfg.Logging.FilePath = paths.GetLogPath("segment_report.log")
	cfg.Logging.Output = "file"

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	input := *inPath
	if input == "" {
		input = cfg.GetDatasetFile()
	}

	logger.Info("starting segment report",
		slog.String("input", input),
		slog.String("output_root", paths.ExecutableDir),
		slog.Int("top", *topN))

	cleanerCfg := dataset.DefaultCleanerConfig()
	cleanerCfg.DayFirst = cfg.Analytics.DayFirstDates

	cache := services.NewDatasetCache(input, dataset.DefaultLoaderConfig(), cleanerCfg, logger)
	snap, err := cache.Snapshot(context.Background())
	if err != nil {
		logger.Error("segment report failed", slog.String("error", err.Error()))
		if errors.IsDataError(err) {
			fmt.Fprintf(os.Stderr, "Data error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Segment report failed: %v\n", err)
		}
		os.Exit(1)
	}

	reportExporter := exporter.NewReportExporter(paths)
	if err := reportExporter.ExportCustomerSegments(snap.Customers, "customer_segments.csv"); err != nil {
		logger.Error("failed to write segment table", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Failed to write customer_segments.csv: %v\n", err)
		os.Exit(1)
	}

	workbookPath := paths.GetSegmentReportPath(time.Now())
	excelWriter := exporter.NewExcelWriter(paths)
	if err := excelWriter.WriteSegmentWorkbook(workbookPath, snap.Customers, snap.TierCounts); err != nil {
		// The CSV is already on disk; a workbook failure downgrades to a
		// warning so spreadsheet-less environments still get the report.
		logger.Warn("failed to write segment workbook", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Workbook skipped: %v\n", err)
	}

	fmt.Printf("Scored %d customers from %d orders (%s)\n\n",
		len(snap.Customers), len(snap.Orders), input)
	printTierTable(os.Stdout, snap.TierCounts, len(snap.Customers))
	fmt.Println()
	printTopCustomers(os.Stdout, topCustomers(snap.Customers, *topN))
	fmt.Printf("\nSegment table: %s\n", paths.GetReportPath("customer_segments.csv"))

	logger.Info("segment report complete",
		slog.Int("customers", len(snap.Customers)),
		slog.String("workbook", workbookPath))
}

// resolvePaths honors -out when given, otherwise the dist layout next to the
// executable.
func resolvePaths(outDir string) (*config.Paths, error) {
	if outDir != "" {
		return config.PathsAt(outDir)
	}
	return config.GetPaths()
}

func printTierTable(w io.Writer, counts map[domain.CustomerTier]int, total int) {
	fmt.Fprintln(w, "Tier distribution:")
	for _, tier := range domain.CustomerTiers {
		share := 0.0
		if total > 0 {
			share = float64(counts[tier]) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %-10s %6d  %5.1f%%\n", string(tier), counts[tier], share)
	}
}

// topCustomers returns the n highest-spending customers, ties broken by
// customer id so the table is stable across runs.
func topCustomers(customers []domain.Customer, n int) []domain.Customer {
	if n <= 0 {
		n = defaultTopCustomers
	}
	sorted := make([]domain.Customer, len(customers))
	copy(sorted, customers)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Monetary != sorted[j].Monetary {
			return sorted[i].Monetary > sorted[j].Monetary
		}
		return sorted[i].CustomerID < sorted[j].CustomerID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func printTopCustomers(w io.Writer, customers []domain.Customer) {
	fmt.Fprintf(w, "Top %d customers by total sales:\n", len(customers))
	fmt.Fprintf(w, "  %-12s %-24s %-9s %7s %12s %5s\n",
		"CUSTOMER", "NAME", "TIER", "ORDERS", "SALES", "RFM")
	for _, c := range customers {
		name := c.CustomerName
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Fprintf(w, "  %-12s %-24s %-9s %7d %12.2f %5d\n",
			c.CustomerID, name, string(c.Tier), c.Frequency, c.Monetary, c.RFMScore)
	}
}
