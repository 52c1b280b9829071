package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"

	"retailcli/internal/config"
	"retailcli/internal/errors"
	"retailcli/internal/infrastructure"
	"retailcli/internal/pipeline"
)

func main() {
	inPath := flag.String("in", "", "sales extract to analyze (defaults to the configured dataset under data/)")
	outDir := flag.String("out", "", "output root for charts and reports (defaults to the executable's dist layout)")
	configPath := flag.String("config", "", "config.yaml to load instead of the well-known locations")
	verbose := flag.Bool("verbose", false, "debug logging on the terminal")
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		if *configPath != "" {
			slog.Error("Failed to load configuration", "error", err, "path", *configPath)
			os.Exit(1)
		}
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

	// The progress bar owns the terminal; detailed logging goes to the run
	// log unless -verbose asks for both.
	cfg.Logging.FilePath = paths.GetLogPath("analyzer.log")
	if *verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Output = "both"
	} else if cfg.Logging.Output == "both" || cfg.Logging.Output == "console" {
		cfg.Logging.Output = "file"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	input := *inPath
	if input == "" {
		input = cfg.GetDatasetFile()
	}

	logger.Info("starting batch analysis",
		slog.String("input", input),
		slog.String("output_root", paths.ExecutableDir),
		slog.Bool("verbose", *verbose))

	fmt.Printf("Analyzing %s\n", input)

	bar := progressbar.Default(int64(len(pipeline.Stages)))
	runner := pipeline.NewRunner(pipeline.Config{
		InputPath: input,
		Paths:     paths,
		TopN:      cfg.Analytics.TopLimit,
		DayFirst:  cfg.Analytics.DayFirstDates,
		Observer: func(string, error) {
			bar.Add(1)
		},
	}, logger)

	res, err := runner.Run(context.Background())
	if err != nil {
		logger.Error("analysis run failed", slog.String("error", err.Error()))
		if errors.IsDataError(err) {
			fmt.Fprintf(os.Stderr, "Data error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		}
		os.Exit(1)
	}

	printSummary(res, logger)
}

// resolvePaths honors -out when given, otherwise the dist layout next to the
// executable.
func resolvePaths(outDir string) (*config.Paths, error) {
	if outDir != "" {
		return config.PathsAt(outDir)
	}
	return config.GetPaths()
}

func printSummary(res *pipeline.Result, logger *slog.Logger) {
	report := res.Report
	fmt.Printf("Cleaned %d of %d rows (%d excluded, %d imputations)\n",
		report.OutputRows, report.InputRows, report.ExcludedRows(),
		report.NumericImputations+report.CategoricalImputations)
	fmt.Printf("Orders: %d  Customers: %d  Products: %d\n",
		res.KPIs.Orders, len(res.Customers), len(res.Products))
	if res.KPIs.HasMargin {
		fmt.Printf("Total sales %.2f, profit %.2f (margin %.1f%%)\n",
			res.KPIs.TotalSales, res.KPIs.TotalProfit, res.KPIs.ProfitMargin*100)
	} else {
		fmt.Printf("Total sales %.2f, profit %.2f\n", res.KPIs.TotalSales, res.KPIs.TotalProfit)
	}

	// Failed charts are skipped, not fatal; name them so the run log and the
	// terminal agree on what is missing.
	if len(res.ChartFailures) > 0 {
		names := make([]string, 0, len(res.ChartFailures))
		for name := range res.ChartFailures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			logger.Warn("chart skipped",
				slog.String("chart", name),
				slog.String("error", res.ChartFailures[name].Error()))
			fmt.Fprintf(os.Stderr, "Chart skipped: %s (%v)\n", name, res.ChartFailures[name])
		}
	}

	fmt.Printf("Charts written: %d  Reports written: %d\n",
		len(res.ChartsWritten), len(res.ReportsWritten))
	fmt.Printf("Analysis complete in %s\n", res.Duration.Round(time.Millisecond))

	logger.Info("batch analysis complete",
		slog.String("run_id", res.RunID),
		slog.Int("charts_written", len(res.ChartsWritten)),
		slog.Int("chart_failures", len(res.ChartFailures)),
		slog.Int("reports_written", len(res.ReportsWritten)),
		slog.Duration("duration", res.Duration))
}
