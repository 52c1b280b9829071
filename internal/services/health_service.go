package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"retailcli/internal/config"
	"retailcli/pkg/contracts"
)

// HealthService answers liveness and readiness probes for the dashboard
// server.
type HealthService struct {
	version   string
	paths     *config.Paths
	cache     *DatasetCache
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth reports one dependency's readiness.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats summarizes the running process and its on-disk artifacts.
type SystemStats struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ReportFiles    int     `json:"report_files"`
	ReportBytes    int64   `json:"report_bytes"`
	DatasetLoaded  bool    `json:"dataset_loaded"`
	DatasetReloads int     `json:"dataset_reloads"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
}

// NewHealthService creates a health service with injected dependencies.
func NewHealthService(version string, paths *config.Paths, cache *DatasetCache, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports overall process health. It never fails while the
// process is up.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports whether the server can serve analytics: the dataset
// must be loadable and the artifact directories writable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDataset(),
			"storage": hs.checkStorage(),
		},
	}
	for _, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// checkDataset passes once a snapshot is cached, or while the input file is
// still present to load from.
func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.cache.Loaded() {
		return ServiceHealth{Status: "ready", Message: "snapshot loaded"}
	}
	path := hs.cache.Path()
	if _, err := os.Stat(path); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("dataset file not accessible: %s", path),
		}
	}
	return ServiceHealth{Status: "ready", Message: "dataset file present, not loaded yet"}
}

// checkStorage verifies the chart and report directories can be written to.
func (hs *HealthService) checkStorage() ServiceHealth {
	for _, dir := range []string{hs.paths.ChartsDir, hs.paths.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("cannot create %s: %v", dir, err),
			}
		}
		probe := filepath.Join(dir, ".writecheck")
		if err := os.WriteFile(probe, nil, 0644); err != nil {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("cannot write to %s: %v", dir, err),
			}
		}
		os.Remove(probe)
	}
	return ServiceHealth{Status: "ready"}
}

// LivenessCheck reports that the process is alive.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// Version returns build and runtime information.
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      hs.version,
		"stage":        info.Stage,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// SystemStats walks the reports directory and reports artifact and cache
// counters.
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	var files int
	var size int64
	filepath.Walk(hs.paths.ReportsDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files++
			size += info.Size()
		}
		return nil
	})

	return SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		ReportFiles:    files,
		ReportBytes:    size,
		DatasetLoaded:  hs.cache.Loaded(),
		DatasetReloads: hs.cache.Loads(),
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}, nil
}
