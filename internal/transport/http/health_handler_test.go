package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/internal/services"
)

// newHealthHandler builds a handler over a real health service rooted in a
// temp dir. When present is true an extract file exists on disk, so the
// dataset probe reports ready even before the first load.
func newHealthHandler(t *testing.T, present bool) *HealthHandler {
	t.Helper()

	dir := t.TempDir()
	extract := filepath.Join(dir, "orders.csv")
	if present {
		require.NoError(t, os.WriteFile(extract, []byte("Row ID\n"), 0o644))
	}

	paths, err := config.PathsAt(dir)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cache := services.NewDatasetCache(extract, dataset.DefaultLoaderConfig(), dataset.DefaultCleanerConfig(), logger)
	service := services.NewHealthService("1.2.3-test", paths, cache, logger)

	return NewHealthHandler(service, logger)
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	handler := newHealthHandler(t, true)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3-test"`)
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name           string
		extractPresent bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "extract on disk means ready",
			extractPresent: true,
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ready"`,
		},
		{
			name:           "missing extract answers 503",
			extractPresent: false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"status":"not_ready"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newHealthHandler(t, tt.extractPresent)

			req := httptest.NewRequest("GET", "/ready", nil)
			rec := httptest.NewRecorder()

			handler.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	handler := newHealthHandler(t, false)

	req := httptest.NewRequest("GET", "/live", nil)
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}

func TestHealthHandler_Version(t *testing.T) {
	handler := newHealthHandler(t, true)

	req := httptest.NewRequest("GET", "/api/version", nil)
	rec := httptest.NewRecorder()

	handler.Version(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3-test")
}

func TestHealthHandler_SystemStats(t *testing.T) {
	handler := newHealthHandler(t, true)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()

	handler.SystemStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"uptime_seconds"`)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}
