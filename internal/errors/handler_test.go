package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) *ErrorHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewErrorHandler(logger, includeStack)
}

func TestErrorToProblem_ContextErrors(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis", nil)

	tests := []struct {
		name string
		err  error
	}{
		{"deadline exceeded", context.DeadlineExceeded},
		{"canceled", context.Canceled},
		{"wrapped deadline", fmt.Errorf("aggregate: %w", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, http.StatusGatewayTimeout, problem.Status)
			assert.Equal(t, TypeTimeout, problem.Type)
		})
	}
}

func TestErrorToProblem_SentinelErrors(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "dataset not loaded",
			err:        ErrDatasetNotLoaded,
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetNotLoaded,
		},
		{
			name:       "unknown dimension",
			err:        fmt.Errorf("%w: warehouse", ErrUnknownDimension),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeDimensionUnknown,
		},
		{
			name:       "unknown metric",
			err:        fmt.Errorf("%w: velocity", ErrUnknownMetric),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeMetricUnknown,
		},
		{
			name:       "unknown chart",
			err:        fmt.Errorf("%w: sparkline", ErrUnknownChart),
			wantStatus: http.StatusNotFound,
			wantType:   TypeChartNotFound,
		},
		{
			name:       "invalid date range",
			err:        fmt.Errorf("%w: from after to", ErrInvalidDateRange),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
		})
	}
}

func TestErrorToProblem_AppErrors(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/charts/time_series_analysis.png", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "data error",
			err:        NewDataError("required columns missing", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetInvalid,
		},
		{
			name:       "render error",
			err:        NewRenderError("empty series", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeChartRender,
		},
		{
			name:       "row error",
			err:        NewRowError("bad date", nil),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "validation error",
			err:        NewAppValidationError("bad filter"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "not found error",
			err:        NewNotFoundError("report"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "storage error maps to internal",
			err:        NewStorageError("write failed", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
		})
	}
}

func TestErrorToProblem_AppErrorContext(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)

	err := NewDataError("required column missing", nil).WithContext("column", "Sales")
	problem := h.ErrorToProblem(err, r)

	require.NotNil(t, problem.Extensions)
	assert.Equal(t, string(ErrTypeData), problem.Extensions["error_type"])
	ctx, ok := problem.Extensions["context"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Sales", ctx["column"])
}

func TestErrorToProblem_APIError(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/analytics/top", nil)

	tests := []struct {
		name     string
		err      *APIError
		wantType string
	}{
		{"validation", ErrValidationFailed, TypeValidation},
		{"not found", ErrNotFound, TypeNotFound},
		{"chart not found", ErrChartNotFound, TypeChartNotFound},
		{"render failed", ErrChartRenderFailed, TypeChartRender},
		{"rate limit", ErrRateLimitExceeded, TypeRateLimit},
		{"dataset unavailable", ErrDatasetUnavailable, TypeDatasetNotLoaded},
		{"internal", ErrInternalServer, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.err.StatusCode, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.ErrorCode, problem.Extensions["error_code"])
		})
	}
}

func TestErrorToProblem_Fallbacks(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/x", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found message", errors.New("chart file not found"), http.StatusNotFound},
		{"validation message", errors.New("validation error on field"), http.StatusBadRequest},
		{"rate limit message", errors.New("rate limit hit"), http.StatusTooManyRequests},
		{"generic", errors.New("something odd"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
		})
	}
}

func TestHandleError_WritesProblemJSON(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, ErrDatasetNotLoaded)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeDatasetNotLoaded, body["type"])
	assert.Equal(t, float64(http.StatusServiceUnavailable), body["status"])
	_, hasTrace := body["trace_id"]
	assert.True(t, hasTrace)
}

func TestHandleError_NilError(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleError_IncludeStack(t *testing.T) {
	h := newTestHandler(true)
	r := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, errors.New("boom"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	_, hasStack := body["stack"]
	assert.True(t, hasStack)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(false)

	t.Run("not found", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/missing", nil)
		w := httptest.NewRecorder()
		h.NotFound(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/api/analytics/kpis", nil)
		w := httptest.NewRecorder()
		h.MethodNotAllowed(w, r)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["detail"], "DELETE")
	})
}

func TestErrorHandlerMiddleware_PanicRecovery(t *testing.T) {
	h := newTestHandler(false)

	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	w := httptest.NewRecorder()
	h.Middleware(panicky).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "bad field", "/api/x").
		WithExtension("errors", []string{"from must be a date"})

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeValidation, decoded["type"])
	assert.Equal(t, "bad field", decoded["detail"])
	assert.Equal(t, "/api/x", decoded["instance"])
	assert.NotNil(t, decoded["errors"])
}
