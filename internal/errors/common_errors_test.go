package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{
			name:     "data error type",
			errType:  ErrTypeData,
			expected: "DATA",
		},
		{
			name:     "row error type",
			errType:  ErrTypeRow,
			expected: "ROW",
		},
		{
			name:     "render error type",
			errType:  ErrTypeRender,
			expected: "RENDER",
		},
		{
			name:     "parsing error type",
			errType:  ErrTypeParsing,
			expected: "PARSING",
		},
		{
			name:     "storage error type",
			errType:  ErrTypeStorage,
			expected: "STORAGE",
		},
		{
			name:     "validation error type",
			errType:  ErrTypeValidation,
			expected: "VALIDATION",
		},
		{
			name:     "not found error type",
			errType:  ErrTypeNotFound,
			expected: "NOT_FOUND",
		},
		{
			name:     "config error type",
			errType:  ErrTypeConfig,
			expected: "CONFIG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeData,
				Message: "required column missing",
				Cause:   nil,
			},
			wantMessage: "[DATA] required column missing",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeRow,
				Message: "unparsable order date",
				Cause:   fmt.Errorf("parsing time \"13/45/2023\""),
			},
			wantMessage: "[ROW] unparsable order date: parsing time \"13/45/2023\"",
		},
		{
			name: "render error with cause",
			appError: &AppError{
				Type:    ErrTypeRender,
				Message: "time series chart failed",
				Cause:   errors.New("no data points"),
			},
			wantMessage: "[RENDER] time series chart failed: no data points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	appErr := NewDataError("dataset unreadable", cause)

	assert.Equal(t, cause, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, cause))

	noCause := NewAppValidationError("bad filter")
	assert.Nil(t, noCause.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	appErr := NewDataError("required column missing", nil).
		WithContext("column", "Order Date").
		WithContext("path", "data/Superstore.csv")

	require.NotNil(t, appErr.Context)
	assert.Equal(t, "Order Date", appErr.Context["column"])
	assert.Equal(t, "data/Superstore.csv", appErr.Context["path"])

	// Context map is created lazily when nil
	bare := &AppError{Type: ErrTypeRow, Message: "bad row"}
	bare.WithContext("row", 17)
	assert.Equal(t, 17, bare.Context["row"])
}

func TestNewAppError_Constructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"data", NewDataError("m", cause), ErrTypeData},
		{"row", NewRowError("m", cause), ErrTypeRow},
		{"render", NewRenderError("m", cause), ErrTypeRender},
		{"parsing", NewParsingError("m", cause), ErrTypeParsing},
		{"storage", NewStorageError("m", cause), ErrTypeStorage},
		{"validation", NewAppValidationError("m"), ErrTypeValidation},
		{"config", NewConfigError("m", cause), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, "m", tt.err.Message)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("chart")
	assert.Equal(t, ErrTypeNotFound, err.Type)
	assert.Equal(t, "chart not found", err.Message)
}

func TestIsTypeHelpers(t *testing.T) {
	dataErr := NewDataError("missing columns", nil)
	rowErr := NewRowError("bad date", nil)
	renderErr := NewRenderError("empty series", nil)

	tests := []struct {
		name string
		err  error
		data bool
		row  bool
		rend bool
	}{
		{"data error", dataErr, true, false, false},
		{"row error", rowErr, false, true, false},
		{"render error", renderErr, false, false, true},
		{"wrapped data error", fmt.Errorf("load: %w", dataErr), true, false, false},
		{"plain error", errors.New("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.data, IsDataError(tt.err))
			assert.Equal(t, tt.row, IsRowError(tt.err))
			assert.Equal(t, tt.rend, IsRenderError(tt.err))
		})
	}
}

func TestAppError_AsChain(t *testing.T) {
	inner := NewRowError("unparsable ship date", errors.New("bad layout"))
	wrapped := fmt.Errorf("row 42: %w", inner)

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeRow, appErr.Type)
	assert.Contains(t, appErr.Error(), "unparsable ship date")
}
