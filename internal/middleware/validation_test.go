package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "retailcli/internal/errors"
)

func newValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	handler := apierrors.NewErrorHandler(testLogger(), false)
	return NewValidationMiddleware(testLogger(), handler)
}

type summaryQuery struct {
	GroupBy string `json:"group_by" validate:"required,dimension"`
	Metric  string `json:"metric" validate:"metric"`
	From    string `json:"from" validate:"iso8601"`
	Limit   int    `json:"limit" validate:"gte=1,lte=100"`
}

func TestValidateStruct_AcceptsKnownValues(t *testing.T) {
	m := newValidation(t)

	err := m.ValidateStruct(summaryQuery{
		GroupBy: "category",
		Metric:  "sales",
		From:    "2023-01-05",
		Limit:   10,
	})
	assert.NoError(t, err)
}

func TestValidateStruct_RejectsUnknownDimension(t *testing.T) {
	m := newValidation(t)

	err := m.ValidateStruct(summaryQuery{GroupBy: "flavor", Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group_by")
}

func TestValidateStruct_RejectsBadDate(t *testing.T) {
	m := newValidation(t)

	err := m.ValidateStruct(summaryQuery{GroupBy: "region", From: "05/01/2023", Limit: 10})
	require.Error(t, err)
}

func TestValidateRequest_RejectsInvalidJSONBody(t *testing.T) {
	m := newValidation(t)
	h := m.ValidateRequest(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/reload", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateRequest_SkipsGET(t *testing.T) {
	m := newValidation(t)
	h := m.ValidateRequest(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/kpis", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQueryParamValidator_Int(t *testing.T) {
	v := NewQueryParamValidator(testLogger(), apierrors.NewErrorHandler(testLogger(), false))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/top?limit=25", nil)
	rec := httptest.NewRecorder()
	got, ok := v.ValidateInt(rec, req, "limit", 1, 100, 10)
	require.True(t, ok)
	assert.Equal(t, 25, got)

	// Missing parameter falls back to the default
	req = httptest.NewRequest(http.MethodGet, "/api/analytics/top", nil)
	got, ok = v.ValidateInt(httptest.NewRecorder(), req, "limit", 1, 100, 10)
	require.True(t, ok)
	assert.Equal(t, 10, got)

	// Out of range writes a problem response
	req = httptest.NewRequest(http.MethodGet, "/api/analytics/top?limit=500", nil)
	rec = httptest.NewRecorder()
	_, ok = v.ValidateInt(rec, req, "limit", 1, 100, 10)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryParamValidator_Enum(t *testing.T) {
	v := NewQueryParamValidator(testLogger(), apierrors.NewErrorHandler(testLogger(), false))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/top?order=asc", nil)
	got, ok := v.ValidateEnum(httptest.NewRecorder(), req, "order", []string{"asc", "desc"}, "desc")
	require.True(t, ok)
	assert.Equal(t, "asc", got)

	req = httptest.NewRequest(http.MethodGet, "/api/analytics/top?order=sideways", nil)
	rec := httptest.NewRecorder()
	_, ok = v.ValidateEnum(rec, req, "order", []string{"asc", "desc"}, "desc")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryParamValidator_Date(t *testing.T) {
	v := NewQueryParamValidator(testLogger(), apierrors.NewErrorHandler(testLogger(), false))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/kpis?from=2023-01-05", nil)
	got, ok := v.ValidateDate(httptest.NewRecorder(), req, "from")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, "2023-01-05", got.Format("2006-01-02"))

	req = httptest.NewRequest(http.MethodGet, "/api/analytics/kpis", nil)
	got, ok = v.ValidateDate(httptest.NewRecorder(), req, "from")
	require.True(t, ok)
	assert.Nil(t, got)

	req = httptest.NewRequest(http.MethodGet, "/api/analytics/kpis?from=Jan-5", nil)
	rec := httptest.NewRecorder()
	_, ok = v.ValidateDate(rec, req, "from")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
