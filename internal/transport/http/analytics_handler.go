package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"retailcli/internal/analytics"
	apierrors "retailcli/internal/errors"
	custommw "retailcli/internal/middleware"
	"retailcli/pkg/contracts/domain"
)

// AnalyticsHandler answers the dashboard's JSON queries with RFC 7807 errors
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	reloader     DatasetReloaderInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *custommw.QueryParamValidator
	validate     *custommw.ValidationMiddleware
	topLimit     int
	maxTopLimit  int
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, reloader DatasetReloaderInterface, topLimit, maxTopLimit int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		reloader:     reloader,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
		params:       custommw.NewQueryParamValidator(logger, errorHandler),
		validate:     custommw.NewValidationMiddleware(logger, errorHandler),
		topLimit:     topLimit,
		maxTopLimit:  maxTopLimit,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/kpis", h.GetKPIs)
	r.Get("/summary", h.GetSummary)
	r.Get("/top", h.GetTop)
	r.Get("/segments", h.GetSegments)
	r.Get("/filters", h.GetFilters)
	r.Get("/cleaning-report", h.GetCleaningReport)

	return r
}

// summaryRequest carries the validated grouping request.
type summaryRequest struct {
	GroupBy []string `json:"group_by" validate:"required,min=1,dive,dimension"`
}

func (h *AnalyticsHandler) parseFilter(w http.ResponseWriter, r *http.Request) (domain.OrderFilter, bool) {
	return parseOrderFilter(w, r, h.params, h.errorHandler)
}

// GetKPIs handles GET /api/analytics/kpis
func (h *AnalyticsHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	kpis, err := h.service.KPIs(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute kpis",
			slog.String("error", err.Error()),
			slog.String("request_id", custommw.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   kpis,
	})
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	groupBy := splitMulti(r.URL.Query()["group_by"])
	if err := h.validate.ValidateStruct(summaryRequest{GroupBy: groupBy}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dims := make([]analytics.Dimension, len(groupBy))
	for i, g := range groupBy {
		dims[i] = analytics.Dimension(g)
	}

	summary, err := h.service.Summary(r.Context(), dims, filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to summarize",
			slog.String("error", err.Error()),
			slog.String("group_by", strings.Join(groupBy, ",")),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
		"count":  len(summary.Rows),
	})
}

// GetTop handles GET /api/analytics/top
func (h *AnalyticsHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	dimension := q.Get("dimension")
	if dimension == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dimension", "dimension is required"))
		return
	}
	if !analytics.Dimension(dimension).IsValid() {
		h.errorHandler.HandleError(w, r, fmt.Errorf("%w: %s", apierrors.ErrUnknownDimension, dimension))
		return
	}

	metric := q.Get("metric")
	if metric == "" {
		metric = string(analytics.MetricSales)
	}
	if !analytics.Metric(metric).IsValid() {
		h.errorHandler.HandleError(w, r, fmt.Errorf("%w: %s", apierrors.ErrUnknownMetric, metric))
		return
	}

	limit, ok := h.params.ValidateInt(w, r, "limit", 1, h.maxTopLimit, h.topLimit)
	if !ok {
		return
	}
	order, ok := h.params.ValidateEnum(w, r, "order", []string{"asc", "desc"}, "desc")
	if !ok {
		return
	}

	rows, err := h.service.TopN(r.Context(), analytics.Dimension(dimension), analytics.Metric(metric), limit, order == "asc", filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to rank",
			slog.String("error", err.Error()),
			slog.String("dimension", dimension),
			slog.String("metric", metric),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetSegments handles GET /api/analytics/segments
func (h *AnalyticsHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Segments(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build segments",
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
		"count":  len(report.Customers),
	})
}

// GetFilters handles GET /api/analytics/filters
func (h *AnalyticsHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Filters(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to collect filter options",
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   options,
	})
}

// GetCleaningReport handles GET /api/analytics/cleaning-report
func (h *AnalyticsHandler) GetCleaningReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CleaningReport(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read cleaning report",
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// ReloadDataset handles POST /api/dataset/reload. It rebuilds the snapshot
// from the extract on disk; queries keep answering from the old snapshot
// until the reload finishes.
func (h *AnalyticsHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reloader.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", custommw.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.Int("orders", len(snap.Orders)),
		slog.Int("customers", len(snap.Customers)),
	)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"orders":    len(snap.Orders),
			"customers": len(snap.Customers),
			"loaded_at": snap.LoadedAt,
		},
	})
}
