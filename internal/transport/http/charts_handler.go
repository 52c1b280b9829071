package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "retailcli/internal/errors"
	custommw "retailcli/internal/middleware"
)

// ChartsHandler serves rendered chart images
type ChartsHandler struct {
	service      ChartServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *custommw.QueryParamValidator
}

// NewChartsHandler creates a new charts handler
func NewChartsHandler(service ChartServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartsHandler {
	return &ChartsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "charts_handler")),
		errorHandler: errorHandler,
		params:       custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the chart routes
func (h *ChartsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}", h.GetChart)
	return r
}

// GetChart handles GET /api/charts/{name}.png. The chart is re-rendered for
// the request's filter selection before serving.
func (h *ChartsHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".png")
	if name == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("name", "chart name is required"))
		return
	}

	filter, ok := parseOrderFilter(w, r, h.params, h.errorHandler)
	if !ok {
		return
	}

	path, err := h.service.Render(r.Context(), name, filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "chart render failed",
			slog.String("chart", name),
			slog.String("error", err.Error()),
			slog.String("request_id", custommw.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Every request may carry different filters, so the image must not be
	// cached by the browser.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
