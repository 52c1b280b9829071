package http

import (
	"fmt"
	"net/http"
	"strings"

	apierrors "retailcli/internal/errors"
	custommw "retailcli/internal/middleware"
	"retailcli/pkg/contracts/domain"
)

// parseOrderFilter reads the filter parameters shared by the analytics and
// chart endpoints: from, to (YYYY-MM-DD), category, region. On a bad
// parameter the problem response is already written and ok is false.
func parseOrderFilter(w http.ResponseWriter, r *http.Request, params *custommw.QueryParamValidator, errorHandler *apierrors.ErrorHandler) (domain.OrderFilter, bool) {
	from, ok := params.ValidateDate(w, r, "from")
	if !ok {
		return domain.OrderFilter{}, false
	}
	to, ok := params.ValidateDate(w, r, "to")
	if !ok {
		return domain.OrderFilter{}, false
	}
	if from != nil && to != nil && from.After(*to) {
		errorHandler.HandleError(w, r, fmt.Errorf("%w: from %s is after to %s",
			apierrors.ErrInvalidDateRange, from.Format("2006-01-02"), to.Format("2006-01-02")))
		return domain.OrderFilter{}, false
	}

	q := r.URL.Query()
	return domain.OrderFilter{
		DateFrom:   from,
		DateTo:     to,
		Categories: splitMulti(q["category"]),
		Regions:    splitMulti(q["region"]),
	}, true
}

// splitMulti accepts both repeated parameters and comma-separated lists.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
