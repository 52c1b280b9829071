// Package http implements the HTTP request handlers for the dashboard API.
// It is a thin layer between transport and the service tier: handlers parse
// and validate requests, delegate to services, and format responses.
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → DatasetCache
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate request
//	    filter, ok := h.parseFilter(w, r)
//	    if !ok {
//	        return // problem response already written
//	    }
//
//	    // 2. Call service layer
//	    result, err := h.service.DoSomething(r.Context(), filter)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 3. Format and send response
//	    render.JSON(w, r, response{Status: "success", Data: result})
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/problems/chart-not-found",
//	    "title": "Chart Not Found",
//	    "status": 404,
//	    "detail": "chart pie_of_everything not found",
//	    "instance": "/api/charts/pie_of_everything.png"
//	}
//
// # Testing
//
// Handlers are tested with httptest against mock services: various filter
// combinations, validation failures, and the error-to-status mapping.
package http
