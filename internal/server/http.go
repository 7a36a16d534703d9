package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// maxBodyBytes caps request bodies; every payload here is a handful of numbers.
const maxBodyBytes = 64 << 10

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *CaseGraphServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/cases", s.handleListCases)
	mux.HandleFunc("GET /v1/cases/{id}/timeline-graph", s.handleGetTimelineGraph)
	mux.HandleFunc("GET /v1/cases/{id}/timeline-graph/render-model", s.handleGetRenderModel)
	mux.HandleFunc("GET /v1/cases/{id}/timeline-graph/layout", s.handleGetLayout)
	mux.HandleFunc("GET /v1/cases/{id}/timeline-graph/selection", s.handleGetSelection)
	mux.HandleFunc("GET /v1/cases/{id}/overlay-position", s.handleGetOverlayPosition)
	mux.HandleFunc("PUT /v1/cases/{id}/overlay-position", s.handleSetOverlayPosition)
	mux.HandleFunc("DELETE /v1/cases/{id}/overlay-position", s.handleDeleteOverlayPosition)
	mux.HandleFunc("POST /v1/overlay/placement", s.handleComputePlacement)
	mux.HandleFunc("POST /v1/views", s.handleOpenView)
	mux.HandleFunc("GET /v1/views", s.handleListViews)
	mux.HandleFunc("GET /v1/views/{id}", s.handleGetView)
	mux.HandleFunc("DELETE /v1/views/{id}", s.handleCloseView)
	mux.HandleFunc("POST /v1/views/{id}/case", s.handleSwitchCase)
	mux.HandleFunc("POST /v1/views/{id}/viewport", s.handleResizeView)
	mux.HandleFunc("POST /v1/views/{id}/pointer", s.handlePointer)
	mux.HandleFunc("POST /v1/views/{id}/wheel", s.handleWheel)
	mux.HandleFunc("POST /v1/views/{id}/select", s.handleSelect)
	mux.HandleFunc("POST /v1/views/{id}/clear", s.handleClearSelection)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *CaseGraphServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"views":  s.Views.Len(),
	})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error to a response: input errors to 400,
// missing cases, positions and views to 404 with notFound as the message,
// everything else to 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var ie inputError
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, notFound)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
