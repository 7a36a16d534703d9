package server

import (
	"net/http"

	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
)

type openViewInput struct {
	CaseID   string        `json:"caseId"`
	Viewport timeline.Size `json:"viewport"`
}

type wheelInput struct {
	DeltaY float64 `json:"deltaY"`
	FocusX float64 `json:"focusX"`
	FocusY float64 `json:"focusY"`
}

type selectInput struct {
	NodeID string         `json:"nodeId"`
	Anchor timeline.Point `json:"anchor"`
}

// handleOpenView handles POST /v1/views.
func (s *CaseGraphServer) handleOpenView(w http.ResponseWriter, r *http.Request) {
	var in openViewInput
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := s.openView(r.Context(), in.CaseID, in.Viewport)
	if err != nil {
		writeServiceError(w, r, err, "case not found")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// handleListViews handles GET /v1/views (optionally ?case=<id>).
func (s *CaseGraphServer) handleListViews(w http.ResponseWriter, r *http.Request) {
	views := s.Views.List(r.URL.Query().Get("case"))
	out := make([]*ViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, viewResponse(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": out})
}

// handleGetView handles GET /v1/views/{id}.
func (s *CaseGraphServer) handleGetView(w http.ResponseWriter, r *http.Request) {
	v, err := s.getView(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleCloseView handles DELETE /v1/views/{id}.
func (s *CaseGraphServer) handleCloseView(w http.ResponseWriter, r *http.Request) {
	if err := s.closeView(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSwitchCase handles POST /v1/views/{id}/case.
func (s *CaseGraphServer) handleSwitchCase(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CaseID string `json:"caseId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := s.switchCase(r.Context(), r.PathValue("id"), in.CaseID)
	if err != nil {
		writeServiceError(w, r, err, "view or case not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleResizeView handles POST /v1/views/{id}/viewport.
func (s *CaseGraphServer) handleResizeView(w http.ResponseWriter, r *http.Request) {
	var in timeline.Size
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := s.resizeView(r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handlePointer handles POST /v1/views/{id}/pointer.
func (s *CaseGraphServer) handlePointer(w http.ResponseWriter, r *http.Request) {
	var in viewstate.PointerEvent
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := s.pointer(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleWheel handles POST /v1/views/{id}/wheel.
func (s *CaseGraphServer) handleWheel(w http.ResponseWriter, r *http.Request) {
	var in wheelInput
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := s.wheel(r.Context(), r.PathValue("id"), in.DeltaY, in.FocusX, in.FocusY)
	if err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSelect handles POST /v1/views/{id}/select.
func (s *CaseGraphServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	var in selectInput
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := s.selectNode(r.Context(), r.PathValue("id"), in.NodeID, in.Anchor)
	if err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleClearSelection handles POST /v1/views/{id}/clear.
func (s *CaseGraphServer) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	v, err := s.clearSelection(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "view not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}
