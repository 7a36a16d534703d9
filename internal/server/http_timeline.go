package server

import (
	"bytes"
	"net/http"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/render"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
)

// handleListCases handles GET /v1/cases.
func (s *CaseGraphServer) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.store.ListCases(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	out := make([]map[string]string, 0, len(cases))
	for _, c := range cases {
		out = append(out, map[string]string{"id": c.ID, "title": c.Title})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": out})
}

// handleGetTimelineGraph handles GET /v1/cases/{id}/timeline-graph.
func (s *CaseGraphServer) handleGetTimelineGraph(w http.ResponseWriter, r *http.Request) {
	gv, err := s.loadGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "case not found")
		return
	}
	writeJSON(w, http.StatusOK, gv.Response)
}

// handleGetRenderModel handles GET /v1/cases/{id}/timeline-graph/render-model.
func (s *CaseGraphServer) handleGetRenderModel(w http.ResponseWriter, r *http.Request) {
	gv, err := s.loadGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "case not found")
		return
	}
	writeJSON(w, http.StatusOK, gv.RenderModel)
}

// handleGetLayout handles GET /v1/cases/{id}/timeline-graph/layout.
// With ?format=svg the layout is rendered; ?view=<id> applies that view's
// transform and selection to the drawing.
func (s *CaseGraphServer) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	gv, err := s.loadGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "case not found")
		return
	}

	q := r.URL.Query()
	switch q.Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, gv.Layout)
	case "svg":
		opts, err := s.renderOptions(gv, q.Get("view"))
		if err != nil {
			writeServiceError(w, r, err, "view not found")
			return
		}
		var buf bytes.Buffer
		if err := render.SVG(&buf, gv.Layout, opts); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, "format must be json or svg")
	}
}

func (s *CaseGraphServer) renderOptions(gv *graphView, viewID string) (render.Options, error) {
	if viewID == "" {
		return render.Options{}, nil
	}
	v, err := s.Views.Get(viewID)
	if err != nil {
		return render.Options{}, err
	}
	opts := render.Options{Transform: v.Pan.Transform()}
	if v.Selection != nil && v.CaseID == gv.Response.CaseID {
		h := timeline.ComputeHighlight(gv.RenderModel, v.Selection.NodeID)
		opts.Highlight = &h
		opts.SelectedNodeID = v.Selection.NodeID
	}
	return opts, nil
}

// handleGetSelection handles GET /v1/cases/{id}/timeline-graph/selection.
func (s *CaseGraphServer) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := s.selection(r.Context(), r.PathValue("id"), q.Get("node"), q.Get("type"))
	if err != nil {
		writeServiceError(w, r, err, "case not found")
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// handleGetOverlayPosition handles GET /v1/cases/{id}/overlay-position.
func (s *CaseGraphServer) handleGetOverlayPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := s.getOverlayPosition(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "overlay position not found")
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// handleSetOverlayPosition handles PUT /v1/cases/{id}/overlay-position.
func (s *CaseGraphServer) handleSetOverlayPosition(w http.ResponseWriter, r *http.Request) {
	var in model.OverlayPosition
	if !decodeBody(w, r, &in) {
		return
	}
	pos, err := s.setOverlayPosition(r.Context(), r.PathValue("id"), "", in)
	if err != nil {
		writeServiceError(w, r, err, "case not found")
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// handleDeleteOverlayPosition handles DELETE /v1/cases/{id}/overlay-position.
func (s *CaseGraphServer) handleDeleteOverlayPosition(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteOverlayPosition(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "overlay position not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleComputePlacement handles POST /v1/overlay/placement.
func (s *CaseGraphServer) handleComputePlacement(w http.ResponseWriter, r *http.Request) {
	var in PlacementRequest
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := placement(in)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
