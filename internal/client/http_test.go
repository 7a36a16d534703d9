package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	rawPath     string
	query       string
	body        string
	contentType string
	auth        string

	// canned response
	statusCode   int
	responseType string
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.rawPath = r.URL.RawPath
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.auth = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	ct := h.responseType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	return NewHTTPClient(srv.URL, ""), srv
}

func TestNewHTTPClient_TrimsSlash(t *testing.T) {
	c := NewHTTPClient("http://localhost:8080/", "")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestHTTPClient_BearerToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status":"ok","views":2}`}
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.auth != "Bearer secret" {
		t.Errorf("Authorization = %q", h.auth)
	}
	if health.Status != "ok" || health.Views != 2 {
		t.Errorf("health = %+v", health)
	}
}

func TestHTTPClient_ListCases(t *testing.T) {
	h := &testHandler{responseBody: `{"cases":[{"id":"case-1","title":"Kita"},{"id":"case-2","title":"Leer"}]}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	cases, err := c.ListCases(context.Background())
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	want := []Case{{ID: "case-1", Title: "Kita"}, {ID: "case-2", Title: "Leer"}}
	if diff := cmp.Diff(want, cases); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
	if h.method != http.MethodGet || h.path != "/v1/cases" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
}

func TestHTTPClient_GraphEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *HTTPClient) error
		wantPath string
		body     string
	}{
		{
			name: "timeline graph",
			call: func(c *HTTPClient) error {
				resp, err := c.GetTimelineGraph(context.Background(), "case-1")
				if err == nil && resp.CaseID != "case-1" {
					t.Errorf("caseId = %q", resp.CaseID)
				}
				return err
			},
			wantPath: "/v1/cases/case-1/timeline-graph",
			body:     `{"caseId":"case-1","meetings":[],"stakeholders":[],"tasks":[]}`,
		},
		{
			name: "render model",
			call: func(c *HTTPClient) error {
				rm, err := c.GetRenderModel(context.Background(), "case-1")
				if err == nil && len(rm.Nodes) != 1 {
					t.Errorf("nodes = %d", len(rm.Nodes))
				}
				return err
			},
			wantPath: "/v1/cases/case-1/timeline-graph/render-model",
			body:     `{"nodes":[{"id":"meeting:m1","type":"meeting"}],"edges":[]}`,
		},
		{
			name: "layout",
			call: func(c *HTTPClient) error {
				l, err := c.GetLayout(context.Background(), "case-1")
				if err == nil && (l.Width != 1000 || !l.HasContent) {
					t.Errorf("layout = %+v", l)
				}
				return err
			},
			wantPath: "/v1/cases/case-1/timeline-graph/layout",
			body:     `{"width":1000,"height":470,"hasContent":true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &testHandler{responseBody: tt.body}
			c, srv := newTestClient(h)
			defer srv.Close()

			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.path != tt.wantPath {
				t.Errorf("path = %q, want %q", h.path, tt.wantPath)
			}
		})
	}
}

func TestHTTPClient_PathEscape(t *testing.T) {
	h := &testHandler{responseBody: `{}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.GetLayout(context.Background(), "case/1"); err != nil {
		t.Fatalf("GetLayout: %v", err)
	}
	if h.rawPath != "/v1/cases/case%2F1/timeline-graph/layout" {
		t.Errorf("rawPath = %q", h.rawPath)
	}
}

func TestHTTPClient_GetLayoutSVG(t *testing.T) {
	h := &testHandler{responseType: "image/svg+xml", responseBody: `<svg xmlns="http://www.w3.org/2000/svg"></svg>`}
	c, srv := newTestClient(h)
	defer srv.Close()

	svg, err := c.GetLayoutSVG(context.Background(), "case-1", "view-abc")
	if err != nil {
		t.Fatalf("GetLayoutSVG: %v", err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("svg = %q", svg)
	}
	if h.query != "format=svg&view=view-abc" {
		t.Errorf("query = %q", h.query)
	}
}

func TestHTTPClient_GetSelection(t *testing.T) {
	h := &testHandler{responseBody: `{
		"highlight": {"highlightedNodeIds": ["meeting:m1"], "highlightedEdgeIds": [], "contextMeetingId": "m1"},
		"details": {"type": "meeting", "nodeId": "meeting:m1", "title": "Kickoff"}
	}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	sel, err := c.GetSelection(context.Background(), "case-1", "meeting:m1", "meeting")
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if h.query != "node=meeting%3Am1&type=meeting" {
		t.Errorf("query = %q", h.query)
	}
	if sel.Highlight.ContextMeetingID != "m1" || sel.Details == nil || sel.Details.Title != "Kickoff" {
		t.Errorf("selection = %+v", sel)
	}
}

func TestHTTPClient_OverlayPosition(t *testing.T) {
	h := &testHandler{responseBody: `{"case_id":"case-1","position":{"left":444,"top":222},"updated_at":"2026-02-06T12:00:00Z"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	stored, err := c.SetOverlayPosition(context.Background(), "case-1", model.OverlayPosition{Left: 444, Top: 222})
	if err != nil {
		t.Fatalf("SetOverlayPosition: %v", err)
	}
	if h.method != http.MethodPut || h.path != "/v1/cases/case-1/overlay-position" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if h.body != `{"left":444,"top":222}` {
		t.Errorf("body = %s", h.body)
	}
	if h.contentType != "application/json" {
		t.Errorf("Content-Type = %q", h.contentType)
	}
	if stored.Position.Left != 444 || stored.CaseID != "case-1" {
		t.Errorf("stored = %+v", stored)
	}

	if _, err := c.GetOverlayPosition(context.Background(), "case-1"); err != nil {
		t.Fatalf("GetOverlayPosition: %v", err)
	}
	if h.method != http.MethodGet {
		t.Errorf("method = %s", h.method)
	}
}

func TestHTTPClient_DeleteOverlayPosition(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.DeleteOverlayPosition(context.Background(), "case-1"); err != nil {
		t.Fatalf("DeleteOverlayPosition: %v", err)
	}
	if h.method != http.MethodDelete {
		t.Errorf("method = %s", h.method)
	}
}

func TestHTTPClient_ComputePlacement(t *testing.T) {
	h := &testHandler{responseBody: `{"left":114,"top":114,"horizontal":"right","vertical":"down","width":360}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	p, err := c.ComputePlacement(context.Background(), &PlacementRequest{
		Anchor:   timeline.Point{X: 100, Y: 100},
		Viewport: timeline.Size{Width: 1024, Height: 768},
	})
	if err != nil {
		t.Fatalf("ComputePlacement: %v", err)
	}
	if h.body != `{"anchor":{"x":100,"y":100},"viewport":{"width":1024,"height":768}}` {
		t.Errorf("body = %s", h.body)
	}
	if p.Left != 114 || p.Horizontal != "right" {
		t.Errorf("placement = %+v", p)
	}
}

const viewBody = `{
	"id": "view-abc", "caseId": "case-1",
	"pan": {"translationX": 10, "translationY": 0, "zoom": 1},
	"overlay": {"active": false},
	"viewport": {"width": 1280, "height": 800},
	"transform": "translate(10,0) scale(1)",
	"placement": null,
	"outcome": {"changed": true, "panEnded": true}
}`

func TestHTTPClient_Views(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *HTTPClient) (*View, error)
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name: "open",
			call: func(c *HTTPClient) (*View, error) {
				return c.OpenView(context.Background(), "case-1", timeline.Size{Width: 1280, Height: 800})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views",
			wantBody:   `{"caseId":"case-1","viewport":{"width":1280,"height":800}}`,
		},
		{
			name:       "get",
			call:       func(c *HTTPClient) (*View, error) { return c.GetView(context.Background(), "view-abc") },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/views/view-abc",
		},
		{
			name:       "switch case",
			call:       func(c *HTTPClient) (*View, error) { return c.SwitchCase(context.Background(), "view-abc", "case-2") },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views/view-abc/case",
			wantBody:   `{"caseId":"case-2"}`,
		},
		{
			name: "resize",
			call: func(c *HTTPClient) (*View, error) {
				return c.ResizeView(context.Background(), "view-abc", timeline.Size{Width: 800, Height: 600})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views/view-abc/viewport",
			wantBody:   `{"width":800,"height":600}`,
		},
		{
			name: "pointer",
			call: func(c *HTTPClient) (*View, error) {
				return c.Pointer(context.Background(), "view-abc", viewstate.PointerEvent{
					Kind: viewstate.PointerDown, Target: viewstate.TargetCanvas, PointerID: 1, ClientX: 5, ClientY: 6,
				})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views/view-abc/pointer",
			wantBody:   `{"kind":"down","target":"canvas","pointerId":1,"clientX":5,"clientY":6}`,
		},
		{
			name:       "wheel",
			call:       func(c *HTTPClient) (*View, error) { return c.Wheel(context.Background(), "view-abc", -100, 50, 60) },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views/view-abc/wheel",
			wantBody:   `{"deltaY":-100,"focusX":50,"focusY":60}`,
		},
		{
			name: "select",
			call: func(c *HTTPClient) (*View, error) {
				return c.Select(context.Background(), "view-abc", "meeting:m1", timeline.Point{X: 1, Y: 2})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views/view-abc/select",
			wantBody:   `{"anchor":{"x":1,"y":2},"nodeId":"meeting:m1"}`,
		},
		{
			name:       "clear",
			call:       func(c *HTTPClient) (*View, error) { return c.ClearSelection(context.Background(), "view-abc") },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/views/view-abc/clear",
			wantBody:   `{}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &testHandler{responseBody: viewBody}
			c, srv := newTestClient(h)
			defer srv.Close()

			v, err := tt.call(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.method != tt.wantMethod || h.path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", h.method, h.path, tt.wantMethod, tt.wantPath)
			}
			if h.body != tt.wantBody {
				t.Errorf("body = %s, want %s", h.body, tt.wantBody)
			}
			if v.ID != "view-abc" || v.Pan.TranslationX != 10 || v.Transform != "translate(10,0) scale(1)" {
				t.Errorf("view = %+v", v)
			}
			if v.Outcome == nil || !v.Outcome.PanEnded {
				t.Errorf("outcome = %+v", v.Outcome)
			}
		})
	}
}

func TestHTTPClient_ListViews(t *testing.T) {
	h := &testHandler{responseBody: `{"views":[` + viewBody + `]}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	views, err := c.ListViews(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("ListViews: %v", err)
	}
	if len(views) != 1 || views[0].CaseID != "case-1" {
		t.Errorf("views = %+v", views)
	}
	if h.query != "case=case-1" {
		t.Errorf("query = %q", h.query)
	}
}

func TestHTTPClient_CloseView(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.CloseView(context.Background(), "view-abc"); err != nil {
		t.Fatalf("CloseView: %v", err)
	}
	if h.method != http.MethodDelete || h.path != "/v1/views/view-abc" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
}

// --- Error handling ---

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		contentType  string
		body         string
		wantMessage  string
		wantNotFound bool
	}{
		{"json body", http.StatusBadRequest, "", `{"error": "node is required"}`, "node is required", false},
		{"plain body", http.StatusInternalServerError, "text/plain", "internal server error\n", "internal server error", false},
		{"not found", http.StatusNotFound, "", `{"error": "case not found"}`, "case not found", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &testHandler{statusCode: tt.status, responseType: tt.contentType, responseBody: tt.body}
			c, srv := newTestClient(h)
			defer srv.Close()

			_, err := c.GetLayout(context.Background(), "case-1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if IsNotFound(err) != tt.wantNotFound {
				t.Errorf("IsNotFound = %v, want %v", IsNotFound(err), tt.wantNotFound)
			}
		})
	}
}

func TestHTTPClient_SVGError(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNotFound, responseBody: `{"error":"view not found"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.GetLayoutSVG(context.Background(), "case-1", "view-gone")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	h := &testHandler{responseBody: `{not json`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.GetLayout(context.Background(), "case-1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, "")
	if _, err := c.Health(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}
