package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
)

// HTTPClient implements CaseGraphClient using the casegraph HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func casePath(caseID, suffix string) string {
	return "/v1/cases/" + url.PathEscape(caseID) + suffix
}

func viewPath(id, suffix string) string {
	return "/v1/views/" + url.PathEscape(id) + suffix
}

// --- Cases and graphs ---

func (c *HTTPClient) ListCases(ctx context.Context) ([]Case, error) {
	var resp struct {
		Cases []Case `json:"cases"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/cases", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cases, nil
}

func (c *HTTPClient) GetTimelineGraph(ctx context.Context, caseID string) (*model.TimelineGraphResponse, error) {
	var resp model.TimelineGraphResponse
	if err := c.doJSON(ctx, http.MethodGet, casePath(caseID, "/timeline-graph"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetRenderModel(ctx context.Context, caseID string) (*timeline.RenderModel, error) {
	var rm timeline.RenderModel
	if err := c.doJSON(ctx, http.MethodGet, casePath(caseID, "/timeline-graph/render-model"), nil, &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

func (c *HTTPClient) GetLayout(ctx context.Context, caseID string) (*timeline.Layout, error) {
	var l timeline.Layout
	if err := c.doJSON(ctx, http.MethodGet, casePath(caseID, "/timeline-graph/layout"), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLayoutSVG returns the rendered layout. A non-empty viewID draws the
// graph with that view's transform and selection.
func (c *HTTPClient) GetLayoutSVG(ctx context.Context, caseID, viewID string) ([]byte, error) {
	q := url.Values{"format": {"svg"}}
	if viewID != "" {
		q.Set("view", viewID)
	}
	resp, err := c.do(ctx, http.MethodGet, casePath(caseID, "/timeline-graph/layout?"+q.Encode()), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *HTTPClient) GetSelection(ctx context.Context, caseID, nodeID, nodeType string) (*Selection, error) {
	q := url.Values{"node": {nodeID}}
	if nodeType != "" {
		q.Set("type", nodeType)
	}
	var sel Selection
	if err := c.doJSON(ctx, http.MethodGet, casePath(caseID, "/timeline-graph/selection?"+q.Encode()), nil, &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

// --- Overlay ---

func (c *HTTPClient) GetOverlayPosition(ctx context.Context, caseID string) (*model.StoredOverlayPosition, error) {
	var pos model.StoredOverlayPosition
	if err := c.doJSON(ctx, http.MethodGet, casePath(caseID, "/overlay-position"), nil, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

func (c *HTTPClient) SetOverlayPosition(ctx context.Context, caseID string, pos model.OverlayPosition) (*model.StoredOverlayPosition, error) {
	var stored model.StoredOverlayPosition
	if err := c.doJSON(ctx, http.MethodPut, casePath(caseID, "/overlay-position"), pos, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *HTTPClient) DeleteOverlayPosition(ctx context.Context, caseID string) error {
	return c.doJSON(ctx, http.MethodDelete, casePath(caseID, "/overlay-position"), nil, nil)
}

func (c *HTTPClient) ComputePlacement(ctx context.Context, req *PlacementRequest) (*timeline.OverlayPlacement, error) {
	var p timeline.OverlayPlacement
	if err := c.doJSON(ctx, http.MethodPost, "/v1/overlay/placement", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Views ---

func (c *HTTPClient) OpenView(ctx context.Context, caseID string, viewport timeline.Size) (*View, error) {
	body := map[string]any{"caseId": caseID, "viewport": viewport}
	return c.doView(ctx, http.MethodPost, "/v1/views", body)
}

func (c *HTTPClient) ListViews(ctx context.Context, caseID string) ([]*View, error) {
	path := "/v1/views"
	if caseID != "" {
		path += "?" + url.Values{"case": {caseID}}.Encode()
	}
	var resp struct {
		Views []*View `json:"views"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Views, nil
}

func (c *HTTPClient) GetView(ctx context.Context, id string) (*View, error) {
	return c.doView(ctx, http.MethodGet, viewPath(id, ""), nil)
}

func (c *HTTPClient) CloseView(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, viewPath(id, ""), nil, nil)
}

func (c *HTTPClient) SwitchCase(ctx context.Context, id, caseID string) (*View, error) {
	return c.doView(ctx, http.MethodPost, viewPath(id, "/case"), map[string]string{"caseId": caseID})
}

func (c *HTTPClient) ResizeView(ctx context.Context, id string, viewport timeline.Size) (*View, error) {
	return c.doView(ctx, http.MethodPost, viewPath(id, "/viewport"), viewport)
}

func (c *HTTPClient) Pointer(ctx context.Context, id string, ev viewstate.PointerEvent) (*View, error) {
	return c.doView(ctx, http.MethodPost, viewPath(id, "/pointer"), ev)
}

func (c *HTTPClient) Wheel(ctx context.Context, id string, deltaY, focusX, focusY float64) (*View, error) {
	body := map[string]float64{"deltaY": deltaY, "focusX": focusX, "focusY": focusY}
	return c.doView(ctx, http.MethodPost, viewPath(id, "/wheel"), body)
}

func (c *HTTPClient) Select(ctx context.Context, id, nodeID string, anchor timeline.Point) (*View, error) {
	body := map[string]any{"nodeId": nodeID, "anchor": anchor}
	return c.doView(ctx, http.MethodPost, viewPath(id, "/select"), body)
}

func (c *HTTPClient) ClearSelection(ctx context.Context, id string) (*View, error) {
	return c.doView(ctx, http.MethodPost, viewPath(id, "/clear"), struct{}{})
}

func (c *HTTPClient) doView(ctx context.Context, method, path string, body any) (*View, error) {
	var v View
	if err := c.doJSON(ctx, method, path, body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func apiError(status int, body []byte) *APIError {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// do sends a request with an optional JSON body. The caller closes the body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	return resp, nil
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
