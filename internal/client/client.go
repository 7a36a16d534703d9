// Package client provides the interface the casegraph CLI uses to talk to a
// server and an HTTP/JSON implementation of it.
package client

import (
	"context"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
)

// CaseGraphClient is the interface all CLI commands use to reach the server.
type CaseGraphClient interface {
	// Cases and graphs
	ListCases(ctx context.Context) ([]Case, error)
	GetTimelineGraph(ctx context.Context, caseID string) (*model.TimelineGraphResponse, error)
	GetRenderModel(ctx context.Context, caseID string) (*timeline.RenderModel, error)
	GetLayout(ctx context.Context, caseID string) (*timeline.Layout, error)
	GetLayoutSVG(ctx context.Context, caseID, viewID string) ([]byte, error)
	GetSelection(ctx context.Context, caseID, nodeID, nodeType string) (*Selection, error)

	// Overlay
	GetOverlayPosition(ctx context.Context, caseID string) (*model.StoredOverlayPosition, error)
	SetOverlayPosition(ctx context.Context, caseID string, pos model.OverlayPosition) (*model.StoredOverlayPosition, error)
	DeleteOverlayPosition(ctx context.Context, caseID string) error
	ComputePlacement(ctx context.Context, req *PlacementRequest) (*timeline.OverlayPlacement, error)

	// Views
	OpenView(ctx context.Context, caseID string, viewport timeline.Size) (*View, error)
	ListViews(ctx context.Context, caseID string) ([]*View, error)
	GetView(ctx context.Context, id string) (*View, error)
	CloseView(ctx context.Context, id string) error
	SwitchCase(ctx context.Context, id, caseID string) (*View, error)
	ResizeView(ctx context.Context, id string, viewport timeline.Size) (*View, error)
	Pointer(ctx context.Context, id string, ev viewstate.PointerEvent) (*View, error)
	Wheel(ctx context.Context, id string, deltaY, focusX, focusY float64) (*View, error)
	Select(ctx context.Context, id, nodeID string, anchor timeline.Point) (*View, error)
	ClearSelection(ctx context.Context, id string) (*View, error)

	// Events
	StreamEvents(ctx context.Context, req *StreamRequest, fn func(Event) error) error

	// Health
	Health(ctx context.Context) (*HealthStatus, error)

	// Lifecycle
	Close() error
}

// Case is a case as listed by the server.
type Case struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Selection is the highlight and details of a selected node.
type Selection struct {
	Highlight timeline.Highlight         `json:"highlight"`
	Details   *timeline.SelectionDetails `json:"details"`
}

// PlacementRequest holds parameters for a standalone overlay placement.
type PlacementRequest struct {
	Anchor    timeline.Point         `json:"anchor"`
	Viewport  timeline.Size          `json:"viewport"`
	Size      *timeline.Size         `json:"size,omitempty"`
	Preferred *model.OverlayPosition `json:"preferred,omitempty"`
}

// View is a view session with its derived presentation state.
type View struct {
	viewstate.View
	Transform string                     `json:"transform"`
	Placement *timeline.OverlayPlacement `json:"placement"`
	Selected  *Selection                 `json:"selected,omitempty"`
	Outcome   *viewstate.Outcome         `json:"outcome,omitempty"`
}

// StreamRequest narrows an event stream. Empty fields match everything.
type StreamRequest struct {
	Topics      []string
	CaseID      string
	LastEventID string
}

// Event is one server-sent event.
type Event struct {
	ID    string
	Topic string
	Data  []byte
}

// HealthStatus is the server health response.
type HealthStatus struct {
	Status string `json:"status"`
	Views  int    `json:"views"`
}
