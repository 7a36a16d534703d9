// Package events defines the topics and payloads casegraph publishes when a
// view session changes, plus the publishers that carry them.
package events

import (
	"context"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

// Publisher sends events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Event topics.
const (
	TopicOverlayPositionChanged = "casegraph.overlay.position_changed"
	TopicOverlayPositionCleared = "casegraph.overlay.position_cleared"
	TopicSelectionChanged       = "casegraph.selection.changed"
	TopicSelectionCleared       = "casegraph.selection.cleared"
	TopicViewOpened             = "casegraph.view.opened"
	TopicViewClosed             = "casegraph.view.closed"
	TopicViewTransformed        = "casegraph.view.transformed"
)

// TopicAll matches every casegraph topic.
const TopicAll = "casegraph.>"

// OverlayPositionChanged is published when a dragged overlay settles or a
// position is stored for a case. ViewID is empty for direct API writes.
type OverlayPositionChanged struct {
	CaseID   string                `json:"case_id"`
	ViewID   string                `json:"view_id,omitempty"`
	Position model.OverlayPosition `json:"position"`
}

// OverlayPositionCleared is published when a case's stored position is removed.
type OverlayPositionCleared struct {
	CaseID string `json:"case_id"`
}

// SelectionChanged is published when a view selects a node.
type SelectionChanged struct {
	ViewID           string  `json:"view_id"`
	CaseID           string  `json:"case_id"`
	NodeID           string  `json:"node_id"`
	NodeType         string  `json:"node_type"`
	AnchorX          float64 `json:"anchor_x"`
	AnchorY          float64 `json:"anchor_y"`
	ContextMeetingID string  `json:"context_meeting_id,omitempty"`
}

type SelectionCleared struct {
	ViewID string `json:"view_id"`
	CaseID string `json:"case_id"`
}

type ViewOpened struct {
	ViewID string `json:"view_id"`
	CaseID string `json:"case_id"`
}

// ViewClosed carries the reason a session ended: "deleted" or "expired".
type ViewClosed struct {
	ViewID string `json:"view_id"`
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}

// ViewTransformed is published at the end of a pan gesture or after a
// wheel zoom that changed the view.
type ViewTransformed struct {
	ViewID    string  `json:"view_id"`
	CaseID    string  `json:"case_id"`
	Transform string  `json:"transform"`
	Zoom      float64 `json:"zoom"`
}
