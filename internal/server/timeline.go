package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/events"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/store"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
)

// graphClock is the resolution of the graph's reference time. Requests within
// the same minute see the same "now" and so share cached layouts.
const graphClock = time.Minute

// SelectionResult is the highlight and details of a selected node.
type SelectionResult struct {
	Highlight timeline.Highlight         `json:"highlight"`
	Details   *timeline.SelectionDetails `json:"details"`
}

// PlacementRequest is the input of a standalone overlay placement.
type PlacementRequest struct {
	Anchor    timeline.Point         `json:"anchor"`
	Viewport  timeline.Size          `json:"viewport"`
	Size      *timeline.Size         `json:"size,omitempty"`
	Preferred *model.OverlayPosition `json:"preferred,omitempty"`
}

// loadGraph reads a case's timeline graph and returns it with its layout.
func (s *CaseGraphServer) loadGraph(ctx context.Context, caseID string) (*graphView, error) {
	if caseID == "" {
		return nil, inputError("case id is required")
	}
	now := s.now().UTC().Truncate(graphClock)
	resp, err := store.GetTimelineGraph(ctx, s.store, caseID, now)
	if err != nil {
		return nil, fmt.Errorf("loading timeline graph of %s: %w", caseID, err)
	}
	return s.layouts.build(resp)
}

// selection computes the highlight and details for nodeID. An empty nodeType
// is taken from the node itself. An unknown node yields an empty highlight
// and no details.
func (s *CaseGraphServer) selection(ctx context.Context, caseID, nodeID, nodeType string) (*SelectionResult, error) {
	if nodeID == "" {
		return nil, inputError("node is required")
	}
	if nodeType != "" && !timeline.NodeType(nodeType).IsValid() {
		return nil, inputError("unknown node type " + nodeType)
	}
	gv, err := s.loadGraph(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return selectionFor(gv, nodeID, timeline.NodeType(nodeType)), nil
}

func selectionFor(gv *graphView, nodeID string, nodeType timeline.NodeType) *SelectionResult {
	if nodeType == "" {
		if n := gv.RenderModel.Node(nodeID); n != nil {
			nodeType = n.Type
		}
	}
	return &SelectionResult{
		Highlight: timeline.ComputeHighlight(gv.RenderModel, nodeID),
		Details:   timeline.BuildSelectionDetails(gv.RenderModel, gv.Response, nodeID, nodeType),
	}
}

// placement computes an overlay placement without any session state.
func placement(req PlacementRequest) (timeline.OverlayPlacement, error) {
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		return timeline.OverlayPlacement{}, inputError("viewport width and height must be positive")
	}
	size := timeline.DefaultOverlaySize
	if req.Size != nil {
		if req.Size.Width <= 0 || req.Size.Height <= 0 {
			return timeline.OverlayPlacement{}, inputError("overlay width and height must be positive")
		}
		size = *req.Size
	}
	if req.Preferred != nil {
		if err := model.ValidateOverlayPosition(*req.Preferred); err != nil {
			return timeline.OverlayPlacement{}, inputError("invalid preferred position: " + err.Error())
		}
	}
	return timeline.ComputeOverlayPlacement(req.Anchor, req.Viewport, size, req.Preferred), nil
}

func (s *CaseGraphServer) getOverlayPosition(ctx context.Context, caseID string) (*model.StoredOverlayPosition, error) {
	if caseID == "" {
		return nil, inputError("case id is required")
	}
	return s.store.GetOverlayPosition(ctx, caseID)
}

// rememberedPosition returns the case's stored overlay position, or nil.
func (s *CaseGraphServer) rememberedPosition(ctx context.Context, caseID string) (*model.OverlayPosition, error) {
	stored, err := s.store.GetOverlayPosition(ctx, caseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get overlay position: %w", err)
	}
	pos := stored.Position
	return &pos, nil
}

// setOverlayPosition remembers pos for the case and publishes the change.
// viewID names the view that moved the overlay, if any.
func (s *CaseGraphServer) setOverlayPosition(ctx context.Context, caseID, viewID string, pos model.OverlayPosition) (*model.StoredOverlayPosition, error) {
	if caseID == "" {
		return nil, inputError("case id is required")
	}
	if err := model.ValidateOverlayPosition(pos); err != nil {
		return nil, inputError(err.Error())
	}
	stored := &model.StoredOverlayPosition{CaseID: caseID, Position: pos}
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetCase(ctx, caseID); err != nil {
			return err
		}
		return tx.SetOverlayPosition(ctx, stored)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOverlayPositionChanged, events.OverlayPositionChanged{
		CaseID:   caseID,
		ViewID:   viewID,
		Position: pos,
	})
	return stored, nil
}

func (s *CaseGraphServer) deleteOverlayPosition(ctx context.Context, caseID string) error {
	if caseID == "" {
		return inputError("case id is required")
	}
	if err := s.store.DeleteOverlayPosition(ctx, caseID); err != nil {
		return err
	}
	s.publish(ctx, events.TopicOverlayPositionCleared, events.OverlayPositionCleared{CaseID: caseID})
	return nil
}
