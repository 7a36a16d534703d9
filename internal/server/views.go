package server

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/casegraph/internal/events"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
)

// ViewResponse is a view with the state derived from it.
type ViewResponse struct {
	viewstate.View
	Transform string                     `json:"transform"`
	Placement *timeline.OverlayPlacement `json:"placement"`
	Selected  *SelectionResult           `json:"selected,omitempty"`
	Outcome   *viewstate.Outcome         `json:"outcome,omitempty"`
}

func viewResponse(v viewstate.View) *ViewResponse {
	return &ViewResponse{
		View:      v,
		Transform: v.Pan.Transform(),
		Placement: v.Placement(),
	}
}

// openView starts a view session of a case.
func (s *CaseGraphServer) openView(ctx context.Context, caseID string, viewport timeline.Size) (*ViewResponse, error) {
	if caseID == "" {
		return nil, inputError("case id is required")
	}
	if _, err := s.store.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	remembered, err := s.rememberedPosition(ctx, caseID)
	if err != nil {
		return nil, err
	}
	v, err := s.Views.Open(caseID, viewport, remembered)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicViewOpened, events.ViewOpened{ViewID: v.ID, CaseID: caseID})
	return viewResponse(v), nil
}

func (s *CaseGraphServer) getView(id string) (*ViewResponse, error) {
	v, err := s.Views.Get(id)
	if err != nil {
		return nil, err
	}
	return viewResponse(v), nil
}

func (s *CaseGraphServer) closeView(ctx context.Context, id string) error {
	v, err := s.Views.Close(id)
	if err != nil {
		return err
	}
	s.publish(ctx, events.TopicViewClosed, events.ViewClosed{ViewID: v.ID, CaseID: v.CaseID, Reason: "deleted"})
	return nil
}

// switchCase points a view at another case. Selection and overlay state are
// reset to the new case's remembered position.
func (s *CaseGraphServer) switchCase(ctx context.Context, id, caseID string) (*ViewResponse, error) {
	if caseID == "" {
		return nil, inputError("case id is required")
	}
	if _, err := s.store.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	remembered, err := s.rememberedPosition(ctx, caseID)
	if err != nil {
		return nil, err
	}
	v, err := s.Views.Update(id, func(v *viewstate.View) error {
		v.SetCase(caseID, remembered)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewResponse(v), nil
}

func (s *CaseGraphServer) resizeView(id string, viewport timeline.Size) (*ViewResponse, error) {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return nil, inputError("viewport width and height must be positive")
	}
	v, err := s.Views.Update(id, func(v *viewstate.View) error {
		v.Resize(viewport)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewResponse(v), nil
}

// pointer feeds one pointer event to a view. Every accepted overlay move
// publishes a position change; the position left behind when the drag ends
// is remembered for the case.
func (s *CaseGraphServer) pointer(ctx context.Context, id string, ev viewstate.PointerEvent) (*ViewResponse, error) {
	if err := ev.Validate(); err != nil {
		return nil, inputError(err.Error())
	}
	var out viewstate.Outcome
	v, err := s.Views.Update(id, func(v *viewstate.View) error {
		out = v.Pointer(ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.OverlayMoved != nil {
		s.publish(ctx, events.TopicOverlayPositionChanged, events.OverlayPositionChanged{
			CaseID:   v.CaseID,
			ViewID:   v.ID,
			Position: *out.OverlayMoved,
		})
	}
	if out.OverlaySettled != nil {
		stored := &model.StoredOverlayPosition{CaseID: v.CaseID, Position: *out.OverlaySettled}
		if err := s.store.SetOverlayPosition(ctx, stored); err != nil {
			slog.Warn("failed to remember overlay position", "case_id", v.CaseID, "view_id", v.ID, "err", err)
		}
	}
	if out.PanEnded {
		s.publishTransform(ctx, v)
	}

	resp := viewResponse(v)
	resp.Outcome = &out
	return resp, nil
}

// wheel zooms a view around the focus point.
func (s *CaseGraphServer) wheel(ctx context.Context, id string, deltaY, focusX, focusY float64) (*ViewResponse, error) {
	var changed bool
	v, err := s.Views.Update(id, func(v *viewstate.View) error {
		changed = v.Wheel(deltaY, focusX, focusY)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishTransform(ctx, v)
	}
	resp := viewResponse(v)
	resp.Outcome = &viewstate.Outcome{Changed: changed}
	return resp, nil
}

// selectNode selects a node of the view's case. The overlay falls back to
// the case's remembered position, or to anchor placement without one.
func (s *CaseGraphServer) selectNode(ctx context.Context, id, nodeID string, anchor timeline.Point) (*ViewResponse, error) {
	if nodeID == "" {
		return nil, inputError("node is required")
	}
	current, err := s.Views.Get(id)
	if err != nil {
		return nil, err
	}
	gv, err := s.loadGraph(ctx, current.CaseID)
	if err != nil {
		return nil, err
	}
	node := gv.RenderModel.Node(nodeID)
	if node == nil {
		return nil, inputError("unknown node " + nodeID)
	}
	remembered, err := s.rememberedPosition(ctx, current.CaseID)
	if err != nil {
		return nil, err
	}
	v, err := s.Views.Update(id, func(v *viewstate.View) error {
		v.Select(timeline.Selection{NodeID: nodeID, NodeType: node.Type, Anchor: anchor}, remembered)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sel := selectionFor(gv, nodeID, node.Type)
	s.publish(ctx, events.TopicSelectionChanged, events.SelectionChanged{
		ViewID:           v.ID,
		CaseID:           v.CaseID,
		NodeID:           nodeID,
		NodeType:         string(node.Type),
		AnchorX:          anchor.X,
		AnchorY:          anchor.Y,
		ContextMeetingID: sel.Highlight.ContextMeetingID,
	})

	resp := viewResponse(v)
	resp.Selected = sel
	return resp, nil
}

func (s *CaseGraphServer) clearSelection(ctx context.Context, id string) (*ViewResponse, error) {
	var cleared bool
	v, err := s.Views.Update(id, func(v *viewstate.View) error {
		cleared = v.ClearSelection()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cleared {
		s.publish(ctx, events.TopicSelectionCleared, events.SelectionCleared{ViewID: v.ID, CaseID: v.CaseID})
	}
	return viewResponse(v), nil
}

func (s *CaseGraphServer) publishTransform(ctx context.Context, v viewstate.View) {
	s.publish(ctx, events.TopicViewTransformed, events.ViewTransformed{
		ViewID:    v.ID,
		CaseID:    v.CaseID,
		Transform: v.Pan.Transform(),
		Zoom:      v.Pan.Zoom,
	})
}
