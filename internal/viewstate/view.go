// Package viewstate holds the interactive state of open timeline views.
//
// A view is one rendering of a case's timeline graph. It owns the canvas
// pan/zoom state, the current selection and the details overlay with its
// drag state. Pointer and wheel input arrive one event at a time; each
// handler returns an Outcome telling the caller what to publish or persist.
package viewstate

import (
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
)

// Pointer event kinds.
const (
	PointerDown   = "down"
	PointerMove   = "move"
	PointerUp     = "up"
	PointerCancel = "cancel"
)

// Pointer targets.
const (
	TargetCanvas  = "canvas"
	TargetOverlay = "overlay"
)

// DefaultViewport is used when a view is opened without a viewport size.
var DefaultViewport = timeline.Size{Width: 1280, Height: 800}

// View is the state of one open timeline view.
type View struct {
	ID          string               `json:"id"`
	CaseID      string               `json:"caseId"`
	Pan         timeline.PanState    `json:"pan"`
	Overlay     timeline.OverlayDrag `json:"overlay"`
	Selection   *timeline.Selection  `json:"selection,omitempty"`
	Viewport    timeline.Size        `json:"viewport"`
	OverlaySize timeline.Size        `json:"overlaySize"`
	CreatedAt   time.Time            `json:"createdAt"`
	LastSeen    time.Time            `json:"lastSeen"`
}

// PointerEvent is a single pointer input delivered to a view.
type PointerEvent struct {
	Kind      string  `json:"kind"`
	Target    string  `json:"target"`
	PointerID int     `json:"pointerId"`
	ClientX   float64 `json:"clientX"`
	ClientY   float64 `json:"clientY"`
}

// Validate checks kind and target.
func (e PointerEvent) Validate() error {
	ve := &model.ValidationError{}
	switch e.Kind {
	case PointerDown, PointerMove, PointerUp, PointerCancel:
	default:
		ve.Errors = append(ve.Errors, model.FieldError{Field: "kind", Message: "must be one of down, move, up, cancel"})
	}
	switch e.Target {
	case TargetCanvas, TargetOverlay:
	default:
		ve.Errors = append(ve.Errors, model.FieldError{Field: "target", Message: "must be canvas or overlay"})
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// Outcome reports the side effects of an input event.
type Outcome struct {
	// Changed is set when the view state changed at all.
	Changed bool `json:"changed"`
	// PanEnded is set when a canvas drag finished.
	PanEnded bool `json:"panEnded,omitempty"`
	// OverlayMoved is the overlay position after an accepted drag move.
	OverlayMoved *model.OverlayPosition `json:"overlayMoved,omitempty"`
	// OverlaySettled is the position left behind when an overlay drag ends.
	OverlaySettled *model.OverlayPosition `json:"overlaySettled,omitempty"`
}

func newView(id, caseID string, viewport timeline.Size, remembered *model.OverlayPosition, now time.Time) *View {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}
	v := &View{
		ID:          id,
		CaseID:      caseID,
		Pan:         timeline.InitialPanState(),
		Viewport:    viewport,
		OverlaySize: timeline.DefaultOverlaySize,
		CreatedAt:   now,
		LastSeen:    now,
	}
	v.Overlay.Reset(remembered)
	return v
}

// clone returns a deep copy safe to hand out of the store.
func (v *View) clone() View {
	c := *v
	if v.Selection != nil {
		sel := *v.Selection
		c.Selection = &sel
	}
	c.Overlay.Manual = v.Overlay.Remembered()
	return c
}

// SetCase switches the view to another case. Selection and overlay state are
// reset; the canvas transform is kept.
func (v *View) SetCase(caseID string, remembered *model.OverlayPosition) bool {
	if caseID == v.CaseID {
		return false
	}
	v.CaseID = caseID
	v.Selection = nil
	v.Overlay.Reset(remembered)
	return true
}

// Select makes sel the current selection. The manual overlay position is
// replaced by remembered, so a new selection without a remembered position
// falls back to anchor placement.
func (v *View) Select(sel timeline.Selection, remembered *model.OverlayPosition) {
	v.Selection = &sel
	v.Overlay.Reset(remembered)
}

// ClearSelection drops the selection and any overlay drag in progress. It
// reports whether anything was selected.
func (v *View) ClearSelection() bool {
	if v.Selection == nil {
		return false
	}
	v.Selection = nil
	v.Overlay.Reset(v.Overlay.Remembered())
	return true
}

// Resize updates the viewport size.
func (v *View) Resize(viewport timeline.Size) {
	if viewport.Width > 0 && viewport.Height > 0 {
		v.Viewport = viewport
	}
}

// Placement returns where the details overlay sits, or nil without a selection.
func (v *View) Placement() *timeline.OverlayPlacement {
	if v.Selection == nil {
		return nil
	}
	p := timeline.ComputeOverlayPlacement(v.Selection.Anchor, v.Viewport, v.OverlaySize, v.Overlay.Manual)
	return &p
}

// Pointer applies one pointer event.
func (v *View) Pointer(ev PointerEvent) Outcome {
	if ev.Target == TargetOverlay {
		return v.overlayPointer(ev)
	}
	return v.canvasPointer(ev)
}

func (v *View) canvasPointer(ev PointerEvent) Outcome {
	before := v.Pan
	switch ev.Kind {
	case PointerDown:
		// The canvas stays put while the overlay is being dragged.
		if v.Pan.Dragging || v.Overlay.Active {
			return Outcome{}
		}
		v.Pan = timeline.StartPan(v.Pan, ev.PointerID, ev.ClientX, ev.ClientY)
	case PointerMove:
		v.Pan = timeline.MovePan(v.Pan, ev.PointerID, ev.ClientX, ev.ClientY)
	case PointerUp, PointerCancel:
		v.Pan = timeline.EndPan(v.Pan, ev.PointerID)
		if before.Dragging && !v.Pan.Dragging {
			return Outcome{Changed: true, PanEnded: true}
		}
	}
	return Outcome{Changed: v.Pan != before}
}

func (v *View) overlayPointer(ev PointerEvent) Outcome {
	switch ev.Kind {
	case PointerDown:
		p := v.Placement()
		if p == nil {
			return Outcome{}
		}
		return Outcome{Changed: v.Overlay.PointerDown(ev.PointerID, ev.ClientX, ev.ClientY, *p)}
	case PointerMove:
		width := v.OverlaySize.Width
		if p := v.Placement(); p != nil {
			width = p.Width
		}
		pos, ok := v.Overlay.PointerMove(ev.PointerID, ev.ClientX, ev.ClientY, v.Viewport, width, v.OverlaySize.Height)
		if !ok {
			return Outcome{}
		}
		return Outcome{Changed: true, OverlayMoved: &pos}
	case PointerUp, PointerCancel:
		if !v.Overlay.PointerUp(ev.PointerID) {
			return Outcome{}
		}
		return Outcome{Changed: true, OverlaySettled: v.Overlay.Remembered()}
	}
	return Outcome{}
}

// Wheel zooms the canvas around the focus point. It reports whether the
// transform changed.
func (v *View) Wheel(deltaY, focusX, focusY float64) bool {
	before := v.Pan
	v.Pan = timeline.ZoomPan(v.Pan, deltaY, focusX, focusY)
	return v.Pan != before
}
