package timeline

import "math"

// Zoom bounds and wheel step.
const (
	ZoomMin         = 0.5
	ZoomMax         = 2.5
	WheelZoomFactor = 1.1

	zoomEpsilon = 0.000001
)

// PanState is the canvas view transform plus the active drag, if any.
// PointerID is only meaningful while Dragging.
type PanState struct {
	TranslationX          float64 `json:"translationX"`
	TranslationY          float64 `json:"translationY"`
	Zoom                  float64 `json:"zoom"`
	Dragging              bool    `json:"dragging"`
	PointerID             int     `json:"pointerId"`
	DragStartClientX      float64 `json:"dragStartClientX"`
	DragStartClientY      float64 `json:"dragStartClientY"`
	DragStartTranslationX float64 `json:"dragStartTranslationX"`
	DragStartTranslationY float64 `json:"dragStartTranslationY"`
}

// InitialPanState is the identity transform with no drag in progress.
func InitialPanState() PanState {
	return PanState{Zoom: 1}
}

// StartPan begins a drag anchored to pointerID.
func StartPan(s PanState, pointerID int, clientX, clientY float64) PanState {
	s.Dragging = true
	s.PointerID = pointerID
	s.DragStartClientX = clientX
	s.DragStartClientY = clientY
	s.DragStartTranslationX = s.TranslationX
	s.DragStartTranslationY = s.TranslationY
	return s
}

// MovePan translates the canvas by the pointer's delta since StartPan.
// Moves of other pointers, or while not dragging, leave s unchanged.
func MovePan(s PanState, pointerID int, clientX, clientY float64) PanState {
	if !s.Dragging || pointerID != s.PointerID {
		return s
	}
	s.TranslationX = s.DragStartTranslationX + (clientX - s.DragStartClientX)
	s.TranslationY = s.DragStartTranslationY + (clientY - s.DragStartClientY)
	return s
}

// EndPan finishes the drag of pointerID. It also serves pointer-cancel.
func EndPan(s PanState, pointerID int) PanState {
	if !s.Dragging || pointerID != s.PointerID {
		return s
	}
	s.Dragging = false
	s.PointerID = 0
	return s
}

// ZoomPan zooms in for negative deltaY and out otherwise, keeping the world
// point under (focusX, focusY) fixed on screen.
func ZoomPan(s PanState, deltaY, focusX, focusY float64) PanState {
	factor := 1 / WheelZoomFactor
	if deltaY < 0 {
		factor = WheelZoomFactor
	}
	next := clamp(s.Zoom*factor, ZoomMin, ZoomMax)
	if math.Abs(next-s.Zoom) < zoomEpsilon {
		return s
	}
	worldX, worldY := s.ToWorld(focusX, focusY)
	s.TranslationX = focusX - worldX*next
	s.TranslationY = focusY - worldY*next
	s.Zoom = next
	return s
}

// ToWorld maps a screen point into canvas coordinates.
func (s PanState) ToWorld(x, y float64) (float64, float64) {
	return (x - s.TranslationX) / s.Zoom, (y - s.TranslationY) / s.Zoom
}

// Transform renders the state as an SVG transform attribute.
func (s PanState) Transform() string {
	return "translate(" + formatNum(s.TranslationX) + "," + formatNum(s.TranslationY) + ") scale(" + formatNum(s.Zoom) + ")"
}
