package timeline

import "github.com/alfredjeanlab/casegraph/internal/model"

// Overlay geometry, in pixels.
const (
	OverlayOffset        = 14.0
	OverlayMargin        = 12.0
	DefaultOverlayWidth  = 360.0
	DefaultOverlayHeight = 272.0
	MinOverlayWidth      = 280.0
)

// Point is a screen-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultOverlaySize is the size of the details overlay.
var DefaultOverlaySize = Size{Width: DefaultOverlayWidth, Height: DefaultOverlayHeight}

// Orientation flags of an overlay relative to its anchor.
const (
	HorizontalLeft  = "left"
	HorizontalRight = "right"
	VerticalUp      = "up"
	VerticalDown    = "down"
)

// OverlayPlacement is where the overlay panel goes and which way it faces.
type OverlayPlacement struct {
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Horizontal string  `json:"horizontal"`
	Vertical   string  `json:"vertical"`
	Width      float64 `json:"width"`
}

// Position returns the placement's top-left corner.
func (p OverlayPlacement) Position() model.OverlayPosition {
	return model.OverlayPosition{Left: p.Left, Top: p.Top}
}

// ComputeOverlayPlacement places an overlay of the given size next to anchor.
// With a preferred position the panel stays there (clamped into the
// viewport margins) and the flags only describe where it sits relative to
// the anchor. Otherwise it opens right and down of the anchor, flipping
// to the left or upwards when it would overflow the viewport. A viewport
// too small for the panel pins it to the top-left margin; the minimum
// width and the full height are kept, so it overflows right and bottom.
func ComputeOverlayPlacement(anchor Point, viewport, size Size, preferred *model.OverlayPosition) OverlayPlacement {
	width := min(size.Width, max(MinOverlayWidth, viewport.Width-2*OverlayMargin))
	maxLeft := max(OverlayMargin, viewport.Width-width-OverlayMargin)
	maxTop := max(OverlayMargin, viewport.Height-size.Height-OverlayMargin)

	if preferred != nil {
		left := clamp(preferred.Left, OverlayMargin, maxLeft)
		top := clamp(preferred.Top, OverlayMargin, maxTop)
		p := OverlayPlacement{Left: left, Top: top, Width: width, Horizontal: HorizontalRight, Vertical: VerticalUp}
		if left+width/2 > anchor.X {
			p.Horizontal = HorizontalLeft
		}
		if top > anchor.Y {
			p.Vertical = VerticalDown
		}
		return p
	}

	p := OverlayPlacement{Width: width, Horizontal: HorizontalRight, Vertical: VerticalDown}
	left := anchor.X + OverlayOffset
	if left+width+OverlayMargin > viewport.Width {
		p.Horizontal = HorizontalLeft
		left = anchor.X - width - OverlayOffset
	}
	top := anchor.Y + OverlayOffset
	if top+size.Height+OverlayMargin > viewport.Height {
		p.Vertical = VerticalUp
		top = anchor.Y - size.Height - OverlayOffset
	}
	p.Left = clamp(left, OverlayMargin, maxLeft)
	p.Top = clamp(top, OverlayMargin, maxTop)
	return p
}

// ClampOverlayPosition keeps a panel of width x height inside the viewport margins.
func ClampOverlayPosition(pos model.OverlayPosition, viewport Size, width, height float64) model.OverlayPosition {
	return model.OverlayPosition{
		Left: clamp(pos.Left, OverlayMargin, max(OverlayMargin, viewport.Width-width-OverlayMargin)),
		Top:  clamp(pos.Top, OverlayMargin, max(OverlayMargin, viewport.Height-height-OverlayMargin)),
	}
}

// OverlayDrag tracks a drag of the overlay's handle and the manual position
// it leaves behind. Only one pointer drives a drag at a time.
type OverlayDrag struct {
	Active    bool                   `json:"active"`
	PointerID int                    `json:"pointerId"`
	OffsetX   float64                `json:"offsetX"`
	OffsetY   float64                `json:"offsetY"`
	Manual    *model.OverlayPosition `json:"manual,omitempty"`
}

// PointerDown grabs the handle. The current placement becomes the manual
// position so the panel does not jump. A second pointer is ignored while a
// drag is in progress.
func (d *OverlayDrag) PointerDown(pointerID int, clientX, clientY float64, placement OverlayPlacement) bool {
	if d.Active {
		return false
	}
	d.Active = true
	d.PointerID = pointerID
	d.OffsetX = clientX - placement.Left
	d.OffsetY = clientY - placement.Top
	pos := placement.Position()
	d.Manual = &pos
	return true
}

// PointerMove moves the panel with the dragging pointer, clamped into the
// viewport. It reports the new position and true for every accepted move;
// the caller emits one position-changed event per call that returns true.
func (d *OverlayDrag) PointerMove(pointerID int, clientX, clientY float64, viewport Size, width, height float64) (model.OverlayPosition, bool) {
	if !d.Active || pointerID != d.PointerID {
		return model.OverlayPosition{}, false
	}
	next := ClampOverlayPosition(model.OverlayPosition{
		Left: clientX - d.OffsetX,
		Top:  clientY - d.OffsetY,
	}, viewport, width, height)
	d.Manual = &next
	return next, true
}

// PointerUp ends the drag of pointerID.
func (d *OverlayDrag) PointerUp(pointerID int) bool {
	if !d.Active || pointerID != d.PointerID {
		return false
	}
	d.Active = false
	d.PointerID = 0
	return true
}

// PointerCancel is handled exactly like PointerUp.
func (d *OverlayDrag) PointerCancel(pointerID int) bool {
	return d.PointerUp(pointerID)
}

// Remembered returns the manual position, or nil when none was set.
func (d *OverlayDrag) Remembered() *model.OverlayPosition {
	if d.Manual == nil {
		return nil
	}
	p := *d.Manual
	return &p
}

// Reset drops any drag in progress and replaces the manual position with
// remembered, which may be nil.
func (d *OverlayDrag) Reset(remembered *model.OverlayPosition) {
	*d = OverlayDrag{}
	if remembered != nil {
		p := *remembered
		d.Manual = &p
	}
}

// Clear forgets the manual position.
func (d *OverlayDrag) Clear() {
	d.Reset(nil)
}
