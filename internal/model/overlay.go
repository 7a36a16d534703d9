package model

import "time"

// OverlayPosition is the top-left corner of the floating details overlay,
// in viewport pixels.
type OverlayPosition struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// StoredOverlayPosition is an overlay position remembered for a case.
type StoredOverlayPosition struct {
	CaseID    string          `json:"case_id"`
	Position  OverlayPosition `json:"position"`
	UpdatedAt time.Time       `json:"updated_at"`
}
