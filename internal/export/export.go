// Package export writes layout snapshots of every case as JSONL and ships
// them to external destinations on a schedule.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/idgen"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/store"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
)

// FormatVersion is the version written in every snapshot header.
const FormatVersion = "1"

// Record types.
const (
	TypeHeader          = "header"
	TypeLayout          = "layout"
	TypeOverlayPosition = "overlay_position"
)

// header is the first JSONL record of a snapshot.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	SnapshotID    string    `json:"snapshot_id"`
	Timestamp     time.Time `json:"timestamp"`
	CaseCount     int       `json:"case_count"`
	PositionCount int       `json:"position_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// CaseLayout is the layout of one case as of the snapshot time.
type CaseLayout struct {
	CaseID   string          `json:"case_id"`
	Title    string          `json:"title"`
	Meetings int             `json:"meetings"`
	Tasks    int             `json:"tasks"`
	Layout   timeline.Layout `json:"layout"`
}

// ExportJSONL writes a snapshot of all cases to w: a header, one layout
// record per case sorted by case id, then the remembered overlay positions.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer, now time.Time) error {
	cases, err := s.ListCases(ctx)
	if err != nil {
		return fmt.Errorf("list cases: %w", err)
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].ID < cases[j].ID
	})

	layouts := make([]CaseLayout, 0, len(cases))
	var positions []*model.StoredOverlayPosition
	for _, c := range cases {
		resp, err := store.GetTimelineGraph(ctx, s, c.ID, now)
		if err != nil {
			return fmt.Errorf("timeline graph for %s: %w", c.ID, err)
		}
		rm := timeline.BuildRenderModel(resp)
		layouts = append(layouts, CaseLayout{
			CaseID:   c.ID,
			Title:    c.Title,
			Meetings: len(resp.Meetings),
			Tasks:    len(resp.Tasks),
			Layout:   timeline.BuildLayout(rm, resp),
		})

		pos, err := s.GetOverlayPosition(ctx, c.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return fmt.Errorf("get overlay position for %s: %w", c.ID, err)
		default:
			positions = append(positions, pos)
		}
	}

	snapshotID, err := idgen.NewSnapshotID()
	if err != nil {
		return fmt.Errorf("generate snapshot id: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:       FormatVersion,
		Type:          TypeHeader,
		SnapshotID:    snapshotID,
		Timestamp:     now.UTC(),
		CaseCount:     len(layouts),
		PositionCount: len(positions),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, l := range layouts {
		if err := enc.Encode(record{Type: TypeLayout, Data: l}); err != nil {
			return fmt.Errorf("encode layout %s: %w", l.CaseID, err)
		}
	}

	for _, p := range positions {
		if err := enc.Encode(record{Type: TypeOverlayPosition, Data: p}); err != nil {
			return fmt.Errorf("encode overlay position %s: %w", p.CaseID, err)
		}
	}

	return nil
}
