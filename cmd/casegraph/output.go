package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/casegraph/internal/client"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// parsePoint parses "x,y".
func parsePoint(s string) (timeline.Point, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return timeline.Point{}, fmt.Errorf("invalid point %q (want x,y)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return timeline.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return timeline.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return timeline.Point{X: x, Y: y}, nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (timeline.Size, error) {
	a, b, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return timeline.Size{}, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	w, err := strconv.ParseFloat(a, 64)
	if err != nil || w <= 0 {
		return timeline.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.ParseFloat(b, 64)
	if err != nil || h <= 0 {
		return timeline.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	return timeline.Size{Width: w, Height: h}, nil
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printCases(w io.Writer, cases []client.Case) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE")
	for _, c := range cases {
		fmt.Fprintf(tw, "%s\t%s\n", ui.RenderAccent(c.ID), c.Title)
	}
	tw.Flush()
}

func printRenderModel(w io.Writer, rm *timeline.RenderModel) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tID\tLABEL")
	for _, n := range rm.Nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Type, ui.RenderAccent(n.ID), n.Label)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d nodes, %d edges\n", len(rm.Nodes), len(rm.Edges))
}

func printLayout(w io.Writer, l *timeline.Layout) {
	fmt.Fprintf(w, "Canvas:  %sx%s\n", fmtNum(l.Width), fmtNum(l.Height))
	fmt.Fprintf(w, "Axis:    %s..%s at y=%s, now at x=%s\n", fmtNum(l.AxisStartX), fmtNum(l.AxisEndX), fmtNum(l.AxisY), fmtNum(l.NowX))
	if !l.HasContent {
		fmt.Fprintln(w, ui.RenderMuted("No meetings or tasks."))
		return
	}
	if l.UnlinkedBucketX != nil {
		fmt.Fprintf(w, "Bucket:  x=%s\n", fmtNum(*l.UnlinkedBucketX))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tX\tY\tLABEL")
	for _, m := range l.Meetings {
		fmt.Fprintf(tw, "meeting\t%s\t%s\t%s\n", fmtNum(m.X), fmtNum(m.Y), ui.RenderAccent(m.Label))
	}
	for _, t := range l.Tasks {
		label := timeline.Truncate(t.Title, 40) + " " + ui.RenderMuted(t.PriorityLabel+" "+t.StatusLabel)
		if t.Overdue {
			label += " " + ui.RenderWarn("überfällig")
		}
		fmt.Fprintf(tw, "task\t%s\t%s\t%s\n", fmtNum(t.X), fmtNum(t.Y), label)
	}
	for _, s := range l.Stakeholders {
		fmt.Fprintf(tw, "stakeholder\t%s\t%s\t%s\n", fmtNum(s.X), fmtNum(s.Y), s.Label)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d edges\n", len(l.Edges))
}

func printSelection(w io.Writer, sel *client.Selection) {
	if sel.Details == nil {
		fmt.Fprintln(w, ui.RenderMuted("Nothing selected."))
		return
	}
	d := sel.Details
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", k, v)
		}
	}
	row("Node", ui.RenderAccent(d.NodeID))
	row("Type", string(d.Type))
	row("Title", d.Title)
	row("Name", d.FullName)
	row("Date", d.DateLabel)
	row("Location", d.LocationLabel)
	row("Status", d.StatusLabel)
	row("Priority", d.PriorityLabel)
	row("Assignee", d.AssigneeLabel)
	if d.Overdue {
		row("Due", ui.RenderWarn(d.DueLabel))
	} else {
		row("Due", d.DueLabel)
	}
	row("Role", d.RoleLabel)
	row("Meeting", d.RelatedMeetingLabel)
	if len(d.ParticipantLabels) > 0 {
		row("Participants", strings.Join(d.ParticipantLabels, ", "))
	}
	tw.Flush()

	if len(sel.Highlight.NodeIDs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Highlighted:")
		for _, id := range sel.Highlight.NodeIDs {
			fmt.Fprintf(w, "  %s\n", ui.RenderHighlight(id))
		}
	}
}

func printPlacement(w io.Writer, p *timeline.OverlayPlacement) {
	fmt.Fprintf(w, "left=%s top=%s width=%s (%s, %s)\n",
		fmtNum(p.Left), fmtNum(p.Top), fmtNum(p.Width), p.Horizontal, p.Vertical)
}

func printOverlayPosition(w io.Writer, pos *model.StoredOverlayPosition) {
	fmt.Fprintf(w, "left=%s top=%s (updated %s)\n",
		fmtNum(pos.Position.Left), fmtNum(pos.Position.Top), pos.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printView(w io.Writer, v *client.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "View:\t%s\n", ui.RenderAccent(v.ID))
	fmt.Fprintf(tw, "Case:\t%s\n", v.CaseID)
	fmt.Fprintf(tw, "Viewport:\t%sx%s\n", fmtNum(v.Viewport.Width), fmtNum(v.Viewport.Height))
	fmt.Fprintf(tw, "Transform:\t%s\n", v.Transform)
	if v.Selection != nil {
		fmt.Fprintf(tw, "Selected:\t%s\n", ui.RenderHighlight(v.Selection.NodeID))
	}
	if v.Placement != nil {
		fmt.Fprintf(tw, "Overlay:\tleft=%s top=%s\n", fmtNum(v.Placement.Left), fmtNum(v.Placement.Top))
	}
	if v.Overlay.Manual != nil {
		fmt.Fprintf(tw, "Manual:\tleft=%s top=%s\n", fmtNum(v.Overlay.Manual.Left), fmtNum(v.Overlay.Manual.Top))
	}
	fmt.Fprintf(tw, "Last seen:\t%s\n", v.LastSeen.Format("2006-01-02 15:04:05"))
	tw.Flush()
}

func printViewList(w io.Writer, views []*client.View) {
	if len(views) == 0 {
		fmt.Fprintln(w, "no open views")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCASE\tZOOM\tSELECTED\tLAST SEEN")
	for _, v := range views {
		selected := ""
		if v.Selection != nil {
			selected = v.Selection.NodeID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.CaseID, fmtNum(v.Pan.Zoom), selected, v.LastSeen.Format("15:04:05"))
	}
	tw.Flush()
}
