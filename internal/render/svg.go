// Package render draws a timeline layout as a standalone SVG document.
//
// Everything is drawn inside a pan layer that carries the view transform,
// so a client can pan and zoom by rewriting one attribute. Highlighted elements
// get the "is-highlighted" class; when a highlight is active every other
// node and edge is marked "is-dimmed".
package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"

	"github.com/alfredjeanlab/casegraph/internal/timeline"
)

// Label limits, in runes.
const (
	MaxTaskTitle        = 30
	MaxStakeholderLabel = 28
	MaxMeetingLabel     = 34
)

// Options control what is drawn on top of the layout.
type Options struct {
	// Transform is applied to the pan layer; empty means identity.
	Transform string
	// Highlight marks the selected node's neighbourhood. Nil draws no highlight.
	Highlight *timeline.Highlight
	// SelectedNodeID gets the "is-selected" class.
	SelectedNodeID string
}

// SVG writes l as an SVG document.
func SVG(w io.Writer, l timeline.Layout, opts Options) error {
	bw := bufio.NewWriter(w)
	r := &svgWriter{w: bw, opts: opts}

	width, height := num(l.Width), num(l.Height)
	r.printf(`<svg xmlns="http://www.w3.org/2000/svg" class="case-timeline" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		width, height, width, height)
	transform := opts.Transform
	if transform == "" {
		transform = "translate(0,0) scale(1)"
	}
	r.printf(`<g class="pan-layer" transform="%s">`+"\n", esc(transform))

	r.printf(`<line class="axis" x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
		num(l.AxisStartX), num(l.AxisY), num(l.AxisEndX), num(l.AxisY))
	if l.HasContent {
		r.printf(`<line class="now-marker" x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
			num(l.NowX), num(l.AxisY-timeline.MeetingRadius*2), num(l.NowX), num(l.AxisY+timeline.MeetingRadius*2))
	}
	if l.UnlinkedBucketX != nil {
		r.printf(`<text class="bucket-label" x="%s" y="%s" text-anchor="middle">Ohne Termin</text>`+"\n",
			num(*l.UnlinkedBucketX), num(timeline.TaskRowY-16))
	}

	r.printf(`<g class="edges">` + "\n")
	for _, e := range l.Edges {
		r.printf(`<path id="%s" class="%s" d="%s"/>`+"\n",
			esc(e.ID), r.edgeClass(e), esc(e.Path))
	}
	r.printf("</g>\n")

	r.printf(`<g class="nodes">` + "\n")
	for _, m := range l.Meetings {
		r.printf(`<g id="%s" class="%s">`, esc(m.ID), r.nodeClass(m.ID, "meeting"))
		r.printf(`<circle cx="%s" cy="%s" r="%s"/>`, num(m.X), num(m.Y), num(timeline.MeetingRadius))
		r.printf(`<text x="%s" y="%s" text-anchor="middle">%s</text>`,
			num(m.X), num(m.Y+timeline.MeetingRadius+18), esc(timeline.Truncate(m.Label, MaxMeetingLabel)))
		r.printf("</g>\n")
	}
	for _, t := range l.Tasks {
		class := r.nodeClass(t.ID, "task")
		if t.Overdue {
			class += " is-overdue"
		}
		r.printf(`<g id="%s" class="%s">`, esc(t.ID), class)
		r.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="8"/>`, num(t.X), num(t.Y), num(t.Width), num(t.Height))
		r.printf(`<text class="title" x="%s" y="%s">%s</text>`, num(t.X+12), num(t.Y+24), esc(timeline.Truncate(t.Title, MaxTaskTitle)))
		meta := t.StatusLabel + " · " + t.PriorityLabel
		if t.DueLabel != "" {
			meta += " · " + t.DueLabel
		}
		r.printf(`<text class="meta" x="%s" y="%s">%s</text>`, num(t.X+12), num(t.Y+50), esc(meta))
		r.printf("</g>\n")
	}
	for _, s := range l.Stakeholders {
		r.printf(`<g id="%s" class="%s">`, esc(s.ID), r.nodeClass(s.ID, "stakeholder"))
		r.printf(`<rect x="%s" y="%s" width="%s" height="%s" rx="6"/>`, num(s.X), num(s.Y), num(s.Width), num(s.Height))
		r.printf(`<text x="%s" y="%s">%s</text>`, num(s.X+10), num(s.Y+28), esc(timeline.Truncate(s.Label, MaxStakeholderLabel)))
		r.printf("</g>\n")
	}
	r.printf("</g>\n</g>\n</svg>\n")

	if r.err != nil {
		return fmt.Errorf("rendering svg: %w", r.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("rendering svg: %w", err)
	}
	return nil
}

type svgWriter struct {
	w    *bufio.Writer
	opts Options
	err  error
}

func (r *svgWriter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *svgWriter) nodeClass(id, kind string) string {
	class := "node " + kind
	if id == r.opts.SelectedNodeID && id != "" {
		class += " is-selected"
	}
	return class + r.highlightClass(r.opts.Highlight != nil && r.opts.Highlight.HasNode(id))
}

func (r *svgWriter) edgeClass(e timeline.LayoutEdge) string {
	class := "edge " + string(e.Type)
	return class + r.highlightClass(r.opts.Highlight != nil && r.opts.Highlight.HasEdge(e.ID))
}

func (r *svgWriter) highlightClass(hit bool) string {
	switch {
	case r.opts.Highlight == nil || len(r.opts.Highlight.NodeIDs) == 0:
		return ""
	case hit:
		return " is-highlighted"
	default:
		return " is-dimmed"
	}
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func esc(s string) string { return html.EscapeString(s) }
