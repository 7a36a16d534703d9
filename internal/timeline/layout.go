package timeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

// Layout geometry, in pixels.
const (
	TaskRowY            = 90.0
	AxisY               = 250.0
	StakeholderRowY     = 335.0
	TaskWidth           = 220.0
	TaskHeight          = 74.0
	StakeholderWidth    = 210.0
	StakeholderHeight   = 46.0
	MeetingLabelWidth   = 220.0
	MeetingRadius       = 11.0
	DefaultHeight       = 470.0
	MinAxisWidth        = 760.0
	AxisWidthPerMeeting = 260.0
	LeftPadding         = 140.0
	LeftPaddingUnlinked = 320.0
	RightPadding        = 240.0
	BottomPadding       = 40.0

	TaskGap            = 20.0
	StakeholderGap     = 18.0
	UnlinkedTaskGap    = 16.0
	StakeholderLaneGap = 14.0

	unlinkedBucketOffset = 240.0
)

// LayoutMeeting is a meeting marker on the time axis; X, Y is its center.
type LayoutMeeting struct {
	ID        string  `json:"id"`
	MeetingID string  `json:"meetingId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Label     string  `json:"label"`
	Title     string  `json:"title"`
}

// LayoutTask is a positioned task card; X, Y is its top-left corner.
type LayoutTask struct {
	ID            string  `json:"id"`
	TaskID        string  `json:"taskId"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Title         string  `json:"title"`
	StatusLabel   string  `json:"statusLabel"`
	PriorityLabel string  `json:"priorityLabel"`
	DueLabel      string  `json:"dueLabel,omitempty"`
	Overdue       bool    `json:"overdue"`
	Unlinked      bool    `json:"unlinked"`
}

// LayoutStakeholder is a positioned stakeholder box; X, Y is its top-left corner.
type LayoutStakeholder struct {
	ID            string  `json:"id"`
	StakeholderID string  `json:"stakeholderId"`
	MeetingID     string  `json:"meetingId"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Label         string  `json:"label"`
}

// LayoutEdge is an edge resolved to an SVG path.
type LayoutEdge struct {
	ID       string   `json:"id"`
	Type     EdgeType `json:"type"`
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Path     string   `json:"path"`
}

// Layout is the screen-space rendition of a render model.
type Layout struct {
	Width           float64             `json:"width"`
	Height          float64             `json:"height"`
	AxisStartX      float64             `json:"axisStartX"`
	AxisEndX        float64             `json:"axisEndX"`
	AxisY           float64             `json:"axisY"`
	NowX            float64             `json:"nowX"`
	Meetings        []LayoutMeeting     `json:"meetings"`
	Tasks           []LayoutTask        `json:"tasks"`
	Stakeholders    []LayoutStakeholder `json:"stakeholders"`
	Edges           []LayoutEdge        `json:"edges"`
	HasContent      bool                `json:"hasContent"`
	UnlinkedBucketX *float64            `json:"unlinkedBucketX"`
}

// Box is an axis-aligned rectangle with an identity, used by the stacking pass.
type Box struct {
	ID     string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Intersects reports whether two boxes overlap. Touching edges do not count.
func (b Box) Intersects(o Box) bool {
	return b.X < o.X+o.Width && b.X+b.Width > o.X &&
		b.Y < o.Y+o.Height && b.Y+b.Height > o.Y
}

// StackByCollision pushes overlapping boxes down into lanes. Boxes are
// visited by x (then id); each takes the first lane, counting from its own
// row, where it intersects no box already placed. One lane step is the box
// height plus gap. The result keeps the input order.
func StackByCollision(boxes []Box, gap float64) []Box {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		l, r := boxes[order[a]], boxes[order[b]]
		if l.X != r.X {
			return l.X < r.X
		}
		return l.ID < r.ID
	})

	out := make([]Box, len(boxes))
	placed := make([]Box, 0, len(boxes))
	for _, idx := range order {
		b := boxes[idx]
		step := b.Height + gap
		for lane := 0; ; lane++ {
			candidate := b
			candidate.Y = b.Y + float64(lane)*step
			if !intersectsAny(candidate, placed) {
				b = candidate
				break
			}
		}
		placed = append(placed, b)
		out[idx] = b
	}
	return out
}

func intersectsAny(b Box, others []Box) bool {
	for _, o := range others {
		if b.Intersects(o) {
			return true
		}
	}
	return false
}

type nodeBox struct {
	typ NodeType
	Box
}

// BuildLayout positions a render model on the canvas. resp supplies the
// reference time and the labels of the underlying records; it may be nil,
// in which case the axis is anchored at the earliest meeting time.
// Identical inputs always give identical layouts.
func BuildLayout(rm RenderModel, resp *model.TimelineGraphResponse) Layout {
	var meetingNodes, taskNodes, stakeholderNodes, unlinked []Node
	for _, n := range rm.Nodes {
		switch n.Type {
		case NodeMeeting:
			meetingNodes = append(meetingNodes, n)
		case NodeTask:
			taskNodes = append(taskNodes, n)
			if n.MeetingID == "" {
				unlinked = append(unlinked, n)
			}
		case NodeStakeholder:
			stakeholderNodes = append(stakeholderNodes, n)
		}
	}

	leftPadding := LeftPadding
	if len(unlinked) > 0 {
		leftPadding = LeftPaddingUnlinked
	}
	axisStartX := leftPadding
	axisEndX := axisStartX + math.Max(MinAxisWidth, float64(len(meetingNodes))*AxisWidthPerMeeting)

	meetingTime := func(n Node) *time.Time {
		if m := resp.MeetingByID(n.MeetingID); m != nil {
			return m.GraphAt()
		}
		return n.TimeAt
	}

	var times []int64
	for _, n := range meetingNodes {
		if t := meetingTime(n); t != nil {
			times = append(times, t.UnixMilli())
		}
	}
	now := referenceTime(resp, times)
	minTime, maxTime := now, now
	for _, t := range times {
		minTime = min(minTime, t)
		maxTime = max(maxTime, t)
	}
	if maxTime <= minTime {
		maxTime = minTime + time.Hour.Milliseconds()
	}
	project := func(ms int64) float64 {
		return axisStartX + float64(ms-minTime)/float64(maxTime-minTime)*(axisEndX-axisStartX)
	}

	sorted := append([]Node(nil), meetingNodes...)
	sort.SliceStable(sorted, func(a, b int) bool {
		lt, rt := meetingTime(sorted[a]), meetingTime(sorted[b])
		switch {
		case lt != nil && rt != nil && !lt.Equal(*rt):
			return lt.Before(*rt)
		case lt != nil && rt == nil:
			return true
		case lt == nil && rt != nil:
			return false
		}
		if sorted[a].Label != sorted[b].Label {
			return sorted[a].Label < sorted[b].Label
		}
		return sorted[a].ID < sorted[b].ID
	})

	l := Layout{
		AxisStartX:   axisStartX,
		AxisEndX:     axisEndX,
		AxisY:        AxisY,
		Meetings:     []LayoutMeeting{},
		Tasks:        []LayoutTask{},
		Stakeholders: []LayoutStakeholder{},
		Edges:        []LayoutEdge{},
	}
	positions := make(map[string]nodeBox, len(rm.Nodes))
	meetingX := make(map[string]float64, len(sorted))

	for i, n := range sorted {
		t := meetingTime(n)
		var x float64
		if t == nil {
			x = distribute(i, len(sorted), axisStartX, axisEndX)
		} else {
			x = project(t.UnixMilli())
		}
		m := resp.MeetingByID(n.MeetingID)
		l.Meetings = append(l.Meetings, LayoutMeeting{
			ID:        n.ID,
			MeetingID: n.MeetingID,
			X:         x,
			Y:         AxisY,
			Label:     meetingAxisLabel(t, m),
			Title:     meetingTitle(m, n.Label),
		})
		meetingX[n.MeetingID] = x
		positions[n.ID] = nodeBox{typ: NodeMeeting, Box: Box{ID: n.ID, X: x, Y: AxisY, Width: 2 * MeetingRadius, Height: 2 * MeetingRadius}}
	}

	refTime := time.UnixMilli(now).UTC()
	tasksByMeeting := make(map[string][]Node)
	for _, n := range taskNodes {
		if n.MeetingID != "" {
			tasksByMeeting[n.MeetingID] = append(tasksByMeeting[n.MeetingID], n)
		}
	}
	for _, mn := range sorted {
		group := tasksByMeeting[mn.MeetingID]
		for i, n := range group {
			x := meetingX[mn.MeetingID] + centeredOffset(i, len(group), TaskWidth, TaskGap) - TaskWidth/2
			lt := layoutTask(n, resp.TaskByID(n.TaskID), x, refTime)
			l.Tasks = append(l.Tasks, lt)
			positions[n.ID] = nodeBox{typ: NodeTask, Box: Box{ID: n.ID, X: lt.X, Y: lt.Y, Width: lt.Width, Height: lt.Height}}
		}
	}

	if len(unlinked) > 0 {
		bucket := leftPadding - unlinkedBucketOffset
		for i, n := range unlinked {
			x := bucket + float64(i)*(TaskWidth+UnlinkedTaskGap)
			lt := layoutTask(n, resp.TaskByID(n.TaskID), x, refTime)
			lt.Unlinked = true
			l.Tasks = append(l.Tasks, lt)
			positions[n.ID] = nodeBox{typ: NodeTask, Box: Box{ID: n.ID, X: lt.X, Y: lt.Y, Width: lt.Width, Height: lt.Height}}
		}
		center := bucket + TaskWidth/2
		l.UnlinkedBucketX = &center
	}

	stakeholdersByMeeting := make(map[string][]Node)
	for _, n := range stakeholderNodes {
		stakeholdersByMeeting[n.MeetingID] = append(stakeholdersByMeeting[n.MeetingID], n)
	}
	var boxes []Box
	var placedNodes []Node
	for _, mn := range sorted {
		group := stakeholdersByMeeting[mn.MeetingID]
		for i, n := range group {
			x := meetingX[mn.MeetingID] + centeredOffset(i, len(group), StakeholderWidth, StakeholderGap) - StakeholderWidth/2
			boxes = append(boxes, Box{ID: n.ID, X: x, Y: StakeholderRowY, Width: StakeholderWidth, Height: StakeholderHeight})
			placedNodes = append(placedNodes, n)
		}
	}
	for i, b := range StackByCollision(boxes, StakeholderLaneGap) {
		n := placedNodes[i]
		l.Stakeholders = append(l.Stakeholders, LayoutStakeholder{
			ID:            n.ID,
			StakeholderID: n.StakeholderID,
			MeetingID:     n.MeetingID,
			X:             b.X,
			Y:             b.Y,
			Width:         b.Width,
			Height:        b.Height,
			Label:         model.StakeholderLabel(resp.StakeholderByID(n.StakeholderID)),
		})
		positions[n.ID] = nodeBox{typ: NodeStakeholder, Box: b}
	}

	for _, e := range rm.Edges {
		if le, ok := positionEdge(e, positions); ok {
			l.Edges = append(l.Edges, le)
		}
	}

	right := axisEndX
	bottom := 0.0
	for _, m := range l.Meetings {
		right = max(right, m.X+MeetingLabelWidth/2)
	}
	for _, t := range l.Tasks {
		right = max(right, t.X+t.Width)
	}
	for _, s := range l.Stakeholders {
		right = max(right, s.X+s.Width)
		bottom = max(bottom, s.Y+s.Height)
	}
	l.Width = math.Ceil(right + RightPadding)
	l.Height = math.Max(DefaultHeight, bottom+BottomPadding)
	l.NowX = clamp(project(now), axisStartX, axisEndX)
	l.HasContent = len(l.Meetings) > 0 || len(l.Tasks) > 0 || len(l.Stakeholders) > 0
	return l
}

// referenceTime returns the response's "now" in milliseconds, falling back to
// the earliest meeting time, then to the Unix epoch.
func referenceTime(resp *model.TimelineGraphResponse, times []int64) int64 {
	if resp != nil && !resp.Now.IsZero() {
		return resp.Now.UnixMilli()
	}
	if len(times) == 0 {
		return 0
	}
	earliest := times[0]
	for _, t := range times[1:] {
		earliest = min(earliest, t)
	}
	return earliest
}

func layoutTask(n Node, t *model.TimelineGraphTask, x float64, now time.Time) LayoutTask {
	lt := LayoutTask{
		ID:     n.ID,
		TaskID: n.TaskID,
		X:      x,
		Y:      TaskRowY,
		Width:  TaskWidth,
		Height: TaskHeight,
	}
	var title string
	if t != nil {
		title = strings.TrimSpace(t.Title)
		lt.StatusLabel = model.TaskStateLabel(t.State)
		lt.PriorityLabel = model.PriorityLabel(t.Priority)
		lt.DueLabel = model.FormatDueDate(t.DueDate)
		lt.Overdue = model.IsTaskOverdue(t.DueDate, t.State, now)
	} else {
		lt.StatusLabel = model.TaskStateLabel("")
		lt.PriorityLabel = model.PriorityLabel(nil)
	}
	if title == "" {
		title = strings.TrimSpace(n.Label)
	}
	if title == "" {
		title = model.LabelTaskDefault
	}
	lt.Title = title
	return lt
}

func meetingAxisLabel(t *time.Time, m *model.TimelineGraphMeeting) string {
	loc := ""
	if m != nil {
		loc = strings.TrimSpace(m.LocationLabel)
	}
	if loc == "" {
		loc = model.LabelLocationOpen
	}
	return model.FormatDateTime(t) + model.LabelSeparator + loc
}

func meetingTitle(m *model.TimelineGraphMeeting, fallback string) string {
	if m != nil {
		if title := strings.TrimSpace(m.Title); title != "" {
			return title
		}
	}
	if fallback != "" {
		return fallback
	}
	return model.LabelMeetingDefault
}

func positionEdge(e Edge, positions map[string]nodeBox) (LayoutEdge, bool) {
	src, ok := positions[e.SourceID]
	if !ok {
		return LayoutEdge{}, false
	}
	dst, ok := positions[e.TargetID]
	if !ok {
		return LayoutEdge{}, false
	}
	var sx, sy, ex, ey float64
	switch {
	case e.Type == EdgeCreatedFrom && src.typ == NodeMeeting && dst.typ == NodeTask:
		sx, sy = src.X, src.Y-MeetingRadius
		ex, ey = dst.X+dst.Width/2, dst.Y+dst.Height
	case e.Type == EdgeParticipation && src.typ == NodeMeeting && dst.typ == NodeStakeholder:
		sx, sy = src.X, src.Y+MeetingRadius
		ex, ey = dst.X+dst.Width/2, dst.Y
	case e.Type == EdgeAssignment && src.typ == NodeTask && dst.typ == NodeStakeholder:
		sx, sy = src.X+src.Width/2, src.Y+src.Height
		ex, ey = dst.X+dst.Width/2, dst.Y
	default:
		return LayoutEdge{}, false
	}
	return LayoutEdge{
		ID:       e.ID,
		Type:     e.Type,
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Path:     curvePath(sx, sy, ex, ey),
	}, true
}

// curvePath draws a vertical S-curve whose control points share the
// midpoint y.
func curvePath(sx, sy, ex, ey float64) string {
	my := (sy + ey) / 2
	return strings.Join([]string{
		"M", formatNum(sx), formatNum(sy),
		"C", formatNum(sx), formatNum(my), formatNum(ex), formatNum(my), formatNum(ex), formatNum(ey),
	}, " ")
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func distribute(i, n int, lo, hi float64) float64 {
	if n <= 1 {
		return (lo + hi) / 2
	}
	return lo + (hi-lo)/float64(n-1)*float64(i)
}

func centeredOffset(i, n int, width, gap float64) float64 {
	return (float64(i) - float64(n-1)/2) * (width + gap)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Truncate shortens label to at most maxLen runes, ending in "...".
func Truncate(label string, maxLen int) string {
	r := []rune(label)
	if label == "" || len(r) <= maxLen {
		return label
	}
	return string(r[:max(0, maxLen-3)]) + "..."
}
