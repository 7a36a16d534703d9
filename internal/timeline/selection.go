package timeline

import (
	"sort"
	"strings"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

// Highlight is the part of the render model emphasised by a selection.
type Highlight struct {
	NodeIDs          []string `json:"highlightedNodeIds"`
	EdgeIDs          []string `json:"highlightedEdgeIds"`
	ContextMeetingID string   `json:"contextMeetingId,omitempty"`
}

// HasNode reports whether id is highlighted.
func (h Highlight) HasNode(id string) bool {
	for _, n := range h.NodeIDs {
		if n == id {
			return true
		}
	}
	return false
}

// HasEdge reports whether id is highlighted.
func (h Highlight) HasEdge(id string) bool {
	for _, e := range h.EdgeIDs {
		if e == id {
			return true
		}
	}
	return false
}

// Selection is a node picked on the canvas together with the screen point
// the overlay anchors to.
type Selection struct {
	NodeID   string   `json:"nodeId"`
	NodeType NodeType `json:"nodeType"`
	Anchor   Point    `json:"anchor"`
}

// ComputeHighlight collects the selected node and its direct neighbours.
//
//   - meeting: its tasks and stakeholder nodes, plus the edges touching the meeting.
//   - task: its meeting and its assignee's stakeholder node, plus its
//     created-from and assignment edges.
//   - stakeholder: its meeting and the tasks of that meeting assigned to it,
//     plus its participation and assignment edges.
//
// An unknown node id yields an empty highlight.
func ComputeHighlight(rm RenderModel, nodeID string) Highlight {
	h := Highlight{NodeIDs: []string{}, EdgeIDs: []string{}}
	sel := rm.Node(nodeID)
	if sel == nil {
		return h
	}
	h.ContextMeetingID = sel.MeetingID
	h.NodeIDs = append(h.NodeIDs, sel.ID)

	nodes := map[string]bool{sel.ID: true}
	addNode := func(id string) {
		if id != "" && !nodes[id] && rm.Node(id) != nil {
			nodes[id] = true
			h.NodeIDs = append(h.NodeIDs, id)
		}
	}

	switch sel.Type {
	case NodeMeeting:
		for _, n := range rm.Nodes {
			if n.MeetingID == sel.MeetingID && (n.Type == NodeTask || n.Type == NodeStakeholder) {
				addNode(n.ID)
			}
		}
		for _, e := range rm.Edges {
			if e.SourceID == sel.ID || e.TargetID == sel.ID {
				h.EdgeIDs = append(h.EdgeIDs, e.ID)
			}
		}
	case NodeTask:
		if sel.MeetingID != "" {
			addNode(MeetingNodeID(sel.MeetingID))
			if sel.AssigneeID != "" {
				addNode(StakeholderNodeID(sel.MeetingID, sel.AssigneeID))
			}
		}
		for _, e := range rm.Edges {
			if (e.Type == EdgeCreatedFrom && e.TargetID == sel.ID) ||
				(e.Type == EdgeAssignment && e.SourceID == sel.ID) {
				h.EdgeIDs = append(h.EdgeIDs, e.ID)
			}
		}
	case NodeStakeholder:
		addNode(MeetingNodeID(sel.MeetingID))
		for _, n := range rm.Nodes {
			if n.Type == NodeTask && n.MeetingID == sel.MeetingID && n.AssigneeID == sel.StakeholderID {
				addNode(n.ID)
			}
		}
		for _, e := range rm.Edges {
			if (e.Type == EdgeParticipation || e.Type == EdgeAssignment) && e.TargetID == sel.ID {
				h.EdgeIDs = append(h.EdgeIDs, e.ID)
			}
		}
	}
	return h
}

// SelectionDetails is the pre-formatted payload shown in the details
// overlay. Which fields are set depends on Type.
type SelectionDetails struct {
	Type   NodeType `json:"type"`
	NodeID string   `json:"nodeId"`

	Title             string   `json:"title,omitempty"`
	DateLabel         string   `json:"dateLabel,omitempty"`
	LocationLabel     string   `json:"locationLabel,omitempty"`
	ParticipantLabels []string `json:"participantLabels,omitempty"`

	StatusLabel   string `json:"statusLabel,omitempty"`
	PriorityLabel string `json:"priorityLabel,omitempty"`
	AssigneeLabel string `json:"assigneeLabel,omitempty"`
	DueLabel      string `json:"dueLabel,omitempty"`
	Overdue       bool   `json:"overdue,omitempty"`

	FullName            string `json:"fullName,omitempty"`
	RoleLabel           string `json:"roleLabel,omitempty"`
	RelatedMeetingLabel string `json:"relatedMeetingLabel,omitempty"`
}

// BuildSelectionDetails resolves the selected node against the response.
// It returns nil when the node is unknown, its type does not match
// nodeType, or the record behind it is missing.
func BuildSelectionDetails(rm RenderModel, resp *model.TimelineGraphResponse, nodeID string, nodeType NodeType) *SelectionDetails {
	n := rm.Node(nodeID)
	if n == nil || n.Type != nodeType || resp == nil {
		return nil
	}
	d := &SelectionDetails{Type: n.Type, NodeID: n.ID}

	switch n.Type {
	case NodeMeeting:
		m := resp.MeetingByID(n.MeetingID)
		if m == nil {
			return nil
		}
		d.Title = meetingTitle(m, "")
		d.DateLabel = model.FormatDateTime(m.GraphAt())
		d.LocationLabel = strings.TrimSpace(m.LocationLabel)
		if d.LocationLabel == "" {
			d.LocationLabel = model.LabelLocationOpen
		}
		seen := make(map[string]bool)
		for _, sid := range m.ParticipantStakeholderIDs {
			if seen[sid] {
				continue
			}
			seen[sid] = true
			d.ParticipantLabels = append(d.ParticipantLabels, model.StakeholderLabel(resp.StakeholderByID(sid)))
		}
		sort.Strings(d.ParticipantLabels)
	case NodeTask:
		t := resp.TaskByID(n.TaskID)
		if t == nil {
			return nil
		}
		d.Title = taskNodeLabel(t)
		d.StatusLabel = model.TaskStateLabel(t.State)
		d.PriorityLabel = model.PriorityLabel(t.Priority)
		d.AssigneeLabel = model.LabelUnassigned
		if t.AssigneeID != "" {
			d.AssigneeLabel = model.StakeholderLabel(resp.StakeholderByID(t.AssigneeID))
		}
		d.DueLabel = model.FormatDueDate(t.DueDate)
		d.Overdue = model.IsTaskOverdue(t.DueDate, t.State, resp.Now)
	case NodeStakeholder:
		s := resp.StakeholderByID(n.StakeholderID)
		if s == nil {
			return nil
		}
		d.FullName = model.FullName(s.FirstName, s.LastName)
		if d.FullName == "" {
			d.FullName = model.LabelUnknown
		}
		d.RoleLabel = model.RoleLabel(s.Role)
		if m := resp.MeetingByID(n.MeetingID); m != nil {
			d.RelatedMeetingLabel = meetingTitle(m, "") + " (" + model.FormatDateTime(m.GraphAt()) + ")"
		}
	}
	return d
}
