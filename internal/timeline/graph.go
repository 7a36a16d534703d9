// Package timeline turns a case's timeline graph into a render model, lays
// it out in screen space, and holds the interaction state machines (pan/zoom,
// selection, overlay placement) the rendering host feeds events into.
//
// Every function here is pure: no I/O, no clocks, no hidden state.
package timeline

import (
	"strings"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

// NodeType discriminates the variants of Node.
type NodeType string

const (
	NodeMeeting     NodeType = "meeting"
	NodeTask        NodeType = "task"
	NodeStakeholder NodeType = "stakeholder"
)

// IsValid checks whether the node type is a known value.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeMeeting, NodeTask, NodeStakeholder:
		return true
	}
	return false
}

// EdgeType is the semantic kind of a graph edge.
type EdgeType string

const (
	EdgeCreatedFrom   EdgeType = "created-from"
	EdgeParticipation EdgeType = "participation"
	EdgeAssignment    EdgeType = "assignment"
)

// Node is one vertex of the render model. Which id fields are set depends on
// Type: meetings carry MeetingID and TimeAt; tasks carry TaskID, MeetingID
// (empty when unlinked) and AssigneeID; stakeholders carry StakeholderID and
// MeetingID.
type Node struct {
	ID            string     `json:"id"`
	Type          NodeType   `json:"type"`
	Label         string     `json:"label"`
	MeetingID     string     `json:"meetingId,omitempty"`
	TimeAt        *time.Time `json:"timeAt,omitempty"`
	TaskID        string     `json:"taskId,omitempty"`
	AssigneeID    string     `json:"assigneeId,omitempty"`
	StakeholderID string     `json:"stakeholderId,omitempty"`
}

// Edge connects two nodes of the render model by node id.
type Edge struct {
	ID       string   `json:"id"`
	Type     EdgeType `json:"type"`
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
}

// RenderModel is the node/edge graph derived from a timeline graph response,
// independent of screen coordinates.
type RenderModel struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id, or nil.
func (rm *RenderModel) Node(id string) *Node {
	for i := range rm.Nodes {
		if rm.Nodes[i].ID == id {
			return &rm.Nodes[i]
		}
	}
	return nil
}

// MeetingNodeID is the render-model id of a meeting.
func MeetingNodeID(meetingID string) string {
	return "meeting:" + meetingID
}

// TaskNodeID is the render-model id of a task; unlinked tasks are scoped
// under "none".
func TaskNodeID(meetingID, taskID string) string {
	if meetingID == "" {
		meetingID = "none"
	}
	return "meeting:" + meetingID + ":task:" + taskID
}

// StakeholderNodeID is the render-model id of a stakeholder within one
// meeting occurrence.
func StakeholderNodeID(meetingID, stakeholderID string) string {
	return "meeting:" + meetingID + ":stakeholder:" + stakeholderID
}

// BuildRenderModel maps a timeline graph response onto a render model.
// Nodes are ordered meetings, tasks, stakeholders; edges created-from,
// participation, assignment. A nil response yields an empty model.
func BuildRenderModel(resp *model.TimelineGraphResponse) RenderModel {
	rm := RenderModel{Nodes: []Node{}, Edges: []Edge{}}
	if resp == nil {
		return rm
	}

	stakeholders := make(map[string]*model.TimelineGraphStakeholder, len(resp.Stakeholders))
	for i := range resp.Stakeholders {
		stakeholders[resp.Stakeholders[i].ID] = &resp.Stakeholders[i]
	}
	meetingIDs := make(map[string]bool, len(resp.Meetings))
	for _, m := range resp.Meetings {
		meetingIDs[m.ID] = true
	}
	owner := func(t *model.TimelineGraphTask) string {
		if t.CreatedFromMeetingID != "" && meetingIDs[t.CreatedFromMeetingID] {
			return t.CreatedFromMeetingID
		}
		return ""
	}
	tasksByMeeting := make(map[string][]*model.TimelineGraphTask)
	for i := range resp.Tasks {
		t := &resp.Tasks[i]
		if m := owner(t); m != "" {
			tasksByMeeting[m] = append(tasksByMeeting[m], t)
		}
	}

	for i := range resp.Meetings {
		m := &resp.Meetings[i]
		rm.Nodes = append(rm.Nodes, Node{
			ID:        MeetingNodeID(m.ID),
			Type:      NodeMeeting,
			Label:     meetingNodeLabel(m),
			MeetingID: m.ID,
			TimeAt:    m.GraphAt(),
		})
	}

	var createdFrom []Edge
	for i := range resp.Tasks {
		t := &resp.Tasks[i]
		m := owner(t)
		rm.Nodes = append(rm.Nodes, Node{
			ID:         TaskNodeID(m, t.ID),
			Type:       NodeTask,
			Label:      taskNodeLabel(t),
			TaskID:     t.ID,
			MeetingID:  m,
			AssigneeID: t.AssigneeID,
		})
		if m != "" {
			createdFrom = append(createdFrom, Edge{
				ID:       "edge:meeting:" + m + ":task:" + t.ID + ":created-from",
				Type:     EdgeCreatedFrom,
				SourceID: MeetingNodeID(m),
				TargetID: TaskNodeID(m, t.ID),
			})
		}
	}

	var participation, assignment []Edge
	for _, m := range resp.Meetings {
		seen := make(map[string]bool)
		var ids []string
		for _, sid := range m.ParticipantStakeholderIDs {
			if sid == "" || seen[sid] {
				continue
			}
			seen[sid] = true
			ids = append(ids, sid)
			participation = append(participation, Edge{
				ID:       "edge:meeting:" + m.ID + ":stakeholder:" + sid + ":participation",
				Type:     EdgeParticipation,
				SourceID: MeetingNodeID(m.ID),
				TargetID: StakeholderNodeID(m.ID, sid),
			})
		}
		for _, t := range tasksByMeeting[m.ID] {
			if t.AssigneeID == "" {
				continue
			}
			if !seen[t.AssigneeID] {
				seen[t.AssigneeID] = true
				ids = append(ids, t.AssigneeID)
			}
			assignment = append(assignment, Edge{
				ID:       "edge:task:" + t.ID + ":stakeholder:" + t.AssigneeID + ":assignment",
				Type:     EdgeAssignment,
				SourceID: TaskNodeID(m.ID, t.ID),
				TargetID: StakeholderNodeID(m.ID, t.AssigneeID),
			})
		}
		for _, sid := range ids {
			rm.Nodes = append(rm.Nodes, Node{
				ID:            StakeholderNodeID(m.ID, sid),
				Type:          NodeStakeholder,
				Label:         model.StakeholderLabel(stakeholders[sid]),
				StakeholderID: sid,
				MeetingID:     m.ID,
			})
		}
	}

	nodeIDs := make(map[string]bool, len(rm.Nodes))
	for _, n := range rm.Nodes {
		nodeIDs[n.ID] = true
	}
	for _, group := range [][]Edge{createdFrom, participation, assignment} {
		for _, e := range group {
			if nodeIDs[e.SourceID] && nodeIDs[e.TargetID] {
				rm.Edges = append(rm.Edges, e)
			}
		}
	}
	return rm
}

func meetingNodeLabel(m *model.TimelineGraphMeeting) string {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = model.LabelMeetingDefault
	}
	if loc := strings.TrimSpace(m.LocationLabel); loc != "" {
		return title + model.LabelSeparator + loc
	}
	return title
}

func taskNodeLabel(t *model.TimelineGraphTask) string {
	if title := strings.TrimSpace(t.Title); title != "" {
		return title
	}
	return model.LabelTaskDefault
}
