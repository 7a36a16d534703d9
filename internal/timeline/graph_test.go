package timeline

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

func countNodes(rm RenderModel, typ NodeType) int {
	n := 0
	for _, node := range rm.Nodes {
		if node.Type == typ {
			n++
		}
	}
	return n
}

func countEdges(rm RenderModel, typ EdgeType) int {
	n := 0
	for _, e := range rm.Edges {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestBuildRenderModel(t *testing.T) {
	rm := BuildRenderModel(kickoffResponse())

	for _, tc := range []struct {
		typ  NodeType
		want int
	}{
		{NodeMeeting, 1},
		{NodeTask, 1},
		{NodeStakeholder, 2},
	} {
		if got := countNodes(rm, tc.typ); got != tc.want {
			t.Errorf("%s nodes = %d, want %d", tc.typ, got, tc.want)
		}
	}
	for _, tc := range []struct {
		typ  EdgeType
		want int
	}{
		{EdgeCreatedFrom, 1},
		{EdgeParticipation, 2},
		{EdgeAssignment, 1},
	} {
		if got := countEdges(rm, tc.typ); got != tc.want {
			t.Errorf("%s edges = %d, want %d", tc.typ, got, tc.want)
		}
	}

	wantIDs := []string{
		"meeting:meeting-1",
		"meeting:meeting-1:task:task-1",
		"meeting:meeting-1:stakeholder:st-1",
		"meeting:meeting-1:stakeholder:st-2",
	}
	var gotIDs []string
	for _, n := range rm.Nodes {
		gotIDs = append(gotIDs, n.ID)
	}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Errorf("node ids mismatch (-want +got):\n%s", diff)
	}

	wantEdges := []string{
		"edge:meeting:meeting-1:task:task-1:created-from",
		"edge:meeting:meeting-1:stakeholder:st-1:participation",
		"edge:meeting:meeting-1:stakeholder:st-2:participation",
		"edge:task:task-1:stakeholder:st-1:assignment",
	}
	var gotEdges []string
	for _, e := range rm.Edges {
		gotEdges = append(gotEdges, e.ID)
	}
	if diff := cmp.Diff(wantEdges, gotEdges); diff != "" {
		t.Errorf("edge ids mismatch (-want +got):\n%s", diff)
	}

	labels := map[string]bool{}
	for _, n := range rm.Nodes {
		labels[n.Label] = true
	}
	for _, want := range []string{"Kickoff — Kita Langballig", "Konzeptentwurf vorbereiten", "Anna L. — Beratung", "Ben M. — Leitung"} {
		if !labels[want] {
			t.Errorf("missing label %q in %v", want, labels)
		}
	}
}

func TestBuildRenderModelLabelsNeverContainIDs(t *testing.T) {
	resp := kickoffResponse()
	// Blank names and titles force every fallback label.
	resp.Meetings[0].Title = "  "
	resp.Meetings[0].LocationLabel = ""
	resp.Tasks[0].Title = ""
	resp.Stakeholders[1] = model.TimelineGraphStakeholder{ID: "st-2"}
	resp.Meetings[0].ParticipantStakeholderIDs = append(resp.Meetings[0].ParticipantStakeholderIDs, "st-missing")

	rm := BuildRenderModel(resp)
	for _, n := range rm.Nodes {
		for _, id := range []string{"meeting-1", "task-1", "st-1", "st-2", "st-missing"} {
			if strings.Contains(n.Label, id) {
				t.Errorf("label %q of %s contains raw id %q", n.Label, n.ID, id)
			}
		}
	}
	if got := rm.Node("meeting:meeting-1").Label; got != "Termin" {
		t.Errorf("meeting label = %q, want %q", got, "Termin")
	}
	if got := rm.Node("meeting:meeting-1:task:task-1").Label; got != "Aufgabe" {
		t.Errorf("task label = %q, want %q", got, "Aufgabe")
	}
	if got := rm.Node("meeting:meeting-1:stakeholder:st-missing").Label; got != "Unbekannt" {
		t.Errorf("missing stakeholder label = %q, want %q", got, "Unbekannt")
	}
	if got := rm.Node("meeting:meeting-1:stakeholder:st-2").Label; got != "Unbekannt — Rolle offen" {
		t.Errorf("blank stakeholder label = %q", got)
	}
}

func TestBuildRenderModelUnlinkedTask(t *testing.T) {
	resp := &model.TimelineGraphResponse{
		Tasks: []model.TimelineGraphTask{
			{ID: "t-lone", Title: "Lose"},
			{ID: "t-dangling", Title: "Verwaist", CreatedFromMeetingID: "gone", AssigneeID: "st-9"},
		},
	}
	rm := BuildRenderModel(resp)
	if len(rm.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(rm.Nodes))
	}
	if len(rm.Edges) != 0 {
		t.Errorf("expected no edges, got %v", rm.Edges)
	}
	for _, n := range rm.Nodes {
		if n.MeetingID != "" {
			t.Errorf("task %s should be unlinked, got meeting %q", n.TaskID, n.MeetingID)
		}
		if !strings.HasPrefix(n.ID, "meeting:none:task:") {
			t.Errorf("unlinked task id = %q", n.ID)
		}
	}
}

func TestBuildRenderModelStakeholderPerMeeting(t *testing.T) {
	resp := kickoffResponse()
	resp.Meetings = append(resp.Meetings, model.TimelineGraphMeeting{
		ID:                        "meeting-2",
		Title:                     "Review",
		ParticipantStakeholderIDs: []string{"st-1", "st-1"},
	})
	rm := BuildRenderModel(resp)

	var st1 []string
	for _, n := range rm.Nodes {
		if n.StakeholderID == "st-1" {
			st1 = append(st1, n.ID)
		}
	}
	want := []string{"meeting:meeting-1:stakeholder:st-1", "meeting:meeting-2:stakeholder:st-1"}
	if diff := cmp.Diff(want, st1); diff != "" {
		t.Errorf("st-1 nodes mismatch (-want +got):\n%s", diff)
	}
	if got := countEdges(rm, EdgeParticipation); got != 3 {
		t.Errorf("participation edges = %d, want 3", got)
	}
}

func TestBuildRenderModelAssigneeOnlyStakeholder(t *testing.T) {
	resp := kickoffResponse()
	resp.Meetings[0].ParticipantStakeholderIDs = []string{"st-2"}
	rm := BuildRenderModel(resp)

	if rm.Node("meeting:meeting-1:stakeholder:st-1") == nil {
		t.Fatal("assignee should get a stakeholder node in the task's meeting")
	}
	if got := countEdges(rm, EdgeParticipation); got != 1 {
		t.Errorf("participation edges = %d, want 1", got)
	}
	if got := countEdges(rm, EdgeAssignment); got != 1 {
		t.Errorf("assignment edges = %d, want 1", got)
	}
}

func TestBuildRenderModelNil(t *testing.T) {
	rm := BuildRenderModel(nil)
	if len(rm.Nodes) != 0 || len(rm.Edges) != 0 {
		t.Errorf("expected empty model, got %+v", rm)
	}
}
