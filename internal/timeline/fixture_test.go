package timeline

import (
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

func ptrTime(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ptrInt(v int) *int { return &v }

// kickoffResponse is one meeting with one task and two participants, the
// first of whom is also the task's assignee.
func kickoffResponse() *model.TimelineGraphResponse {
	return &model.TimelineGraphResponse{
		CaseID:      "case-1",
		GeneratedAt: *ptrTime("2026-02-06T12:00:00Z"),
		Now:         *ptrTime("2026-02-06T12:00:00Z"),
		Meetings: []model.TimelineGraphMeeting{{
			ID:                        "meeting-1",
			Status:                    model.MeetingPlanned,
			PlannedAt:                 ptrTime("2026-02-20T11:06:00Z"),
			Title:                     "Kickoff",
			LocationLabel:             "Kita Langballig",
			ParticipantStakeholderIDs: []string{"st-1", "st-2"},
		}},
		Stakeholders: []model.TimelineGraphStakeholder{
			{ID: "st-1", FirstName: "Anna", LastName: "L.", Role: model.RoleConsultant},
			{ID: "st-2", FirstName: "Ben", LastName: "M.", Role: model.RoleDirector},
		},
		Tasks: []model.TimelineGraphTask{{
			ID:                   "task-1",
			Title:                "Konzeptentwurf vorbereiten",
			State:                model.TaskOpen,
			Priority:             ptrInt(2),
			AssigneeID:           "st-1",
			CreatedFromMeetingID: "meeting-1",
			DueDate:              "2026-02-28",
		}},
	}
}
