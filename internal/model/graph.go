package model

import "time"

// MeetingStatus is the timeline-facing status of a meeting.
type MeetingStatus string

const (
	MeetingPlanned   MeetingStatus = "PLANNED"
	MeetingPerformed MeetingStatus = "PERFORMED"
)

// IsValid checks whether the meeting status is a known value.
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingPlanned, MeetingPerformed:
		return true
	}
	return false
}

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	TaskOpen       TaskState = "OPEN"
	TaskAssigned   TaskState = "ASSIGNED"
	TaskInProgress TaskState = "IN_PROGRESS"
	TaskBlocked    TaskState = "BLOCKED"
	TaskResolved   TaskState = "RESOLVED"
)

// IsValid checks whether the task state is a known value.
func (s TaskState) IsValid() bool {
	switch s {
	case TaskOpen, TaskAssigned, TaskInProgress, TaskBlocked, TaskResolved:
		return true
	}
	return false
}

// StakeholderRole is the role a stakeholder plays in a case.
// Roles are extensible; unknown roles are displayed verbatim.
type StakeholderRole string

const (
	RoleConsultant StakeholderRole = "CONSULTANT"
	RoleDirector   StakeholderRole = "DIRECTOR"
	RoleTeamMember StakeholderRole = "TEAM_MEMBER"
	RoleSponsor    StakeholderRole = "SPONSOR"
	RoleExternal   StakeholderRole = "EXTERNAL"
)

// TimelineGraphMeeting is a meeting as delivered to the timeline graph.
type TimelineGraphMeeting struct {
	ID                        string        `json:"id"`
	Status                    MeetingStatus `json:"status"`
	PlannedAt                 *time.Time    `json:"plannedAt,omitempty"`
	PerformedAt               *time.Time    `json:"performedAt,omitempty"`
	Title                     string        `json:"title"`
	LocationLabel             string        `json:"locationLabel,omitempty"`
	ParticipantStakeholderIDs []string      `json:"participantStakeholderIds"`
}

// GraphAt returns the time the meeting is placed at: performed time when
// known, otherwise the planned time. Nil when neither is set.
func (m *TimelineGraphMeeting) GraphAt() *time.Time {
	if m.PerformedAt != nil {
		return m.PerformedAt
	}
	return m.PlannedAt
}

// TimelineGraphStakeholder is a person referenced by meetings or tasks.
type TimelineGraphStakeholder struct {
	ID        string          `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      StakeholderRole `json:"role"`
}

// TimelineGraphTask is a task as delivered to the timeline graph.
// DueDate is a calendar date in YYYY-MM-DD form.
type TimelineGraphTask struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	State                TaskState `json:"state"`
	Priority             *int      `json:"priority,omitempty"`
	AssigneeID           string    `json:"assigneeId,omitempty"`
	CreatedFromMeetingID string    `json:"createdFromMeetingId,omitempty"`
	DueDate              string    `json:"dueDate,omitempty"`
}

// TimelineGraphResponse is the flat graph of one case: meetings, the
// stakeholders they reference, and the case's tasks.
type TimelineGraphResponse struct {
	CaseID       string                     `json:"caseId"`
	GeneratedAt  time.Time                  `json:"generatedAt"`
	Now          time.Time                  `json:"now"`
	Meetings     []TimelineGraphMeeting     `json:"meetings"`
	Stakeholders []TimelineGraphStakeholder `json:"stakeholders"`
	Tasks        []TimelineGraphTask        `json:"tasks"`
}

// MeetingByID returns the meeting with the given id, or nil.
func (r *TimelineGraphResponse) MeetingByID(id string) *TimelineGraphMeeting {
	if r == nil || id == "" {
		return nil
	}
	for i := range r.Meetings {
		if r.Meetings[i].ID == id {
			return &r.Meetings[i]
		}
	}
	return nil
}

// TaskByID returns the task with the given id, or nil.
func (r *TimelineGraphResponse) TaskByID(id string) *TimelineGraphTask {
	if r == nil || id == "" {
		return nil
	}
	for i := range r.Tasks {
		if r.Tasks[i].ID == id {
			return &r.Tasks[i]
		}
	}
	return nil
}

// StakeholderByID returns the stakeholder with the given id, or nil.
func (r *TimelineGraphResponse) StakeholderByID(id string) *TimelineGraphStakeholder {
	if r == nil || id == "" {
		return nil
	}
	for i := range r.Stakeholders {
		if r.Stakeholders[i].ID == id {
			return &r.Stakeholders[i]
		}
	}
	return nil
}
