package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

// GetTimelineGraph reads a case's meetings, tasks and referenced
// stakeholders in one transaction and assembles them into the timeline
// graph response. now is recorded as both the reference and generation time.
func GetTimelineGraph(ctx context.Context, s Store, caseID string, now time.Time) (*model.TimelineGraphResponse, error) {
	var resp *model.TimelineGraphResponse
	err := s.RunInTransaction(ctx, func(tx Store) error {
		c, err := tx.GetCase(ctx, caseID)
		if err != nil {
			return err
		}
		meetings, err := tx.ListMeetings(ctx, caseID)
		if err != nil {
			return fmt.Errorf("list meetings: %w", err)
		}
		meetings = IncludedMeetings(meetings)
		tasks, err := tx.ListTasks(ctx, caseID)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		var stakeholders []*StakeholderRecord
		if ids := ReferencedStakeholderIDs(meetings, tasks); len(ids) > 0 {
			stakeholders, err = tx.GetStakeholders(ctx, ids)
			if err != nil {
				return fmt.Errorf("get stakeholders: %w", err)
			}
		}
		resp = AssembleTimelineGraph(c, meetings, tasks, stakeholders, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// IncludedMeetings drops meetings that do not belong on the timeline graph.
func IncludedMeetings(meetings []*MeetingRecord) []*MeetingRecord {
	out := make([]*MeetingRecord, 0, len(meetings))
	for _, m := range meetings {
		if timelineStatus(m.Status) != "" {
			out = append(out, m)
		}
	}
	return out
}

func timelineStatus(status string) model.MeetingStatus {
	switch status {
	case MeetingScheduled:
		return model.MeetingPlanned
	case MeetingHeld:
		return model.MeetingPerformed
	}
	return ""
}

// ReferencedStakeholderIDs lists meeting participants, then task assignees,
// each once and in first-seen order.
func ReferencedStakeholderIDs(meetings []*MeetingRecord, tasks []*TaskRecord) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, m := range meetings {
		for _, id := range m.ParticipantIDs {
			add(id)
		}
	}
	for _, t := range tasks {
		add(t.AssigneeID)
	}
	return ids
}

func graphAt(m *MeetingRecord) *time.Time {
	if m.HeldAt != nil {
		return m.HeldAt
	}
	return m.ScheduledAt
}

// compareNullableTimes orders nil after any time.
func compareNullableTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// AssembleTimelineGraph shapes raw records into the timeline graph response.
// Cancelled meetings are skipped; meetings are ordered by graph time (held
// time over scheduled time, untimed last) then id; task links to meetings
// outside the graph are cut and tasks follow their meeting's order; only
// stakeholders of the case's tenant that are actually referenced are kept.
func AssembleTimelineGraph(c *CaseRecord, meetings []*MeetingRecord, tasks []*TaskRecord, stakeholders []*StakeholderRecord, now time.Time) *model.TimelineGraphResponse {
	now = now.UTC()
	resp := &model.TimelineGraphResponse{
		CaseID:       c.ID,
		GeneratedAt:  now,
		Now:          now,
		Meetings:     []model.TimelineGraphMeeting{},
		Stakeholders: []model.TimelineGraphStakeholder{},
		Tasks:        []model.TimelineGraphTask{},
	}

	included := IncludedMeetings(meetings)
	sort.SliceStable(included, func(i, j int) bool {
		if d := compareNullableTimes(graphAt(included[i]), graphAt(included[j])); d != 0 {
			return d < 0
		}
		return included[i].ID < included[j].ID
	})
	meetingAt := make(map[string]*time.Time, len(included))
	for _, m := range included {
		meetingAt[m.ID] = graphAt(m)
		participants := append([]string{}, m.ParticipantIDs...)
		resp.Meetings = append(resp.Meetings, model.TimelineGraphMeeting{
			ID:                        m.ID,
			Status:                    timelineStatus(m.Status),
			PlannedAt:                 utcPtr(m.ScheduledAt),
			PerformedAt:               utcPtr(m.HeldAt),
			Title:                     m.Title,
			LocationLabel:             m.LocationLabel,
			ParticipantStakeholderIDs: participants,
		})
	}

	for _, t := range tasks {
		meetingID := t.CreatedFromMeetingID
		if _, ok := meetingAt[meetingID]; !ok {
			meetingID = ""
		}
		task := model.TimelineGraphTask{
			ID:                   t.ID,
			Title:                t.Title,
			State:                model.TaskState(t.State),
			AssigneeID:           t.AssigneeID,
			CreatedFromMeetingID: meetingID,
		}
		if t.Priority != nil {
			p := *t.Priority
			task.Priority = &p
		}
		if t.DueDate != nil {
			task.DueDate = t.DueDate.UTC().Format(time.DateOnly)
		}
		resp.Tasks = append(resp.Tasks, task)
	}
	sort.SliceStable(resp.Tasks, func(i, j int) bool {
		l, r := resp.Tasks[i], resp.Tasks[j]
		if d := compareNullableTimes(meetingAt[l.CreatedFromMeetingID], meetingAt[r.CreatedFromMeetingID]); d != 0 {
			return d < 0
		}
		return l.ID < r.ID
	})

	referenced := make(map[string]bool)
	for _, id := range ReferencedStakeholderIDs(included, tasks) {
		referenced[id] = true
	}
	seen := make(map[string]bool)
	for _, s := range stakeholders {
		if !referenced[s.ID] || seen[s.ID] || s.TenantID != c.TenantID {
			continue
		}
		seen[s.ID] = true
		resp.Stakeholders = append(resp.Stakeholders, model.TimelineGraphStakeholder{
			ID:        s.ID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Role:      model.StakeholderRole(s.Role),
		})
	}
	sort.Slice(resp.Stakeholders, func(i, j int) bool {
		return resp.Stakeholders[i].ID < resp.Stakeholders[j].ID
	})
	return resp
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
