package postgres

import (
	"database/sql"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/store"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanCase(row scannable) (*store.CaseRecord, error) {
	var c store.CaseRecord
	if err := row.Scan(&c.ID, &c.TenantID, &c.Title); err != nil {
		return nil, err
	}
	return &c, nil
}

// scanMeetings scans meeting rows; participants are filled in separately.
func scanMeetings(rows *sql.Rows) ([]*store.MeetingRecord, error) {
	var meetings []*store.MeetingRecord
	for rows.Next() {
		var (
			m           store.MeetingRecord
			scheduledAt sql.NullTime
			heldAt      sql.NullTime
			location    sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.CaseID, &m.Status, &scheduledAt, &heldAt, &m.Title, &location); err != nil {
			return nil, err
		}
		m.ScheduledAt = timePtr(scheduledAt)
		m.HeldAt = timePtr(heldAt)
		m.LocationLabel = location.String
		meetings = append(meetings, &m)
	}
	return meetings, rows.Err()
}

func scanTasks(rows *sql.Rows) ([]*store.TaskRecord, error) {
	var tasks []*store.TaskRecord
	for rows.Next() {
		var (
			t           store.TaskRecord
			priority    sql.NullInt64
			assignee    sql.NullString
			createdFrom sql.NullString
			dueDate     sql.NullTime
		)
		err := rows.Scan(
			&t.ID,
			&t.CaseID,
			&t.Title,
			&t.State,
			&priority,
			&assignee,
			&createdFrom,
			&dueDate,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if priority.Valid {
			p := int(priority.Int64)
			t.Priority = &p
		}
		t.AssigneeID = assignee.String
		t.CreatedFromMeetingID = createdFrom.String
		t.DueDate = timePtr(dueDate)
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func scanStakeholders(rows *sql.Rows) ([]*store.StakeholderRecord, error) {
	var out []*store.StakeholderRecord
	for rows.Next() {
		var s store.StakeholderRecord
		if err := rows.Scan(&s.ID, &s.TenantID, &s.FirstName, &s.LastName, &s.Role); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// timePtr converts a sql.NullTime to a *time.Time.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
