package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// notFound maps sql.ErrNoRows onto store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func queryGetCase(ctx context.Context, db executor, id string) (*store.CaseRecord, error) {
	row := db.QueryRowContext(ctx, `SELECT id, tenant_id, title FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func queryListCases(ctx context.Context, db executor) ([]*store.CaseRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, tenant_id, title FROM cases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*store.CaseRecord
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func queryListMeetings(ctx context.Context, db executor, caseID string) ([]*store.MeetingRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT m.id, m.case_id, m.status, m.scheduled_at, m.held_at, m.title, l.label
		FROM meetings m
		LEFT JOIN locations l ON l.id = m.location_id
		WHERE m.case_id = $1
		ORDER BY m.scheduled_at DESC NULLS LAST, m.id`, caseID)
	if err != nil {
		return nil, err
	}
	meetings, err := scanMeetings(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return meetings, nil
	}

	ids := make([]string, len(meetings))
	byID := make(map[string]*store.MeetingRecord, len(meetings))
	for i, m := range meetings {
		ids[i] = m.ID
		byID[m.ID] = m
	}
	prows, err := db.QueryContext(ctx, `
		SELECT meeting_id, stakeholder_id
		FROM meeting_participants
		WHERE meeting_id = ANY($1)
		ORDER BY meeting_id, position, stakeholder_id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var meetingID, stakeholderID string
		if err := prows.Scan(&meetingID, &stakeholderID); err != nil {
			return nil, err
		}
		if m, ok := byID[meetingID]; ok {
			m.ParticipantIDs = append(m.ParticipantIDs, stakeholderID)
		}
	}
	return meetings, prows.Err()
}

func queryListTasks(ctx context.Context, db executor, caseID string) ([]*store.TaskRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, case_id, title, state, priority, assignee_id,
			created_from_meeting_id, due_date, created_at
		FROM tasks
		WHERE case_id = $1
		ORDER BY created_at DESC, id`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func queryGetStakeholders(ctx context.Context, db executor, ids []string) ([]*store.StakeholderRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, tenant_id, first_name, last_name, role
		FROM stakeholders
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStakeholders(rows)
}

func queryGetOverlayPosition(ctx context.Context, db executor, caseID string) (*model.StoredOverlayPosition, error) {
	var p model.StoredOverlayPosition
	err := db.QueryRowContext(ctx, `
		SELECT case_id, left_px, top_px, updated_at
		FROM overlay_positions WHERE case_id = $1`, caseID,
	).Scan(&p.CaseID, &p.Position.Left, &p.Position.Top, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func querySetOverlayPosition(ctx context.Context, db executor, p *model.StoredOverlayPosition) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO overlay_positions (case_id, left_px, top_px)
		VALUES ($1, $2, $3)
		ON CONFLICT (case_id) DO UPDATE SET left_px = $2, top_px = $3, updated_at = NOW()
		RETURNING updated_at`,
		p.CaseID, p.Position.Left, p.Position.Top,
	).Scan(&p.UpdatedAt)
}

func queryDeleteOverlayPosition(ctx context.Context, db executor, caseID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM overlay_positions WHERE case_id = $1`, caseID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
