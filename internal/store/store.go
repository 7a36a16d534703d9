package store

import (
	"context"
	"errors"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
)

// ErrNotFound is returned when a case or a stored overlay position does not exist.
var ErrNotFound = errors.New("not found")

// Persisted meeting statuses. Only scheduled and held meetings appear on
// the timeline graph.
const (
	MeetingScheduled = "SCHEDULED"
	MeetingHeld      = "HELD"
	MeetingCancelled = "CANCELLED"
)

// CaseRecord is a row of the cases table.
type CaseRecord struct {
	ID       string
	TenantID string
	Title    string
}

// MeetingRecord is a meeting with its participants and resolved location label.
type MeetingRecord struct {
	ID             string
	CaseID         string
	Status         string
	ScheduledAt    *time.Time
	HeldAt         *time.Time
	Title          string
	LocationLabel  string
	ParticipantIDs []string
}

// TaskRecord is a row of the tasks table.
type TaskRecord struct {
	ID                   string
	CaseID               string
	Title                string
	State                string
	Priority             *int
	AssigneeID           string
	CreatedFromMeetingID string
	DueDate              *time.Time
	CreatedAt            time.Time
}

// StakeholderRecord is a row of the stakeholders table.
type StakeholderRecord struct {
	ID        string
	TenantID  string
	FirstName string
	LastName  string
	Role      string
}

// Store defines the persistence interface for case timeline data.
type Store interface {
	// Cases
	GetCase(ctx context.Context, id string) (*CaseRecord, error)
	ListCases(ctx context.Context) ([]*CaseRecord, error)

	// Timeline records
	ListMeetings(ctx context.Context, caseID string) ([]*MeetingRecord, error)
	ListTasks(ctx context.Context, caseID string) ([]*TaskRecord, error)
	GetStakeholders(ctx context.Context, ids []string) ([]*StakeholderRecord, error)

	// Remembered overlay positions
	GetOverlayPosition(ctx context.Context, caseID string) (*model.StoredOverlayPosition, error)
	SetOverlayPosition(ctx context.Context, pos *model.StoredOverlayPosition) error
	DeleteOverlayPosition(ctx context.Context, caseID string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
