package export

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/store"
)

// mockStore is a minimal in-memory store for export tests.
type mockStore struct {
	cases        map[string]*store.CaseRecord
	meetings     map[string][]*store.MeetingRecord
	tasks        map[string][]*store.TaskRecord
	stakeholders map[string]*store.StakeholderRecord
	positions    map[string]*model.StoredOverlayPosition
	listErr      error
}

func newMockStore() *mockStore {
	return &mockStore{
		cases:        make(map[string]*store.CaseRecord),
		meetings:     make(map[string][]*store.MeetingRecord),
		tasks:        make(map[string][]*store.TaskRecord),
		stakeholders: make(map[string]*store.StakeholderRecord),
		positions:    make(map[string]*model.StoredOverlayPosition),
	}
}

// addCase seeds a case with one planned meeting and one linked task.
func (m *mockStore) addCase(id, title string, at time.Time) {
	m.cases[id] = &store.CaseRecord{ID: id, TenantID: "t-1", Title: title}
	meetingID := id + "-m1"
	m.meetings[id] = []*store.MeetingRecord{{
		ID: meetingID, CaseID: id, Status: store.MeetingScheduled, ScheduledAt: &at,
		Title: "Kickoff", ParticipantIDs: []string{"st-1"},
	}}
	m.tasks[id] = []*store.TaskRecord{{
		ID: id + "-t1", CaseID: id, Title: "Protokoll", State: string(model.TaskOpen),
		AssigneeID: "st-1", CreatedFromMeetingID: meetingID,
	}}
	m.stakeholders["st-1"] = &store.StakeholderRecord{ID: "st-1", TenantID: "t-1", FirstName: "Anna", LastName: "L.", Role: string(model.RoleConsultant)}
}

func (m *mockStore) GetCase(_ context.Context, id string) (*store.CaseRecord, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) ListCases(context.Context) ([]*store.CaseRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*store.CaseRecord
	for _, c := range m.cases {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockStore) ListMeetings(_ context.Context, caseID string) ([]*store.MeetingRecord, error) {
	return m.meetings[caseID], nil
}

func (m *mockStore) ListTasks(_ context.Context, caseID string) ([]*store.TaskRecord, error) {
	return m.tasks[caseID], nil
}

func (m *mockStore) GetStakeholders(_ context.Context, ids []string) ([]*store.StakeholderRecord, error) {
	var out []*store.StakeholderRecord
	for _, id := range ids {
		if s, ok := m.stakeholders[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStore) GetOverlayPosition(_ context.Context, caseID string) (*model.StoredOverlayPosition, error) {
	p, ok := m.positions[caseID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) SetOverlayPosition(_ context.Context, pos *model.StoredOverlayPosition) error {
	m.positions[pos.CaseID] = pos
	return nil
}

func (m *mockStore) DeleteOverlayPosition(_ context.Context, caseID string) error {
	if _, ok := m.positions[caseID]; !ok {
		return store.ErrNotFound
	}
	delete(m.positions, caseID)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

var errListFailed = errors.New("list failed")
