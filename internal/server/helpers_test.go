package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/store"
)

// testNow is the server clock in tests. The graph clock truncates it to
// 2026-02-06T12:00:00Z.
var testNow = time.Date(2026, 2, 6, 12, 0, 30, 0, time.UTC)

type mockStore struct {
	mu           sync.Mutex
	cases        map[string]*store.CaseRecord
	meetings     map[string][]*store.MeetingRecord
	tasks        map[string][]*store.TaskRecord
	stakeholders map[string]*store.StakeholderRecord
	positions    map[string]*model.StoredOverlayPosition

	// readErr, when non-nil, is returned by every meeting read.
	readErr error
	// meetingReads counts ListMeetings calls.
	meetingReads int
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

// seedKickoff adds case-1 with one scheduled kickoff meeting, a cancelled
// meeting, one task and two participants, plus an empty case-2.
func (m *mockStore) seedKickoff() {
	at := time.Date(2026, 2, 20, 11, 6, 0, 0, time.UTC)
	due := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	p := 2
	m.cases["case-1"] = &store.CaseRecord{ID: "case-1", TenantID: "t-1", Title: "Kita Langballig"}
	m.cases["case-2"] = &store.CaseRecord{ID: "case-2", TenantID: "t-1", Title: "Leer"}
	m.meetings["case-1"] = []*store.MeetingRecord{
		{
			ID: "meeting-1", CaseID: "case-1", Status: store.MeetingScheduled, ScheduledAt: &at,
			Title: "Kickoff", LocationLabel: "Kita Langballig", ParticipantIDs: []string{"st-1", "st-2"},
		},
		{ID: "meeting-x", CaseID: "case-1", Status: store.MeetingCancelled, ScheduledAt: &at, Title: "Abgesagt"},
	}
	m.tasks["case-1"] = []*store.TaskRecord{{
		ID: "task-1", CaseID: "case-1", Title: "Konzeptentwurf vorbereiten", State: string(model.TaskOpen),
		Priority: &p, AssigneeID: "st-1", CreatedFromMeetingID: "meeting-1", DueDate: &due,
	}}
	m.stakeholders["st-1"] = &store.StakeholderRecord{ID: "st-1", TenantID: "t-1", FirstName: "Anna", LastName: "L.", Role: string(model.RoleConsultant)}
	m.stakeholders["st-2"] = &store.StakeholderRecord{ID: "st-2", TenantID: "t-1", FirstName: "Ben", LastName: "M.", Role: string(model.RoleDirector)}
}

func (m *mockStore) GetCase(_ context.Context, id string) (*store.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) ListCases(context.Context) ([]*store.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.CaseRecord, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) ListMeetings(_ context.Context, caseID string) ([]*store.MeetingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetingReads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.meetings[caseID], nil
}

func (m *mockStore) ListTasks(_ context.Context, caseID string) ([]*store.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[caseID], nil
}

func (m *mockStore) GetStakeholders(_ context.Context, ids []string) ([]*store.StakeholderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.StakeholderRecord
	for _, id := range ids {
		if s, ok := m.stakeholders[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStore) GetOverlayPosition(_ context.Context, caseID string) (*model.StoredOverlayPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[caseID]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockStore) SetOverlayPosition(_ context.Context, pos *model.StoredOverlayPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos.UpdatedAt = testNow
	clone := *pos
	m.positions[pos.CaseID] = &clone
	return nil
}

func (m *mockStore) DeleteOverlayPosition(_ context.Context, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

type publishedEvent struct {
	Topic string
	Event any
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

func (p *recordingPublisher) last() publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return publishedEvent{}
	}
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

type testEnv struct {
	srv     *CaseGraphServer
	store   *mockStore
	pub     *recordingPublisher
	handler http.Handler
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	ms := newMockStore()
	ms.seedKickoff()
	pub := &recordingPublisher{}
	srv, err := NewCaseGraphServer(ms, pub, 8)
	if err != nil {
		t.Fatalf("NewCaseGraphServer: %v", err)
	}
	srv.now = func() time.Time { return testNow }
	return &testEnv{srv: srv, store: ms, pub: pub, handler: srv.NewHTTPHandler("")}
}

// doJSON performs an HTTP request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// decodeJSON unmarshals a recorder's body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
