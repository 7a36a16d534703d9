package viewstate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/idgen"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
)

// ErrNotFound is returned for an unknown or expired view id.
var ErrNotFound = errors.New("view not found")

// ReaperConfig configures the background expiry of idle views.
type ReaperConfig struct {
	// IdleTimeout is how long a view may go without input before it expires.
	// Default: 30 minutes.
	IdleTimeout time.Duration

	// SweepInterval is how often the reaper scans for idle views.
	// Default: 1 minute.
	SweepInterval time.Duration

	// OnExpired is called for each expired view, outside the lock.
	OnExpired func(View)
}

// Store keeps the open views in memory.
type Store struct {
	mu    sync.RWMutex
	views map[string]*View
	now   func() time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

// New creates an empty view store.
func New() *Store {
	return &Store{
		views: make(map[string]*View),
		now:   time.Now,
	}
}

// Open creates a view of caseID. remembered is the case's stored overlay
// position, if any.
func (s *Store) Open(caseID string, viewport timeline.Size, remembered *model.OverlayPosition) (View, error) {
	id, err := idgen.NewViewID()
	if err != nil {
		return View{}, fmt.Errorf("opening view: %w", err)
	}
	v := newView(id, caseID, viewport, remembered, s.now())

	s.mu.Lock()
	s.views[id] = v
	s.mu.Unlock()
	return v.clone(), nil
}

// Get returns a copy of the view.
func (s *Store) Get(id string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[id]
	if !ok {
		return View{}, ErrNotFound
	}
	return v.clone(), nil
}

// Update runs fn on the view under the store lock and marks the view as
// active. fn must not call back into the store.
func (s *Store) Update(id string, fn func(v *View) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return View{}, ErrNotFound
	}
	if err := fn(v); err != nil {
		return v.clone(), err
	}
	v.LastSeen = s.now()
	return v.clone(), nil
}

// Close removes the view and returns its final state.
func (s *Store) Close(id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return View{}, ErrNotFound
	}
	delete(s.views, id)
	return v.clone(), nil
}

// List returns all views of caseID, or every view when caseID is empty,
// most recently active first.
func (s *Store) List(caseID string) []View {
	s.mu.RLock()
	out := make([]View, 0, len(s.views))
	for _, v := range s.views {
		if caseID == "" || v.CaseID == caseID {
			out = append(out, v.clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of open views.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// StartReaper launches a background goroutine that expires idle views.
// Call Stop to shut it down.
func (s *Store) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}

	s.reaperStop = make(chan struct{})
	s.reaperDone = make(chan struct{})

	go s.reapLoop(cfg)
	slog.Info("viewstate: reaper started",
		"idle_timeout", cfg.IdleTimeout,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (s *Store) Stop() {
	if s.reaperStop != nil {
		close(s.reaperStop)
		<-s.reaperDone
		s.reaperStop = nil
		s.reaperDone = nil
	}
}

func (s *Store) reapLoop(cfg *ReaperConfig) {
	defer close(s.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.reaperStop:
			return
		case <-ticker.C:
			s.sweep(cfg)
		}
	}
}

func (s *Store) sweep(cfg *ReaperConfig) {
	now := s.now()

	var expired []View
	s.mu.Lock()
	for id, v := range s.views {
		if now.Sub(v.LastSeen) > cfg.IdleTimeout {
			expired = append(expired, v.clone())
			delete(s.views, id)
		}
	}
	s.mu.Unlock()

	for _, v := range expired {
		slog.Info("viewstate: view expired",
			"view_id", v.ID,
			"case_id", v.CaseID,
			"idle_timeout", cfg.IdleTimeout)
		if cfg.OnExpired != nil {
			cfg.OnExpired(v)
		}
	}
}
